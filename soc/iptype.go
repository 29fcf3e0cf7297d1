package soc

import (
	"fmt"
	"strings"
)

// IPType identifies the kind of a component that can talk to the switch.
type IPType int

// All the IP types. The order matters: the switch scans pending IP requests
// from low to high.
const (
	CPU IPType = iota
	DC
	NW
	SND
	MIC
	CAM
	MMCIn
	MMCOut
	VD
	VE
	AD
	AE
	IMG
	GPU
	DMA
	Cache
	NumIPTypes
)

// NoIP is returned by lookups that find no IP.
const NoIP IPType = -1

var ipTypeNames = [NumIPTypes]string{
	"CPU", "DC", "NW", "SND", "MIC", "CAM", "MMC_IN", "MMC_OUT",
	"VD", "VE", "AD", "AE", "IMG", "GPU", "DMA", "CACHE",
}

func (t IPType) String() string {
	if t.Valid() {
		return ipTypeNames[t]
	}

	return fmt.Sprintf("IPType(%d)", int(t))
}

// Valid returns true if the type is one of the defined IP types.
func (t IPType) Valid() bool {
	return t >= CPU && t < NumIPTypes
}

// IsDevice returns true for the I/O devices, from the display controller to
// the storage writer.
func (t IPType) IsDevice() bool {
	return t >= DC && t <= MMCOut
}

// IsAccelerator returns true for the fixed-function codecs and the image
// processor.
func (t IPType) IsAccelerator() bool {
	return t >= VD && t <= IMG
}

// ParseIPType converts a name such as "MMC_IN" into an IPType.
func ParseIPType(name string) (IPType, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range ipTypeNames {
		if n == upper {
			return IPType(i), nil
		}
	}

	return NoIP, fmt.Errorf("unknown IP type %q", name)
}

// AllIPs lists the IP types that are instantiated as IP blocks, in tick
// order.
func AllIPs() []IPType {
	return []IPType{DC, NW, SND, MIC, CAM, MMCIn, MMCOut, VD, VE, AD, AE, IMG}
}
