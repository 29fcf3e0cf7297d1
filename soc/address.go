package soc

// GiB is the size of one core address window.
const GiB uint64 = 1 << 30

// IPAddrBoundary splits the physical space. Core traffic lives below it and
// IP traffic at or above it.
const IPAddrBoundary = 2 * GiB

// Base addresses of the IP buffers.
const (
	DC0Addr    uint64 = 2_160_000_000
	CAMAddr    uint64 = 2_180_000_000
	VDAddr     uint64 = 2_200_000_000
	VEAddr     uint64 = 2_220_000_000
	IMGAddr    uint64 = 2_240_000_000
	AEAddr     uint64 = 2_260_000_000
	NWAddr     uint64 = 2_280_000_000
	SNDAddr    uint64 = 2_300_000_000
	ADAddr     uint64 = 2_320_000_000
	MMCInAddr  uint64 = 2_340_000_000
	MICAddr    uint64 = 2_360_000_000
	MMCOutAddr uint64 = 2_380_000_000
	DC1Addr    uint64 = 2_400_000_000
	GPUAddr    uint64 = 2_420_000_000
)

// BaseAddr returns the buffer base address of an IP type. The display
// controller returns the address of its first instance.
func BaseAddr(t IPType) uint64 {
	switch t {
	case DC:
		return DC0Addr
	case CAM:
		return CAMAddr
	case VD:
		return VDAddr
	case VE:
		return VEAddr
	case IMG:
		return IMGAddr
	case AE:
		return AEAddr
	case NW:
		return NWAddr
	case SND:
		return SNDAddr
	case AD:
		return ADAddr
	case MMCIn:
		return MMCInAddr
	case MIC:
		return MICAddr
	case MMCOut:
		return MMCOutAddr
	case GPU:
		return GPUAddr
	}

	return 0
}

// IsCoreAddr tells if the address belongs to the core partition.
func IsCoreAddr(addr uint64) bool {
	return addr < IPAddrBoundary
}

// CoreAddr relocates a trace address into the window of the given core.
func CoreAddr(coreID int, addr uint64) uint64 {
	if coreID < 2 {
		return addr + uint64(coreID)*GiB
	}

	return addr + uint64(coreID/6)*GiB
}

// CacheLines returns the number of cache lines needed to move size bytes.
func CacheLines(size uint64) int {
	return int((size + CacheLineSize - 1) / CacheLineSize)
}
