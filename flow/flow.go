// Package flow describes the pipelines of IP blocks that applications run
// every frame, and the per-IP characterization tables that frequency
// governors consult.
package flow

import (
	"github.com/sarchlab/gemdroid/soc"
)

// A Flow is an ordered list of the IP types that one logical task passes
// through, for example CPU, MMC_IN, VD, DC.
type Flow []soc.IPType

// Type returns the last stage of the flow. Requests carry it so that an IP
// shared by several flows knows which one to continue.
func (f Flow) Type() soc.IPType {
	if len(f) == 0 {
		return soc.NoIP
	}

	return f[len(f)-1]
}

// Contains tells if the flow passes through the IP type.
func (f Flow) Contains(ip soc.IPType) bool {
	for _, s := range f {
		if s == ip {
			return true
		}
	}

	return false
}

// Table maps each application to its flows. A Table is never modified after
// it is built.
type Table struct {
	apps [soc.NumApps][]Flow
}

// Flows returns all the flows of an application.
func (t *Table) Flows(app soc.AppID) []Flow {
	if app < 0 || app >= soc.NumApps {
		return nil
	}

	return t.apps[app]
}

// Flow returns one flow of an application, or nil if there is no such flow.
func (t *Table) Flow(app soc.AppID, idx int) Flow {
	flows := t.Flows(app)
	if idx < 0 || idx >= len(flows) {
		return nil
	}

	return flows[idx]
}

// NextIPs returns the stage after curr in every flow of type flowType that
// contains curr. If curr is the last stage of a matching flow, NoIP is
// reported for that flow.
func (t *Table) NextIPs(
	app soc.AppID,
	curr soc.IPType,
	flowType soc.IPType,
) []soc.IPType {
	var next []soc.IPType

	for _, f := range t.Flows(app) {
		if f.Type() != flowType {
			continue
		}

		for j, s := range f {
			if s != curr {
				continue
			}

			if j+1 < len(f) {
				next = append(next, f[j+1])
			} else {
				next = append(next, soc.NoIP)
			}
		}
	}

	return next
}

// NextIP returns the first entry of NextIPs, or NoIP.
func (t *Table) NextIP(
	app soc.AppID,
	curr soc.IPType,
	flowType soc.IPType,
) soc.IPType {
	next := t.NextIPs(app, curr, flowType)
	if len(next) == 0 {
		return soc.NoIP
	}

	return next[0]
}

// Successor returns the stage that follows ip in the first flow of the
// application that contains ip, whatever the flow type. It returns NoIP if no
// flow continues after ip.
func (t *Table) Successor(app soc.AppID, ip soc.IPType) soc.IPType {
	for _, f := range t.Flows(app) {
		for j, s := range f {
			if s == ip && j+1 < len(f) {
				return f[j+1]
			}
		}
	}

	return soc.NoIP
}

// Identify returns the indexes of the flows that pass through ip. A flow is
// listed once for each time it passes through ip.
func (t *Table) Identify(app soc.AppID, ip soc.IPType) []int {
	var ids []int

	for i, f := range t.Flows(app) {
		for _, s := range f {
			if s == ip {
				ids = append(ids, i)
			}
		}
	}

	return ids
}

// FlowID returns the first flow that passes through ip, or -1.
func (t *Table) FlowID(app soc.AppID, ip soc.IPType) int {
	return Pick(t.Identify(app, ip), 0)
}

// IPsInFlow returns the stages of a flow.
func (t *Table) IPsInFlow(app soc.AppID, idx int) []soc.IPType {
	return append([]soc.IPType(nil), t.Flow(app, idx)...)
}

// AccsInFlow returns the stages of a flow that are not devices.
func (t *Table) AccsInFlow(app soc.AppID, idx int) []soc.IPType {
	var ips []soc.IPType

	for _, s := range t.Flow(app, idx) {
		if !s.IsDevice() {
			ips = append(ips, s)
		}
	}

	return ips
}

// DevsInFlow returns the stages of a flow that are devices.
func (t *Table) DevsInFlow(app soc.AppID, idx int) []soc.IPType {
	var ips []soc.IPType

	for _, s := range t.Flow(app, idx) {
		if s.IsDevice() {
			ips = append(ips, s)
		}
	}

	return ips
}

// Pick returns ids[i], or -1 if there is no such element.
func Pick(ids []int, i int) int {
	if i < 0 || i >= len(ids) {
		return -1
	}

	return ids[i]
}

// Builder can build flow tables.
type Builder struct {
	flows map[soc.AppID][]Flow
}

// MakeBuilder creates a new Builder.
func MakeBuilder() Builder {
	return Builder{flows: make(map[soc.AppID][]Flow)}
}

// WithFlow appends a flow to an application.
func (b Builder) WithFlow(app soc.AppID, stages ...soc.IPType) Builder {
	flows := make(map[soc.AppID][]Flow, len(b.flows)+1)
	for k, v := range b.flows {
		flows[k] = v
	}

	flows[app] = append(append([]Flow(nil), flows[app]...),
		append(Flow(nil), stages...))
	b.flows = flows

	return b
}

// Build creates the table.
func (b Builder) Build() *Table {
	t := &Table{}
	for app, flows := range b.flows {
		t.apps[app] = flows
	}

	return t
}
