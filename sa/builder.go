package sa

import (
	"log"

	"github.com/sarchlab/gemdroid/flow"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

// Builder can build switches.
type Builder struct {
	memory       Memory
	platform     Platform
	flows        *flow.Table
	perfect      bool
	maxMemReqs   int
	maxIPMemReqs int
	maxMemResps  int
	maxIPReqs    int
	maxIPResps   int
}

// MakeBuilder creates a builder with the default queue limits.
func MakeBuilder() Builder {
	return Builder{
		maxMemReqs:   MaxMemReqs,
		maxIPMemReqs: MaxIPMemReqs,
		maxMemResps:  MaxMemResps,
		maxIPReqs:    MaxIPOutstandingReqs,
		maxIPResps:   MaxIPResps,
	}
}

// WithMemory sets the memory the switch forwards to.
func (b Builder) WithMemory(m Memory) Builder {
	b.memory = m
	return b
}

// WithPlatform sets where IP requests and responses are delivered.
func (b Builder) WithPlatform(p Platform) Builder {
	b.platform = p
	return b
}

// WithFlowTable sets the flows used to chain IP requests.
func (b Builder) WithFlowTable(t *flow.Table) Builder {
	b.flows = t
	return b
}

// WithPerfectMemory removes the response transmission delay.
func (b Builder) WithPerfectMemory(perfect bool) Builder {
	b.perfect = perfect
	return b
}

// WithMaxMemReqs sets the combined limit of the memory request queues.
func (b Builder) WithMaxMemReqs(n int) Builder {
	b.maxMemReqs = n
	return b
}

// WithMaxIPMemReqs sets the limit of the IP memory request queue.
func (b Builder) WithMaxIPMemReqs(n int) Builder {
	b.maxIPMemReqs = n
	return b
}

// WithMaxMemResps sets the combined limit of the memory response queues.
func (b Builder) WithMaxMemResps(n int) Builder {
	b.maxMemResps = n
	return b
}

// WithMaxIPReqs sets how many requests may wait for each IP type.
func (b Builder) WithMaxIPReqs(n int) Builder {
	b.maxIPReqs = n
	return b
}

// Build creates the switch.
func (b Builder) Build(name string) *Comp {
	if b.memory == nil || b.platform == nil {
		log.Panicf("switch %s needs a memory and a platform", name)
	}

	c := &Comp{
		ComponentBase: sim.NewComponentBase(name),
		memory:        b.memory,
		platform:      b.platform,
		flows:         b.flows,
		perfect:       b.perfect,
		maxMemReqs:    b.maxMemReqs,
		maxIPMemReqs:  b.maxIPMemReqs,
		maxMemResps:   b.maxMemResps,
	}

	if c.flows == nil {
		c.flows = flow.MakeBuilder().Build()
	}

	c.coreMemReq = sim.NewBuffer(name+".CoreMemReq", b.maxMemReqs)
	c.ipMemReq = sim.NewBuffer(name+".IPMemReq", b.maxIPMemReqs)
	c.memCoreResp = sim.NewBuffer(name+".MemCoreResp", b.maxMemResps)
	c.memIPResp = sim.NewBuffer(name+".MemIPResp", b.maxMemResps)
	c.ipCoreResp = sim.NewBuffer(name+".IPCoreResp", b.maxIPResps)

	for t := soc.CPU + 1; t < soc.NumIPTypes; t++ {
		c.ipReq[t] = sim.NewBuffer(name+".IPReq."+t.String(), b.maxIPReqs)
	}

	return c
}
