package dvfs

import (
	"fmt"

	"github.com/sarchlab/gemdroid/flow"
	"github.com/sarchlab/gemdroid/soc"
)

// Controller runs a governor over the components of the SoC.
type Controller struct {
	governor soc.Governor
	policy   Policy
	sys      System
	updates  uint64
}

// Governor returns the governor the controller runs.
func (c *Controller) Governor() soc.Governor {
	return c.governor
}

// Enabled tells if the governor changes anything after the start.
func (c *Controller) Enabled() bool {
	switch c.governor {
	case soc.GovernorDisabled, soc.GovernorPerformance,
		soc.GovernorPowersave, soc.GovernorOptimal:
		return false
	}

	return true
}

// Updates returns the number of periods the governor acted on.
func (c *Controller) Updates() uint64 {
	return c.updates
}

// Init sets the starting operating points.
func (c *Controller) Init() {
	c.policy.Init(&c.sys)
}

// Update runs the governor at the end of a DVFS period. Nothing moves until
// a frame of the foreground app has been timed.
func (c *Controller) Update(ep Epoch) {
	if ep.Slack == soc.FPSDeadlineMs {
		return
	}

	for _, core := range c.sys.cores {
		core.Scaler().Epoch()
	}

	for _, b := range c.sys.ips {
		b.Scaler().Epoch()
	}

	c.policy.Update(&c.sys, ep)
	c.updates++
}

// Builder can build controllers.
type Builder struct {
	governor soc.Governor
	app      soc.AppID
	cores    []Core
	ips      []IP
	mem      Memory
	flows    *flow.Table
	chars    *flow.IPChars
}

// MakeBuilder creates a builder for the ondemand governor.
func MakeBuilder() Builder {
	return Builder{governor: soc.GovernorOndemand, app: soc.OtherApp}
}

// WithGovernor sets the governor.
func (b Builder) WithGovernor(g soc.Governor) Builder {
	b.governor = g
	return b
}

// WithApp sets the foreground app, whose first flow the slack governors
// follow.
func (b Builder) WithApp(app soc.AppID) Builder {
	b.app = app
	return b
}

// WithCores sets the CPU cores.
func (b Builder) WithCores(cores ...Core) Builder {
	b.cores = cores
	return b
}

// WithIPs sets the IP blocks.
func (b Builder) WithIPs(ips ...IP) Builder {
	b.ips = ips
	return b
}

// WithMemory sets the memory.
func (b Builder) WithMemory(m Memory) Builder {
	b.mem = m
	return b
}

// WithFlowTable sets the flows of the apps.
func (b Builder) WithFlowTable(t *flow.Table) Builder {
	b.flows = t
	return b
}

// WithIPChars sets the characterization of the IPs.
func (b Builder) WithIPChars(c *flow.IPChars) Builder {
	b.chars = c
	return b
}

// Build creates the controller.
func (b Builder) Build() (*Controller, error) {
	policy, err := NewPolicy(b.governor)
	if err != nil {
		return nil, err
	}

	if len(b.cores) == 0 {
		return nil, fmt.Errorf("governor %s has no core to control", b.governor)
	}

	if b.mem == nil {
		return nil, fmt.Errorf("governor %s has no memory to control",
			b.governor)
	}

	flows := b.flows
	if flows == nil {
		flows = flow.MakeBuilder().Build()
	}

	chars := b.chars
	if chars == nil {
		chars = flow.DefaultIPChars()
	}

	return &Controller{
		governor: b.governor,
		policy:   policy,
		sys: System{
			app:   b.app,
			cores: b.cores,
			ips:   b.ips,
			mem:   b.mem,
			flows: flows,
			chars: chars,
		},
	}, nil
}
