// Package tracing observes a running SoC through hooks. The hooks render the
// notable events into a log or record the periodic samples into a
// DataRecorder.
package tracing

import (
	"log"

	"github.com/sarchlab/gemdroid/platform"
	"github.com/sarchlab/gemdroid/sim"
)

// NamedHookable represent something both have a name and can be hooked
type NamedHookable interface {
	sim.Named
	sim.Hookable
}

// CollectTrace attaches the hook to a domain. It panics if the domain already
// has the hook.
func CollectTrace(domain NamedHookable, hook sim.Hook) {
	for _, h := range domain.Hooks() {
		if h == hook {
			log.Panicf("domain %s already has the hook", domain.Name())
		}
	}

	domain.AcceptHook(hook)
}

// CollectPlatformTrace attaches the hook to the platform, its cores, its IP
// blocks, and its switch.
func CollectPlatformTrace(p *platform.Platform, hook sim.Hook) {
	CollectTrace(p, hook)
	CollectTrace(p.Switch(), hook)

	for _, c := range p.Cores() {
		CollectTrace(c, hook)
	}

	for _, b := range p.Blocks() {
		CollectTrace(b, hook)
	}
}

func domainName(ctx sim.HookCtx) string {
	if n, ok := ctx.Domain.(sim.Named); ok {
		return n.Name()
	}

	return "?"
}
