package core

import (
	"log"

	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

type entryKind int

const (
	computeEntry entryKind = iota
	loadEntry
	storeEntry
)

// An entry is one transaction in the reorder buffer: either a batch of
// compute instructions or a single load or store.
type entry struct {
	kind     entryKind
	insts    int64
	doneOoO  int64
	addr     uint64
	issued   bool
	issuedAt uint64
	ready    bool
}

func (e *entry) isMemory() bool {
	return e.kind != computeEntry
}

func (e *entry) isRead() bool {
	return e.kind == loadEntry
}

func (e *entry) commitInst() {
	e.insts--
	e.doneOoO++
}

func (c *Comp) push(e entry) {
	if len(c.rob) >= MaxTransactions {
		log.Panicf("%s: reorder buffer overflow", c.Name())
	}

	c.rob = append(c.rob, e)
}

func (c *Comp) addInstructions(insts int64) {
	c.push(entry{kind: computeEntry, insts: insts})
}

// addMemoryAccess queues a load or store unless an access to the same
// address is already waiting in the reorder buffer.
func (c *Comp) addMemoryAccess(addr uint64, isRead bool) {
	if c.search(addr) >= 0 {
		return
	}

	kind := storeEntry
	if isRead {
		kind = loadEntry
	}

	c.stats.MemReqs++
	c.push(entry{kind: kind, addr: addr})
}

// search returns the index of the first pending access to addr, or -1.
func (c *Comp) search(addr uint64) int {
	for i := range c.rob {
		e := &c.rob[i]
		if e.isMemory() && e.addr == addr && !e.ready {
			return i
		}
	}

	return -1
}

// commitHead removes the head of the reorder buffer, which must be ready.
func (c *Comp) commitHead() {
	if len(c.rob) == 0 {
		log.Panicf("%s: committing from an empty reorder buffer", c.Name())
	}

	if !c.rob[0].ready {
		log.Panicf("%s: committing a head that is not ready", c.Name())
	}

	c.rob[0] = entry{}
	c.rob = c.rob[1:]
}

// MemResponse marks the pending access to addr as completed. It returns false
// if no access to the address waits in the reorder buffer.
func (c *Comp) MemResponse(addr uint64, _ bool) bool {
	i := c.search(addr)
	if i < 0 {
		c.stats.OrphanResponses++
		return false
	}

	c.rob[i].ready = true

	return true
}

// checkDeadlock forces out a load or store that has waited at the head for
// too long.
func (c *Comp) checkDeadlock() {
	if len(c.rob) == 0 {
		return
	}

	head := &c.rob[0]
	if !head.isMemory() || !head.issued || head.ready {
		return
	}

	if c.ticks-head.issuedAt <= DeadlockPeriod {
		return
	}

	log.Printf("%s: deadlock %d, access 0x%x stuck at the head since cycle %d",
		c.Name(), c.stats.Deadlocks, head.addr, head.issuedAt)

	addr := head.addr
	head.ready = true
	c.commitHead()
	c.stats.Deadlocks++

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    soc.HookPosDeadlock,
			Item: soc.FrameEvent{
				Tick:    c.now(),
				Agent:   soc.CPU,
				AgentID: c.id,
				Addr:    addr,
			},
		})
	}
}
