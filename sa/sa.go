// Package sa implements the switch/arbiter of the SoC. The switch owns every
// queue between the cores, the IP blocks, and the memory. It forwards traffic
// in a fixed priority order and advances the flows of the applications when
// an IP finishes its part of a frame.
package sa

import (
	"log"

	"github.com/sarchlab/gemdroid/flow"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

// Queue limits of the switch.
const (
	MaxMemReqs            = 256
	MaxIPMemReqs          = MaxMemReqs * 9 / 10
	MaxMemResps           = 256
	MaxIPOutstandingReqs  = 10
	MaxIPResps            = 64
	MemRespTransmitCycles = 2
)

// activityPerMs is the activity count of a switch that is busy in every cycle
// of one millisecond.
const activityPerMs = 750_000.0

// HookPosChainDropped marks a follow-up request of a flow that could not be
// queued. The item is the Request.
var HookPosChainDropped = &sim.HookPos{Name: "SA Chain Dropped"}

// Memory is the memory as seen by the switch.
type Memory interface {
	Enqueue(src soc.IPType, srcID, coreID int, addr uint64, isRead bool) bool
	NumChannels() int
}

// Platform delivers what the switch forwards and keeps the per-frame timing
// of the IPs.
type Platform interface {
	// EnqueueIPReq hands a request to the target IP. It returns false if the
	// IP is busy.
	EnqueueIPReq(req Request) bool

	// MemCoreResponse delivers a memory response to a core.
	MemCoreResponse(coreID int, addr uint64, isRead bool) bool

	// MemIPResponse delivers a memory response to an IP.
	MemIPResponse(ip soc.IPType, id int, addr uint64, isRead bool) bool

	// MarkIPRequestCompleted records that an IP finished a frame.
	MarkIPRequestCompleted(
		coreID int,
		ip soc.IPType,
		id int,
		frameNum int,
		flowID int,
	)

	// AppOf returns the application that runs on a core.
	AppOf(coreID int) soc.AppID
}

// Stats holds the counters of the switch.
type Stats struct {
	Ticks          uint64
	CoreMemReqs    uint64
	CoreIPReqs     uint64
	IPIPReqs       uint64
	IPMemReqs      uint64
	MemCoreResps   uint64
	MemIPResps     uint64
	IPCoreResps    uint64
	Rejected       uint64
	ChainsDropped  uint64
	QueueOccupancy uint64
}

// Comp is the switch/arbiter.
type Comp struct {
	*sim.ComponentBase

	memory   Memory
	platform Platform
	flows    *flow.Table
	perfect  bool

	coreMemReq  sim.Buffer
	ipMemReq    sim.Buffer
	memCoreResp sim.Buffer
	memIPResp   sim.Buffer
	ipCoreResp  sim.Buffer
	ipReq       [soc.NumIPTypes]sim.Buffer

	maxMemReqs   int
	maxIPMemReqs int
	maxMemResps  int

	cyclesToSkip int
	activity     uint64
	stats        Stats
}

// Stats returns a snapshot of the counters.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Buffers returns all the queues owned by the switch.
func (c *Comp) Buffers() []sim.Buffer {
	bufs := []sim.Buffer{
		c.coreMemReq, c.ipMemReq, c.memCoreResp, c.memIPResp, c.ipCoreResp,
	}

	for t := soc.CPU + 1; t < soc.NumIPTypes; t++ {
		bufs = append(bufs, c.ipReq[t])
	}

	return bufs
}

func (c *Comp) memReqsFull() bool {
	return c.coreMemReq.Size()+c.ipMemReq.Size() >= c.maxMemReqs
}

func (c *Comp) memRespsFull() bool {
	return c.memCoreResp.Size()+c.memIPResp.Size() >= c.maxMemResps
}

// EnqueueCoreMemRequest queues a cache-line access of a core. It returns
// false if the memory queues of the switch are full.
func (c *Comp) EnqueueCoreMemRequest(
	coreID int,
	addr uint64,
	isRead bool,
) bool {
	if c.memReqsFull() || c.memRespsFull() {
		c.stats.Rejected++
		return false
	}

	c.coreMemReq.Push(memMsg{
		src:    soc.CPU,
		srcID:  coreID,
		coreID: coreID,
		addr:   addr,
		isRead: isRead,
	})
	c.stats.CoreMemReqs++

	return true
}

// EnqueueIPMemRequest queues a cache-line access of an IP. It returns false
// if the IP memory queue or the response queues are full.
func (c *Comp) EnqueueIPMemRequest(
	ip soc.IPType,
	id int,
	coreID int,
	addr uint64,
	isRead bool,
) bool {
	if c.ipMemReq.Size() >= c.maxIPMemReqs || c.memRespsFull() {
		c.stats.Rejected++
		return false
	}

	c.ipMemReq.Push(memMsg{
		src:    ip,
		srcID:  id,
		coreID: coreID,
		addr:   addr,
		isRead: isRead,
	})
	c.stats.IPMemReqs++

	return true
}

// IsIPReqLimitReached tells if no more requests can be queued for an IP
// type.
func (c *Comp) IsIPReqLimitReached(ip soc.IPType) bool {
	c.ipTypeMustBeValid(ip)

	return !c.ipReq[ip].CanPush()
}

// EnqueueCoreIPRequest queues a request from a core to an IP. Cores must
// check IsIPReqLimitReached first; overflowing the queue is a programming
// error.
func (c *Comp) EnqueueCoreIPRequest(req Request) {
	c.ipTypeMustBeValid(req.Target)

	req.Sender = soc.CPU
	req.SenderID = req.CoreID

	c.ipReq[req.Target].Push(req)
	c.stats.CoreIPReqs++
}

// EnqueueIPIPRequest queues a request from one IP to another. It returns
// false if the target queue is full.
func (c *Comp) EnqueueIPIPRequest(req Request) bool {
	c.ipTypeMustBeValid(req.Target)

	if c.IsIPReqLimitReached(req.Target) {
		return false
	}

	c.ipReq[req.Target].Push(req)
	c.stats.IPIPReqs++

	return true
}

// EnqueueIPResponse tells the switch that an IP finished its part of a frame.
// The switch records the completion and issues the next stages of the flow
// when it delivers the response. It returns false if the response queue is
// full.
func (c *Comp) EnqueueIPResponse(
	sender soc.IPType,
	senderID int,
	coreID int,
	frameNum int,
	flowType soc.IPType,
	flowID int,
) bool {
	if !c.ipCoreResp.CanPush() {
		return false
	}

	c.ipCoreResp.Push(ipResponse{
		sender:   sender,
		senderID: senderID,
		coreID:   coreID,
		frameNum: frameNum,
		flowType: flowType,
		flowID:   flowID,
	})

	return true
}

// MemResponse receives a completed memory access. Core traffic must live
// below the IP address boundary and IP traffic above it. It returns false if
// the response queues are full.
func (c *Comp) MemResponse(
	addr uint64,
	isRead bool,
	src soc.IPType,
	srcID int,
) bool {
	msg := memMsg{src: src, srcID: srcID, addr: addr, isRead: isRead}

	switch {
	case src == soc.CPU:
		if !soc.IsCoreAddr(addr) {
			log.Panicf("core %d received response for IP address 0x%x",
				srcID, addr)
		}
	case src.Valid():
		if soc.IsCoreAddr(addr) {
			log.Panicf("%s_%d received response for core address 0x%x",
				src, srcID, addr)
		}
	default:
		log.Panicf("memory response to unknown agent %d", src)
	}

	if c.memRespsFull() {
		return false
	}

	if src == soc.CPU {
		c.memCoreResp.Push(msg)
		c.stats.MemCoreResps++
	} else {
		c.memIPResp.Push(msg)
		c.stats.MemIPResps++
	}

	return true
}

// Tick moves traffic through the switch. Responses of the IPs go first, then
// memory requests, then IP requests, then memory responses.
func (c *Comp) Tick() bool {
	c.stats.Ticks++
	c.stats.QueueOccupancy += uint64(c.coreMemReq.Size() + c.ipMemReq.Size())

	progress := false

	progress = c.sendIPResponse() || progress

	for i := 0; i < c.memory.NumChannels(); i++ {
		progress = c.sendMemoryRequest() || progress
	}

	progress = c.sendIPRequest() || progress

	if c.cyclesToSkip > 0 {
		c.cyclesToSkip--
		return true
	}

	for i := 0; i < c.memory.NumChannels(); i++ {
		progress = c.sendMemoryResponse() || progress
	}

	return progress
}

func (c *Comp) sendIPResponse() bool {
	item := c.ipCoreResp.Pop()
	if item == nil {
		return false
	}

	rsp := item.(ipResponse)

	c.platform.MarkIPRequestCompleted(
		rsp.coreID, rsp.sender, rsp.senderID, rsp.frameNum, rsp.flowID)
	c.stats.IPCoreResps++
	c.activity++

	c.chain(rsp)

	return true
}

// sendMemoryRequest forwards one memory request. A waiting core request
// blocks the IP requests even if the memory refuses it.
func (c *Comp) sendMemoryRequest() bool {
	if item := c.coreMemReq.Peek(); item != nil {
		req := item.(memMsg)
		if !c.memory.Enqueue(soc.CPU, req.srcID, req.coreID, req.addr,
			req.isRead) {
			return false
		}

		c.coreMemReq.Pop()
		c.activity++

		return true
	}

	if item := c.ipMemReq.Peek(); item != nil {
		req := item.(memMsg)
		if !c.memory.Enqueue(req.src, req.srcID, req.coreID, req.addr,
			req.isRead) {
			return false
		}

		c.ipMemReq.Pop()
		c.activity++

		return true
	}

	return false
}

func (c *Comp) sendIPRequest() bool {
	for t := soc.CPU + 1; t < soc.NumIPTypes; t++ {
		item := c.ipReq[t].Peek()
		if item == nil {
			continue
		}

		if !c.platform.EnqueueIPReq(item.(Request)) {
			continue
		}

		c.ipReq[t].Pop()
		c.activity++

		return true
	}

	return false
}

func (c *Comp) sendMemoryResponse() bool {
	var rsp memMsg

	if item := c.memCoreResp.Pop(); item != nil {
		rsp = item.(memMsg)
		c.platform.MemCoreResponse(rsp.srcID, rsp.addr, rsp.isRead)
	} else if item := c.memIPResp.Pop(); item != nil {
		rsp = item.(memMsg)
		c.platform.MemIPResponse(rsp.src, rsp.srcID, rsp.addr, rsp.isRead)
	} else {
		return false
	}

	if c.perfect {
		c.cyclesToSkip = 0
		c.activity++

		return true
	}

	c.cyclesToSkip = 1
	if rsp.isRead {
		c.cyclesToSkip = MemRespTransmitCycles
	}

	c.activity += MemRespTransmitCycles

	return true
}

// Activity returns the busy fraction of the switch in the current
// millisecond.
func (c *Comp) Activity() float64 {
	return float64(c.activity) / activityPerMs
}

// PowerIn1ms returns the power of the switch in the millisecond that just
// ended and starts a new one.
func (c *Comp) PowerIn1ms() float64 {
	const staticPower = 0.025

	dynamic := (0.5 / 0.605) * c.Activity() * 1.1 * 1.1 * 0.5
	c.activity = 0

	return staticPower + dynamic
}

func (c *Comp) ipTypeMustBeValid(ip soc.IPType) {
	if ip <= soc.CPU || ip >= soc.NumIPTypes {
		log.Panicf("%s: no request queue for IP type %s", c.Name(), ip)
	}
}
