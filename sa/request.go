package sa

import (
	"fmt"

	"github.com/sarchlab/gemdroid/soc"
)

// A Request asks an IP block to process one frame, or one chunk of a frame.
// It is issued either by a CPU core or, when a flow advances, by the switch
// on behalf of the IP that just finished.
type Request struct {
	Sender   soc.IPType
	SenderID int
	CoreID   int
	Target   soc.IPType
	Addr     uint64
	Size     int
	IsRead   bool
	FrameNum int
	FlowType soc.IPType
	FlowID   int
}

func (r Request) String() string {
	dir := "W"
	if r.IsRead {
		dir = "R"
	}

	return fmt.Sprintf("%s_%d->%s %s 0x%x+%d frame=%d flow=%s/%d core=%d",
		r.Sender, r.SenderID, r.Target, dir, r.Addr, r.Size,
		r.FrameNum, r.FlowType, r.FlowID, r.CoreID)
}

// A memMsg is a cache-line request or response between an agent and the
// memory.
type memMsg struct {
	src    soc.IPType
	srcID  int
	coreID int
	addr   uint64
	isRead bool
}

// An ipResponse tells that an IP finished its part of a frame.
type ipResponse struct {
	sender   soc.IPType
	senderID int
	coreID   int
	frameNum int
	flowType soc.IPType
	flowID   int
}
