package tracing

import (
	"github.com/sarchlab/gemdroid/datarecording"
	"github.com/sarchlab/gemdroid/platform"
	"github.com/sarchlab/gemdroid/sim"
	"github.com/sarchlab/gemdroid/soc"
)

// Names of the tables that a StatsTracer writes.
const (
	PowerTable = "power"
	SlackTable = "slack"
	FrameTable = "frames"
)

type frameEntry struct {
	Tick     uint64
	Event    string
	Location string
	Agent    string
	AgentID  int
	FrameNum int
	FlowID   int
	Cause    string
}

// StatsTracer records the power samples, the slack samples, and the frame
// events into a DataRecorder.
type StatsTracer struct {
	recorder datarecording.DataRecorder
	rows     uint64
}

// NewStatsTracer creates the tables of the tracer in the recorder.
func NewStatsTracer(recorder datarecording.DataRecorder) *StatsTracer {
	t := &StatsTracer{recorder: recorder}

	recorder.CreateTable(PowerTable, platform.PowerSample{})
	recorder.CreateTable(SlackTable, platform.SlackSample{})
	recorder.CreateTable(FrameTable, frameEntry{})

	return t
}

// Rows returns the number of rows recorded.
func (t *StatsTracer) Rows() uint64 {
	return t.rows
}

// Func records the item of the hook context.
func (t *StatsTracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case platform.HookPosPowerSampled:
		t.insert(PowerTable, ctx.Item.(platform.PowerSample))
	case platform.HookPosSlackSampled:
		t.insert(SlackTable, ctx.Item.(platform.SlackSample))
	case soc.HookPosFrameDisplayed, soc.HookPosFrameDropped:
		e := ctx.Item.(soc.FrameEvent)
		t.insert(FrameTable, frameEntry{
			Tick:     e.Tick,
			Event:    ctx.Pos.Name,
			Location: domainName(ctx),
			Agent:    e.Agent.String(),
			AgentID:  e.AgentID,
			FrameNum: e.FrameNum,
			FlowID:   e.FlowID,
			Cause:    e.Cause,
		})
	}
}

func (t *StatsTracer) insert(table string, entry any) {
	t.recorder.InsertData(table, entry)
	t.rows++
}
