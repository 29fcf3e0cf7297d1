package tracing

import (
	"log"
	"sort"

	"github.com/sarchlab/gemdroid/datarecording"
	"github.com/sarchlab/gemdroid/sim"
)

// BufferTable is the table that a BufferAnalyzer writes its levels into.
const BufferTable = "buffer_levels"

// BufferLevel summarizes the occupancy of one buffer over a run. The average
// is weighted by time.
type BufferLevel struct {
	Buffer   string
	Capacity int
	Current  int
	Peak     int
	Average  float64
}

type bufferInfo struct {
	buf       sim.Buffer
	lastLevel int
	lastTime  float64
	peak      int

	// levelTime is the simulated time spent at each level.
	levelTime map[int]float64
}

func (b *bufferInfo) average(now float64) float64 {
	sum := 0.0
	total := 0.0

	for level, d := range b.levelTime {
		sum += float64(level) * d
		total += d
	}

	tail := now - b.lastTime
	sum += float64(b.lastLevel) * tail
	total += tail

	if total <= 0 {
		return float64(b.lastLevel)
	}

	return sum / total
}

// BufferAnalyzer follows how full buffers are over time, which tells where
// the requests of the SoC pile up.
type BufferAnalyzer struct {
	timeTeller sim.TimeTeller
	buffers    map[string]*bufferInfo
}

// NewBufferAnalyzer creates a BufferAnalyzer that reads the time from the
// time teller.
func NewBufferAnalyzer(timeTeller sim.TimeTeller) *BufferAnalyzer {
	return &BufferAnalyzer{
		timeTeller: timeTeller,
		buffers:    make(map[string]*bufferInfo),
	}
}

// Watch starts following the buffers.
func (a *BufferAnalyzer) Watch(bufs ...sim.Buffer) {
	now := float64(a.timeTeller.CurrentTime())

	for _, buf := range bufs {
		if _, ok := a.buffers[buf.Name()]; ok {
			log.Panicf("buffer %s is already watched", buf.Name())
		}

		a.buffers[buf.Name()] = &bufferInfo{
			buf:       buf,
			lastLevel: buf.Size(),
			lastTime:  now,
			peak:      buf.Size(),
			levelTime: make(map[int]float64),
		}

		buf.AcceptHook(a)
	}
}

// Func records a change of a buffer level.
func (a *BufferAnalyzer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosBufPush && ctx.Pos != sim.HookPosBufPop {
		return
	}

	buf := ctx.Domain.(sim.Buffer)

	info, ok := a.buffers[buf.Name()]
	if !ok {
		log.Panicf("buffer %s is not watched", buf.Name())
	}

	now := float64(a.timeTeller.CurrentTime())
	info.levelTime[info.lastLevel] += now - info.lastTime
	info.lastTime = now
	info.lastLevel = buf.Size()

	if info.lastLevel > info.peak {
		info.peak = info.lastLevel
	}
}

// Levels returns the levels of the watched buffers, sorted by name.
func (a *BufferAnalyzer) Levels() []BufferLevel {
	now := float64(a.timeTeller.CurrentTime())
	levels := make([]BufferLevel, 0, len(a.buffers))

	for name, info := range a.buffers {
		levels = append(levels, BufferLevel{
			Buffer:   name,
			Capacity: info.buf.Capacity(),
			Current:  info.buf.Size(),
			Peak:     info.peak,
			Average:  info.average(now),
		})
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Buffer < levels[j].Buffer
	})

	return levels
}

// Record writes the levels into the recorder.
func (a *BufferAnalyzer) Record(recorder datarecording.DataRecorder) {
	recorder.CreateTable(BufferTable, BufferLevel{})

	for _, l := range a.Levels() {
		recorder.InsertData(BufferTable, l)
	}

	recorder.Flush()
}
