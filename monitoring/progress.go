package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar follows how far a long-running activity has gone, such as
// the simulated milliseconds of a run.
type ProgressBar struct {
	lock      sync.Mutex
	id        string
	name      string
	startTime time.Time
	total     uint64
	finished  uint64
	inFlight  uint64
}

// progressRsp is what the progress API reports for a bar.
type progressRsp struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
	ETASeconds float64   `json:"eta_seconds"`
}

// Start marks the wall-clock time the activity starts at.
func (b *ProgressBar) Start() {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.startTime = time.Now()
}

// IncrementInProgress adds items that have started but not finished.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.inFlight += amount
}

// IncrementFinished adds finished items.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.finished += amount
}

// MoveInProgressToFinished marks in-flight items as finished.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if amount > b.inFlight {
		amount = b.inFlight
	}

	b.inFlight -= amount
	b.finished += amount
}

// Finished returns the number of finished items.
func (b *ProgressBar) Finished() uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.finished
}

func (b *ProgressBar) snapshot(now time.Time) progressRsp {
	b.lock.Lock()
	defer b.lock.Unlock()

	rsp := progressRsp{
		ID:         b.id,
		Name:       b.name,
		StartTime:  b.startTime,
		Total:      b.total,
		Finished:   b.finished,
		InProgress: b.inFlight,
	}

	rsp.ETASeconds = b.eta(now).Seconds()

	return rsp
}

// eta extrapolates the time left from the average rate so far. It is zero
// until the bar has started and made progress.
func (b *ProgressBar) eta(now time.Time) time.Duration {
	if b.startTime.IsZero() || b.finished == 0 || b.finished >= b.total {
		return 0
	}

	elapsed := now.Sub(b.startTime)
	perItem := elapsed / time.Duration(b.finished)

	return perItem * time.Duration(b.total-b.finished)
}
