package main

import (
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/Swiddis/opensearch-utils/internal/progress"
)

// renderInterval throttles display updates; the aggregator can deliver
// hundreds of thousands of events per second on fast sources.
const renderInterval = 100 * time.Millisecond

// barRenderer displays the four pipeline counters as a multi-bar terminal
// view. It is driven entirely from the aggregator's consumer goroutine, so
// it needs no locking.
type barRenderer struct {
	container  *mpb.Progress
	lines      *mpb.Bar
	pending    *mpb.Bar
	inFlight   *mpb.Bar
	completed  *mpb.Bar
	lastRender time.Time
}

func newBarRenderer(limit int) *barRenderer {
	container := mpb.New(
		mpb.WithOutput(os.Stdout),
		mpb.WithRefreshRate(renderInterval),
	)
	// total <= 0 means unknown; the bar runs until Done completes it.
	newCounter := func(name string, total int64) *mpb.Bar {
		if total <= 0 {
			total = -1
		}
		return container.AddSpinner(total,
			mpb.PrependDecorators(
				decor.Name(name, decor.WC{W: 20, C: decor.DindentRight}),
				decor.CurrentNoUnit("%d"),
			),
			mpb.AppendDecorators(decor.Elapsed(decor.ET_STYLE_MMSS)),
		)
	}
	return &barRenderer{
		container: container,
		lines:     newCounter("Lines read", int64(limit)),
		pending:   newCounter("Batches pending", -1),
		inFlight:  newCounter("Requests in flight", -1),
		completed: newCounter("Batches completed", -1),
	}
}

// Update refreshes the bars from a counter snapshot, at most once per
// renderInterval.
func (r *barRenderer) Update(s progress.Snapshot) {
	if time.Since(r.lastRender) < renderInterval {
		return
	}
	r.lastRender = time.Now()
	r.set(s)
}

// Done flushes the final counters and completes the bars.
func (r *barRenderer) Done(s progress.Snapshot) {
	r.set(s)
	for _, bar := range []*mpb.Bar{r.lines, r.pending, r.inFlight, r.completed} {
		bar.SetTotal(-1, true)
	}
	r.container.Wait()
}

func (r *barRenderer) set(s progress.Snapshot) {
	r.lines.SetCurrent(s.LinesRead)
	r.pending.SetCurrent(s.BatchesSubmitted)
	r.inFlight.SetCurrent(s.RequestsInFlight)
	r.completed.SetCurrent(s.BatchesCompleted)
}
