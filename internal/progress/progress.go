// Package progress aggregates lifecycle events from concurrent upload tasks
// into consistent counters. All counter mutation happens in one consumer
// goroutine reacting to channel messages, so producers never share mutable
// state and no locking is needed.
package progress

// Event is a lifecycle notification from the pipeline.
type Event int

const (
	// LineRead signals one source line consumed.
	LineRead Event = iota
	// BatchSubmitted signals a batch handed to an upload task.
	BatchSubmitted
	// BatchStarted signals an upload task acquired its permit and began
	// transmitting.
	BatchStarted
	// BatchCompleted signals a batch indexed successfully.
	BatchCompleted
	// Finished signals that every task has resolved; it terminates the
	// aggregation loop.
	Finished
)

// Snapshot is a consistent view of the four pipeline counters.
type Snapshot struct {
	LinesRead        int64
	BatchesSubmitted int64
	RequestsInFlight int64
	BatchesCompleted int64
}

// Listener receives counter updates from the aggregation loop. Update is
// called after every event, Done exactly once after Finished. Both are
// invoked from the single consumer goroutine.
type Listener interface {
	Update(Snapshot)
	Done(Snapshot)
}

// Aggregator is the single consumer of pipeline events. Emit may be called
// from any number of goroutines; Run must be running for Emit not to block
// indefinitely.
type Aggregator struct {
	events   chan Event
	listener Listener
	done     chan struct{}
	final    Snapshot
}

// NewAggregator creates an Aggregator. listener may be nil.
func NewAggregator(listener Listener) *Aggregator {
	return &Aggregator{
		events:   make(chan Event, 1024),
		listener: listener,
		done:     make(chan struct{}),
	}
}

// Emit queues one event for the aggregation loop.
func (a *Aggregator) Emit(ev Event) {
	a.events <- ev
}

// Run consumes events until Finished, maintaining the counters and notifying
// the listener. It is meant to run in its own goroutine.
func (a *Aggregator) Run() {
	var snap Snapshot
	for ev := range a.events {
		switch ev {
		case LineRead:
			snap.LinesRead++
		case BatchSubmitted:
			snap.BatchesSubmitted++
		case BatchStarted:
			snap.BatchesSubmitted--
			snap.RequestsInFlight++
		case BatchCompleted:
			snap.RequestsInFlight--
			snap.BatchesCompleted++
		case Finished:
			a.final = snap
			if a.listener != nil {
				a.listener.Done(snap)
			}
			close(a.done)
			return
		}
		if a.listener != nil {
			a.listener.Update(snap)
		}
	}
}

// Wait blocks until the aggregation loop has seen Finished and returns the
// final counters.
func (a *Aggregator) Wait() Snapshot {
	<-a.done
	return a.final
}
