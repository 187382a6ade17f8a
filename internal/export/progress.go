package export

import "sync"

// Progress checkpoints shared by every strategy.
const (
	StageStarted   = 0
	StageResolved  = 10
	StageRequested = 20
	StageResponded = 60
	StageSaving    = 80
	StageDone      = 100
)

// Progress is one non-terminal update.
type Progress struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
}

// Observer receives the updates of one export in order. Done is called
// exactly once and nothing follows it.
type Observer interface {
	Progress(Progress)
	Done(Result)
}

// Event is either a progress update or the terminal result.
type Event struct {
	Progress *Progress `json:"progress,omitempty"`
	Result   *Result   `json:"result,omitempty"`
}

// Terminal reports whether e carries the result.
func (e Event) Terminal() bool { return e.Result != nil }

// ChannelObserver turns the callbacks into a channel of events. The channel
// is closed right after the terminal event. The reader must drain it or the
// export blocks once the buffer fills.
type ChannelObserver struct {
	ch   chan Event
	once sync.Once
}

func NewChannelObserver(buffer int) *ChannelObserver {
	return &ChannelObserver{ch: make(chan Event, buffer)}
}

// Events returns the receive side of the stream.
func (o *ChannelObserver) Events() <-chan Event {
	return o.ch
}

func (o *ChannelObserver) Progress(p Progress) {
	o.ch <- Event{Progress: &p}
}

func (o *ChannelObserver) Done(r Result) {
	o.once.Do(func() {
		o.ch <- Event{Result: &r}
		close(o.ch)
	})
}

// Discard ignores every update.
var Discard Observer = discard{}

type discard struct{}

func (discard) Progress(Progress) {}
func (discard) Done(Result)       {}

// Fanout delivers every update to each observer in turn.
type Fanout []Observer

func (f Fanout) Progress(p Progress) {
	for _, o := range f {
		o.Progress(p)
	}
}

func (f Fanout) Done(r Result) {
	for _, o := range f {
		o.Done(r)
	}
}

// monotonic clamps percentages into [0,100], drops anything that would move
// backwards and swallows everything after the terminal event.
type monotonic struct {
	next Observer
	id   string
	kind Kind
	last int
	done bool
}

func newMonotonic(next Observer, id string, kind Kind) *monotonic {
	if next == nil {
		next = Discard
	}
	return &monotonic{next: next, id: id, kind: kind, last: -1}
}

func (m *monotonic) report(percent int, stage string) {
	if m.done {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent <= m.last {
		return
	}
	m.last = percent
	m.next.Progress(Progress{ID: m.id, Kind: m.kind, Percent: percent, Stage: stage})
}

func (m *monotonic) finish(r Result) {
	if m.done {
		return
	}
	m.done = true
	m.next.Done(r)
}
