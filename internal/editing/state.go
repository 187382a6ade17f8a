// Package editing holds the non-destructive edit model for one loaded video:
// trim range, cut points and visual filters, plus the derived duration and
// segment metrics the UI and the exporters share.
//
// State is a value type. Every mutation is a method that returns a new State
// and never shares backing arrays with the receiver, so a State handed to an
// exporter cannot change underneath it.
package editing

import (
	"math"
	"sort"

	"github.com/videocraft/videocraft-core/internal/timecode"
)

const (
	// MinTrimSpan is the smallest retained window SetTrim will commit.
	MinTrimSpan = 0.1

	// CutTolerance is the distance under which two cut points are the same cut.
	CutTolerance = 0.1

	// CutOverhead is the material each cut is assumed to remove when
	// estimating the final duration. It is a heuristic, not frame accurate.
	CutOverhead = 0.1

	// eps absorbs float noise in tolerance comparisons (10.1-10 != 0.1).
	eps = 1e-9
)

// State is the edit parameters for one video.
type State struct {
	duration  float64
	trimStart float64
	trimEnd   *float64
	cuts      []float64
	filters   []Filter
}

// NewState returns the default state for a video of the given duration:
// no trim, no cuts, no filters.
func NewState(duration float64) State {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		duration = 0
	}
	return State{duration: duration}
}

// Duration is the source video duration the state is bound to.
func (s State) Duration() float64 { return s.duration }

// TrimStart is the first retained second.
func (s State) TrimStart() float64 { return s.trimStart }

// TrimEnd reports the last retained second and whether it was set. An unset
// end means "end of video".
func (s State) TrimEnd() (float64, bool) {
	if s.trimEnd == nil {
		return s.duration, false
	}
	return *s.trimEnd, true
}

// EffectiveTrimEnd is TrimEnd with the unset case resolved to the duration.
func (s State) EffectiveTrimEnd() float64 {
	end, _ := s.TrimEnd()
	return end
}

// Cuts returns a copy of the cut points in ascending order.
func (s State) Cuts() []float64 {
	return append([]float64(nil), s.cuts...)
}

// Filters returns a copy of the filters in display order.
func (s State) Filters() []Filter {
	return append([]Filter(nil), s.filters...)
}

// SetTrim clamps start into [0, duration-MinTrimSpan] and end into
// [start+MinTrimSpan, duration], then commits both. An inverted request is not
// swapped: the end is pushed to start+MinTrimSpan. Videos shorter than
// MinTrimSpan cannot be trimmed and the call is a no-op.
func (s State) SetTrim(start, end float64) State {
	if s.duration < MinTrimSpan {
		return s
	}

	start = timecode.Clamp(start, 0, s.duration-MinTrimSpan)
	if math.IsNaN(end) {
		end = s.duration
	}
	end = math.Min(s.duration, math.Max(end, start+MinTrimSpan))

	next := s.clone()
	next.trimStart = start
	next.trimEnd = &end
	return next
}

// ResetTrim restores the full-length range.
func (s State) ResetTrim() State {
	next := s.clone()
	next.trimStart = 0
	next.trimEnd = nil
	return next
}

// AddCut inserts a cut at t, clamped into [0, duration]. A cut already within
// CutTolerance of t absorbs the request.
func (s State) AddCut(t float64) State {
	t = timecode.Clamp(t, 0, s.duration)

	i := sort.SearchFloat64s(s.cuts, t)
	if i < len(s.cuts) && nearCut(s.cuts[i], t) {
		return s
	}
	if i > 0 && nearCut(s.cuts[i-1], t) {
		return s
	}

	next := s.clone()
	next.cuts = make([]float64, 0, len(s.cuts)+1)
	next.cuts = append(next.cuts, s.cuts[:i]...)
	next.cuts = append(next.cuts, t)
	next.cuts = append(next.cuts, s.cuts[i:]...)
	return next
}

// RemoveCut drops every cut within CutTolerance of t.
func (s State) RemoveCut(t float64) State {
	kept := make([]float64, 0, len(s.cuts))
	for _, c := range s.cuts {
		if !nearCut(c, t) {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(s.cuts) {
		return s
	}
	next := s.clone()
	next.cuts = kept
	return next
}

// ClearCuts removes all cuts.
func (s State) ClearCuts() State {
	next := s.clone()
	next.cuts = nil
	return next
}

// SetFilters replaces the filter list. Later entries with a duplicate ID are
// dropped; values are clamped per filter kind.
func (s State) SetFilters(filters []Filter) State {
	next := s.clone()
	next.filters = nil
	for _, f := range filters {
		f = f.normalize()
		if indexOfFilter(next.filters, f.ID) >= 0 {
			continue
		}
		next.filters = append(next.filters, f)
	}
	return next
}

// AddFilter appends f, or replaces the filter with the same ID in place.
func (s State) AddFilter(f Filter) State {
	f = f.normalize()
	next := s.clone()
	if i := indexOfFilter(next.filters, f.ID); i >= 0 {
		next.filters[i] = f
		return next
	}
	next.filters = append(next.filters, f)
	return next
}

// RemoveFilter drops the filter with the given ID, if any.
func (s State) RemoveFilter(id string) State {
	i := indexOfFilter(s.filters, id)
	if i < 0 {
		return s
	}
	next := s.clone()
	next.filters = append(next.filters[:i:i], next.filters[i+1:]...)
	return next
}

// TrimmedDuration is the length of the trim window, within [0, duration].
func (s State) TrimmedDuration() float64 {
	return timecode.Clamp(s.EffectiveTrimEnd()-s.trimStart, 0, s.duration)
}

// SegmentCount is the number of timeline pieces the cuts produce.
func (s State) SegmentCount() int {
	return len(s.cuts) + 1
}

// EstimatedFinalDuration subtracts CutOverhead per cut from the trimmed
// duration. Every exporter and the live UI use this one estimator. It counts
// every cut, like SegmentCount, so a cut outside the trim window still costs
// CutOverhead here while Segments ignores it.
func (s State) EstimatedFinalDuration() float64 {
	return math.Max(0, s.TrimmedDuration()-float64(len(s.cuts))*CutOverhead)
}

// Segment is a retained span of the source timeline, in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Length of the segment in seconds.
func (g Segment) Length() float64 { return g.End - g.Start }

// Segments lists the retained spans after trimming and cutting. Each cut
// removes CutOverhead centred on the cut point; cuts outside the trim window
// do not split it.
func (s State) Segments() []Segment {
	start, end := s.trimStart, s.EffectiveTrimEnd()
	if end <= start {
		return nil
	}

	half := CutOverhead / 2
	var out []Segment
	cursor := start
	for _, c := range s.cuts {
		if c <= start || c >= end {
			continue
		}
		if c-half > cursor {
			out = append(out, Segment{Start: cursor, End: c - half})
		}
		cursor = math.Max(cursor, c+half)
	}
	if end > cursor {
		out = append(out, Segment{Start: cursor, End: end})
	}
	return out
}

func (s State) clone() State {
	next := s
	next.cuts = append([]float64(nil), s.cuts...)
	next.filters = append([]Filter(nil), s.filters...)
	if s.trimEnd != nil {
		end := *s.trimEnd
		next.trimEnd = &end
	}
	return next
}

func nearCut(a, b float64) bool {
	return math.Abs(a-b) <= CutTolerance+eps
}

func indexOfFilter(filters []Filter, id string) int {
	for i, f := range filters {
		if f.ID == id {
			return i
		}
	}
	return -1
}
