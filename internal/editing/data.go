package editing

// Data is the wire and document form of a State: the editing_data payload
// sent to the backend and the "editing" block of exported project documents.
type Data struct {
	TrimStart float64   `json:"trimStart"`
	TrimEnd   *float64  `json:"trimEnd"`
	Cuts      []float64 `json:"cuts"`
	Filters   []Filter  `json:"filters"`
}

// Data returns the serializable form of s. Slices are never nil so they
// encode as [] rather than null.
func (s State) Data() Data {
	d := Data{
		TrimStart: s.trimStart,
		Cuts:      s.Cuts(),
		Filters:   s.Filters(),
	}
	if s.trimEnd != nil {
		end := *s.trimEnd
		d.TrimEnd = &end
	}
	if d.Cuts == nil {
		d.Cuts = []float64{}
	}
	if d.Filters == nil {
		d.Filters = []Filter{}
	}
	return d
}

// FromData rebuilds a State for a video of the given duration by replaying d
// through the normal transitions, so every invariant holds on the result.
func FromData(duration float64, d Data) State {
	s := NewState(duration)
	if d.TrimEnd != nil {
		s = s.SetTrim(d.TrimStart, *d.TrimEnd)
	} else if d.TrimStart > 0 {
		s = s.SetTrim(d.TrimStart, s.duration)
		s.trimEnd = nil
	}
	for _, c := range d.Cuts {
		s = s.AddCut(c)
	}
	return s.SetFilters(d.Filters)
}

// Stats are the derived metrics shown next to the timeline.
type Stats struct {
	OriginalDuration float64 `json:"originalDuration"`
	TrimmedDuration  float64 `json:"trimmedDuration"`
	FinalDuration    float64 `json:"finalDuration"`
	SegmentCount     int     `json:"segmentCount"`
	CutCount         int     `json:"cutCount"`
	FilterCount      int     `json:"filterCount"`
}

// Stats computes the derived metrics for s.
func (s State) Stats() Stats {
	return Stats{
		OriginalDuration: s.duration,
		TrimmedDuration:  s.TrimmedDuration(),
		FinalDuration:    s.EstimatedFinalDuration(),
		SegmentCount:     s.SegmentCount(),
		CutCount:         len(s.cuts),
		FilterCount:      len(s.filters),
	}
}
