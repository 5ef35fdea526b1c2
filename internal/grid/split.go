package grid

// Span is the part of a frequency range that falls in one bin.
type Span struct {
	Bin    int
	Lo, Hi float64
	// First marks the span containing the range start, Last the span
	// containing its end.
	First, Last bool
}

// Split clips [lo, hi] to the axis and cuts it at every interior edge.
// Spans are returned in increasing frequency and never have zero width;
// concatenated they cover the clipped range exactly. The start belongs to
// the bin Index(lo) and the end to the last non-empty span, so a range
// ending exactly on an edge does not open the next bin.
func (a Axis) Split(lo, hi float64) []Span {
	if !(hi > lo) || hi <= a.Lo() || lo >= a.Hi() {
		return nil
	}

	start := lo
	if start < a.Lo() {
		start = a.Lo()
	}
	end := hi
	if end > a.Hi() {
		end = a.Hi()
	}

	first := a.Index(start)
	var spans []Span
	for j := first; j < a.Len() && a.Edges[j] < end; j++ {
		s := Span{Bin: j, Lo: a.Edges[j], Hi: a.Edges[j+1]}
		if s.Lo < start {
			s.Lo = start
		}
		if s.Hi > end {
			s.Hi = end
		}
		if s.Hi <= s.Lo {
			continue
		}
		spans = append(spans, s)
	}

	if len(spans) == 0 {
		return nil
	}
	spans[0].First = start == lo
	spans[len(spans)-1].Last = end == hi
	return spans
}
