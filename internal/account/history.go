package account

import "time"

type Point struct {
	TS    time.Time `json:"ts"`
	Value float64   `json:"value"`
}

// Series is a bounded time series: the last capacity points are kept,
// oldest evicted first. The single writer appends with non-decreasing
// timestamps.
type Series struct {
	capacity int
	pts      []Point
}

func NewSeries(capacity int) Series {
	if capacity < 1 {
		capacity = 1
	}
	return Series{capacity: capacity}
}

func (s *Series) Append(ts time.Time, v float64) {
	s.pts = append(s.pts, Point{TS: ts, Value: v})
	if len(s.pts) > s.capacity {
		s.pts = s.pts[len(s.pts)-s.capacity:]
	}
}

func (s *Series) Len() int { return len(s.pts) }

func (s *Series) Last() (Point, bool) {
	if len(s.pts) == 0 {
		return Point{}, false
	}
	return s.pts[len(s.pts)-1], true
}

// Points returns a copy, safe to hold across mutations.
func (s *Series) Points() []Point {
	out := make([]Point, len(s.pts))
	copy(out, s.pts)
	return out
}

func (s *Series) clone() Series {
	return Series{capacity: s.capacity, pts: s.Points()}
}
