package domain

import "time"

// TimeWindow is a daily active interval over a circular 24-hour domain. It is
// normalized at construction into one of two variants holding an ordered
// boundary pair (first <= second):
//
//   - contiguous: active inside [begin, end], stored as (begin, end)
//   - split: wraps midnight, active when t <= end or t >= begin, stored
//     pre-swapped as (end, begin)
//
// The pre-swap lets Contains and NextTransition share one three-branch
// routine instead of duplicating boundary arithmetic per variant.
type TimeWindow struct {
	first  TimeOfDay
	second TimeOfDay
	split  bool
}

// NewTimeWindow never fails: begin < end yields a contiguous window, anything
// else (including begin == end) a split one.
func NewTimeWindow(begin, end TimeOfDay) TimeWindow {
	if begin < end {
		return TimeWindow{first: begin, second: end, split: false}
	}
	return TimeWindow{first: end, second: begin, split: true}
}

// Contains reports whether t falls inside the active region. Boundaries are
// inclusive on both ends.
func (w TimeWindow) Contains(t TimeOfDay) bool {
	if w.split {
		return t <= w.first || t >= w.second
	}
	return w.first <= t && t <= w.second
}

// NextTransition returns the strictly positive duration until the window next
// changes state. At an exact boundary it returns the distance to the
// following boundary, not zero.
func (w TimeWindow) NextTransition(t TimeOfDay) time.Duration {
	var secs TimeOfDay
	switch {
	case t < w.first:
		secs = w.first - t
	case t < w.second:
		secs = w.second - t
	default:
		secs = secondsPerDay - (t - w.first)
	}
	return time.Duration(secs) * time.Second
}
