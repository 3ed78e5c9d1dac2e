// Package sequence stores the events of one track ordered by clock and
// answers time range queries by binary search.
//
// Put keeps the slice sorted at all times, inserting after any events with
// the same clock so that equal clocks keep their insertion order. Killed
// events stay in place, and stay visible to queries, until Cleanup.
//
// A Sequence is not safe for concurrent use. An Iterator holds indices into
// the backing slice and must not be used across Put, Revive or Cleanup.
package sequence

import (
	"github.com/jsphweid/harmonseq/model"
	"golang.org/x/exp/slices"
)

type Sequence struct {
	events []*model.Event
}

func New() *Sequence {
	return &Sequence{}
}

func (s *Sequence) Len() int {
	return len(s.events)
}

func (s *Sequence) At(i int) *model.Event {
	return s.events[i]
}

// Put takes ownership of e and stores it live.
func (s *Sequence) Put(e *model.Event) {
	e.ClearKilled()
	i := s.upperBound(e.Clock)
	s.events = slices.Insert(s.events, i, e)
}

// Kill flags e as deleted. Killing twice is the same as killing once.
func (s *Sequence) Kill(e *model.Event) {
	e.MarkKilled()
}

// Rank counts the live events that share e's clock and come before it. If e
// is not stored it counts all of them.
func (s *Sequence) Rank(e *model.Event) int {
	rank := 0
	for i := s.lowerBound(e.Clock); i < len(s.events) && s.events[i].Clock == e.Clock; i++ {
		if s.events[i] == e {
			break
		}
		if !s.events[i].IsKilled() {
			rank++
		}
	}
	return rank
}

// Revive undoes Kill. If Cleanup already dropped e it is put back right
// after the first rank live events of its clock, which is where it stood
// when rank was taken.
func (s *Sequence) Revive(e *model.Event, rank int) {
	if s.Contains(e) {
		e.ClearKilled()
		return
	}
	e.ClearKilled()
	i := s.lowerBound(e.Clock)
	for live := 0; live < rank && i < len(s.events) && s.events[i].Clock == e.Clock; i++ {
		if !s.events[i].IsKilled() {
			live++
		}
	}
	s.events = slices.Insert(s.events, i, e)
}

// Contains reports whether e itself, not an equal event, is stored.
func (s *Sequence) Contains(e *model.Event) bool {
	for i := s.lowerBound(e.Clock); i < len(s.events) && s.events[i].Clock == e.Clock; i++ {
		if s.events[i] == e {
			return true
		}
	}
	return false
}

// Cleanup physically removes killed events.
func (s *Sequence) Cleanup() {
	n := 0
	for _, e := range s.events {
		if !e.IsKilled() {
			s.events[n] = e
			n++
		}
	}
	for i := n; i < len(s.events); i++ {
		s.events[i] = nil
	}
	s.events = s.events[:n]
}

// LastClock returns the clock of the last event, or 0 for an empty sequence.
func (s *Sequence) LastClock() int {
	if len(s.events) == 0 {
		return 0
	}
	return s.events[len(s.events)-1].Clock
}

// GreaterEqual returns the first event with a clock >= clock, or nil.
func (s *Sequence) GreaterEqual(clock int) *model.Event {
	i := s.lowerBound(clock)
	if i < len(s.events) {
		return s.events[i]
	}
	return nil
}

// Range returns an iterator over the events with from <= clock < to.
func (s *Sequence) Range(from, to int) *Iterator {
	lo := s.lowerBound(from)
	hi := s.lowerBound(to)
	if hi < lo {
		hi = lo
	}
	return &Iterator{events: s.events, pos: lo, end: hi}
}

// Events returns the window [from, to) as a slice.
func (s *Sequence) Events(from, to int) []*model.Event {
	it := s.Range(from, to)
	res := make([]*model.Event, 0, it.Remaining())
	for e := it.Next(); e != nil; e = it.Next() {
		res = append(res, e)
	}
	return res
}

func (s *Sequence) lowerBound(clock int) int {
	lo, hi := 0, len(s.events)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.events[mid].Clock < clock {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func (s *Sequence) upperBound(clock int) int {
	lo, hi := 0, len(s.events)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.events[mid].Clock <= clock {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Iterator yields the events of a window in clock order.
type Iterator struct {
	events []*model.Event
	pos    int
	end    int
}

// Next returns the next event, or nil once the window is exhausted.
func (it *Iterator) Next() *model.Event {
	if it.pos >= it.end {
		return nil
	}
	e := it.events[it.pos]
	it.pos++
	return e
}

func (it *Iterator) Remaining() int {
	return it.end - it.pos
}
