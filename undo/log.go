// Package undo records put and kill operations on a sequence in groups, one
// group per user command, and replays them backwards or forwards.
package undo

import "github.com/jsphweid/harmonseq/model"

// Target is what a Log replays onto. *sequence.Sequence implements it.
type Target interface {
	Kill(e *model.Event)
	Revive(e *model.Event, rank int)
	Rank(e *model.Event) int
}

// rank is the event's position among the live events of its clock when it
// was recorded, so a revive after cleanup restores the order.
type entry struct {
	event  *model.Event
	killed bool
	rank   int
}

// Log is a ring of at most Capacity groups. Groups [0, pos) can be undone,
// groups [pos, n) can be redone. When the ring is full the oldest group is
// dropped and can no longer be undone.
type Log struct {
	target Target
	groups [][]entry
	head   int
	n      int
	pos    int
}

func New(target Target, capacity int) *Log {
	if capacity < 1 {
		capacity = 1
	}
	return &Log{target: target, groups: make([][]entry, capacity)}
}

func (l *Log) Capacity() int {
	return len(l.groups)
}

func (l *Log) slot(i int) *[]entry {
	return &l.groups[(l.head+i)%len(l.groups)]
}

// NewUndoBuffer closes the current group and opens an empty one. Redo
// history is discarded.
func (l *Log) NewUndoBuffer() {
	for i := l.pos; i < l.n; i++ {
		*l.slot(i) = nil
	}
	l.n = l.pos
	if l.n == len(l.groups) {
		*l.slot(0) = nil
		l.head = (l.head + 1) % len(l.groups)
		l.n--
		l.pos--
	}
	l.n++
	l.pos++
}

func (l *Log) RecordPut(e *model.Event) {
	l.record(e, false)
}

func (l *Log) RecordKill(e *model.Event) {
	l.record(e, true)
}

func (l *Log) record(e *model.Event, killed bool) {
	if l.pos == 0 || l.pos < l.n {
		l.NewUndoBuffer()
	}
	g := l.slot(l.pos - 1)
	*g = append(*g, entry{event: e, killed: killed, rank: l.target.Rank(e)})
}

func (l *Log) CanUndo() bool { return l.pos > 0 }
func (l *Log) CanRedo() bool { return l.pos < l.n }

// Undo reverts the most recent group. It returns false and does nothing when
// there is no history left.
func (l *Log) Undo() bool {
	if !l.CanUndo() {
		return false
	}
	g := *l.slot(l.pos - 1)
	for i := len(g) - 1; i >= 0; i-- {
		if g[i].killed {
			l.target.Revive(g[i].event, g[i].rank)
		} else {
			l.target.Kill(g[i].event)
		}
	}
	l.pos--
	return true
}

// Redo re-applies the group after the last undone one.
func (l *Log) Redo() bool {
	if !l.CanRedo() {
		return false
	}
	for _, en := range *l.slot(l.pos) {
		if en.killed {
			l.target.Kill(en.event)
		} else {
			l.target.Revive(en.event, en.rank)
		}
	}
	l.pos++
	return true
}

// Reset forgets all history.
func (l *Log) Reset() {
	for i := range l.groups {
		l.groups[i] = nil
	}
	l.head, l.n, l.pos = 0, 0, 0
}
