package track

import (
	"github.com/jsphweid/harmonseq/model"
	"github.com/jsphweid/harmonseq/sequence"
	"github.com/jsphweid/harmonseq/undo"
)

// Track owns the events of one part. Every Put and Kill goes through the
// undo log.
type Track struct {
	Name    string
	Channel uint8

	events *sequence.Sequence
	log    *undo.Log
}

func New(name string, channel uint8, undoDepth int) *Track {
	seq := sequence.New()
	return &Track{
		Name:    name,
		Channel: channel,
		events:  seq,
		log:     undo.New(seq, undoDepth),
	}
}

func (t *Track) Put(e *model.Event) {
	t.events.Put(e)
	t.log.RecordPut(e)
}

// Kill is a no-op for events that are already killed.
func (t *Track) Kill(e *model.Event) {
	if e.IsKilled() {
		return
	}
	t.events.Kill(e)
	t.log.RecordKill(e)
}

func (t *Track) Cleanup() {
	t.events.Cleanup()
}

func (t *Track) NewUndoBuffer() {
	t.log.NewUndoBuffer()
}

func (t *Track) Undo() bool {
	ok := t.log.Undo()
	t.events.Cleanup()
	return ok
}

func (t *Track) Redo() bool {
	ok := t.log.Redo()
	t.events.Cleanup()
	return ok
}

func (t *Track) CanUndo() bool { return t.log.CanUndo() }
func (t *Track) CanRedo() bool { return t.log.CanRedo() }

func (t *Track) Range(from, to int) *sequence.Iterator {
	return t.events.Range(from, to)
}

func (t *Track) Events(from, to int) []*model.Event {
	return t.events.Events(from, to)
}

func (t *Track) GreaterEqual(clock int) *model.Event {
	return t.events.GreaterEqual(clock)
}

func (t *Track) LastClock() int {
	return t.events.LastClock()
}

func (t *Track) Len() int {
	return t.events.Len()
}

// ResetHistory drops all undo groups, e.g. after loading a file.
func (t *Track) ResetHistory() {
	t.log.Reset()
}
