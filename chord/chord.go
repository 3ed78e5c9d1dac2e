package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/harmonseq/model"
	"github.com/jsphweid/harmonseq/pitchclass"
)

func CreateChordKey(notes []uint8) string {
	sort.Slice(notes, func(i, j int) bool {
		return notes[i] < notes[j]
	})
	var res string
	for i, note := range notes {
		res += fmt.Sprintf("%v", note)
		if i < len(notes)-1 {
			res += "-"
		}
	}
	return res
}

// Classes folds the keys of c into a pitch class set.
func Classes(c model.Chord) pitchclass.Set {
	var s pitchclass.Set
	for _, n := range c.Notes {
		s = s.Add(int(n))
	}
	return s
}

type reducedEvent struct {
	clock     int
	isNoteOff bool
	note      uint8
}

func getChord(clock int, pressed map[uint8]int, formedByNoteOn bool) model.Chord {
	c := model.Chord{Clock: clock, FormedByNoteOn: formedByNoteOn}
	for note := range pressed {
		c.Notes = append(c.Notes, note)
	}
	sort.Slice(c.Notes, func(i, j int) bool {
		return c.Notes[i] < c.Notes[j]
	})
	return c
}

// GetChords returns the keys sounding after every note boundary, in clock
// order. Boundaries where nothing sounds are left out.
func GetChords(events []*model.Event) []model.Chord {
	var reducedEvents []reducedEvent
	for _, e := range events {
		n, ok := e.Note()
		if !ok || e.IsKilled() {
			continue
		}
		reducedEvents = append(reducedEvents,
			reducedEvent{clock: e.Clock, note: n.Key},
			reducedEvent{clock: e.Clock + n.Length, isNoteOff: true, note: n.Key})
	}

	// prioritize smaller clock values then note off
	sort.SliceStable(reducedEvents, func(i, j int) bool {
		if reducedEvents[i].clock != reducedEvents[j].clock {
			return reducedEvents[i].clock < reducedEvents[j].clock
		}
		return reducedEvents[i].isNoteOff && !reducedEvents[j].isNoteOff
	})

	clockToChord := make(map[int]model.Chord)
	pressed := make(map[uint8]int)
	for _, evt := range reducedEvents {
		if evt.isNoteOff {
			pressed[evt.note]--
			if pressed[evt.note] <= 0 {
				delete(pressed, evt.note)
			}
		} else {
			pressed[evt.note]++
		}
		clockToChord[evt.clock] = getChord(evt.clock, pressed, !evt.isNoteOff)
	}

	var chords []model.Chord
	for _, c := range clockToChord {
		if len(c.Notes) > 0 {
			chords = append(chords, c)
		}
	}
	sort.Slice(chords, func(i, j int) bool {
		return chords[i].Clock < chords[j].Clock
	})
	return chords
}
