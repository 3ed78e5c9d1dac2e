package track

import (
	"fmt"

	"github.com/jsphweid/harmonseq/constants"
	"github.com/jsphweid/harmonseq/model"
	"github.com/jsphweid/harmonseq/util"
)

// Meter is the song's time base. BeatUnit is the time signature
// denominator; 0 reads as 4.
type Meter struct {
	TicksPerQuarter int
	BeatsPerBar     int
	BeatUnit        int
}

func DefaultMeter() Meter {
	return Meter{TicksPerQuarter: constants.DefaultTicksPerQuarter, BeatsPerBar: 4, BeatUnit: 4}
}

func (m Meter) unit() int {
	if m.BeatUnit <= 0 {
		return 4
	}
	return m.BeatUnit
}

func (m Meter) TicksPerBeat() int {
	return m.TicksPerQuarter * 4 / m.unit()
}

func (m Meter) TicksPerBar() int {
	return m.TicksPerQuarter * 4 * m.BeatsPerBar / m.unit()
}

func (m Meter) String() string {
	return fmt.Sprintf("%d/%d", m.BeatsPerBar, m.unit())
}

func (m Meter) Bar(clock int) int {
	return clock / m.TicksPerBar()
}

func (m Meter) BarClock(bar int) int {
	return bar * m.TicksPerBar()
}

// Song is a list of tracks sharing a meter. Undo groups are opened on all
// tracks at once so that one Undo reverts one command across the song.
type Song struct {
	Meter  Meter
	Tracks []*Track
}

func NewSong(meter Meter, tracks, undoDepth int) *Song {
	s := &Song{Meter: meter}
	for i := 0; i < tracks; i++ {
		s.Tracks = append(s.Tracks, New(fmt.Sprintf("Track %d", i+1), uint8(i%16), undoDepth))
	}
	return s
}

func (s *Song) Track(i int) (*Track, bool) {
	if i < 0 || i >= len(s.Tracks) {
		return nil, false
	}
	return s.Tracks[i], true
}

func (s *Song) NewUndoBuffer() {
	for _, t := range s.Tracks {
		t.NewUndoBuffer()
	}
}

// Undo reverts the last command. It reports whether any track had history.
func (s *Song) Undo() bool {
	var changed bool
	for _, t := range s.Tracks {
		changed = t.Undo() || changed
	}
	return changed
}

func (s *Song) Redo() bool {
	var changed bool
	for _, t := range s.Tracks {
		changed = t.Redo() || changed
	}
	return changed
}

func (s *Song) ResetHistory() {
	for _, t := range s.Tracks {
		t.ResetHistory()
	}
}

func (s *Song) Cleanup() {
	for _, t := range s.Tracks {
		t.Cleanup()
	}
}

func (s *Song) LastClock() int {
	var last int
	for _, t := range s.Tracks {
		last = util.Max(last, t.LastClock())
	}
	return last
}

// Filter is a selection of tracks and a clock window [FromClock, ToClock).
type Filter struct {
	Song      *Song
	FromClock int
	ToClock   int
	FromTrack int
	ToTrack   int
}

// All selects the whole song, rounded up to full bars.
func All(s *Song) Filter {
	tpb := s.Meter.TicksPerBar()
	end := (s.LastClock()/tpb + 1) * tpb
	return Filter{Song: s, FromClock: 0, ToClock: end, FromTrack: 0, ToTrack: len(s.Tracks) - 1}
}

func (f Filter) Span() (int, int) {
	return f.FromClock, f.ToClock
}

func (f Filter) TicksPerBar() int {
	return f.Song.Meter.TicksPerBar()
}

// Tracks returns the selected tracks, clamped to the song.
func (f Filter) Tracks() []*Track {
	from := util.Max(f.FromTrack, 0)
	to := util.Min(f.ToTrack, len(f.Song.Tracks)-1)
	if from > to {
		return nil
	}
	return f.Song.Tracks[from : to+1]
}

// Each calls fn for every live event in the selection. fn must not Put or
// Cleanup the track it is given; collect first and edit afterwards.
func (f Filter) Each(fn func(t *Track, e *model.Event)) {
	for _, t := range f.Tracks() {
		it := t.Range(f.FromClock, f.ToClock)
		for e := it.Next(); e != nil; e = it.Next() {
			if !e.IsKilled() {
				fn(t, e)
			}
		}
	}
}
