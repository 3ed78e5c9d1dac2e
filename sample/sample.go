package sample

import (
	"sort"

	"github.com/jsphweid/harmonseq/midi"
	"github.com/jsphweid/harmonseq/track"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

type timedMessage struct {
	clock     int
	isNoteOff bool
	msg       []byte
}

func collect(f track.Filter, t *track.Track) []timedMessage {
	var res []timedMessage
	it := t.Range(f.FromClock, f.ToClock)
	for e := it.Next(); e != nil; e = it.Next() {
		if e.IsKilled() {
			continue
		}
		clock := e.Clock - f.FromClock
		if tempo, ok := e.Tempo(); ok {
			res = append(res, timedMessage{clock: clock, msg: smf.MetaTempo(tempo.BPM)})
			continue
		}
		on, off, length := midi.Messages(e)
		if on == nil {
			continue
		}
		res = append(res, timedMessage{clock: clock, msg: on})
		if off != nil {
			res = append(res, timedMessage{clock: clock + length, isNoteOff: true, msg: off})
		}
	}

	// prioritize smaller clock values then note off
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].clock != res[j].clock {
			return res[i].clock < res[j].clock
		}
		return res[i].isNoteOff && !res[j].isNoteOff
	})
	return res
}

// Create copies the live events of f into a new file, shifted so that
// FromClock becomes 0. Notes that start inside the window keep their full
// length.
func Create(f track.Filter) *smf.SMF {
	res := smf.NewSMF1()
	res.TimeFormat = smf.MetricTicks(f.Song.Meter.TicksPerQuarter)

	for i, t := range f.Tracks() {
		var newTrack smf.Track
		if i == 0 {
			newTrack.Add(0, MetaMeter(f.Song.Meter))
		}
		newTrack.Add(0, smf.MetaTrackSequenceName(t.Name))

		var absTicks int
		for _, tm := range collect(f, t) {
			newTrack.Add(uint32(tm.clock-absTicks), tm.msg)
			absTicks = tm.clock
		}
		newTrack.Close(0)
		res.Add(newTrack)
	}
	return res
}

// MetaMeter is the time signature message for m.
func MetaMeter(m track.Meter) smf.Message {
	unit := m.BeatUnit
	if unit <= 0 {
		unit = 4
	}
	return smf.MetaMeter(uint8(m.BeatsPerBar), uint8(unit))
}

func Write(path string, f track.Filter) error {
	return errors.Wrapf(Create(f).WriteFile(path), "writing %s", path)
}
