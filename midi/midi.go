package midi

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jsphweid/harmonseq/model"
	"github.com/jsphweid/harmonseq/track"
	"github.com/jsphweid/harmonseq/util"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s, e = nil, errors.Errorf("parsing midi file %s: %v", filepath, r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "reading midi file")
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, errors.Wrap(err, "parsing midi file")
	}
	return res, nil
}

// ReadSong loads a standard midi file into a song with empty undo history.
func ReadSong(filepath string, undoDepth int) (*track.Song, error) {
	s, err := ReadMidiFile(filepath)
	if err != nil {
		return nil, err
	}
	return FromSMF(s, undoDepth)
}

type noteKey struct {
	channel uint8
	key     uint8
}

type pending struct {
	clock    int
	velocity uint8
}

type parsedTrack struct {
	name    string
	channel uint8
	events  []*model.Event
	tempos  []*model.Event
}

func parseTrack(events smf.Track) parsedTrack {
	var res parsedTrack
	var clock int
	var hasChannel bool
	open := make(map[noteKey][]pending)

	for _, ev := range events {
		clock += int(ev.Delta)
		var bpm float64
		var text string
		if ev.Message.GetMetaTempo(&bpm) {
			res.tempos = append(res.tempos, model.NewEvent(clock, model.Tempo{BPM: bpm}))
			continue
		}
		if ev.Message.GetMetaTrackName(&text) {
			res.name = text
			continue
		}

		msg := gomidi.Message(ev.Message)
		var ch, key, vel, ctl, val uint8
		var rel int16
		var abs uint16
		var data model.Payload
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			k := noteKey{ch, key}
			open[k] = append(open[k], pending{clock: clock, velocity: vel})
		case msg.GetNoteEnd(&ch, &key):
			k := noteKey{ch, key}
			if len(open[k]) == 0 {
				continue
			}
			p := open[k][0]
			open[k] = open[k][1:]
			res.events = append(res.events, model.NewEvent(p.clock,
				model.Note{Channel: ch, Key: key, Velocity: p.velocity, Length: clock - p.clock}))
		case msg.GetControlChange(&ch, &ctl, &val):
			data = model.Control{Channel: ch, Controller: ctl, Value: val}
		case msg.GetPitchBend(&ch, &rel, &abs):
			data = model.PitchBend{Channel: ch, Value: rel}
		case msg.GetProgramChange(&ch, &val):
			data = model.Program{Channel: ch, Program: val}
		case msg.GetAfterTouch(&ch, &val):
			data = model.ChannelPressure{Channel: ch, Pressure: val}
		case msg.GetPolyAfterTouch(&ch, &key, &val):
			data = model.KeyPressure{Channel: ch, Key: key, Pressure: val}
		default:
			continue
		}
		if !hasChannel {
			res.channel, hasChannel = ch, true
		}
		if data != nil {
			res.events = append(res.events, model.NewEvent(clock, data))
		}
	}

	// notes still held at the end of the track last until the end
	for k, ps := range open {
		for _, p := range ps {
			res.events = append(res.events, model.NewEvent(p.clock,
				model.Note{Channel: k.channel, Key: k.key, Velocity: p.velocity, Length: clock - p.clock}))
		}
	}
	return res
}

func readMeter(s *smf.SMF) track.Meter {
	meter := track.DefaultMeter()
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		meter.TicksPerQuarter = int(mt)
	}
	for _, tr := range s.Tracks {
		for _, ev := range tr {
			var num, denom, cpt, dsqpq uint8
			if ev.Message.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq) && num > 0 && denom > 0 {
				meter.BeatsPerBar, meter.BeatUnit = int(num), int(denom)
				return meter
			}
		}
	}
	return meter
}

// FromSMF converts s into a song. Every smf track that carries channel
// messages becomes a track; tempo changes go to the first track. Note on and
// note off pairs are joined into notes with a length.
func FromSMF(s *smf.SMF, undoDepth int) (*track.Song, error) {
	if _, ok := s.TimeFormat.(smf.MetricTicks); !ok {
		return nil, errors.Errorf("unsupported time format %v", s.TimeFormat)
	}

	var parsed []parsedTrack
	var tempos []*model.Event
	for _, tr := range s.Tracks {
		p := parseTrack(tr)
		tempos = append(tempos, p.tempos...)
		if len(p.events) > 0 {
			parsed = append(parsed, p)
		}
	}

	song := track.NewSong(readMeter(s), util.Max(len(parsed), 1), undoDepth)
	for i, p := range parsed {
		t := song.Tracks[i]
		t.Channel = p.channel
		if p.name != "" {
			t.Name = p.name
		}
		for _, e := range p.events {
			t.Put(e)
		}
	}
	for _, e := range tempos {
		song.Tracks[0].Put(e)
	}
	song.ResetHistory()
	return song, nil
}

// Messages returns the midi messages that play e: a note becomes a note on and
// a note off, length ticks apart. Tempo changes have no channel message and
// yield nothing.
func Messages(e *model.Event) (on gomidi.Message, off gomidi.Message, length int) {
	switch d := e.Data.(type) {
	case model.Note:
		return gomidi.NoteOn(d.Channel, d.Key, d.Velocity), gomidi.NoteOff(d.Channel, d.Key), d.Length
	case model.Control:
		return gomidi.ControlChange(d.Channel, d.Controller, d.Value), nil, 0
	case model.PitchBend:
		return gomidi.Pitchbend(d.Channel, d.Value), nil, 0
	case model.Program:
		return gomidi.ProgramChange(d.Channel, d.Program), nil, 0
	case model.ChannelPressure:
		return gomidi.AfterTouch(d.Channel, d.Pressure), nil, 0
	case model.KeyPressure:
		return gomidi.PolyAfterTouch(d.Channel, d.Key, d.Pressure), nil, 0
	}
	return nil, nil, 0
}

// Describe is a one line dump of an event for the CLI.
func Describe(e *model.Event) string {
	on, _, _ := Messages(e)
	if on == nil {
		return e.String()
	}
	return fmt.Sprintf("%6d %s", e.Clock, on.String())
}
