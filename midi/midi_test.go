package midi

import (
	"testing"

	"github.com/jsphweid/harmonseq/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestFromSMFJoinsNotes(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName("Piano"))
	tr.Add(0, gomidi.NoteOn(1, 60, 100))
	tr.Add(48, gomidi.NoteOff(1, 60))
	tr.Add(0, gomidi.ControlChange(1, 7, 90))
	tr.Add(48, gomidi.NoteOn(1, 64, 80))
	tr.Close(96)

	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(96)
	require.NoError(t, s.Add(tr))

	song, err := FromSMF(s, 20)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(96, song.Meter.TicksPerQuarter)
	assert.Equal(4, song.Meter.BeatsPerBar)
	require.Len(t, song.Tracks, 1)

	tk := song.Tracks[0]
	assert.Equal("Piano", tk.Name)
	assert.Equal(uint8(1), tk.Channel)
	assert.False(tk.CanUndo(), "loading leaves no history")

	events := tk.Events(0, 1000)
	require.Len(t, events, 3)
	assert.Equal(model.Note{Channel: 1, Key: 60, Velocity: 100, Length: 48}, events[0].Data)
	assert.Equal(model.Control{Channel: 1, Controller: 7, Value: 90}, events[1].Data)
	assert.Equal(48, events[1].Clock)
	// held until the end of the track
	assert.Equal(model.Note{Channel: 1, Key: 64, Velocity: 80, Length: 96}, events[2].Data)
}

func TestFromSMFKeepsOddMeter(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaMeter(7, 8))
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(96, gomidi.NoteOff(0, 60))
	tr.Close(0)

	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(96)
	require.NoError(t, s.Add(tr))

	song, err := FromSMF(s, 20)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(7, song.Meter.BeatsPerBar)
	assert.Equal(8, song.Meter.BeatUnit)
	assert.Equal(336, song.Meter.TicksPerBar())
}

func TestMessages(t *testing.T) {
	on, off, length := Messages(model.NewEvent(0, model.Note{Channel: 2, Key: 62, Velocity: 70, Length: 30}))

	var ch, key, vel uint8
	assert := assert.New(t)
	assert.True(on.GetNoteStart(&ch, &key, &vel))
	assert.Equal([]uint8{2, 62, 70}, []uint8{ch, key, vel})
	assert.True(off.GetNoteEnd(&ch, &key))
	assert.Equal(30, length)

	on, off, _ = Messages(model.NewEvent(0, model.PitchBend{Channel: 0, Value: -200}))
	var rel int16
	var abs uint16
	assert.True(on.GetPitchBend(&ch, &rel, &abs))
	assert.Equal(int16(-200), rel)
	assert.Nil(off)

	on, _, _ = Messages(model.NewEvent(0, model.Tempo{BPM: 90}))
	assert.Nil(on)
}
