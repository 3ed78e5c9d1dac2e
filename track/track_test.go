package track

import (
	"testing"

	"github.com/jsphweid/harmonseq/model"
	"github.com/stretchr/testify/assert"
)

func note(clock int, key uint8) *model.Event {
	return model.NewEvent(clock, model.Note{Key: key, Velocity: 100, Length: 60})
}

func keys(events []*model.Event) []uint8 {
	var res []uint8
	for _, e := range events {
		n, _ := e.Note()
		res = append(res, n.Key)
	}
	return res
}

func TestTrackUndoRedo(t *testing.T) {
	assert := assert.New(t)
	tr := New("lead", 0, 20)

	tr.NewUndoBuffer()
	tr.Put(note(0, 60))
	tr.Put(note(120, 62))

	tr.NewUndoBuffer()
	first := tr.GreaterEqual(0)
	tr.Kill(first)
	tr.Put(note(0, 64))
	tr.Cleanup()
	assert.Equal([]uint8{64, 62}, keys(tr.Events(0, 480)))

	assert.True(tr.Undo())
	assert.Equal([]uint8{60, 62}, keys(tr.Events(0, 480)))
	assert.True(tr.Undo())
	assert.Empty(tr.Events(0, 480))
	assert.False(tr.Undo())

	assert.True(tr.Redo())
	assert.True(tr.Redo())
	assert.Equal([]uint8{64, 62}, keys(tr.Events(0, 480)))
	assert.False(tr.Redo())
}

func TestKillTwiceRecordsOnce(t *testing.T) {
	tr := New("lead", 0, 20)
	tr.NewUndoBuffer()
	e := note(0, 60)
	tr.Put(e)
	tr.NewUndoBuffer()
	tr.Kill(e)
	tr.Kill(e)
	tr.Cleanup()
	assert.Equal(t, 0, tr.Len())

	assert.True(t, tr.Undo())
	assert.Equal(t, 1, tr.Len())
	assert.False(t, e.IsKilled())
}

func TestUndoAfterCleanupKeepsEqualClockOrder(t *testing.T) {
	assert := assert.New(t)
	tr := New("lead", 0, 20)
	tr.NewUndoBuffer()
	x := note(10, 60)
	tr.Put(x)
	tr.Put(note(10, 64))
	tr.Put(note(10, 67))

	tr.NewUndoBuffer()
	tr.Kill(x)
	tr.Cleanup()
	assert.Equal([]uint8{64, 67}, keys(tr.Events(0, 480)))

	assert.True(tr.Undo())
	assert.Equal([]uint8{60, 64, 67}, keys(tr.Events(0, 480)))
	assert.True(tr.Redo())
	assert.Equal([]uint8{64, 67}, keys(tr.Events(0, 480)))
	assert.True(tr.Undo())
	assert.Equal([]uint8{60, 64, 67}, keys(tr.Events(0, 480)))
}

func TestSongUndoIsLockstep(t *testing.T) {
	assert := assert.New(t)
	s := NewSong(DefaultMeter(), 2, 20)

	s.NewUndoBuffer()
	s.Tracks[0].Put(note(0, 60))

	s.NewUndoBuffer()
	s.Tracks[1].Put(note(0, 48))

	assert.True(s.Undo())
	assert.Equal(1, s.Tracks[0].Len())
	assert.Equal(0, s.Tracks[1].Len())

	assert.True(s.Undo())
	assert.Equal(0, s.Tracks[0].Len())

	assert.True(s.Redo())
	assert.Equal(1, s.Tracks[0].Len())
	assert.Equal(0, s.Tracks[1].Len())
}

func TestMeter(t *testing.T) {
	assert := assert.New(t)
	m := Meter{TicksPerQuarter: 96, BeatsPerBar: 3}
	assert.Equal(288, m.TicksPerBar())
	assert.Equal(96, m.TicksPerBeat())
	assert.Equal(1, m.Bar(300))
	assert.Equal(576, m.BarClock(2))

	m = Meter{TicksPerQuarter: 96, BeatsPerBar: 7, BeatUnit: 8}
	assert.Equal(336, m.TicksPerBar())
	assert.Equal(48, m.TicksPerBeat())
	assert.Equal("7/8", m.String())
	assert.Equal(1, m.Bar(336))

	assert.Equal("4/4", DefaultMeter().String())
	assert.Equal(480, DefaultMeter().TicksPerBar())
}

func TestFilterEachSkipsKilledAndClampsTracks(t *testing.T) {
	assert := assert.New(t)
	s := NewSong(DefaultMeter(), 3, 20)
	s.NewUndoBuffer()
	s.Tracks[0].Put(note(0, 60))
	killed := note(10, 61)
	s.Tracks[1].Put(killed)
	s.Tracks[1].Kill(killed)
	s.Tracks[2].Put(note(20, 62))
	s.Tracks[2].Put(note(2000, 63))

	f := Filter{Song: s, FromClock: 0, ToClock: 480, FromTrack: 1, ToTrack: 9}
	var seen []uint8
	f.Each(func(tr *Track, e *model.Event) {
		n, _ := e.Note()
		seen = append(seen, n.Key)
	})
	assert.Equal([]uint8{62}, seen)
	assert.Len(f.Tracks(), 2)

	all := All(s)
	assert.Equal(0, all.FromClock)
	assert.Equal(2400, all.ToClock)
	assert.Equal(2, all.ToTrack)
}
