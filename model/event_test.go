package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessorsMatchOnlyTheirKind(t *testing.T) {
	assert := assert.New(t)
	e := NewEvent(10, Note{Key: 60, Velocity: 100, Length: 48})

	n, ok := e.Note()
	assert.True(ok)
	assert.Equal(uint8(60), n.Key)
	_, ok = e.Control()
	assert.False(ok)
	assert.Equal(KindNote, e.Kind())
	assert.Equal(58, e.End())

	c := NewEvent(10, Control{Controller: 7, Value: 90})
	_, ok = c.Note()
	assert.False(ok)
	assert.Equal(10, c.End())
}

func TestCopyIsLiveAndIndependent(t *testing.T) {
	assert := assert.New(t)
	e := NewEvent(5, Note{Key: 60, Length: 10})
	e.MarkKilled()
	c := e.Copy()
	assert.False(c.IsKilled())
	c.Clock = 7
	c.Data = Note{Key: 62, Length: 10}
	n, _ := e.Note()
	assert.Equal(uint8(60), n.Key)
	assert.Equal(5, e.Clock)
}

func TestEventBody(t *testing.T) {
	cases := []*Event{
		NewEvent(0, Note{Channel: 1, Key: 64, Velocity: 90, Length: 120}),
		NewEvent(3, Control{Channel: 2, Controller: 7, Value: 100}),
		NewEvent(4, PitchBend{Value: -200}),
		NewEvent(5, Program{Channel: 9, Program: 33}),
		NewEvent(6, KeyPressure{Key: 61, Pressure: 40}),
		NewEvent(7, Tempo{BPM: 96}),
	}
	for _, e := range cases {
		t.Run(e.Kind().String(), func(t *testing.T) {
			got, err := NewEventBody(e).Event()
			assert.NoError(t, err)
			assert.Equal(t, e, got)
		})
	}
}

func TestEventBodyRejectsBadInput(t *testing.T) {
	_, err := EventBody{Kind: "sysex"}.Event()
	assert.Error(t, err)
	_, err = EventBody{Kind: "note", Clock: -1}.Event()
	assert.Error(t, err)
}
