package model

import "fmt"

type Kind uint8

const (
	KindNote Kind = iota
	KindControl
	KindPitchBend
	KindProgram
	KindChannelPressure
	KindKeyPressure
	KindTempo
)

var kindNames = map[Kind]string{
	KindNote:            "note",
	KindControl:         "control",
	KindPitchBend:       "pitchbend",
	KindProgram:         "program",
	KindChannelPressure: "channelpressure",
	KindKeyPressure:     "keypressure",
	KindTempo:           "tempo",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Payload is the kind-specific part of an Event. The set of payloads is
// closed: only the types in this file implement it.
type Payload interface {
	Kind() Kind
	isPayload()
}

// Note is a key press with its length in ticks.
type Note struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
	Length   int
}

type Control struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

// PitchBend value is relative to center, -8192..8191.
type PitchBend struct {
	Channel uint8
	Value   int16
}

type Program struct {
	Channel uint8
	Program uint8
}

type ChannelPressure struct {
	Channel  uint8
	Pressure uint8
}

type KeyPressure struct {
	Channel  uint8
	Key      uint8
	Pressure uint8
}

type Tempo struct {
	BPM float64
}

func (Note) Kind() Kind            { return KindNote }
func (Control) Kind() Kind         { return KindControl }
func (PitchBend) Kind() Kind       { return KindPitchBend }
func (Program) Kind() Kind         { return KindProgram }
func (ChannelPressure) Kind() Kind { return KindChannelPressure }
func (KeyPressure) Kind() Kind     { return KindKeyPressure }
func (Tempo) Kind() Kind           { return KindTempo }

func (Note) isPayload()            {}
func (Control) isPayload()         {}
func (PitchBend) isPayload()       {}
func (Program) isPayload()         {}
func (ChannelPressure) isPayload() {}
func (KeyPressure) isPayload()     {}
func (Tempo) isPayload()           {}

// Event is a time stamped record owned by exactly one sequence. Killed events
// stay in their sequence until it is cleaned up.
type Event struct {
	Clock  int
	Data   Payload
	killed bool
}

func NewEvent(clock int, data Payload) *Event {
	return &Event{Clock: clock, Data: data}
}

func (e *Event) Kind() Kind {
	return e.Data.Kind()
}

func (e *Event) IsKilled() bool { return e.killed }
func (e *Event) MarkKilled()    { e.killed = true }
func (e *Event) ClearKilled()   { e.killed = false }

// Copy returns a live duplicate of e. Payloads are values, so the copy shares
// nothing with e.
func (e *Event) Copy() *Event {
	return &Event{Clock: e.Clock, Data: e.Data}
}

func (e *Event) Note() (Note, bool) {
	n, ok := e.Data.(Note)
	return n, ok
}

func (e *Event) Control() (Control, bool) {
	c, ok := e.Data.(Control)
	return c, ok
}

func (e *Event) PitchBend() (PitchBend, bool) {
	p, ok := e.Data.(PitchBend)
	return p, ok
}

func (e *Event) Program() (Program, bool) {
	p, ok := e.Data.(Program)
	return p, ok
}

func (e *Event) ChannelPressure() (ChannelPressure, bool) {
	p, ok := e.Data.(ChannelPressure)
	return p, ok
}

func (e *Event) KeyPressure() (KeyPressure, bool) {
	p, ok := e.Data.(KeyPressure)
	return p, ok
}

func (e *Event) Tempo() (Tempo, bool) {
	t, ok := e.Data.(Tempo)
	return t, ok
}

// End is the clock where the event stops sounding. Only notes have a length.
func (e *Event) End() int {
	if n, ok := e.Note(); ok {
		return e.Clock + n.Length
	}
	return e.Clock
}

func (e *Event) String() string {
	state := ""
	if e.killed {
		state = " killed"
	}
	return fmt.Sprintf("%d %s %+v%s", e.Clock, e.Kind(), e.Data, state)
}
