package model

import "fmt"

func NewEventBody(e *Event) EventBody {
	b := EventBody{Clock: e.Clock, Kind: e.Kind().String(), Killed: e.IsKilled()}
	switch d := e.Data.(type) {
	case Note:
		b.Channel, b.Key, b.Velocity, b.Length = d.Channel, d.Key, d.Velocity, d.Length
	case Control:
		b.Channel, b.Controller, b.Value = d.Channel, d.Controller, int(d.Value)
	case PitchBend:
		b.Channel, b.Value = d.Channel, int(d.Value)
	case Program:
		b.Channel, b.Value = d.Channel, int(d.Program)
	case ChannelPressure:
		b.Channel, b.Value = d.Channel, int(d.Pressure)
	case KeyPressure:
		b.Channel, b.Key, b.Value = d.Channel, d.Key, int(d.Pressure)
	case Tempo:
		b.BPM = d.BPM
	}
	return b
}

// Event builds a live event from the wire form.
func (b EventBody) Event() (*Event, error) {
	kind, ok := ParseKind(b.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown event kind %q", b.Kind)
	}
	if b.Clock < 0 {
		return nil, fmt.Errorf("negative clock %d", b.Clock)
	}
	var data Payload
	switch kind {
	case KindNote:
		if b.Length < 0 {
			return nil, fmt.Errorf("negative note length %d", b.Length)
		}
		data = Note{Channel: b.Channel, Key: b.Key, Velocity: b.Velocity, Length: b.Length}
	case KindControl:
		data = Control{Channel: b.Channel, Controller: b.Controller, Value: uint8(b.Value)}
	case KindPitchBend:
		data = PitchBend{Channel: b.Channel, Value: int16(b.Value)}
	case KindProgram:
		data = Program{Channel: b.Channel, Program: uint8(b.Value)}
	case KindChannelPressure:
		data = ChannelPressure{Channel: b.Channel, Pressure: uint8(b.Value)}
	case KindKeyPressure:
		data = KeyPressure{Channel: b.Channel, Key: b.Key, Pressure: uint8(b.Value)}
	case KindTempo:
		data = Tempo{BPM: b.BPM}
	}
	return NewEvent(b.Clock, data), nil
}
