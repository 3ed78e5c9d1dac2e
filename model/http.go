package model

type ErrorResponse struct {
	Error string `json:"detail"`
}

type SessionResponse struct {
	Id     string `json:"id"`
	Tracks int    `json:"tracks"`
}

// EventBody is the wire form of an Event. Fields that do not apply to Kind
// are left zero.
type EventBody struct {
	Clock      int     `json:"clock"`
	Kind       string  `json:"kind"`
	Channel    uint8   `json:"channel,omitempty"`
	Key        uint8   `json:"key,omitempty"`
	Velocity   uint8   `json:"velocity,omitempty"`
	Length     int     `json:"length,omitempty"`
	Controller uint8   `json:"controller,omitempty"`
	Value      int     `json:"value,omitempty"`
	BPM        float64 `json:"bpm,omitempty"`
	Killed     bool    `json:"killed,omitempty"`
}

// SelectionBody picks a window of the song. A zero ToClock selects up to the
// end of the song and a missing ToTrack selects up to the last track.
type SelectionBody struct {
	FromClock int  `json:"from_clock"`
	ToClock   int  `json:"to_clock"`
	FromTrack int  `json:"from_track"`
	ToTrack   *int `json:"to_track,omitempty"`
	Eighths   int  `json:"eighths"`
}

type TransposeRequestBody struct {
	SelectionBody
	Chords      []string `json:"chords,omitempty"`
	Progression string   `json:"progression,omitempty"`
}

type ContextBody struct {
	Id    string  `json:"id"`
	Name  string  `json:"name"`
	Chord []int   `json:"chord"`
	Scale []int   `json:"scale"`
	Usage []int64 `json:"usage,omitempty"`
}

type AnalysisResponse struct {
	Steps    int           `json:"steps"`
	Contexts []ContextBody `json:"contexts"`
}

type TransposeResponse struct {
	Steps   int `json:"steps"`
	Changed int `json:"changed"`
}

type EventsResponse struct {
	Events []EventBody `json:"events"`
}

type EraseResponse struct {
	Killed int `json:"killed"`
}

type UndoResponse struct {
	Ok bool `json:"ok"`
}

type Progression struct {
	Name   string   `json:"name"`
	Chords []string `json:"chords"`
}
