package model

type Notes = []uint8

// Chord is the set of keys sounding from Clock until the next note boundary.
type Chord struct {
	Clock int
	Notes Notes

	// NOTE: true when the chord started with a key press rather than a release
	FormedByNoteOn bool
}
