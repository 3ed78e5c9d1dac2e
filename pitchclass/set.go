// Package pitchclass implements sets of the twelve pitch classes as a 12-bit
// mask. A Set is a plain value: every operation returns a new Set and the
// receiver is never modified.
package pitchclass

import (
	"errors"
	"math/bits"
	"strconv"
	"strings"
)

const mask = 0xFFF

// ErrEmptySet is returned by searches that need at least one member.
var ErrEmptySet = errors.New("pitchclass: set is empty")

// Set holds one bit per pitch class, bit 0 being C.
type Set uint16

const (
	Empty     Set = 0
	Chromatic Set = mask
)

var names = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Of returns the set containing the pitch classes of keys.
func Of(keys ...int) Set {
	var s Set
	for _, k := range keys {
		s = s.Add(k)
	}
	return s
}

// Class maps any key, negative ones included, onto 0..11.
func Class(key int) int {
	return ((key % 12) + 12) % 12
}

// Name returns the note name of key's pitch class.
func Name(key int) string {
	return names[Class(key)]
}

// Parse returns the pitch class of a note name such as "C", "F#" or "Bb".
func Parse(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	base := strings.ToUpper(name[:1])
	pc := -1
	for i, n := range names {
		if n == base {
			pc = i
		}
	}
	if pc < 0 {
		return 0, false
	}
	for _, r := range name[1:] {
		switch r {
		case '#':
			pc++
		case 'b':
			pc--
		default:
			return 0, false
		}
	}
	return Class(pc), true
}

func (s Set) Contains(key int) bool {
	return s&(1<<Class(key)) != 0
}

func (s Set) Add(key int) Set {
	return s | 1<<Class(key)
}

func (s Set) Remove(key int) Set {
	return s &^ (1 << Class(key))
}

func (s Set) Union(o Set) Set               { return (s | o) & mask }
func (s Set) Intersect(o Set) Set           { return s & o & mask }
func (s Set) Difference(o Set) Set          { return s &^ o & mask }
func (s Set) SymmetricDifference(o Set) Set { return (s ^ o) & mask }

// Count returns the number of pitch classes in s.
func (s Set) Count() int {
	return bits.OnesCount16(uint16(s & mask))
}

func (s Set) IsEmpty() bool {
	return s&mask == 0
}

// Iterate returns the smallest key k >= fromKey whose pitch class is in s.
// Walking chord tones upward is done by feeding back k+1.
func (s Set) Iterate(fromKey int) (int, error) {
	if s.IsEmpty() {
		return 0, ErrEmptySet
	}
	key := fromKey
	for !s.Contains(key) {
		key++
	}
	return key, nil
}

// Fit returns the member key nearest to key. Offsets are probed in the order
// 0, +1, -1, +2, -2, ... so an upward candidate wins over an equally distant
// downward one. Harmonization results depend on this order.
func (s Set) Fit(key int) (int, error) {
	if s.IsEmpty() {
		return 0, ErrEmptySet
	}
	offs, sign := 0, 1
	for !s.Contains(key + offs) {
		offs = -offs
		if sign > 0 {
			offs++
		}
		sign = -sign
	}
	return key + offs, nil
}

// Rotate shifts every member up by semitones, wrapping around the octave.
func (s Set) Rotate(semitones int) Set {
	n := Class(semitones)
	v := uint16(s & mask)
	return Set((v<<n | v>>(12-n)) & mask)
}

// Keys lists the member pitch classes in ascending order.
func (s Set) Keys() []int {
	var keys []int
	for pc := 0; pc < 12; pc++ {
		if s.Contains(pc) {
			keys = append(keys, pc)
		}
	}
	return keys
}

// Key is the dash-joined pitch class list, e.g. "0-4-7".
func (s Set) Key() string {
	var b strings.Builder
	for i, pc := range s.Keys() {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.Itoa(pc))
	}
	return b.String()
}

func (s Set) String() string {
	keys := s.Keys()
	out := make([]string, len(keys))
	for i, pc := range keys {
		out[i] = names[pc]
	}
	return "{" + strings.Join(out, " ") + "}"
}
