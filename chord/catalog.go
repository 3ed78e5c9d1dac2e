package chord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jsphweid/harmonseq/pitchclass"
)

var ErrUnknownContext = errors.New("unknown chord context")

type ScaleType int

const (
	Major ScaleType = iota
	HarmonicMinor
	MelodicMinor
)

var ScaleTypes = []ScaleType{Major, HarmonicMinor, MelodicMinor}

var scaleSteps = map[ScaleType][7]int{
	Major:         {0, 2, 4, 5, 7, 9, 11},
	HarmonicMinor: {0, 2, 3, 5, 7, 8, 11},
	MelodicMinor:  {0, 2, 3, 5, 7, 9, 11},
}

var scaleNames = map[ScaleType]string{
	Major:         "major",
	HarmonicMinor: "harmonic-minor",
	MelodicMinor:  "melodic-minor",
}

func (t ScaleType) String() string {
	return scaleNames[t]
}

// chord qualities keyed by the chord rotated onto C
var qualities = map[pitchclass.Set]string{
	pitchclass.Of(0, 4, 7, 11): "maj7",
	pitchclass.Of(0, 4, 7, 10): "7",
	pitchclass.Of(0, 3, 7, 10): "m7",
	pitchclass.Of(0, 3, 6, 10): "m7b5",
	pitchclass.Of(0, 3, 6, 9):  "dim7",
	pitchclass.Of(0, 3, 7, 11): "mMaj7",
	pitchclass.Of(0, 4, 8, 11): "maj7#5",
}

var numerals = [7]string{"I", "II", "III", "IV", "V", "VI", "VII"}

// Context is a chord in a scale: the seventh chord built in thirds on Degree
// of the Scale type rooted at Key.
type Context struct {
	Key    int
	Type   ScaleType
	Degree int
}

func (c Context) Scale() pitchclass.Set {
	var s pitchclass.Set
	for _, step := range scaleSteps[c.Type] {
		s = s.Add(c.Key + step)
	}
	return s
}

func (c Context) Chord() pitchclass.Set {
	steps := scaleSteps[c.Type]
	var s pitchclass.Set
	for i := 0; i < 4; i++ {
		s = s.Add(c.Key + steps[(c.Degree+2*i)%7])
	}
	return s
}

func (c Context) ChordRoot() int {
	return pitchclass.Class(c.Key + scaleSteps[c.Type][c.Degree%7])
}

// Name is the chord symbol, e.g. "Dm7".
func (c Context) Name() string {
	root := c.ChordRoot()
	q, ok := qualities[c.Chord().Rotate(-root)]
	if !ok {
		q = "(" + c.Chord().Rotate(-root).Key() + ")"
	}
	return pitchclass.Name(root) + q
}

// ID identifies the context uniquely, e.g. "C:major:2".
func (c Context) ID() string {
	return fmt.Sprintf("%s:%s:%d", pitchclass.Name(c.Key), c.Type, c.Degree+1)
}

func (c Context) String() string {
	return fmt.Sprintf("%s (%s %s %s)", c.Name(), pitchclass.Name(c.Key), c.Type, numerals[c.Degree%7])
}

var catalog = buildCatalog()

func buildCatalog() []Context {
	var res []Context
	for key := 0; key < 12; key++ {
		for _, t := range ScaleTypes {
			for degree := 0; degree < 7; degree++ {
				res = append(res, Context{Key: key, Type: t, Degree: degree})
			}
		}
	}
	return res
}

// Catalog returns every context, ordered by key, scale type and degree.
func Catalog() []Context {
	res := make([]Context, len(catalog))
	copy(res, catalog)
	return res
}

func parseID(id string) (Context, bool) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 {
		return Context{}, false
	}
	key, ok := pitchclass.Parse(parts[0])
	if !ok {
		return Context{}, false
	}
	degree, err := strconv.Atoi(parts[2])
	if err != nil || degree < 1 || degree > 7 {
		return Context{}, false
	}
	for t, name := range scaleNames {
		if name == parts[1] {
			return Context{Key: key, Type: t, Degree: degree - 1}, true
		}
	}
	return Context{}, false
}

func splitSymbol(name string) (int, string, bool) {
	i := 1
	for i < len(name) && (name[i] == '#' || name[i] == 'b') {
		i++
	}
	root, ok := pitchclass.Parse(name[:i])
	return root, name[i:], ok
}

// Lookup finds a context by ID or, failing that, by chord symbol. Symbols
// resolve to major scale contexts before minor ones, then by key. Flats are
// accepted in symbols.
func Lookup(name string) (Context, error) {
	if c, ok := parseID(name); ok {
		return c, nil
	}
	if name == "" {
		return Context{}, ErrUnknownContext
	}
	root, quality, ok := splitSymbol(name)
	if !ok {
		return Context{}, ErrUnknownContext
	}
	for _, t := range ScaleTypes {
		for _, c := range catalog {
			if c.Type != t || c.ChordRoot() != root {
				continue
			}
			if q, ok := qualities[c.Chord().Rotate(-root)]; ok && q == quality {
				return c, nil
			}
		}
	}
	return Context{}, ErrUnknownContext
}

// LookupAll resolves a progression of chord symbols or IDs.
func LookupAll(names []string) ([]Context, error) {
	res := make([]Context, 0, len(names))
	for _, n := range names {
		c, err := Lookup(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, n)
		}
		res = append(res, c)
	}
	return res, nil
}
