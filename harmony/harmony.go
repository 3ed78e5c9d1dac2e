// Package harmony fits a melody onto a chord progression.
//
// The selected window is cut into equal steps. Analyze measures, per step,
// how long each pitch class sounds and picks the catalog context that leaves
// the least sounding time outside its chord and scale. Transpose maps the
// pitch classes of each step onto the step's target context and rewrites the
// notes through the owning tracks, so the change is undoable.
package harmony

import (
	"errors"

	"github.com/jsphweid/harmonseq/chord"
	"github.com/jsphweid/harmonseq/constants"
	"github.com/jsphweid/harmonseq/model"
	"github.com/jsphweid/harmonseq/pitchclass"
	"github.com/jsphweid/harmonseq/track"
	"github.com/jsphweid/harmonseq/util"
)

var (
	ErrTooManySteps = errors.New("harmony: step count exceeds sequence capacity")
	ErrNoSequence   = errors.New("harmony: target sequence is shorter than the step count")
	ErrEmptyRange   = errors.New("harmony: empty range")
)

// Source is a selection of events. track.Filter implements it.
type Source interface {
	Span() (from, to int)
	TicksPerBar() int
	Each(fn func(t *track.Track, e *model.Event))
}

type Analyzer struct {
	Catalog     []chord.Context
	Sequence    []chord.Context
	MaxSequence int

	from  int
	span  int
	steps int
	count [][12]int64
	delta [][12]int
}

func New() *Analyzer {
	return &Analyzer{
		Catalog:     chord.Catalog(),
		MaxSequence: constants.MaxSequence,
	}
}

func (a *Analyzer) Steps() int {
	return a.steps
}

// Count returns how many ticks each pitch class sounded during step.
func (a *Analyzer) Count(step int) [12]int64 {
	return a.count[step]
}

// Delta returns the semitone offset chosen for each pitch class of step.
func (a *Analyzer) Delta(step int) [12]int {
	return a.delta[step]
}

// Bounds returns the clock window [start, end) of step.
func (a *Analyzer) Bounds(step int) (int, int) {
	return a.from + step*a.span/a.steps, a.from + (step+1)*a.span/a.steps
}

// init partitions src into steps. With eighths > 0 every step is that many
// eighth notes long and the window is rounded up to whole bars; with
// eighths == 0 the window is split into len(a.Sequence) steps.
func (a *Analyzer) init(src Source, eighths int) error {
	from, to := src.Span()
	if to <= from {
		return ErrEmptyRange
	}
	var steps, span int
	if eighths > 0 {
		tpb := src.TicksPerBar()
		if tpb <= 0 {
			return ErrEmptyRange
		}
		bars := (to - from + tpb - 1) / tpb
		steps = util.Max(bars*8/eighths, 1)
		span = steps * tpb * eighths / 8
	} else {
		steps = len(a.Sequence)
		span = to - from
		if steps == 0 {
			return ErrNoSequence
		}
	}
	if steps > a.MaxSequence {
		return ErrTooManySteps
	}
	if span < steps {
		return ErrEmptyRange
	}
	a.from, a.span, a.steps = from, span, steps
	a.count = make([][12]int64, steps)
	a.delta = make([][12]int, steps)
	return nil
}

// noteAction is called for each step a note may belong to, in step order.
// Returning true moves on to the next note.
type noteAction func(t *track.Track, e *model.Event, n model.Note, step, overlap int) bool

func (a *Analyzer) iterateNotes(src Source, action noteAction) {
	src.Each(func(t *track.Track, e *model.Event) {
		n, ok := e.Note()
		if !ok {
			return
		}
		first := (e.Clock - a.from) * a.steps / a.span
		if first < 0 || first >= a.steps {
			return
		}
		end := e.Clock + n.Length
		for i := first; i < a.steps; i++ {
			start, stop := a.Bounds(i)
			if i > first && start >= end {
				return
			}
			if action(t, e, n, i, util.Overlap(e.Clock, end, start, stop)) {
				return
			}
		}
	})
}

func (a *Analyzer) countEvent(t *track.Track, e *model.Event, n model.Note, step, overlap int) bool {
	a.count[step][pitchclass.Class(int(n.Key))] += int64(overlap)
	return false
}

// Analyze fills Sequence with the best fitting context for each step and
// returns the number of steps. It returns 0 and an error when the steps
// would not fit into MaxSequence.
func (a *Analyzer) Analyze(src Source, eighths int) (int, error) {
	if err := a.init(src, eighths); err != nil {
		return 0, err
	}
	a.iterateNotes(src, a.countEvent)

	seq := make([]chord.Context, a.steps)
	for i := range seq {
		if util.Sum(a.count[i][:]) == 0 {
			if i > 0 {
				seq[i] = seq[i-1]
			} else {
				seq[i] = a.Catalog[0]
			}
			continue
		}
		seq[i] = a.bestContext(a.count[i])
	}
	a.Sequence = seq
	return a.steps, nil
}

func (a *Analyzer) bestContext(count [12]int64) chord.Context {
	best := a.Catalog[0]
	bestErr := int64(-1)
	for _, ctx := range a.Catalog {
		c, s := ctx.Chord(), ctx.Scale()
		var e int64
		for pc := 0; pc < 12; pc++ {
			if !c.Contains(pc) {
				e += count[pc]
			}
			if !s.Contains(pc) {
				e += count[pc]
			}
		}
		if bestErr < 0 || e < bestErr {
			best, bestErr = ctx, e
		}
	}
	return best
}

// MaxCount returns the pitch class outside done with the longest sounding
// time. Ties go to the lowest pitch class. ok is false when every pitch class
// that sounded at all is done.
func MaxCount(count [12]int64, done pitchclass.Set) (pc int, ok bool) {
	var best int64
	for i := 0; i < 12; i++ {
		if !done.Contains(i) && count[i] > best {
			pc, best, ok = i, count[i], true
		}
	}
	return pc, ok
}

// GenerateMapping computes Delta for every step. The most used pitch
// classes are fitted onto chord tones first, then onto the remaining scale
// tones, then onto the rest. No target tone is used twice within a step.
func (a *Analyzer) GenerateMapping() error {
	if a.steps > len(a.Sequence) {
		return ErrNoSequence
	}
	for i := 0; i < a.steps; i++ {
		a.delta[i] = [12]int{}
		c, s := a.Sequence[i].Chord(), a.Sequence[i].Scale()
		tiers := [3]pitchclass.Set{c, s.Difference(c), pitchclass.Chromatic.Difference(s)}
		var done pitchclass.Set
	step:
		for _, pool := range tiers {
			for !pool.IsEmpty() {
				pc, ok := MaxCount(a.count[i], done)
				if !ok {
					break step
				}
				target, err := pool.Fit(pc)
				if err != nil {
					break
				}
				a.delta[i][pc] = target - pc
				pool = pool.Remove(target)
				done = done.Add(pc)
			}
		}
	}
	return nil
}

// Validate partitions src and reports whether Transpose would be refused,
// without touching any track.
func (a *Analyzer) Validate(src Source, eighths int) error {
	if err := a.init(src, eighths); err != nil {
		return err
	}
	if a.steps > len(a.Sequence) {
		return ErrNoSequence
	}
	return nil
}

type change struct {
	t   *track.Track
	e   *model.Event
	key int
}

// Transpose moves every note of src onto Sequence and returns how many notes
// changed. A note belongs to the first step that holds at least half of it
// or that it covers completely. Sequence must hold at least as many contexts
// as there are steps. Callers open the undo buffer, after Validate if a
// refused transpose must not leave an empty undo step.
func (a *Analyzer) Transpose(src Source, eighths int) (int, error) {
	if err := a.Validate(src, eighths); err != nil {
		return 0, err
	}
	a.iterateNotes(src, a.countEvent)
	if err := a.GenerateMapping(); err != nil {
		return 0, err
	}

	var changes []change
	a.iterateNotes(src, func(t *track.Track, e *model.Event, n model.Note, step, overlap int) bool {
		start, stop := a.Bounds(step)
		if overlap*2 < n.Length && (e.Clock > start || e.Clock+n.Length < stop) {
			return false
		}
		key := util.Clamp(int(n.Key)+a.delta[step][pitchclass.Class(int(n.Key))], 0, constants.MaxKey)
		if key != int(n.Key) {
			changes = append(changes, change{t: t, e: e, key: key})
		}
		return true
	})

	touched := make(map[*track.Track]bool)
	for _, c := range changes {
		moved := c.e.Copy()
		n, _ := moved.Note()
		n.Key = uint8(c.key)
		moved.Data = n
		c.t.Kill(c.e)
		c.t.Put(moved)
		touched[c.t] = true
	}
	for t := range touched {
		t.Cleanup()
	}
	return len(changes), nil
}
