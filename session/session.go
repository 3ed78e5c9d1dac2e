// Package session hosts songs for concurrent clients. The core types are
// single threaded; a Session guards every track with its own mutex and locks
// tracks in index order whenever a command spans more than one of them.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/jsphweid/harmonseq/chord"
	"github.com/jsphweid/harmonseq/config"
	"github.com/jsphweid/harmonseq/harmony"
	"github.com/jsphweid/harmonseq/model"
	"github.com/jsphweid/harmonseq/track"
	"github.com/sirupsen/logrus"
)

var ErrNoTrack = errors.New("no such track")

type Options struct {
	Tracks         int
	UndoDepth      int
	Meter          track.Meter
	EighthsPerStep int
	AnalysisDelay  time.Duration
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Tracks:         cfg.Tracks,
		UndoDepth:      cfg.UndoDepth,
		Meter:          track.Meter{TicksPerQuarter: cfg.TicksPerQuarter, BeatsPerBar: cfg.BeatsPerBar, BeatUnit: cfg.BeatUnit},
		EighthsPerStep: cfg.EighthsPerStep,
		AnalysisDelay:  cfg.AnalysisDelay,
	}
}

type Session struct {
	ID   string
	opts Options

	song  *track.Song
	locks []sync.Mutex

	debounced func(f func())
	mu        sync.RWMutex
	analysis  *model.AnalysisResponse
	closed    bool

	log *logrus.Entry
}

func New(opts Options) *Session {
	return NewWithSong(track.NewSong(opts.Meter, opts.Tracks, opts.UndoDepth), opts)
}

// NewWithSong hosts an existing song, e.g. one read from a midi file.
func NewWithSong(song *track.Song, opts Options) *Session {
	id := uuid.New().String()
	return &Session{
		ID:        id,
		opts:      opts,
		song:      song,
		locks:     make([]sync.Mutex, len(song.Tracks)),
		debounced: debounce.New(opts.AnalysisDelay),
		log:       logrus.WithField("session", id),
	}
}

func (s *Session) Tracks() int {
	return len(s.song.Tracks)
}

func (s *Session) lockAll() {
	for i := range s.locks {
		s.locks[i].Lock()
	}
}

func (s *Session) unlockAll() {
	for i := len(s.locks) - 1; i >= 0; i-- {
		s.locks[i].Unlock()
	}
}

func (s *Session) track(i int) (*track.Track, error) {
	t, ok := s.song.Track(i)
	if !ok {
		return nil, ErrNoTrack
	}
	return t, nil
}

// Events returns the live events of one track in [from, to).
func (s *Session) Events(trackNum, from, to int) ([]model.EventBody, error) {
	t, err := s.track(trackNum)
	if err != nil {
		return nil, err
	}
	s.locks[trackNum].Lock()
	defer s.locks[trackNum].Unlock()

	res := make([]model.EventBody, 0)
	it := t.Range(from, to)
	for e := it.Next(); e != nil; e = it.Next() {
		if !e.IsKilled() {
			res = append(res, model.NewEventBody(e))
		}
	}
	return res, nil
}

// Put adds events to one track as a single undoable command. An empty batch
// records nothing.
func (s *Session) Put(trackNum int, events []*model.Event) error {
	t, err := s.track(trackNum)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	s.lockAll()
	s.song.NewUndoBuffer()
	for _, e := range events {
		t.Put(e)
	}
	s.unlockAll()

	s.log.WithFields(logrus.Fields{"track": trackNum, "events": len(events)}).Info("put events")
	s.scheduleAnalysis()
	return nil
}

// Erase kills the live events of one track in [from, to) as a single
// undoable command and returns how many there were. Erasing nothing records
// nothing.
func (s *Session) Erase(trackNum, from, to int) (int, error) {
	t, err := s.track(trackNum)
	if err != nil {
		return 0, err
	}
	s.lockAll()
	var killed []*model.Event
	it := t.Range(from, to)
	for e := it.Next(); e != nil; e = it.Next() {
		if !e.IsKilled() {
			killed = append(killed, e)
		}
	}
	if len(killed) == 0 {
		s.unlockAll()
		return 0, nil
	}
	s.song.NewUndoBuffer()
	for _, e := range killed {
		t.Kill(e)
	}
	t.Cleanup()
	s.unlockAll()

	s.log.WithFields(logrus.Fields{"track": trackNum, "killed": len(killed)}).Info("erased events")
	s.scheduleAnalysis()
	return len(killed), nil
}

func (s *Session) Undo() bool {
	s.lockAll()
	ok := s.song.Undo()
	s.unlockAll()
	if ok {
		s.scheduleAnalysis()
	}
	return ok
}

func (s *Session) Redo() bool {
	s.lockAll()
	ok := s.song.Redo()
	s.unlockAll()
	if ok {
		s.scheduleAnalysis()
	}
	return ok
}

func (s *Session) filter(sel model.SelectionBody) track.Filter {
	f := track.All(s.song)
	if sel.ToClock > sel.FromClock {
		f.FromClock, f.ToClock = sel.FromClock, sel.ToClock
	}
	f.FromTrack = sel.FromTrack
	if sel.ToTrack != nil {
		f.ToTrack = *sel.ToTrack
	}
	return f
}

// ContextBody is the wire form of a catalog context. usage may be nil.
func ContextBody(c chord.Context, usage []int64) model.ContextBody {
	return model.ContextBody{
		Id:    c.ID(),
		Name:  c.Name(),
		Chord: c.Chord().Keys(),
		Scale: c.Scale().Keys(),
		Usage: usage,
	}
}

func analysisResponse(a *harmony.Analyzer, steps int) model.AnalysisResponse {
	res := model.AnalysisResponse{Steps: steps, Contexts: make([]model.ContextBody, 0, steps)}
	for i := 0; i < steps; i++ {
		count := a.Count(i)
		res.Contexts = append(res.Contexts, ContextBody(a.Sequence[i], count[:]))
	}
	return res
}

// Analyze picks the best context for every step of sel. Eighths of 0 uses
// the configured step length.
func (s *Session) Analyze(sel model.SelectionBody) (model.AnalysisResponse, error) {
	eighths := sel.Eighths
	if eighths <= 0 {
		eighths = s.opts.EighthsPerStep
	}
	s.lockAll()
	defer s.unlockAll()

	a := harmony.New()
	steps, err := a.Analyze(s.filter(sel), eighths)
	if err != nil {
		return model.AnalysisResponse{}, err
	}
	return analysisResponse(a, steps), nil
}

// Transpose moves the notes of sel onto progression as one undoable
// command. Eighths of 0 gives every context of progression an equal share
// of the window.
func (s *Session) Transpose(sel model.SelectionBody, progression []chord.Context) (model.TransposeResponse, error) {
	s.lockAll()
	a := harmony.New()
	a.Sequence = progression
	src := s.filter(sel)
	if err := a.Validate(src, sel.Eighths); err != nil {
		s.unlockAll()
		return model.TransposeResponse{}, err
	}
	s.song.NewUndoBuffer()
	changed, err := a.Transpose(src, sel.Eighths)
	s.unlockAll()
	if err != nil {
		return model.TransposeResponse{}, err
	}

	s.log.WithFields(logrus.Fields{"steps": a.Steps(), "changed": changed}).Info("transposed")
	if changed > 0 {
		s.scheduleAnalysis()
	}
	return model.TransposeResponse{Steps: a.Steps(), Changed: changed}, nil
}

func (s *Session) scheduleAnalysis() {
	s.debounced(s.runAnalysis)
}

func (s *Session) runAnalysis() {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return
	}

	res, err := s.Analyze(model.SelectionBody{})
	if err != nil {
		s.log.WithError(err).Warn("background analysis failed")
		return
	}
	s.log.WithField("steps", res.Steps).Debug("background analysis done")

	s.mu.Lock()
	s.analysis = &res
	s.mu.Unlock()
}

// Analysis returns the result of the last background analysis, which runs
// a short while after the song was last edited.
func (s *Session) Analysis() (model.AnalysisResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.analysis == nil {
		return model.AnalysisResponse{}, false
	}
	return *s.analysis, true
}

// Close stops pending background analysis from storing results.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
