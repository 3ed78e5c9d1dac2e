package server

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jsphweid/harmonseq/chord"
	"github.com/jsphweid/harmonseq/db"
	"github.com/jsphweid/harmonseq/harmony"
	"github.com/jsphweid/harmonseq/model"
	"github.com/jsphweid/harmonseq/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type Server struct {
	sessions *session.Manager
	store    db.Store
	router   *mux.Router
}

func New(sessions *session.Manager, store db.Store) *Server {
	s := &Server{sessions: sessions, store: store}

	router := mux.NewRouter().StrictSlash(true)
	router.Use(instrument)
	router.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	router.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	router.HandleFunc("/sessions/{id}/tracks/{track}/events", s.handleGetEvents).Methods("GET")
	router.HandleFunc("/sessions/{id}/tracks/{track}/events", s.handlePutEvents).Methods("POST")
	router.HandleFunc("/sessions/{id}/tracks/{track}/events", s.handleEraseEvents).Methods("DELETE")
	router.HandleFunc("/sessions/{id}/undo", s.handleUndo).Methods("POST")
	router.HandleFunc("/sessions/{id}/redo", s.handleRedo).Methods("POST")
	router.HandleFunc("/sessions/{id}/analyze", s.handleAnalyze).Methods("POST")
	router.HandleFunc("/sessions/{id}/analysis", s.handleAnalysis).Methods("GET")
	router.HandleFunc("/sessions/{id}/transpose", s.handleTranspose).Methods("POST")
	router.HandleFunc("/progressions", s.handleListProgressions).Methods("GET")
	router.HandleFunc("/progressions/{name}", s.handleGetProgression).Methods("GET")
	router.HandleFunc("/progressions/{name}", s.handlePutProgression).Methods("PUT")
	router.HandleFunc("/catalog", handleCatalog).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router = router
	return s
}

// Handler wraps the router for browser clients served from allowedOrigins.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("could not encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

// statusOf maps domain errors onto http status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrNoTrack), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, harmony.ErrTooManySteps),
		errors.Is(err, harmony.ErrNoSequence),
		errors.Is(err, harmony.ErrEmptyRange),
		errors.Is(err, chord.ErrUnknownContext),
		errors.Is(err, db.ErrInvalidName):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func readBody(r *http.Request, v interface{}) error {
	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(reqBody, v)
}

var errNoSession = errors.New("no such session")

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := s.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, errNoSession)
	}
	return sess, ok
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func trackAndWindow(r *http.Request) (int, int, int, error) {
	trackNum, err := strconv.Atoi(mux.Vars(r)["track"])
	if err != nil {
		return 0, 0, 0, err
	}
	from, err := queryInt(r, "from", 0)
	if err != nil {
		return 0, 0, 0, err
	}
	to, err := queryInt(r, "to", math.MaxInt)
	if err != nil {
		return 0, 0, 0, err
	}
	return trackNum, from, to, nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	sessionsOpen.Set(float64(s.sessions.Len()))
	writeJSON(w, http.StatusCreated, model.SessionResponse{Id: sess.ID, Tracks: sess.Tracks()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(mux.Vars(r)["id"]) {
		writeError(w, http.StatusNotFound, errNoSession)
		return
	}
	sessionsOpen.Set(float64(s.sessions.Len()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	trackNum, from, to, err := trackAndWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	events, err := sess.Events(trackNum, from, to)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, model.EventsResponse{Events: events})
}

func (s *Server) handlePutEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	trackNum, err := strconv.Atoi(mux.Vars(r)["track"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var input []model.EventBody
	if err := readBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	events := make([]*model.Event, 0, len(input))
	for _, b := range input {
		e, err := b.Event()
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		events = append(events, e)
	}
	if err := sess.Put(trackNum, events); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	res := model.EventsResponse{Events: make([]model.EventBody, 0, len(events))}
	for _, e := range events {
		res.Events = append(res.Events, model.NewEventBody(e))
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleEraseEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	trackNum, from, to, err := trackAndWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	n, err := sess.Erase(trackNum, from, to)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, model.EraseResponse{Killed: n})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, model.UndoResponse{Ok: sess.Undo()})
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, model.UndoResponse{Ok: sess.Redo()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var input model.SelectionBody
	if err := readBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	start := time.Now()
	res, err := sess.Analyze(input)
	analyzeSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

var errNoAnalysis = errors.New("no analysis yet")

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, ok := sess.Analysis()
	if !ok {
		writeError(w, http.StatusNotFound, errNoAnalysis)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// progression resolves the transpose target: the stored progression when
// one is named, the listed chords otherwise.
func (s *Server) progression(input model.TransposeRequestBody) ([]chord.Context, error) {
	names := input.Chords
	if input.Progression != "" {
		p, err := s.store.GetProgression(input.Progression)
		if err != nil {
			return nil, err
		}
		names = p.Chords
	}
	return chord.LookupAll(names)
}

func (s *Server) handleTranspose(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var input model.TransposeRequestBody
	if err := readBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	seq, err := s.progression(input)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	res, err := sess.Transpose(input.SelectionBody, seq)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	transposedNotes.Add(float64(res.Changed))
	writeJSON(w, http.StatusOK, res)
}

var errNoListing = errors.New("progression store cannot list names")

// handleListProgressions lists stored names for stores that can enumerate
// them cheaply.
func (s *Server) handleListProgressions(w http.ResponseWriter, r *http.Request) {
	lister, ok := s.store.(interface{ Names() []string })
	if !ok {
		writeError(w, http.StatusNotImplemented, errNoListing)
		return
	}
	writeJSON(w, http.StatusOK, lister.Names())
}

func (s *Server) handleGetProgression(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProgression(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProgression(w http.ResponseWriter, r *http.Request) {
	var input model.Progression
	if err := readBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	input.Name = mux.Vars(r)["name"]
	if _, err := chord.LookupAll(input.Chords); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	if err := s.store.PutProgression(input); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, input)
}

func handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := chord.Catalog()
	res := make([]model.ContextBody, 0, len(cat))
	for _, c := range cat {
		res = append(res, session.ContextBody(c, nil))
	}
	writeJSON(w, http.StatusOK, res)
}
