package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jsphweid/harmonseq/db"
	"github.com/jsphweid/harmonseq/model"
	"github.com/jsphweid/harmonseq/session"
	"github.com/jsphweid/harmonseq/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	opts := session.Options{
		Tracks:         2,
		UndoDepth:      20,
		Meter:          track.DefaultMeter(),
		EighthsPerStep: 8,
		AnalysisDelay:  10 * time.Millisecond,
	}
	return New(session.NewManager(opts), db.NewMemoryStore())
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	resp := w.Result()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createSession(t *testing.T, s *Server) string {
	var res model.SessionResponse
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/sessions", nil, &res))
	require.Equal(t, 2, res.Tracks)
	return res.Id
}

func notes(keys ...uint8) []model.EventBody {
	var res []model.EventBody
	for i, k := range keys {
		res = append(res, model.EventBody{Clock: i * 120, Kind: "note", Key: k, Velocity: 100, Length: 120})
	}
	return res
}

func TestEventsAndUndo(t *testing.T) {
	s := newTestServer()
	id := createSession(t, s)
	base := "/sessions/" + id + "/tracks/0/events"

	assert := assert.New(t)
	var put model.EventsResponse
	assert.Equal(http.StatusCreated, do(t, s, http.MethodPost, base, notes(60, 64, 67), &put))
	assert.Len(put.Events, 3)

	var got model.EventsResponse
	assert.Equal(http.StatusOK, do(t, s, http.MethodGet, base+"?from=100&to=240", nil, &got))
	require.Len(t, got.Events, 1)
	assert.Equal(uint8(64), got.Events[0].Key)

	var erased model.EraseResponse
	assert.Equal(http.StatusOK, do(t, s, http.MethodDelete, base+"?from=0&to=200", nil, &erased))
	assert.Equal(2, erased.Killed)

	var undo model.UndoResponse
	assert.Equal(http.StatusOK, do(t, s, http.MethodPost, "/sessions/"+id+"/undo", nil, &undo))
	assert.True(undo.Ok)
	do(t, s, http.MethodGet, base, nil, &got)
	assert.Len(got.Events, 3)

	assert.Equal(http.StatusOK, do(t, s, http.MethodPost, "/sessions/"+id+"/redo", nil, &undo))
	assert.True(undo.Ok)
	assert.Equal(http.StatusOK, do(t, s, http.MethodPost, "/sessions/"+id+"/redo", nil, &undo))
	assert.False(undo.Ok)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer()
	id := createSession(t, s)

	assert := assert.New(t)
	var e model.ErrorResponse
	assert.Equal(http.StatusNotFound, do(t, s, http.MethodGet, "/sessions/nope/tracks/0/events", nil, &e))
	assert.NotEmpty(e.Error)
	assert.Equal(http.StatusNotFound, do(t, s, http.MethodGet, "/sessions/"+id+"/tracks/7/events", nil, nil))
	assert.Equal(http.StatusBadRequest, do(t, s, http.MethodGet, "/sessions/"+id+"/tracks/x/events", nil, nil))
	assert.Equal(http.StatusBadRequest, do(t, s, http.MethodPost, "/sessions/"+id+"/tracks/0/events",
		[]model.EventBody{{Kind: "sysex"}}, nil))
	assert.Equal(http.StatusNotFound, do(t, s, http.MethodGet, "/sessions/"+id+"/analysis", nil, nil))

	assert.Equal(http.StatusNoContent, do(t, s, http.MethodDelete, "/sessions/"+id, nil, nil))
	assert.Equal(http.StatusNotFound, do(t, s, http.MethodDelete, "/sessions/"+id, nil, nil))
}

func TestAnalyzeTransposeWithProgression(t *testing.T) {
	s := newTestServer()
	id := createSession(t, s)
	do(t, s, http.MethodPost, "/sessions/"+id+"/tracks/0/events", []model.EventBody{
		{Clock: 0, Kind: "note", Key: 62, Velocity: 100, Length: 240},
		{Clock: 240, Kind: "note", Key: 65, Velocity: 100, Length: 120},
	}, nil)

	assert := assert.New(t)
	var analysis model.AnalysisResponse
	assert.Equal(http.StatusOK, do(t, s, http.MethodPost, "/sessions/"+id+"/analyze",
		model.SelectionBody{ToClock: 480}, &analysis))
	assert.Equal(1, analysis.Steps)

	assert.Equal(http.StatusBadRequest, do(t, s, http.MethodPut, "/progressions/bad",
		model.Progression{Chords: []string{"Hm9"}}, nil))
	assert.Equal(http.StatusOK, do(t, s, http.MethodPut, "/progressions/tonic",
		model.Progression{Chords: []string{"Cmaj7"}}, nil))
	var p model.Progression
	assert.Equal(http.StatusOK, do(t, s, http.MethodGet, "/progressions/tonic", nil, &p))
	assert.Equal(model.Progression{Name: "tonic", Chords: []string{"Cmaj7"}}, p)
	assert.Equal(http.StatusNotFound, do(t, s, http.MethodGet, "/progressions/missing", nil, nil))
	var names []string
	assert.Equal(http.StatusOK, do(t, s, http.MethodGet, "/progressions", nil, &names))
	assert.Equal([]string{"tonic"}, names)

	var tr model.TransposeResponse
	body := model.TransposeRequestBody{SelectionBody: model.SelectionBody{ToClock: 480}, Progression: "tonic"}
	assert.Equal(http.StatusOK, do(t, s, http.MethodPost, "/sessions/"+id+"/transpose", body, &tr))
	assert.Equal(model.TransposeResponse{Steps: 1, Changed: 2}, tr)

	var got model.EventsResponse
	do(t, s, http.MethodGet, "/sessions/"+id+"/tracks/0/events", nil, &got)
	require.Len(t, got.Events, 2)
	assert.Equal(uint8(64), got.Events[0].Key)
	assert.Equal(uint8(67), got.Events[1].Key)

	body = model.TransposeRequestBody{SelectionBody: model.SelectionBody{ToClock: 960, Eighths: 8}, Chords: []string{"Cmaj7"}}
	assert.Equal(http.StatusBadRequest, do(t, s, http.MethodPost, "/sessions/"+id+"/transpose", body, nil))

	require.Eventually(t, func() bool {
		return do(t, s, http.MethodGet, "/sessions/"+id+"/analysis", nil, nil) == http.StatusOK
	}, time.Second, 5*time.Millisecond)
}

func TestCatalogAndMetrics(t *testing.T) {
	s := newTestServer()
	var cat []model.ContextBody
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/catalog", nil, &cat))
	assert.Len(t, cat, 252)
	assert.Equal(t, "C:major:1", cat[0].Id)
	assert.Equal(t, []int{0, 4, 7, 11}, cat[0].Chord)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "harmonseq_http_requests_total"))
}

func TestCORS(t *testing.T) {
	h := newTestServer().Handler([]string{"http://localhost:3000"})
	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
