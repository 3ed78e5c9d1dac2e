//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jsphweid/harmonseq/config"
	"github.com/jsphweid/harmonseq/db"
	"github.com/jsphweid/harmonseq/model"
	"github.com/jsphweid/harmonseq/server"
	"github.com/jsphweid/harmonseq/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts *httptest.Server

func TestMain(m *testing.M) {
	cfg := config.Default()
	cfg.AnalysisDelay = 20 * time.Millisecond

	// DYNAMO_TABLE points the suite at a local DynamoDB
	var store db.Store = db.NewMemoryStore()
	if table := os.Getenv("DYNAMO_TABLE"); table != "" {
		cfg.Dynamo.Table = table
		if endpoint := os.Getenv("DYNAMO_ENDPOINT"); endpoint != "" {
			cfg.Dynamo.Endpoint = endpoint
		}
		dynamo, err := db.NewDynamoStore(cfg.Dynamo)
		if err != nil {
			panic(err.Error())
		}
		store = dynamo
	}

	srv := server.New(session.NewManager(session.OptionsFromConfig(cfg)), store)
	ts = httptest.NewServer(srv.Handler(cfg.AllowedOrigins))

	exitVal := m.Run()

	ts.Close()
	os.Exit(exitVal)
}

func call(t *testing.T, method, path string, body interface{}, out interface{}) int {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestTwoFiveOneE2E(t *testing.T) {
	var sess model.SessionResponse
	require.Equal(t, http.StatusCreated, call(t, http.MethodPost, "/sessions", nil, &sess))
	base := "/sessions/" + sess.Id

	// a D minor line over one bar, then a G line, then C
	melody := []model.EventBody{
		{Clock: 0, Kind: "note", Key: 62, Velocity: 100, Length: 240},
		{Clock: 240, Kind: "note", Key: 65, Velocity: 100, Length: 240},
		{Clock: 480, Kind: "note", Key: 67, Velocity: 100, Length: 240},
		{Clock: 720, Kind: "note", Key: 71, Velocity: 100, Length: 240},
		{Clock: 960, Kind: "note", Key: 60, Velocity: 100, Length: 480},
	}
	require.Equal(t, http.StatusCreated, call(t, http.MethodPost, base+"/tracks/0/events", melody, nil))

	assert := assert.New(t)
	var analysis model.AnalysisResponse
	assert.Equal(http.StatusOK, call(t, http.MethodPost, base+"/analyze", model.SelectionBody{Eighths: 8}, &analysis))
	assert.Equal(3, analysis.Steps)

	require.Equal(t, http.StatusOK, call(t, http.MethodPut, "/progressions/up-a-step",
		model.Progression{Chords: []string{"Em7", "A7", "Dmaj7"}}, nil))

	var tr model.TransposeResponse
	assert.Equal(http.StatusOK, call(t, http.MethodPost, base+"/transpose",
		model.TransposeRequestBody{SelectionBody: model.SelectionBody{Eighths: 8}, Progression: "up-a-step"}, &tr))
	assert.Equal(3, tr.Steps)
	assert.Greater(tr.Changed, 0)

	var undo model.UndoResponse
	assert.Equal(http.StatusOK, call(t, http.MethodPost, base+"/undo", nil, &undo))
	assert.True(undo.Ok)

	var events model.EventsResponse
	assert.Equal(http.StatusOK, call(t, http.MethodGet, base+"/tracks/0/events", nil, &events))
	require.Len(t, events.Events, len(melody))
	for i, e := range events.Events {
		assert.Equal(melody[i].Key, e.Key)
	}

	require.Eventually(t, func() bool {
		return call(t, http.MethodGet, base+"/analysis", nil, nil) == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(http.StatusNoContent, call(t, http.MethodDelete, base, nil, nil))
}
