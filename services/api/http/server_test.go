package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/Shizuku-building-sim/internal/db"
	"github.com/02loveslollipop/Shizuku-building-sim/internal/sim"
	"github.com/02loveslollipop/Shizuku-building-sim/services/api/config"
	"github.com/02loveslollipop/Shizuku-building-sim/services/api/session"
)

var fixedNow = time.Date(2024, 5, 6, 10, 15, 0, 0, time.UTC)

type fakeArchive struct {
	got  db.ReadingQuery
	rows []db.ArchivedReading
	err  error
}

func (f *fakeArchive) FetchReadings(_ context.Context, q db.ReadingQuery) ([]db.ArchivedReading, error) {
	f.got = q
	return f.rows, f.err
}

func testConfig() config.Config {
	opts := sim.DefaultOptions()
	opts.Floors = []string{"Ground", "Level 1"}
	opts.Zones = []string{"North", "South"}
	return config.Config{
		Port:                 8080,
		DefaultWindowMinutes: 15,
		MaxSessions:          4,
		MaxTickSteps:         10,
		Simulation:           opts,
		Thresholds:           sim.DefaultThresholds(),
	}
}

func newTestServer(t *testing.T, cfg config.Config, archive Archive) *Server {
	t.Helper()
	m, err := session.NewManager(session.Config{
		Options:  cfg.Simulation,
		Limit:    cfg.MaxSessions,
		MaxSteps: cfg.MaxTickSteps,
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	_, err = m.Create(context.Background(), session.DefaultID, nil)
	require.NoError(t, err)
	return New(cfg, m, archive, nil)
}

func do(t *testing.T, s *Server, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	rec, body := do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestBearerAuth(t *testing.T) {
	cfg := testConfig()
	cfg.BearerToken = "secret"
	s := newTestServer(t, cfg, nil)

	rec, _ := do(t, s, http.MethodGet, "/api/v1/meta")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/meta", nil)
	req.Header.Set("Authorization", "Bearer secret")
	ok := httptest.NewRecorder()
	s.Engine().ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "v1", ok.Header().Get("X-API-Version"))

	rec, _ = do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMeta(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	rec, body := do(t, s, http.MethodGet, "/api/v1/meta")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, []any{"Ground", "Level 1"}, data["floors"])
	assert.Len(t, data["alerts"], 4)
	assert.EqualValues(t, 15, data["default_window_minutes"])
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec, body := do(t, s, http.MethodPost, "/api/v1/sessions?id=lab&seed=7")
	require.Equal(t, http.StatusCreated, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "lab", data["id"])
	assert.EqualValues(t, 7, data["seed"])
	assert.EqualValues(t, 4*31, data["rows"])

	rec, _ = do(t, s, http.MethodPost, "/api/v1/sessions?id=lab")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, s, http.MethodPost, "/api/v1/sessions?seed=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(t, s, http.MethodGet, "/api/v1/sessions")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["meta"].(map[string]any)["count"])

	rec, _ = do(t, s, http.MethodDelete, "/api/v1/sessions/lab")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/sessions/lab")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionLimit(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	for i := 0; i < 3; i++ {
		rec, _ := do(t, s, http.MethodPost, "/api/v1/sessions")
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec, _ := do(t, s, http.MethodPost, "/api/v1/sessions")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestTick(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec, body := do(t, s, http.MethodPost, "/api/v1/sessions/default/tick?steps=2")
	require.Equal(t, http.StatusOK, rec.Code)
	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 8, meta["count"])
	assert.EqualValues(t, 2, meta["session"].(map[string]any)["ticks"])
	assert.Len(t, body["data"], 8)

	for _, steps := range []string{"0", "11", "x"} {
		rec, _ = do(t, s, http.MethodPost, "/api/v1/sessions/default/tick?steps="+steps)
		assert.Equal(t, http.StatusBadRequest, rec.Code, steps)
	}

	rec, _ = do(t, s, http.MethodPost, "/api/v1/sessions/nope/tick")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSeries(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	_, body := do(t, s, http.MethodGet, "/api/v1/sessions/default/series")
	assert.Len(t, body["data"], 4*31)

	_, body = do(t, s, http.MethodGet, "/api/v1/sessions/default/series?floor=Ground&zone=South")
	assert.Len(t, body["data"], 31)
}

func TestWindow(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec, body := do(t, s, http.MethodGet, "/api/v1/sessions/default/window?floor=Level%201&zone=South&minutes=5")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Len(t, data["readings"], 6)
	assert.NotNil(t, data["current"])
	assert.NotNil(t, data["deltas"])
	assert.NotContains(t, data, "message")

	rec, body = do(t, s, http.MethodGet, "/api/v1/sessions/default/window")
	require.Equal(t, http.StatusOK, rec.Code)
	data = body["data"].(map[string]any)
	assert.Equal(t, "Ground", data["floor"])
	assert.Equal(t, "North", data["zone"])
	assert.Len(t, data["readings"], 16)

	rec, body = do(t, s, http.MethodGet, "/api/v1/sessions/default/window?floor=Roof")
	require.Equal(t, http.StatusOK, rec.Code)
	data = body["data"].(map[string]any)
	assert.Nil(t, data["current"])
	assert.Equal(t, noDataMessage, data["message"])

	rec, body = do(t, s, http.MethodGet, "/api/v1/sessions/default/window?minutes=200000000")
	require.Equal(t, http.StatusOK, rec.Code)
	data = body["data"].(map[string]any)
	assert.Len(t, data["readings"], 31)
	assert.NotNil(t, data["current"])

	rec, body = do(t, s, http.MethodGet, "/api/v1/sessions/default/alerts?minutes=200000000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, statusNoData, body["data"].(map[string]any)["status"])

	rec, _ = do(t, s, http.MethodGet, "/api/v1/sessions/default/window?minutes=-2")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlerts(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	// Thresholds every reading violates.
	rec, body := do(t, s, http.MethodGet,
		"/api/v1/sessions/default/alerts?max_temp=-100&max_co2=-100&min_humidity=200&max_humidity=300")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, statusAlert, data["status"])
	alerts := data["alerts"].([]any)
	require.GreaterOrEqual(t, len(alerts), 3)
	assert.Equal(t, sim.AlertHighTemperature, alerts[0])
	assert.Equal(t, sim.AlertHighCO2, alerts[1])
	assert.Equal(t, sim.AlertHumidity, alerts[2])

	rec, body = do(t, s, http.MethodGet, "/api/v1/sessions/default/alerts?floor=Roof")
	require.Equal(t, http.StatusOK, rec.Code)
	data = body["data"].(map[string]any)
	assert.Equal(t, statusNoData, data["status"])
	assert.Empty(t, data["alerts"])

	rec, _ = do(t, s, http.MethodGet, "/api/v1/sessions/default/alerts?max_temp=hot")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/sessions/default/alerts?min_humidity=70&max_humidity=60")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArchiveReadings(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	rec, _ := do(t, s, http.MethodGet, "/api/v1/archive/readings")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	archive := &fakeArchive{rows: []db.ArchivedReading{{SessionID: "default"}}}
	s = newTestServer(t, testConfig(), archive)

	rec, body := do(t, s, http.MethodGet,
		"/api/v1/archive/readings?floor=Ground&zone=North&start=2024-05-06T10:00:00Z&last_n=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["meta"].(map[string]any)["count"])
	assert.Equal(t, session.DefaultID, archive.got.SessionID)
	assert.Equal(t, "Ground", archive.got.Floor)
	assert.Equal(t, 5, archive.got.Limit)
	require.NotNil(t, archive.got.Since)
	assert.Nil(t, archive.got.Until)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/archive/readings?end=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	archive.err = errors.New("boom")
	rec, _ = do(t, s, http.MethodGet, "/api/v1/archive/readings")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLiveChart(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec, body := do(t, s, http.MethodGet, "/api/v1/demo/live?rows=25&seed=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 25)

	_, again := do(t, s, http.MethodGet, "/api/v1/demo/live?rows=25&seed=3")
	assert.Equal(t, body["data"], again["data"])

	rec, _ = do(t, s, http.MethodGet, "/api/v1/demo/live?rows=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
