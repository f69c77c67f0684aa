package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/chart"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/cache"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/usecase"
)

func newTestServer(t *testing.T) (*httptest.Server, *usecase.ArtifactService) {
	t.Helper()

	store, err := cache.NewStore(time.Minute, cache.WithLogger(logging.NewNop()))
	require.NoError(t, err)
	t.Cleanup(store.Close)

	artifacts := usecase.NewArtifactService(store, true, logging.NewNop())

	handler := NewHandler(artifacts, nil, logging.NewNop())
	server := NewServer(ServerConfig{
		Addr:               ":0",
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		CORSAllowedOrigins: []string{"*"},
		ServiceName:        "test",
	}, handler, logging.NewNop())

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, artifacts
}

func pngBuilder(payload string) usecase.BuilderFunc {
	return func(context.Context, map[string]string) (chart.Artifact, error) {
		return chart.Artifact{ContentType: "image/png", Payload: []byte(payload)}, nil
	}
}

func TestHandler_Healthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Status string `json:"status"`
			Cache  struct {
				CacheEnabled bool `json:"cacheEnabled"`
				Reachable    bool `json:"reachable"`
			} `json:"cache"`
		} `json:"data"`
	}
	require.NoError(t, sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Data.Status)
	assert.True(t, body.Data.Cache.Reachable)
}

func TestHandler_ServesPNGArtifact(t *testing.T) {
	ts, artifacts := newTestServer(t)
	artifacts.Register(usecase.ArtifactPhysicalEvolution, pngBuilder("png-bytes"))

	resp, err := http.Get(ts.URL + "/v1/physical/evolution")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestHandler_ServesJSONArtifactInEnvelope(t *testing.T) {
	ts, artifacts := newTestServer(t)
	artifacts.Register(usecase.ArtifactStatsSummary, func(context.Context, map[string]string) (chart.Artifact, error) {
		return chart.Artifact{ContentType: "application/json", Payload: []byte(`{"team":"Penafiel"}`)}, nil
	})

	resp, err := http.Get(ts.URL + "/v1/stats/summary")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var body struct {
		Data struct {
			Team string `json:"team"`
		} `json:"data"`
	}
	require.NoError(t, sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Penafiel", body.Data.Team)
}

func TestHandler_QueryParamsReachBuilder(t *testing.T) {
	ts, artifacts := newTestServer(t)

	var got map[string]string
	artifacts.Register(usecase.ArtifactMicrocycleLoad, func(_ context.Context, params map[string]string) (chart.Artifact, error) {
		got = params
		return chart.Artifact{ContentType: "image/png", Payload: []byte("png")}, nil
	})

	resp, err := http.Get(ts.URL + "/v1/microcycles/team-load?matchday=4&kind=hsr")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"matchday": "4", "kind": "hsr"}, got)
}

func TestHandler_ErrorMapping(t *testing.T) {
	ts, artifacts := newTestServer(t)

	artifacts.Register(usecase.ArtifactPhysicalScatter, func(context.Context, map[string]string) (chart.Artifact, error) {
		return chart.Artifact{}, errors.Mark(errors.New("unknown match"), usecase.ErrNotFound)
	})
	artifacts.Register(usecase.ArtifactPhysicalCollective, func(context.Context, map[string]string) (chart.Artifact, error) {
		return chart.Artifact{}, errors.Mark(errors.New("bad kind"), usecase.ErrInvalidInput)
	})
	artifacts.Register(usecase.ArtifactRankingsGlobal, func(context.Context, map[string]string) (chart.Artifact, error) {
		return chart.Artifact{}, errors.Mark(errors.New("workbook missing"), usecase.ErrDataUnavailable)
	})

	tests := []struct {
		path   string
		status int
	}{
		{path: "/v1/physical/scatter?match=nope", status: http.StatusNotFound},
		{path: "/v1/physical/collective-bars?kind=warp", status: http.StatusBadRequest},
		{path: "/v1/rankings/global", status: http.StatusServiceUnavailable},
		{path: "/v1/stats/league-comparison", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		resp, err := http.Get(ts.URL + tt.path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
	}
}

func TestHandler_Refresh(t *testing.T) {
	ts, artifacts := newTestServer(t)
	artifacts.Register(usecase.ArtifactStatsSummary, pngBuilder("png"), usecase.ArtifactRequest{Kind: usecase.ArtifactStatsSummary})

	resp, err := http.Post(ts.URL+"/v1/refresh", "application/json", strings.NewReader(`{"scope":""}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data refreshResponse `json:"data"`
	}
	require.NoError(t, sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "all", body.Data.Scope)
	assert.Equal(t, 1, body.Data.Warmed)
}

func TestHandler_RefreshUnknownScope(t *testing.T) {
	ts, artifacts := newTestServer(t)
	artifacts.Register(usecase.ArtifactStatsSummary, pngBuilder("png"))

	resp, err := http.Post(ts.URL+"/v1/refresh", "application/json", strings.NewReader(`{"scope":"inventado"}`))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_RefreshMalformedBody(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/v1/refresh", "application/json", strings.NewReader(`{not json`))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
