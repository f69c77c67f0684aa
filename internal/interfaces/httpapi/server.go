package httpapi

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/usecase"
)

// ServerConfig is the HTTP facade's slice of the app configuration.
type ServerConfig struct {
	Addr               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	ServiceName        string
}

// NewServer builds the HTTP server with all routes and middleware wired.
func NewServer(cfg ServerConfig, h *Handler, logger *logging.Logger) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.healthz)

	mux.HandleFunc("GET /v1/physical/collective-bars", h.serveArtifact(usecase.ArtifactPhysicalCollective, "kind"))
	mux.HandleFunc("GET /v1/physical/individual-bars", h.serveArtifact(usecase.ArtifactPhysicalIndividual, "kind"))
	mux.HandleFunc("GET /v1/physical/evolution", h.serveArtifact(usecase.ArtifactPhysicalEvolution))
	mux.HandleFunc("GET /v1/physical/matches", h.serveArtifact(usecase.ArtifactPhysicalMatches))
	mux.HandleFunc("GET /v1/physical/scatter", h.serveArtifact(usecase.ArtifactPhysicalScatter, "match"))

	mux.HandleFunc("GET /v1/microcycles", h.serveArtifact(usecase.ArtifactMicrocycleList))
	mux.HandleFunc("GET /v1/microcycles/team-load", h.serveArtifact(usecase.ArtifactMicrocycleLoad, "matchday", "kind"))

	mux.HandleFunc("GET /v1/rankings/global", h.serveArtifact(usecase.ArtifactRankingsGlobal))
	mux.HandleFunc("GET /v1/rankings/boards", h.serveArtifact(usecase.ArtifactRankingsBoards))

	mux.HandleFunc("GET /v1/playing-style/offensive", h.serveArtifact(usecase.ArtifactStyleOffensive))
	mux.HandleFunc("GET /v1/playing-style/defensive", h.serveArtifact(usecase.ArtifactStyleDefensive))

	mux.HandleFunc("GET /v1/stats/summary", h.serveArtifact(usecase.ArtifactStatsSummary))
	mux.HandleFunc("GET /v1/stats/league-comparison", h.serveArtifact(usecase.ArtifactStatsComparison))

	mux.HandleFunc("POST /v1/refresh", h.refresh)

	var handler http.Handler = mux
	handler = recoverPanic(logger)(handler)
	handler = requestLogging(logger)(handler)
	handler = corsMiddleware(cfg.CORSAllowedOrigins)(handler)
	handler = otelhttp.NewHandler(handler, cfg.ServiceName)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
