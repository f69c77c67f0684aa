package httpapi

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/logging"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/scheduler"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/usecase"
)

// SchedulerStatus reports the maintenance job state for health checks. A
// deployment running without the scheduler passes a nil func.
type SchedulerStatus func() scheduler.Status

// Handler exposes the dashboard artifacts over HTTP. Every data route
// resolves through the artifact service, so all of them share the same
// cache semantics.
type Handler struct {
	artifacts       *usecase.ArtifactService
	schedulerStatus SchedulerStatus
	validate        *validator.Validate
	logger          *logging.Logger
}

func NewHandler(artifacts *usecase.ArtifactService, schedulerStatus SchedulerStatus, logger *logging.Logger) *Handler {
	return &Handler{
		artifacts:       artifacts,
		schedulerStatus: schedulerStatus,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		logger:          logger,
	}
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Cache:  h.artifacts.Health(r.Context()),
	}
	if h.schedulerStatus != nil {
		resp.Scheduler = h.schedulerStatus()
	}

	writeData(w, http.StatusOK, resp)
}

// serveArtifact resolves one artifact kind with the given query
// parameters copied into the request params.
func (h *Handler) serveArtifact(kind string, params ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := usecase.ArtifactRequest{Kind: kind}
		if len(params) > 0 {
			req.Params = map[string]string{}
			for _, name := range params {
				if v := r.URL.Query().Get(name); v != "" {
					req.Params[name] = v
				}
			}
		}

		artifact, err := h.artifacts.Fetch(r.Context(), req)
		if err != nil {
			h.logger.WarnContext(r.Context(), "artifact fetch failed", "kind", kind, "error", err)
			writeFailure(w, err)
			return
		}

		writeArtifact(w, artifact)
	}
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<16))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body")
		return
	}
	if len(body) > 0 {
		if err := sonic.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	warmed, err := h.artifacts.ForceRefresh(r.Context(), req.Scope)
	if err != nil {
		h.logger.WarnContext(r.Context(), "forced refresh failed", "scope", req.Scope, "error", err)
		writeFailure(w, err)
		return
	}

	scope := req.Scope
	if scope == "" {
		scope = "all"
	}
	writeData(w, http.StatusOK, refreshResponse{Scope: scope, Warmed: warmed})
}
