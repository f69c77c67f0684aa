package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/domain/chart"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/usecase"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":{"code":500,"status":"INTERNAL","message":"encode response"}}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Code:    status,
		Status:  statusText(status),
		Message: message,
	}})
}

// writeFailure maps service sentinel errors onto HTTP statuses.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, usecase.ErrDataUnavailable), errors.Is(err, usecase.ErrDependencyUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, usecase.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeArtifact streams a cached artifact: raster payloads go out as-is,
// JSON payloads ride inside the standard data envelope.
func writeArtifact(w http.ResponseWriter, artifact chart.Artifact) {
	if artifact.ContentType == "application/json" {
		writeData(w, http.StatusOK, json.RawMessage(artifact.Payload))
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Payload)
}

func statusText(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_ARGUMENT"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	case http.StatusGatewayTimeout:
		return "DEADLINE_EXCEEDED"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	default:
		return "INTERNAL"
	}
}
