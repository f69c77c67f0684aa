package httpapi

import (
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/platform/scheduler"
	"github.com/AlejandroRodriguezIT/plataforma-penafiel/internal/usecase"
)

type refreshRequest struct {
	Scope string `json:"scope" validate:"omitempty,max=64"`
}

type refreshResponse struct {
	Scope  string `json:"scope"`
	Warmed int    `json:"warmed"`
}

type healthResponse struct {
	Status    string               `json:"status"`
	Cache     usecase.HealthStatus `json:"cache"`
	Scheduler scheduler.Status     `json:"scheduler"`
}
