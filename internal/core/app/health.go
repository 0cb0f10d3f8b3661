package app

import (
	"context"
	"fmt"
	"time"

	"dydcheck/internal/shared/observability"
)

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	// Last run
	if last := s.app.LastReport(); last == nil {
		status.Components["checker"] = "idle"
	} else {
		status.Components["checker"] = fmt.Sprintf("ok (%d runs, last %s: %d diagnostics)",
			s.app.Runs(), last.Input, len(last.Result.Diagnostics))
	}

	// History store
	if s.app.history != nil {
		status.Components["history"] = "ok"
	} else if s.app.Config.DB.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	return status
}
