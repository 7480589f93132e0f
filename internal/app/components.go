package app

import (
	"github.com/stacklok/formsync-server/internal/app/storage"
	"github.com/stacklok/formsync-server/internal/refresh"
	"github.com/stacklok/formsync-server/internal/service"
	"github.com/stacklok/formsync-server/internal/telemetry"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// FormSyncService provides the sync business logic
	FormSyncService service.FormSyncService

	// RefreshCoordinator re-imports forms on their update interval.
	// Nil when refresh is disabled.
	RefreshCoordinator refresh.Coordinator

	// Storage owns the stores and their connections
	Storage storage.Factory

	// Telemetry owns the tracer and meter providers
	Telemetry *telemetry.Telemetry
}
