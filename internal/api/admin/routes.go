// Package admin serves the runtime-editable sync settings.
package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/formsync-server/internal/api/common"
	"github.com/stacklok/formsync-server/internal/service"
)

// Router creates the settings routes
func Router(svc service.FormSyncService) http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.GetSettings(r.Context())
		if err != nil {
			common.WriteError(w, r, err)
			return
		}
		common.WriteJSONResponse(w, s, http.StatusOK)
	})

	// Keys missing from the body fall back to their defaults
	r.Put("/", func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			common.WriteErrorResponse(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		s, err := svc.SaveSettings(r.Context(), raw)
		if err != nil {
			common.WriteError(w, r, err)
			return
		}
		common.WriteJSONResponse(w, s, http.StatusOK)
	})

	return r
}
