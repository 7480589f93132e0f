// Package webforms serves the administrative form sync endpoints: the
// annotated index of available forms, import, per-form sync settings and
// deletion.
package webforms

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/formsync-server/internal/api/common"
	"github.com/stacklok/formsync-server/internal/catalog"
	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/service"
)

// IndexItem is an available remote form and its local import, if any
type IndexItem struct {
	Entry    catalog.Entry `json:"entry"`
	Imported *ImportedRef  `json:"imported"`
}

// ImportedRef points at the local form created from a remote form
type ImportedRef struct {
	ID        string `json:"id"`
	UpdatedAt string `json:"updatedAt"`
	Link      string `json:"link"`
}

// IndexResponse is the body of GET /webforms
type IndexResponse struct {
	Data []IndexItem `json:"data"`
}

// ImportResponse is the body of POST /webforms/import
type ImportResponse struct {
	ID      string `json:"id"`
	UUID    string `json:"uuid"`
	URL     string `json:"url"`
	Created bool   `json:"created"`
}

// SyncResponse is the body of PUT /webforms/{id}/sync
type SyncResponse struct {
	ID string `json:"id"`
	forms.SyncSettings
}

// Routes holds the webform handlers
type Routes struct {
	service service.FormSyncService
	encoder *catalog.Encoder
}

// Router creates the webform routes, mounted at catalog.FormsPath
func Router(svc service.FormSyncService, enc *catalog.Encoder) http.Handler {
	routes := &Routes{service: svc, encoder: enc}

	r := chi.NewRouter()
	r.Get("/", routes.index)
	r.Post("/import", routes.importForm)
	r.Get("/{id}/imported", routes.showImported)
	r.Put("/{id}/sync", routes.updateSync)
	r.Delete("/{id}", routes.deleteForm)

	return r
}

// index handles GET /webforms?show=imported|not-imported
func (rr *Routes) index(w http.ResponseWriter, r *http.Request) {
	entries, err := rr.service.Index(r.Context(), service.WithShow(r.URL.Query().Get("show")))
	if err != nil {
		common.WriteError(w, r, err)
		return
	}

	resp := IndexResponse{Data: make([]IndexItem, 0, len(entries))}
	for _, e := range entries {
		item := IndexItem{Entry: e.Entry}
		if e.Imported != nil {
			item.Imported = &ImportedRef{
				ID:        e.Imported.LocalFormID,
				UpdatedAt: e.Imported.UpdatedAt.Format(time.RFC3339),
				Link:      rr.encoder.ImportedURL(e.Imported.LocalFormID),
			}
		}
		resp.Data = append(resp.Data, item)
	}
	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// importForm handles POST /webforms/import?url=
func (rr *Routes) importForm(w http.ResponseWriter, r *http.Request) {
	url, err := common.RequiredURLQuery(r, "url")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := rr.service.Import(r.Context(), url)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	common.WriteJSONResponse(w, ImportResponse{
		ID:      res.Form.ID,
		UUID:    res.Form.UUID,
		URL:     res.Record.SourceURL,
		Created: res.Created,
	}, status)
}

// showImported handles GET /webforms/{id}/imported
func (rr *Routes) showImported(w http.ResponseWriter, r *http.Request) {
	id, err := common.GetAndValidateURLParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := rr.service.FindImportedByLocalID(r.Context(), id)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}

	doc, err := rr.encoder.Encode(record)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteDocument(w, doc, http.StatusOK)
}

// updateSync handles PUT /webforms/{id}/sync
func (rr *Routes) updateSync(w http.ResponseWriter, r *http.Request) {
	id, err := common.GetAndValidateURLParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var sync forms.SyncSettings
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sync); err != nil {
		common.WriteErrorResponse(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	form, err := rr.service.UpdateSyncSettings(r.Context(), id, sync)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, SyncResponse{ID: form.ID, SyncSettings: form.Sync}, http.StatusOK)
}

// deleteForm handles DELETE /webforms/{id}
func (rr *Routes) deleteForm(w http.ResponseWriter, r *http.Request) {
	id, err := common.GetAndValidateURLParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := rr.service.DeleteForm(r.Context(), id); err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
