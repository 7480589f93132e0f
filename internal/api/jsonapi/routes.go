// Package jsonapi serves the local catalog: published forms, provenance
// records and the cached remote listing, as catalog documents.
package jsonapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/formsync-server/internal/api/common"
	"github.com/stacklok/formsync-server/internal/catalog"
	"github.com/stacklok/formsync-server/internal/service"
)

// Routes holds the catalog handlers
type Routes struct {
	service service.FormSyncService
	encoder *catalog.Encoder
}

// Router creates the catalog routes, mounted at catalog.CatalogPath
func Router(svc service.FormSyncService, enc *catalog.Encoder) http.Handler {
	routes := &Routes{service: svc, encoder: enc}

	r := chi.NewRouter()
	r.Get("/", routes.listPublished)
	r.Get("/imported", routes.listImported)
	r.Get("/available", routes.listAvailable)
	r.Get("/{id}", routes.showPublished)

	return r
}

// listPublished handles GET /jsonapi/webforms
func (rr *Routes) listPublished(w http.ResponseWriter, r *http.Request) {
	published, err := rr.service.ListPublished(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}

	doc, err := rr.encoder.Encode(published)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	doc.Links = &catalog.Links{Self: rr.encoder.IndexURL()}

	common.WriteDocument(w, doc, http.StatusOK)
}

// showPublished handles GET /jsonapi/webforms/{id}
func (rr *Routes) showPublished(w http.ResponseWriter, r *http.Request) {
	id, err := common.GetAndValidateURLParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	form, err := rr.service.GetPublished(r.Context(), id)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}

	doc, err := rr.encoder.Encode(form)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteDocument(w, doc, http.StatusOK)
}

// listImported handles GET /jsonapi/webforms/imported
func (rr *Routes) listImported(w http.ResponseWriter, r *http.Request) {
	records, err := rr.service.ListImported(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}

	doc, err := rr.encoder.Encode(records)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.WriteDocument(w, doc, http.StatusOK)
}

// listAvailable handles GET /jsonapi/webforms/available. Unreachable
// sources are left out rather than failing the listing.
func (rr *Routes) listAvailable(w http.ResponseWriter, r *http.Request) {
	entries, err := rr.service.ListAvailable(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	common.WriteDocument(w, catalog.Document{Data: entries}, http.StatusOK)
}
