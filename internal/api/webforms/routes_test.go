package webforms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/formsync-server/internal/allocator"
	"github.com/stacklok/formsync-server/internal/catalog"
	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/importer"
	"github.com/stacklok/formsync-server/internal/provenance"
	"github.com/stacklok/formsync-server/internal/service"
	"github.com/stacklok/formsync-server/internal/service/mocks"
)

const (
	baseURL   = "https://site.example"
	remoteURL = "https://remote.example/jsonapi/webforms/contact"
)

func do(t *testing.T, svc service.FormSyncService, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	Router(svc, catalog.NewEncoder(baseURL)).ServeHTTP(rr, req)
	return rr
}

// applyIndexOptions mirrors what the service does with the options it receives
func applyIndexOptions(opts ...service.Option[service.IndexOptions]) (service.IndexOptions, error) {
	var o service.IndexOptions
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return o, err
		}
	}
	return o, nil
}

func TestIndex(t *testing.T) {
	t.Parallel()

	updated := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)
	entries := []service.IndexEntry{
		{
			Entry:    catalog.Entry{ID: "contact", Type: catalog.TypeWebform, SourceURL: remoteURL},
			Imported: &provenance.Record{LocalFormID: "contact_00", SourceURL: remoteURL, UpdatedAt: updated},
		},
		{Entry: catalog.Entry{ID: "survey", Type: catalog.TypeWebform, SourceURL: "https://remote.example/jsonapi/webforms/survey"}},
	}

	tests := []struct {
		name     string
		query    string
		wantShow string
		status   int
	}{
		{name: "all", query: "", wantShow: service.ShowAll, status: http.StatusOK},
		{name: "imported", query: "?show=imported", wantShow: service.ShowImported, status: http.StatusOK},
		{name: "not imported", query: "?show=not-imported", wantShow: service.ShowNotImported, status: http.StatusOK},
		{name: "bad filter", query: "?show=everything", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			svc := mocks.NewMockFormSyncService(ctrl)
			svc.EXPECT().Index(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, opts ...service.Option[service.IndexOptions]) ([]service.IndexEntry, error) {
					o, err := applyIndexOptions(opts...)
					if err != nil {
						return nil, err
					}
					assert.Equal(t, tt.wantShow, o.Show)
					return entries, nil
				})

			rr := do(t, svc, http.MethodGet, "/"+tt.query, "")
			require.Equal(t, tt.status, rr.Code)
			if tt.status != http.StatusOK {
				return
			}

			body := gjson.ParseBytes(rr.Body.Bytes())
			assert.Equal(t, "contact", body.Get("data.0.entry.id").String())
			assert.Equal(t, "contact_00", body.Get("data.0.imported.id").String())
			assert.Equal(t, "2026-05-04T03:02:01Z", body.Get("data.0.imported.updatedAt").String())
			assert.Equal(t, baseURL+"/webforms/contact_00/imported", body.Get("data.0.imported.link").String())
			assert.Equal(t, gjson.Null, body.Get("data.1.imported").Type)
		})
	}
}

func TestImport(t *testing.T) {
	t.Parallel()

	form := forms.New("contact")
	record := &provenance.Record{LocalFormID: "contact", SourceURL: remoteURL}

	tests := []struct {
		name    string
		target  string
		result  *importer.Result
		err     error
		noCall  bool
		status  int
		wantErr string
	}{
		{
			name:   "created",
			target: "/import?url=" + remoteURL,
			result: &importer.Result{Form: form, Record: record, Created: true},
			status: http.StatusCreated,
		},
		{
			name:   "updated",
			target: "/import?url=" + remoteURL,
			result: &importer.Result{Form: form, Record: record},
			status: http.StatusOK,
		},
		{name: "missing url", target: "/import", noCall: true, status: http.StatusBadRequest, wantErr: "url query parameter is required"},
		{
			name:   "remote 404",
			target: "/import?url=" + remoteURL,
			err: &importer.Error{Phase: importer.PhaseFetching, URL: remoteURL,
				Err: fmt.Errorf("%w: HTTP 404", importer.ErrFetch)},
			status:  http.StatusBadGateway,
			wantErr: "HTTP 404",
		},
		{
			name:   "ids exhausted",
			target: "/import?url=" + remoteURL,
			err: &importer.Error{Phase: importer.PhaseResolvingID, URL: remoteURL,
				Err: allocator.ErrIDAllocationExhausted},
			status:  http.StatusConflict,
			wantErr: "cannot generate import id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			svc := mocks.NewMockFormSyncService(ctrl)
			if !tt.noCall {
				svc.EXPECT().Import(gomock.Any(), remoteURL).Return(tt.result, tt.err)
			}

			rr := do(t, svc, http.MethodPost, tt.target, "")
			require.Equal(t, tt.status, rr.Code)

			if tt.wantErr != "" {
				assert.Contains(t, gjson.GetBytes(rr.Body.Bytes(), "error").String(), tt.wantErr)
				return
			}
			var resp ImportResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, ImportResponse{ID: "contact", UUID: form.UUID, URL: remoteURL, Created: tt.result.Created}, resp)
		})
	}
}

func TestShowImported(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	svc := mocks.NewMockFormSyncService(ctrl)
	svc.EXPECT().FindImportedByLocalID(gomock.Any(), "contact").
		Return(&provenance.Record{LocalFormID: "contact", SourceURL: remoteURL, RawSource: "{}"}, nil)
	svc.EXPECT().FindImportedByLocalID(gomock.Any(), "local").Return(nil, provenance.ErrNotFound)

	rr := do(t, svc, http.MethodGet, "/contact/imported", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := gjson.ParseBytes(rr.Body.Bytes())
	assert.Equal(t, "imported_webform", body.Get("data.type").String())
	assert.Equal(t, remoteURL, body.Get("data.attributes.sourceUrl").String())
	assert.Equal(t, baseURL+"/webforms/contact/imported", body.Get("links.self").String())

	rr = do(t, svc, http.MethodGet, "/local/imported", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateSync(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		want   *forms.SyncSettings
		err    error
		status int
	}{
		{
			name:   "publish daily",
			body:   `{"publish":true,"updateInterval":86400}`,
			want:   &forms.SyncSettings{Publish: true, UpdateInterval: forms.IntervalDaily},
			status: http.StatusOK,
		},
		{
			name:   "rejected interval",
			body:   `{"publish":false,"updateInterval":5}`,
			want:   &forms.SyncSettings{UpdateInterval: 5},
			err:    fmt.Errorf("update interval 5: %w", forms.ErrInvalidField),
			status: http.StatusBadRequest,
		},
		{name: "unknown field", body: `{"publish":true,"color":"red"}`, status: http.StatusBadRequest},
		{name: "not json", body: `publish`, status: http.StatusBadRequest},
		{
			name:   "missing form",
			body:   `{"publish":true}`,
			want:   &forms.SyncSettings{Publish: true},
			err:    forms.ErrNotFound,
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			svc := mocks.NewMockFormSyncService(ctrl)
			if tt.want != nil {
				svc.EXPECT().UpdateSyncSettings(gomock.Any(), "contact", *tt.want).DoAndReturn(
					func(_ context.Context, id string, s forms.SyncSettings) (*forms.Form, error) {
						if tt.err != nil {
							return nil, tt.err
						}
						f := forms.New(id)
						f.Sync = s
						return f, nil
					})
			}

			rr := do(t, svc, http.MethodPut, "/contact/sync", tt.body)
			require.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"id":"contact","publish":true,"updateInterval":86400}`, rr.Body.String())
			}
		})
	}
}

func TestDeleteForm(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	svc := mocks.NewMockFormSyncService(ctrl)
	svc.EXPECT().DeleteForm(gomock.Any(), "contact").Return(nil)
	svc.EXPECT().DeleteForm(gomock.Any(), "gone").Return(forms.ErrNotFound)

	assert.Equal(t, http.StatusNoContent, do(t, svc, http.MethodDelete, "/contact", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, svc, http.MethodDelete, "/gone", "").Code)
}
