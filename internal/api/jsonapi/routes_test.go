package jsonapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/formsync-server/internal/api/common"
	"github.com/stacklok/formsync-server/internal/catalog"
	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/provenance"
	"github.com/stacklok/formsync-server/internal/service"
	"github.com/stacklok/formsync-server/internal/service/mocks"
)

const baseURL = "https://site.example"

func contactForm() *forms.Form {
	f := forms.New("contact")
	f.UUID = "5b0c2a4e-6f0e-4c55-9a8e-3d2f5a1b7c9d"
	f.Title = "Contact"
	f.Elements = "name:\n  '#type': textfield\n"
	f.Sync.Publish = true
	return f
}

func serve(t *testing.T, svc service.FormSyncService, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	Router(svc, catalog.NewEncoder(baseURL)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestListPublished(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		forms  []*forms.Form
		err    error
		status int
		check  func(t *testing.T, body gjson.Result)
	}{
		{
			name:   "published forms",
			forms:  []*forms.Form{contactForm()},
			status: http.StatusOK,
			check: func(t *testing.T, body gjson.Result) {
				t.Helper()
				assert.Equal(t, baseURL+"/jsonapi/webforms", body.Get("links.self").String())
				assert.Equal(t, int64(1), body.Get("data.#").Int())
				assert.Equal(t, "contact", body.Get("data.0.id").String())
				assert.Equal(t, "webform", body.Get("data.0.type").String())
				assert.Equal(t, baseURL+"/jsonapi/webforms/contact", body.Get("data.0.links.self").String())
				assert.Equal(t, "textfield", body.Get(`data.0.attributes.elements.name.\#type`).String())
			},
		},
		{
			name:   "nothing published",
			forms:  []*forms.Form{},
			status: http.StatusOK,
			check: func(t *testing.T, body gjson.Result) {
				t.Helper()
				assert.True(t, body.Get("data").IsArray())
				assert.Zero(t, body.Get("data.#").Int())
			},
		},
		{
			name:   "storage failure",
			err:    errors.New("connection refused"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			svc := mocks.NewMockFormSyncService(ctrl)
			svc.EXPECT().ListPublished(gomock.Any()).Return(tt.forms, tt.err)

			rr := serve(t, svc, "/")
			assert.Equal(t, tt.status, rr.Code)
			if tt.check != nil {
				assert.Equal(t, common.ContentTypeJSONAPI, rr.Header().Get("Content-Type"))
				tt.check(t, gjson.ParseBytes(rr.Body.Bytes()))
			}
		})
	}
}

func TestShowPublished(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		form   *forms.Form
		err    error
		status int
	}{
		{name: "published", form: contactForm(), status: http.StatusOK},
		{name: "not published", err: service.ErrNotPublished, status: http.StatusForbidden},
		{name: "missing", err: forms.ErrNotFound, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			svc := mocks.NewMockFormSyncService(ctrl)
			svc.EXPECT().GetPublished(gomock.Any(), "contact").Return(tt.form, tt.err)

			rr := serve(t, svc, "/contact")
			require.Equal(t, tt.status, rr.Code)
			if tt.form == nil {
				return
			}
			body := gjson.ParseBytes(rr.Body.Bytes())
			assert.Equal(t, "contact", body.Get("data.id").String())
			assert.Equal(t, tt.form.UUID, body.Get("data.attributes.uuid").String())
			assert.Equal(t, baseURL+"/jsonapi/webforms/contact", body.Get("links.self").String())
			assert.False(t, body.Get("data.links").Exists())
		})
	}
}

func TestListImported(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := mocks.NewMockFormSyncService(ctrl)
	svc.EXPECT().ListImported(gomock.Any()).Return([]*provenance.Record{{
		LocalFormID: "contact",
		SourceURL:   "https://remote.example/jsonapi/webforms/contact",
		RawSource:   `{"data":{}}`,
		CreatedAt:   now,
		UpdatedAt:   now.Add(time.Hour),
	}}, nil)

	rr := serve(t, svc, "/imported")
	require.Equal(t, http.StatusOK, rr.Code)

	item := gjson.GetBytes(rr.Body.Bytes(), "data.0")
	assert.Equal(t, "imported_webform", item.Get("type").String())
	assert.Equal(t, "https://remote.example/jsonapi/webforms/contact", item.Get("attributes.sourceUrl").String())
	assert.Equal(t, "2026-03-01T13:00:00Z", item.Get("attributes.updatedAt").String())
	assert.Equal(t, baseURL+"/webforms/contact/imported", item.Get("links.self").String())
}

func TestListAvailable(t *testing.T) {
	t.Parallel()

	entries := []catalog.Entry{
		{ID: "contact", Type: catalog.TypeWebform, SourceURL: "https://a.example/jsonapi/webforms/contact"},
		{ID: "survey", Type: catalog.TypeWebform, SourceURL: "https://b.example/jsonapi/webforms/survey"},
	}

	tests := []struct {
		name    string
		entries []catalog.Entry
		want    []string
	}{
		{name: "entries", entries: entries, want: []string{"contact", "survey"}},
		{name: "no sources", entries: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			svc := mocks.NewMockFormSyncService(ctrl)
			svc.EXPECT().ListAvailable(gomock.Any()).Return(tt.entries, nil)

			rr := serve(t, svc, "/available")
			require.Equal(t, http.StatusOK, rr.Code)

			data := gjson.GetBytes(rr.Body.Bytes(), "data")
			require.True(t, data.IsArray())
			ids := []string{}
			for _, item := range data.Array() {
				ids = append(ids, item.Get("id").String())
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
