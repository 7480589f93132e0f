package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAndValidateURLParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		wantValue  string
		wantErrMsg string
	}{
		{name: "plain id", path: "/forms/contact", wantValue: "contact"},
		{name: "suffixed id", path: "/forms/contact_00", wantValue: "contact_00"},
		{name: "encoded slash", path: "/forms/a%2Fb", wantValue: "a/b"},
		{name: "encoded space only", path: "/forms/%20", wantErrMsg: "id cannot be empty"},
		{name: "space in middle", path: "/forms/con%20tact", wantErrMsg: "id cannot contain whitespace"},
		{name: "tab at end", path: "/forms/contact%09", wantErrMsg: "id cannot contain whitespace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				got    string
				gotErr error
			)
			r := chi.NewRouter()
			r.Get("/forms/{id}", func(_ http.ResponseWriter, req *http.Request) {
				got, gotErr = GetAndValidateURLParam(req, "id")
			})
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			if tt.wantErrMsg != "" {
				require.Error(t, gotErr)
				assert.Equal(t, tt.wantErrMsg, gotErr.Error())
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, tt.wantValue, got)
		})
	}

	t.Run("no route context", func(t *testing.T) {
		t.Parallel()

		_, err := GetAndValidateURLParam(httptest.NewRequest(http.MethodGet, "/forms/x", nil), "id")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})
}

func TestRequiredURLQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  string
		want    string
		wantErr string
	}{
		{name: "absolute url", target: "/import?url=https%3A%2F%2Fremote.example%2Fjsonapi%2Fwebforms%2Fcontact", want: "https://remote.example/jsonapi/webforms/contact"},
		{name: "missing", target: "/import", wantErr: "url query parameter is required"},
		{name: "blank", target: "/import?url=%20", wantErr: "url query parameter is required"},
		{name: "relative", target: "/import?url=%2Fjsonapi%2Fwebforms", wantErr: "url must be an absolute URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RequiredURLQuery(httptest.NewRequest(http.MethodPost, tt.target, nil), "url")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

