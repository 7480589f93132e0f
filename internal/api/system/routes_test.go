package system_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/formsync-server/internal/api/system"
	"github.com/stacklok/formsync-server/internal/service/mocks"
	"github.com/stacklok/formsync-server/internal/versions"
)

func TestRouter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		readyErr   error
		wantStatus int
		wantBody   string
	}{
		{name: "health", path: "/health", wantStatus: http.StatusOK, wantBody: `{"status":"healthy"}`},
		{name: "ready", path: "/readiness", wantStatus: http.StatusOK, wantBody: `{"status":"ready"}`},
		{
			name:       "not ready",
			path:       "/readiness",
			readyErr:   errors.New("database unreachable"),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"error":"service not ready: database unreachable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			svc := mocks.NewMockFormSyncService(ctrl)
			svc.EXPECT().CheckReadiness(gomock.Any()).Return(tt.readyErr).AnyTimes()

			rr := httptest.NewRecorder()
			system.Router(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	rr := httptest.NewRecorder()
	system.Router(mocks.NewMockFormSyncService(ctrl)).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var info versions.Info
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, versions.Get(), info)
}
