package health_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/natpac/tripcollect/internal/app/features/health"
	"github.com/natpac/tripcollect/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServe_DatabaseUp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := health.NewHandler(db.Client(), zap.NewNop())

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()

	h.Serve(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body.Status)
	require.Equal(t, "connected", body.Database)
}
