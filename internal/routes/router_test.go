package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/testutil"
)

func TestSetupRouter_Routes(t *testing.T) {
	_, router, _, _ := testutil.SetupTestDB(t)

	t.Run("no redirect for trailing slash", func(t *testing.T) {
		resp := testutil.DoRequest(t, router, http.MethodGet, "/todos/", nil)
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp := testutil.DoRequest(t, router, http.MethodPatch, "/todos/1", `{}`)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		resp := testutil.DoRequest(t, router, http.MethodGet, "/unknown", nil)
		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.JSONEq(t, `{"detail":"Not Found"}`, resp.Body.String())
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/todos", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusNoContent, resp.Code)
		assert.Equal(t, "http://localhost:3000", resp.Header().Get("Access-Control-Allow-Origin"))
	})
}
