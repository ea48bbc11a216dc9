package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/echoverse/core/internal/models"
	"github.com/echoverse/core/internal/pkg/securitylog"
	"github.com/echoverse/core/internal/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGate(t *testing.T, users map[string]*models.UserModel) (*AuthGate, *session.Store, string) {
	t.Helper()
	store := session.NewStore(24 * time.Hour)
	logPath := filepath.Join(t.TempDir(), "security.log")
	audit, err := securitylog.New(logPath, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { audit.Close() })

	gate := NewAuthGate(store, func(id string) (*models.UserModel, error) {
		return users[id], nil
	}, audit)
	return gate, store, logPath
}

func newTestRouter(gate *AuthGate) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", gate.Required(), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Username})
	})
	r.GET("/admin", gate.Required(), gate.AdminOnly(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func denialBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequiredRejectsMissingAndBogusTokens(t *testing.T) {
	gate, _, _ := newTestGate(t, nil)
	r := newTestRouter(gate)

	for _, token := range []string{"", "never-issued"} {
		w := doGet(r, "/private", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := denialBody(t, w)
		assert.Equal(t, false, body["success"])
	}
}

func TestRequiredResolvesUser(t *testing.T) {
	users := map[string]*models.UserModel{
		"u-1": {Base: models.Base{ID: "u-1"}, Username: "alice"},
	}
	gate, store, _ := newTestGate(t, users)
	r := newTestRouter(gate)

	token := store.Create("u-1")
	w := doGet(r, "/private", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestBannedUserDenied(t *testing.T) {
	users := map[string]*models.UserModel{
		"u-1": {Base: models.Base{ID: "u-1"}, Username: "alice", Banned: true},
	}
	gate, store, _ := newTestGate(t, users)
	r := newTestRouter(gate)

	token := store.Create("u-1")
	w := doGet(r, "/private", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRequiresBothFlags(t *testing.T) {
	users := map[string]*models.UserModel{
		"dev":  {Base: models.Base{ID: "dev"}, Username: "devonly", IsDeveloper: true},
		"adm":  {Base: models.Base{ID: "adm"}, Username: "admonly", IsAdmin: true},
		"both": {Base: models.Base{ID: "both"}, Username: "root", IsDeveloper: true, IsAdmin: true},
	}
	gate, store, logPath := newTestGate(t, users)
	r := newTestRouter(gate)

	devToken := store.Create("dev")
	w := doGet(r, "/admin", devToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, false, denialBody(t, w)["success"])

	admToken := store.Create("adm")
	w = doGet(r, "/admin", admToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	bothToken := store.Create("both")
	w = doGet(r, "/admin", bothToken)
	assert.Equal(t, http.StatusOK, w.Code)

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "User: dev (devonly) | Action: ADMIN_ACCESS")
	assert.Contains(t, string(content), "FAILED")
}

func TestExpiredSessionDenied(t *testing.T) {
	users := map[string]*models.UserModel{
		"u-1": {Base: models.Base{ID: "u-1"}, Username: "alice"},
	}
	gate, store, _ := newTestGate(t, users)
	r := newTestRouter(gate)

	current := time.Now()
	store.SetClock(func() time.Time { return current })
	token := store.Create("u-1")

	current = current.Add(25 * time.Hour)
	w := doGet(r, "/private", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
