package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-results-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-results-go/internal/testutil"
	"github.com/ovaphlow/pitchfork/service-results-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-results-go/internal/user/repo"
)

func newServer(t *testing.T, prefix string) (*httptest.Server, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "test.png"), []byte("png-bytes"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "report.txt"), []byte("grades"), 0o644))

	db := testutil.OpenSQLite(t)
	repo := userrepo.NewUserRepo(db)
	require.NoError(t, repo.EnsureTable(context.Background()))
	svc := user.NewUserService(db, repo, nil)
	issuer, err := session.NewIssuer(session.Config{}, session.NewMemoryStore(), nil)
	require.NoError(t, err)

	cfg := Config{APIPrefix: prefix, FileRoot: root, CORSOrigins: []string{"*"}}
	srv := httptest.NewServer(RegisterRoutes(zap.NewNop().Sugar(), cfg, svc, issuer))
	t.Cleanup(srv.Close)
	return srv, root
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, method, url, token, body string) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("satoken", token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestAuthFlow(t *testing.T) {
	srv, _ := newServer(t, "/api")
	base := srv.URL + "/api"

	_, env := doJSON(t, http.MethodPost, base+"/register", "", `{"username":"alice","password":"pw1"}`)
	require.True(t, env.Success)
	assert.Equal(t, 201, env.Code)

	_, env = doJSON(t, http.MethodPost, base+"/register", "", `{"username":"alice","password":"pw2"}`)
	assert.False(t, env.Success)
	assert.Equal(t, 400, env.Code)

	resp, env := doJSON(t, http.MethodPost, base+"/login", "", `{"username":"alice","password":"pw1"}`)
	require.True(t, env.Success)
	assert.Equal(t, 200, env.Code)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	var info session.TokenInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))

	resp, _ = doJSON(t, http.MethodGet, base+"/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, env = doJSON(t, http.MethodGet, base+"/users?current=1&size=10", info.TokenValue, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	_, env = doJSON(t, http.MethodGet, base+"/session", info.TokenValue, "")
	assert.True(t, env.Success)

	_, env = doJSON(t, http.MethodPost, base+"/logout", info.TokenValue, "")
	assert.True(t, env.Success)

	resp, _ = doJSON(t, http.MethodGet, base+"/session", info.TokenValue, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, env = doJSON(t, http.MethodPost, base+"/login", "", `{"username":"alice","password":"nope"}`)
	assert.False(t, env.Success)
	assert.Equal(t, 404, env.Code)
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestStaticFiles(t *testing.T) {
	srv, _ := newServer(t, "/api")

	code, body := get(t, srv.URL+"/api/files/test.png")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "png-bytes", body)

	code, body = get(t, srv.URL+"/api/files/sub/report.txt")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "grades", body)

	code, _ = get(t, srv.URL+"/api/files/missing.png")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get(t, srv.URL+"/api/files/sub/")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get(t, srv.URL+"/api/files/../../etc/passwd")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get(t, srv.URL+"/files/test.png")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEmptyPrefix(t *testing.T) {
	srv, _ := newServer(t, "")

	code, body := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, _ = get(t, srv.URL+"/files/test.png")
	assert.Equal(t, http.StatusOK, code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newServer(t, "/api")

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("FILE_STORAGE_PATH", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("API_PREFIX", "api/")

	cfg := ConfigFromEnv()
	assert.Equal(t, "0.0.0.0:8066", cfg.Addr)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "uploads", cfg.FileRoot)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "", normalizePrefix(""))
	assert.Equal(t, "", normalizePrefix("/"))
	assert.Equal(t, "/api", normalizePrefix("/api/"))
	assert.Equal(t, "/api/v1", normalizePrefix("api/v1"))
}
