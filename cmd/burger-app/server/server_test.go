package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/burger-e2e/pkg/fixture"
)

func startServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	_, err = srv.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv
}

func do(t *testing.T, method, url, auth, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestServerStartStop(t *testing.T) {
	srv, err := NewServer(DefaultConfig())
	require.NoError(t, err)

	addr, err := srv.Start()
	require.NoError(t, err)

	// Verify we got a real address (not :0)
	require.NotEmpty(t, addr)
	require.NotEqual(t, ":0", addr)
	assert.Equal(t, addr, srv.Addr())
	t.Logf("Server started on %s", addr)

	url := srv.URL() + "/"
	resp, err := http.Get(url)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `data-cy="order-button"`)
	assert.Contains(t, string(body), `id="modals"`)
	assert.Contains(t, string(body), `class="constructor"`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	_, err = http.Get(url)
	assert.Error(t, err, "expected connection error after shutdown")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":0", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "/api", cfg.APIBase)
	assert.Nil(t, cfg.Fixtures)
}

func TestServerDoubleStart(t *testing.T) {
	srv, err := NewServer(DefaultConfig())
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	addr1, err := srv.Start()
	require.NoError(t, err)

	// Second start should return same address (no error)
	addr2, err := srv.Start()
	require.NoError(t, err)
	assert.Equal(t, addr1, addr2)
}

func TestNewServerRequiresAPIBase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIBase = ""
	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestAppRoutesServeSPA(t *testing.T) {
	srv := startServer(t, DefaultConfig())

	resp, err := http.Get(srv.URL() + "/profile/orders")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestAPIWithoutBackend(t *testing.T) {
	srv := startServer(t, DefaultConfig())

	status, body := do(t, http.MethodGet, srv.URL()+"/api/ingredients", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestAbsoluteAPIBase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIBase = "http://api.example.test/api/"
	srv := startServer(t, cfg)

	resp, err := http.Get(srv.URL() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Contains(t, string(body), "api.example.test")
}

func TestBackendRequiresOrderNumber(t *testing.T) {
	fsys := fstest.MapFS{
		fixture.OrderResponse: {Data: []byte(`{"success":true,"order":{}}`)},
	}
	for _, name := range []string{fixture.Ingredients, fixture.User} {
		data, err := fixture.Embedded().Bytes(name)
		require.NoError(t, err)
		fsys[name] = &fstest.MapFile{Data: data}
	}

	cfg := DefaultConfig()
	cfg.Fixtures = fixture.FS(fsys)
	_, err := NewServer(cfg)
	assert.ErrorContains(t, err, "order.number is required")
}

func TestBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fixtures = fixture.Embedded()
	srv := startServer(t, cfg)
	api := srv.URL() + "/api"

	user, err := fixture.Embedded().User()
	require.NoError(t, err)

	t.Run("ingredients", func(t *testing.T) {
		status, body := do(t, http.MethodGet, api+"/ingredients", "", "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["success"])
		assert.Len(t, body["data"], 11)
	})

	t.Run("login", func(t *testing.T) {
		status, body := do(t, http.MethodPost, api+"/auth/login", "", `{"email":"a@b.c","password":"x"}`)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, user.RefreshToken, body["refreshToken"])

		status, _ = do(t, http.MethodPost, api+"/auth/login", "", `{}`)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("user requires token", func(t *testing.T) {
		status, _ := do(t, http.MethodGet, api+"/auth/user", "", "")
		assert.Equal(t, http.StatusForbidden, status)

		status, body := do(t, http.MethodGet, api+"/auth/user", user.AccessToken, "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, user.User.Name, body["user"].(map[string]any)["name"])
	})

	t.Run("orders", func(t *testing.T) {
		valid := `{"ingredients":["643d69a5c3f7b9001cfa093d","643d69a5c3f7b9001cfa0948","643d69a5c3f7b9001cfa093d"]}`

		status, _ := do(t, http.MethodPost, api+"/orders", "", valid)
		assert.Equal(t, http.StatusForbidden, status)

		status, _ = do(t, http.MethodPost, api+"/orders", user.AccessToken, `{"ingredients":[]}`)
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = do(t, http.MethodPost, api+"/orders", user.AccessToken, `{"ingredients":["nope"]}`)
		assert.Equal(t, http.StatusBadRequest, status)

		status, first := do(t, http.MethodPost, api+"/orders", user.AccessToken, valid)
		require.Equal(t, http.StatusOK, status)
		status, second := do(t, http.MethodPost, api+"/orders", user.AccessToken, valid)
		require.Equal(t, http.StatusOK, status)

		n1 := first["order"].(map[string]any)["number"].(float64)
		n2 := second["order"].(map[string]any)["number"].(float64)
		assert.Equal(t, float64(48352), n1)
		assert.Equal(t, n1+1, n2)
	})
}
