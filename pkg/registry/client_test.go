package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/glorpus-work/gleam-pkg/pkg/config"
	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/glorpus-work/gleam-pkg/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	cfg := config.DefaultConfig().Registry
	cfg.APIBase = serverURL + "/api/"
	cfg.RepositoryBase = serverURL + "/repo/"
	return NewClient(cfg)
}

func TestResolveMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/packages/demo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "gleam-pkg", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"demo","downloads":{"all":3},"releases":[{"version":"1.2.0","url":"x"},{"version":"1.1.0"}]}`))
	}))
	defer server.Close()

	meta, err := newTestClient(server.URL).ResolveMetadata(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", meta.Name)
	require.Len(t, meta.Releases, 2)
	assert.Equal(t, "1.2.0", meta.Releases[0].Version)
}

func TestResolveMetadata_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		op      string
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
			op: pkgerrors.OpStatus,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			op: pkgerrors.OpStatus,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>oops</html>`))
			},
			op: pkgerrors.OpDecode,
		},
		{
			name: "wrong field types",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"releases":"none"}`))
			},
			op: pkgerrors.OpDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := newTestClient(server.URL).ResolveMetadata(context.Background(), "demo")
			require.Error(t, err)
			assert.ErrorIs(t, err, pkgerrors.ErrRegistry)

			var re *pkgerrors.RegistryError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.op, re.Op)
		})
	}
}

func TestResolveMetadata_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(url).ResolveMetadata(context.Background(), "demo")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrRegistry)
	assert.False(t, pkgerrors.IsPersist(err))
}

func TestResolveMetadata_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig().Registry
	cfg.APIBase = server.URL + "/api/"
	cfg.HTTPTimeout = 20 * time.Millisecond

	_, err := NewClient(cfg).ResolveMetadata(context.Background(), "demo")
	assert.ErrorIs(t, err, pkgerrors.ErrRegistry)
}

func TestFetchArchive(t *testing.T) {
	payload := []byte("tar bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repo/tarballs/demo-1.2.0.tar":
			assert.Equal(t, "application/x-tar", r.Header.Get("Accept"))
			_, _ = w.Write(payload)
		case "/repo/tarballs/empty-1.0.0.tar":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	data, err := client.FetchArchive(context.Background(), model.PackageRef{Name: "demo", Version: "1.2.0"})
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = client.FetchArchive(context.Background(), model.PackageRef{Name: "empty", Version: "1.0.0"})
	var re *pkgerrors.RegistryError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, pkgerrors.OpEmpty, re.Op)

	_, err = client.FetchArchive(context.Background(), model.PackageRef{Name: "missing", Version: "1.0.0"})
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
}

func TestFetchArchive_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL).FetchArchive(ctx, model.PackageRef{Name: "demo", Version: "1.2.0"})
	assert.ErrorIs(t, err, pkgerrors.ErrRegistry)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveArchive(t *testing.T) {
	dir := t.TempDir()
	client := NewClient(config.DefaultConfig().Registry)
	ref := model.PackageRef{Name: "demo", Version: "1.2.0"}

	path, err := client.SaveArchive(dir, ref, []byte("tar bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "demo-1.2.0.tar"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tar bytes", string(content))
}

func TestSaveArchive_PersistError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping permission test on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	dir := filepath.Join(t.TempDir(), "readonly")
	require.NoError(t, os.Mkdir(dir, 0o555))

	_, err := NewClient(config.DefaultConfig().Registry).SaveArchive(dir, model.PackageRef{Name: "demo", Version: "1.2.0"}, []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrRegistry)
	assert.True(t, pkgerrors.IsPersist(err))
}
