// Package testutil provides fixtures shared by package and integration tests:
// an in-memory registry, release tarballs and a stand-in gleam toolchain.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Registry is a fake package registry serving metadata under /api/ and
// release tarballs under /repo/.
type Registry struct {
	Server *httptest.Server

	mu       sync.Mutex
	packages map[string][]string
	tarballs map[string][]byte
	requests []string
}

// NewRegistry starts a fake registry that is closed when the test ends.
func NewRegistry(t *testing.T) *Registry {
	t.Helper()
	r := &Registry{
		packages: make(map[string][]string),
		tarballs: make(map[string][]byte),
	}
	r.Server = httptest.NewServer(http.HandlerFunc(r.serve))
	t.Cleanup(r.Server.Close)
	return r
}

// APIBase is the value for registry.api_base.
func (r *Registry) APIBase() string {
	return r.Server.URL + "/api/"
}

// RepositoryBase is the value for registry.repository_base.
func (r *Registry) RepositoryBase() string {
	return r.Server.URL + "/repo/"
}

// AddPackage publishes name with versions listed in the given order. The
// tarball is served for the first version.
func (r *Registry) AddPackage(name string, versions []string, tarball []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packages[name] = versions
	if len(versions) > 0 {
		r.tarballs[name+"-"+versions[0]+".tar"] = tarball
	}
}

// Requests returns the paths requested so far.
func (r *Registry) Requests() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.requests...)
}

func (r *Registry) serve(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.requests = append(r.requests, req.URL.Path)
	r.mu.Unlock()

	switch {
	case strings.HasPrefix(req.URL.Path, "/api/packages/"):
		r.serveMetadata(w, strings.TrimPrefix(req.URL.Path, "/api/packages/"))
	case strings.HasPrefix(req.URL.Path, "/repo/tarballs/"):
		r.serveTarball(w, strings.TrimPrefix(req.URL.Path, "/repo/tarballs/"))
	default:
		http.NotFound(w, req)
	}
}

func (r *Registry) serveMetadata(w http.ResponseWriter, name string) {
	r.mu.Lock()
	versions, ok := r.packages[name]
	r.mu.Unlock()
	if !ok {
		http.Error(w, `{"status":404,"message":"Page not found"}`, http.StatusNotFound)
		return
	}

	releases := make([]map[string]string, 0, len(versions))
	for _, v := range versions {
		releases = append(releases, map[string]string{
			"version":     v,
			"inserted_at": "2024-05-01T10:00:00.000000Z",
			"url":         "https://hex.pm/api/packages/" + name + "/releases/" + v,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"name":     name,
		"releases": releases,
		"meta":     map[string]interface{}{"licenses": []string{"Apache-2.0"}},
	})
}

func (r *Registry) serveTarball(w http.ResponseWriter, file string) {
	r.mu.Lock()
	data, ok := r.tarballs[file]
	r.mu.Unlock()
	if !ok {
		http.NotFound(w, nil)
		return
	}
	w.Header().Set("Content-Type", "application/x-tar")
	_, _ = w.Write(data)
}
