package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanwaits/openpkg"
	"github.com/ryanwaits/openpkg/resolve"
	rt "github.com/ryanwaits/openpkg/resolve/resolvetest"
)

// fixtureLoader serves a single fully documented function for any package
// pattern and counts loads so cache behavior is observable.
func fixtureLoader(loads *atomic.Int64) Loader {
	return func(ctx context.Context, pkg, dir string) (resolve.Resolver, error) {
		if pkg == "example.com/missing" {
			return nil, errors.New("no packages matched")
		}
		loads.Add(1)
		decl := rt.Func("Add", `Adds two numbers.

@param {number} a - First operand.
@param {number} b - Second operand.
@returns {number} The sum.`,
			rt.Sig(rt.Num(), "number",
				rt.P("a", rt.Num(), "number"),
				rt.P("b", rt.Num(), "number")))
		return rt.New(decl), nil
	}
}

func newTestServer(t *testing.T, cfg Config) (*Server, *atomic.Int64) {
	t.Helper()
	var loads atomic.Int64
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(openpkg.New(openpkg.Config{}, openpkg.WithLogger(logger)), cfg,
		WithLoader(fixtureLoader(&loads)),
		WithLogger(logger))
	return s, &loads
}

func TestAnalyzeEndpoint(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	handler := s.Handler()

	body := strings.NewReader(`{"packages": ["example.com/pkg"]}`)
	req := httptest.NewRequest("POST", "/v1/analyze", body)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got struct {
		Result struct {
			Packages map[string]struct {
				Meta struct {
					Name string `json:"name"`
				} `json:"meta"`
				Exports []struct {
					Name string `json:"name"`
					Docs struct {
						CoverageScore int `json:"coverageScore"`
					} `json:"docs"`
				} `json:"exports"`
			} `json:"packages"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

	pkg, ok := got.Result.Packages["example.com/pkg"]
	require.True(t, ok, "response missing requested package")
	assert.Equal(t, "fixture", pkg.Meta.Name)
	require.Len(t, pkg.Exports, 1)
	assert.Equal(t, "Add", pkg.Exports[0].Name)
	assert.Equal(t, 75, pkg.Exports[0].Docs.CoverageScore) // no example
}

func TestAnalyzeEndpoint_Validation(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	handler := s.Handler()

	for _, body := range []string{`{}`, `{"packages": []}`, `not json`} {
		req := httptest.NewRequest("POST", "/v1/analyze", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)

		var got struct {
			Error *Error `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got), "body %q", body)
		require.NotNil(t, got.Error)
		assert.Equal(t, CodeInvalidArgument, got.Error.Code)
	}
}

func TestBadgeEndpoint(t *testing.T) {
	s, _ := newTestServer(t, Config{CoverageThreshold: 70})
	handler := s.Handler()

	req := httptest.NewRequest("GET", "/v1/badge?pkg=example.com/pkg", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got badge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.SchemaVersion)
	assert.Equal(t, "docs", got.Label)
	assert.Equal(t, "75%", got.Message)
	assert.Equal(t, "brightgreen", got.Color)
}

func TestBadgeEndpoint_ColorThreshold(t *testing.T) {
	// Fixture scores 75; with a threshold of 90 the badge is yellow.
	s, _ := newTestServer(t, Config{CoverageThreshold: 90})
	handler := s.Handler()

	req := httptest.NewRequest("GET", "/v1/badge?pkg=example.com/pkg", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got badge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "yellow", got.Color)
}

func TestBadgeEndpoint_MissingPkg(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	handler := s.Handler()

	req := httptest.NewRequest("GET", "/v1/badge", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSpecEndpoint(t *testing.T) {
	s, loads := newTestServer(t, Config{CacheTTL: time.Minute})
	handler := s.Handler()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/v1/spec/example.com/pkg", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var got struct {
			Result struct {
				Exports []struct {
					Name string `json:"name"`
				} `json:"exports"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got.Result.Exports, 1)
		assert.Equal(t, "Add", got.Result.Exports[0].Name)
	}

	assert.Equal(t, int64(1), loads.Load(), "second request should hit the cache")
}

func TestSpecEndpoint_NotFound(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	handler := s.Handler()

	req := httptest.NewRequest("GET", "/v1/spec/example.com/missing", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var got struct {
		Error *Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.Error)
	assert.Equal(t, CodeNotFound, got.Error.Code)
}

func TestSpecCacheExpiry(t *testing.T) {
	c := newSpecCache(time.Millisecond)
	c.put("k", nil)
	// Entry with nil spec still counts as present until it expires.
	if _, ok := c.get("k"); !ok {
		t.Skip("entry expired before read; timing too tight on this host")
	}
	time.Sleep(5 * time.Millisecond)
	_, ok := c.get("k")
	assert.False(t, ok)
}
