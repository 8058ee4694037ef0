// Package module mounts self-contained HTTP surfaces under single-level
// path prefixes, each carrying its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wmsforge/stockroom/pkg/middleware"
)

// Module owns a path prefix. Incoming requests have the prefix stripped
// before the inner router sees them, so route patterns inside a module
// stay prefix-agnostic.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
}

// New creates a Module rooted at prefix, such as "/api". Panics on an
// empty, unrooted, or multi-level prefix since that is a programming error.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Handler returns the inner router wrapped in the module's middleware.
func (m *Module) Handler() http.Handler {
	return m.middleware.Apply(m.router)
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Serve dispatches the request to the inner router with the module
// prefix removed from the path.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	stripped := cloneRequest(req, trimPrefix(req.URL.Path, m.prefix))
	m.Handler().ServeHTTP(w, stripped)
}

// Use appends middleware to the module's stack.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

func cloneRequest(req *http.Request, path string) *http.Request {
	clone := new(http.Request)
	*clone = *req
	clone.URL = new(url.URL)
	*clone.URL = *req.URL
	clone.URL.Path = path
	clone.URL.RawPath = ""
	return clone
}

func trimPrefix(fullPath, prefix string) string {
	path := fullPath[len(prefix):]
	if path == "" {
		return "/"
	}
	return path
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}
