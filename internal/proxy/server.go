// Package proxy implements the Maven artifact proxy: a caching HTTP front
// for an S3 bucket. Files are served from a local cache directory and
// fetched on miss. The proxy shares its credential chain with the watcher
// through the AWS CLI config; it has no other interface to the renewal core.
package proxy

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/proxy/accesslog"
)

// Server serves cached artifacts and fetches misses from upstream.
type Server struct {
	CacheDir string
	Fetcher  Fetcher
	Access   *accesslog.Store // optional
	Logger   *slog.Logger

	metrics *Metrics
}

// NewServer assembles a Server and registers its metrics on reg.
func NewServer(cacheDir string, fetcher Fetcher, access *accesslog.Store, reg prometheus.Registerer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Server{
		CacheDir: cacheDir,
		Fetcher:  fetcher,
		Access:   access,
		Logger:   logger,
		metrics:  NewMetrics(reg),
	}
}

// Handler builds the HTTP routing.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Handle("/*", http.HandlerFunc(s.serveArtifact))

	return r
}

// serveArtifact is the main request path: cache hit, cache miss with
// upstream fetch, or directory listing.
func (s *Server) serveArtifact(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key, ok := cleanKey(req.URL.Path)
	if !ok {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	local := filepath.Join(s.CacheDir, filepath.FromSlash(key))

	if key == "" || isDir(local) || strings.HasSuffix(req.URL.Path, "/") {
		s.listing(w, req, key)
		return
	}

	if _, err := os.Stat(local); err == nil {
		s.Logger.Debug("cache hit", "key", key)
		s.metrics.CacheHits.Inc()
		http.ServeFile(w, req, local)
		return
	}

	s.Logger.Info("cache miss", "key", key)
	s.metrics.CacheMisses.Inc()

	start := time.Now()
	err := s.Fetcher.Fetch(req.Context(), key, local)
	s.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		s.record(req, key)
		http.ServeFile(w, req, local)
	case errors.Is(err, ErrObjectNotFound):
		s.metrics.NotFound.Inc()
		http.NotFound(w, req)
	default:
		s.metrics.FetchErrors.Inc()
		s.Logger.Error("upstream fetch failed", "key", key, "err", err)
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
	}
}

func (s *Server) record(req *http.Request, key string) {
	if s.Access == nil {
		return
	}
	if err := s.Access.Record(req.Context(), key, time.Now()); err != nil {
		s.Logger.Warn("failed to record artifact access", "key", key, "err", err)
	}
}

// listing renders the merged cache/upstream directory index.
func (s *Server) listing(w http.ResponseWriter, req *http.Request, prefix string) {
	entries := map[string]Entry{}

	s3Prefix := prefix
	if s3Prefix != "" && !strings.HasSuffix(s3Prefix, "/") {
		s3Prefix += "/"
	}
	upstream, err := s.Fetcher.List(req.Context(), s3Prefix)
	if err != nil {
		// Listing still works from the cache alone; credential expiry
		// must not take browsing down with it.
		s.Logger.Error("upstream listing failed", "prefix", s3Prefix, "err", err)
	}
	for _, e := range upstream {
		entries[e.Name] = e
	}

	localDir := filepath.Join(s.CacheDir, filepath.FromSlash(prefix))
	if dirEntries, err := os.ReadDir(localDir); err == nil {
		for _, de := range dirEntries {
			e := Entry{Name: de.Name(), Dir: de.IsDir(), Source: "cache"}
			if info, err := de.Info(); err == nil && !de.IsDir() {
				e.Size = info.Size()
				e.Modified = info.ModTime()
			}
			// Cache entries win over upstream duplicates.
			entries[e.Name] = e
		}
	}

	merged := make([]Entry, 0, len(entries))
	for _, e := range entries {
		merged = append(merged, e)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })

	display := "/" + prefix
	parent := ""
	if prefix != "" {
		parent = path.Dir(strings.TrimSuffix(prefix, "/"))
		if parent == "." {
			parent = ""
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = listingTmpl.Execute(w, listingData{
		Prefix:    display,
		HasParent: prefix != "",
		ParentURL: "/" + parent,
		Base:      strings.TrimSuffix("/"+prefix, "/"),
		Entries:   merged,
	})
	if err != nil {
		s.Logger.Error("failed to render listing", "err", err)
	}
}

// cleanKey normalizes the request path to a bucket key and rejects
// traversal attempts.
func cleanKey(p string) (string, bool) {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "", true
	}
	if strings.Contains(p, "..") {
		return "", false
	}
	return strings.TrimPrefix(path.Clean("/"+p), "/"), true
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

type listingData struct {
	Prefix    string
	HasParent bool
	ParentURL string
	Base      string
	Entries   []Entry
}

var listingTmpl = template.Must(template.New("listing").Funcs(template.FuncMap{
	"size": func(e Entry) string {
		if e.Dir {
			return "-"
		}
		return fmt.Sprintf("%d bytes", e.Size)
	},
	"modified": func(e Entry) string {
		if e.Modified.IsZero() {
			return "-"
		}
		return e.Modified.Format("2006-01-02 15:04:05")
	},
	"display": func(e Entry) string {
		if e.Dir {
			return e.Name + "/"
		}
		return e.Name
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Maven Repository: {{.Prefix}}</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; }
    table { width: 100%; border-collapse: collapse; }
    th, td { text-align: left; padding: 8px; border-bottom: 1px solid #ddd; }
    th { background-color: #f2f2f2; }
    .directory { font-weight: bold; }
    .size { text-align: right; }
  </style>
</head>
<body>
  <h1>Maven Repository: {{.Prefix}}</h1>
  <table>
    <tr><th>Name</th><th class="size">Size</th><th>Last Modified</th><th>Source</th></tr>
    {{if .HasParent}}<tr><td class="directory"><a href="{{.ParentURL}}">..</a></td><td class="size">-</td><td>-</td><td>-</td></tr>{{end}}
    {{range .Entries}}
    <tr>
      <td{{if .Dir}} class="directory"{{end}}><a href="{{$.Base}}/{{.Name}}">{{display .}}</a></td>
      <td class="size">{{size .}}</td>
      <td>{{modified .}}</td>
      <td>{{.Source}}</td>
    </tr>
    {{end}}
  </table>
</body>
</html>
`))
