// Package devserver serves an icon font project during development.
//
// The server bundles the configured CSS entry points with esbuild, keeps the
// bundle in memory and rebuilds it whenever an entry or an icon changes. Font
// payloads are served from the plugin's asset registry under
// "/assets/<fontPath>/<fontName>.<format>"; the stylesheet bundle is served
// under its output name and, for convenience, as "/icons.css".
//
// Without entry points the bundle is a single stylesheet that imports the
// virtual module, which is enough to preview the generated CSS.
package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/iconfont/pkg/errors"
	"github.com/matzehuels/iconfont/pkg/observability"
	"github.com/matzehuels/iconfont/pkg/plugin"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:5173"

// stdinEntry is the bundle used when no entry points are configured.
const stdinEntry = `@import "` + plugin.VirtualModuleID + `";` + "\n"

// Config configures a Server.
type Config struct {
	// Addr is the listen address.
	Addr string

	// Entries are CSS entry points. Empty means a generated entry that only
	// imports icons.css.
	Entries []string

	// Public is an optional directory of static files served as-is.
	Public string

	Logger *log.Logger
}

// output is one in-memory bundle file.
type output struct {
	contents []byte
	mime     string
}

// Server is a development server for one icon font plugin.
type Server struct {
	cfg    Config
	plugin *plugin.Plugin
	router chi.Router
	logger *log.Logger
	outdir string

	mu      sync.RWMutex
	outputs map[string]output
	primary string
	errs    []string
	builds  int

	bctx api.BuildContext
}

// New creates a server for p. It switches the plugin to serve mode and
// registers the plugin's asset handlers.
func New(p *plugin.Plugin, cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	outdir, err := filepath.Abs(".iconfont-dev")
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		plugin:  p,
		logger:  cfg.Logger.WithPrefix("serve"),
		outdir:  outdir,
		outputs: make(map[string]output),
	}
	s.router = s.buildRouter()

	p.ConfigResolved(plugin.CommandServe)
	p.ConfigureServer(s)

	bctx, cerr := api.Context(s.buildOptions())
	if cerr != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, cerr, "create esbuild context")
	}
	s.bctx = bctx
	return s, nil
}

// Use implements plugin.Server.
func (s *Server) Use(pattern string, h http.Handler) {
	s.router.Handle(pattern, h)
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Rebuild runs one bundle synchronously and reports the esbuild errors.
func (s *Server) Rebuild() []string {
	s.bctx.Rebuild()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.errs...)
}

// ListenAndServe builds once, starts watching and serves until ctx is
// canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	defer s.bctx.Dispose()

	if errs := s.Rebuild(); len(errs) > 0 {
		s.logger.Warn("initial build failed; fix the errors and save to retry", "errors", len(errs))
	}
	if err := s.bctx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("dev server listening", "url", "http://"+ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("dev server stopped")
	return nil
}

// Close releases the esbuild context.
func (s *Server) Close() {
	s.bctx.Dispose()
}

// =============================================================================
// Routing
// =============================================================================

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/_iconfont/status", s.handleStatus)
	r.Get("/"+plugin.VirtualModuleID, s.handlePrimary)
	r.NotFound(s.handleOutput)
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state, lastErr := s.plugin.State()
	s.mu.RLock()
	body := map[string]any{
		"state":   state.String(),
		"builds":  s.builds,
		"errors":  s.errs,
		"glyphs":  len(s.plugin.Glyphs()),
		"formats": s.plugin.Registry().Formats(),
	}
	s.mu.RUnlock()
	if lastErr != nil {
		body["lastError"] = errors.UserMessage(lastErr)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// handlePrimary serves the main stylesheet bundle.
func (s *Server) handlePrimary(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out, ok := s.outputs[s.primary]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "icons.css has not been built", http.StatusServiceUnavailable)
		return
	}
	writeOutput(w, out)
}

// handleOutput serves bundle outputs, then public files.
func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out, ok := s.outputs[r.URL.Path]
	s.mu.RUnlock()
	if ok {
		writeOutput(w, out)
		return
	}
	if s.cfg.Public != "" && s.servePublic(w, r) {
		return
	}
	http.NotFound(w, r)
}

// servePublic serves a file from the public directory. Directories resolve
// to their index.html. It reports false when there is nothing to serve.
func (s *Server) servePublic(w http.ResponseWriter, r *http.Request) bool {
	name := filepath.Join(s.cfg.Public, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	info, err := os.Stat(name)
	if err == nil && info.IsDir() {
		name = filepath.Join(name, "index.html")
		info, err = os.Stat(name)
	}
	if err != nil || info.IsDir() {
		return false
	}
	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

func writeOutput(w http.ResponseWriter, out output) {
	w.Header().Set("Content-Type", out.mime)
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(out.contents)
}

// =============================================================================
// Bundling
// =============================================================================

func (s *Server) buildOptions() api.BuildOptions {
	opts := api.BuildOptions{
		Bundle:   true,
		Outdir:   s.outdir,
		Write:    false,
		LogLevel: api.LogLevelSilent,
		Plugins: []api.Plugin{
			s.plugin.ESBuild(context.Background()),
			s.collector(),
		},
	}
	if len(s.cfg.Entries) == 0 {
		wd, _ := os.Getwd()
		opts.Stdin = &api.StdinOptions{
			Contents:   stdinEntry,
			ResolveDir: wd,
			Sourcefile: plugin.VirtualModuleID,
			Loader:     api.LoaderCSS,
		}
	} else {
		opts.EntryPoints = s.cfg.Entries
	}
	return opts
}

// collector stores every finished bundle in memory.
func (s *Server) collector() api.Plugin {
	return api.Plugin{
		Name: "iconfont-dev-outputs",
		Setup: func(build api.PluginBuild) {
			var start time.Time
			build.OnStart(func() (api.OnStartResult, error) {
				start = time.Now()
				return api.OnStartResult{}, nil
			})
			build.OnEnd(func(res *api.BuildResult) (api.OnEndResult, error) {
				s.collect(res, time.Since(start))
				return api.OnEndResult{}, nil
			})
		},
	}
}

func (s *Server) collect(res *api.BuildResult, took time.Duration) {
	errs := make([]string, 0, len(res.Errors))
	for _, m := range res.Errors {
		errs = append(errs, m.Text)
	}
	observability.Serve().OnRebuild(context.Background(), took, len(errs))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds++
	s.errs = errs
	if len(errs) > 0 {
		for _, e := range errs {
			s.logger.Error("build failed", "err", e)
		}
		return
	}

	outputs := make(map[string]output, len(res.OutputFiles))
	var cssPaths []string
	for _, f := range res.OutputFiles {
		rel, err := filepath.Rel(s.outdir, f.Path)
		if err != nil {
			continue
		}
		urlPath := "/" + filepath.ToSlash(rel)
		outputs[urlPath] = output{contents: f.Contents, mime: mimeFor(urlPath)}
		if strings.HasSuffix(urlPath, ".css") {
			cssPaths = append(cssPaths, urlPath)
		}
	}
	sort.Strings(cssPaths)
	s.outputs = outputs
	s.primary = ""
	if len(cssPaths) > 0 {
		s.primary = cssPaths[0]
	}
	s.logger.Info("rebuilt", "outputs", len(outputs), "duration", took.Round(time.Millisecond))
}

func mimeFor(p string) string {
	switch filepath.Ext(p) {
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".map":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
