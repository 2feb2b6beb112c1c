package plugin

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/iconfont/pkg/errors"
	"github.com/matzehuels/iconfont/pkg/options"
	"github.com/matzehuels/iconfont/pkg/registry"
	"github.com/matzehuels/iconfont/pkg/samples"
)

// fakeHost records every host callback.
type fakeHost struct {
	watched []string
	emitted map[string][]byte
}

func newFakeHost() *fakeHost { return &fakeHost{emitted: make(map[string][]byte)} }

func (h *fakeHost) AddWatchFile(path string) { h.watched = append(h.watched, path) }

func (h *fakeHost) EmitFile(name string, data []byte) error {
	h.emitted[name] = data
	return nil
}

// muxServer is a Server on top of http.ServeMux.
type muxServer struct{ *http.ServeMux }

func (s muxServer) Use(path string, h http.Handler) { s.Handle(path, h) }

func iconDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "icons")
	if _, err := samples.WriteTo(dir, false, names...); err != nil {
		t.Fatal(err)
	}
	return dir
}

// materialise runs the full resolve → load → transform sequence.
func materialise(t *testing.T, p *Plugin, host Host) string {
	t.Helper()
	id, ok := p.ResolveID(host, VirtualModuleID)
	if !ok {
		t.Fatal("ResolveID did not claim icons.css")
	}
	code, ok := p.Load(id)
	if !ok {
		t.Fatal("Load did not answer icons.css")
	}
	out, handled, err := p.Transform(context.Background(), host, code, id)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if !handled {
		t.Fatal("Transform did not handle the sentinel")
	}
	return out
}

func TestIdentity(t *testing.T) {
	p := New(options.Config{})
	if p.Name() != "webfont-icons" || p.Enforce() != "pre" {
		t.Errorf("Name/Enforce = %q/%q", p.Name(), p.Enforce())
	}
	if ResolvedVirtualModuleID != "\x00icons.css" {
		t.Errorf("ResolvedVirtualModuleID = %q", ResolvedVirtualModuleID)
	}
}

func TestResolveID(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		source  string
		claimed bool
		watched int
	}{
		{"build", CommandBuild, "icons.css", true, 0},
		{"serve", CommandServe, "icons.css", true, 2},
		{"other module", CommandServe, "main.css", false, 0},
		{"resolved form", CommandServe, "\x00icons.css", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(options.Config{Dirs: []string{"a", "b/"}})
			p.ConfigResolved(tt.cmd)
			host := newFakeHost()
			id, ok := p.ResolveID(host, tt.source)
			if ok != tt.claimed {
				t.Fatalf("ResolveID(%q) claimed = %v", tt.source, ok)
			}
			if ok && id != VirtualModuleID {
				t.Errorf("ResolveID id = %q", id)
			}
			if len(host.watched) != tt.watched {
				t.Errorf("watched = %v, want %d globs", host.watched, tt.watched)
			}
			if tt.watched > 0 {
				if diff := cmp.Diff([]string{"a/**/*.svg", "b/**/*.svg"}, host.watched); diff != "" {
					t.Errorf("watched mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	p := New(options.Config{})
	if code, ok := p.Load("icons.css"); !ok || code != ResolvedVirtualModuleID {
		t.Errorf("Load(icons.css) = %q, %v", code, ok)
	}
	if _, ok := p.Load("other.css"); ok {
		t.Error("Load should ignore other ids")
	}
}

func TestTransformIgnoresOtherCode(t *testing.T) {
	p := New(options.Config{})
	out, handled, err := p.Transform(context.Background(), newFakeHost(), "body{}", "main.css")
	if handled || out != "" || err != nil {
		t.Errorf("Transform(other) = %q, %v, %v", out, handled, err)
	}
	if s, _ := p.State(); s != StateIdle {
		t.Errorf("state = %s, want idle", s)
	}
}

func TestTwoArrows(t *testing.T) {
	p := New(options.Config{Dirs: []string{iconDir(t, "arrow-left.svg", "arrow-right.svg")}})
	host := newFakeHost()
	out := materialise(t, p, host)

	for _, want := range []string{
		`.icon-arrow-left::before { content: '\e001';}`,
		`.icon-arrow-right::before { content: '\e002';}`,
	} {
		if strings.Count(out, want) != 1 {
			t.Errorf("css should contain %q exactly once", want)
		}
	}
	if s, err := p.State(); s != StateReady || err != nil {
		t.Errorf("state = %s, %v; want ready", s, err)
	}
	if len(p.Glyphs()) != 2 {
		t.Errorf("Glyphs() = %v", p.Glyphs())
	}

	// Build mode emits every default format.
	for _, f := range options.DefaultFormats() {
		name := "assets/fonts/AppIcons." + string(f)
		if len(host.emitted[name]) == 0 {
			t.Errorf("%s was not emitted", name)
		}
		if !p.Registry().Has(f) {
			t.Errorf("registry lacks %s", f)
		}
	}
}

func TestCustomSelector(t *testing.T) {
	p := New(options.Config{Dirs: []string{iconDir(t, "star.svg")}, Selector: ".ico"})
	out := materialise(t, p, newFakeHost())

	if !strings.Contains(out, `.ico-star::before { content: '\e001';}`) {
		t.Errorf("css lacks .ico-star rule:\n%s", out)
	}
	if !strings.Contains(out, `font-family: "AppIcons";`) {
		t.Error("css lacks the default font family")
	}
}

func TestSingleFormat(t *testing.T) {
	p := New(options.Config{Dirs: []string{iconDir(t, "star.svg")}, Formats: []string{"woff2"}})
	host := newFakeHost()
	out := materialise(t, p, host)

	if !strings.Contains(out, "@font-face") {
		t.Error("@font-face must still be generated")
	}
	if !strings.Contains(out, `url("/assets/fonts/AppIcons.woff2") format("woff2")`) {
		t.Errorf("css lacks the woff2 source:\n%s", out)
	}
	for _, f := range []string{"eot", "woff\"", "ttf", "svg"} {
		if strings.Contains(out, "AppIcons."+f) {
			t.Errorf("css references unbuilt format %s", f)
		}
	}
	if diff := cmp.Diff([]string{"assets/fonts/AppIcons.woff2"}, keys(host.emitted)); diff != "" {
		t.Errorf("emitted mismatch (-want +got):\n%s", diff)
	}
	if p.Registry().Len() != 1 {
		t.Errorf("registry has %d entries, want 1", p.Registry().Len())
	}
}

func registryAsset() registry.Asset {
	return registry.Asset{URL: "/assets/fonts/AppIcons.ttf", Mime: "font/ttf", Payload: []byte("old")}
}

func keys(m map[string][]byte) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestServeAssets(t *testing.T) {
	p := New(options.Config{Dirs: []string{iconDir(t, "star.svg")}})
	p.ConfigResolved(CommandServe)
	srv := muxServer{http.NewServeMux()}
	p.ConfigureServer(srv)

	get := func(path string) *http.Response {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec.Result()
	}

	// Before any transform nothing is served.
	if resp := get("/assets/fonts/AppIcons.ttf"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("before transform: status %d, want 404", resp.StatusCode)
	}

	host := newFakeHost()
	materialise(t, p, host)
	if len(host.emitted) != 0 {
		t.Errorf("serve mode must not emit files, got %v", keys(host.emitted))
	}

	resp := get("/assets/fonts/AppIcons.woff2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "font/woff2" {
		t.Errorf("Content-Type = %q, want font/woff2", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	asset, _ := p.Registry().Get(options.FormatWOFF2)
	if string(body) != string(asset.Payload) || len(body) == 0 {
		t.Error("body does not match the generated payload")
	}

	for f, mime := range map[string]string{
		"eot":  "application/vnd.ms-fontobject",
		"woff": "font/woff",
		"ttf":  "font/ttf",
		"svg":  "image/svg+xml",
	} {
		resp := get("/assets/fonts/AppIcons." + f)
		if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != mime {
			t.Errorf("%s: status %d, type %q", f, resp.StatusCode, resp.Header.Get("Content-Type"))
		}
	}
}

func TestServeUnrequestedFormat(t *testing.T) {
	p := New(options.Config{Dirs: []string{iconDir(t, "star.svg")}, Formats: []string{"woff2"}})
	p.ConfigResolved(CommandServe)
	srv := muxServer{http.NewServeMux()}
	p.ConfigureServer(srv)
	materialise(t, p, newFakeHost())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/fonts/AppIcons.ttf", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", rec.Code)
	}
}

func TestCustomFontPath(t *testing.T) {
	p := New(options.Config{
		Dirs:     []string{iconDir(t, "star.svg")},
		FontPath: "webfonts",
		FontName: "MyIcons",
	})
	host := newFakeHost()
	out := materialise(t, p, host)

	for _, f := range options.DefaultFormats() {
		name := "assets/webfonts/MyIcons." + string(f)
		if _, ok := host.emitted[name]; !ok {
			t.Errorf("%s was not emitted", name)
		}
		if !strings.Contains(out, `"/`+name) {
			t.Errorf("css does not reference /%s", name)
		}
	}
}

func TestBuildAndServeProduceIdenticalCSS(t *testing.T) {
	dir := iconDir(t, "arrow-left.svg", "arrow-right.svg", "ring.svg")

	build := New(options.Config{Dirs: []string{dir}})
	build.ConfigResolved(CommandBuild)
	serve := New(options.Config{Dirs: []string{dir}})
	serve.ConfigResolved(CommandServe)

	a := materialise(t, build, newFakeHost())
	b := materialise(t, serve, newFakeHost())
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("build and serve css differ (-build +serve):\n%s", diff)
	}
}

func TestTransformFailure(t *testing.T) {
	empty := t.TempDir()
	p := New(options.Config{Dirs: []string{empty}})

	// A previous successful run must survive a failed rebuild.
	p.registry.Set(options.FormatTTF, registryAsset())

	id, _ := p.ResolveID(newFakeHost(), VirtualModuleID)
	code, _ := p.Load(id)
	out, handled, err := p.Transform(context.Background(), newFakeHost(), code, id)
	if !handled || out != "" {
		t.Errorf("failed transform = %q, handled %v", out, handled)
	}
	if !errors.Is(err, errors.ErrCodeFontBuild) || !errors.Has(err, errors.ErrCodeNoInput) {
		t.Errorf("error = %v, want FONT_BUILD caused by NO_INPUT", err)
	}
	if s, stateErr := p.State(); s != StateIdle || stateErr == nil {
		t.Errorf("state = %s, %v; want idle with error", s, stateErr)
	}
	if !p.Registry().Has(options.FormatTTF) {
		t.Error("registry must not be touched by a failed build")
	}
}

func TestTransformWritesOutputs(t *testing.T) {
	out := t.TempDir()
	p := New(options.Config{
		Dirs:     []string{iconDir(t, "arrow-left.svg")},
		Types:    filepath.Join(out, "src", "AppIcons.ts"),
		Manifest: filepath.Join(out, "icons.json"),
	})
	materialise(t, p, newFakeHost())

	ts, err := os.ReadFile(filepath.Join(out, "src", "AppIcons.ts"))
	if err != nil {
		t.Fatalf("types not written: %v", err)
	}
	if !strings.Contains(string(ts), `"arrow-left": "57345",`) {
		t.Errorf("unexpected types module:\n%s", ts)
	}
	if _, err := os.Stat(filepath.Join(out, "icons.json")); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
}

func TestInstancesDoNotShareRegistry(t *testing.T) {
	a := New(options.Config{Dirs: []string{iconDir(t, "star.svg")}})
	b := New(options.Config{Dirs: []string{iconDir(t, "ring.svg")}, FontName: "Other"})
	materialise(t, a, newFakeHost())

	if b.Registry().Len() != 0 {
		t.Error("building one instance populated another instance's registry")
	}
}

func TestDirHost(t *testing.T) {
	root := t.TempDir()
	h := &DirHost{Root: root}

	if err := h.EmitFile("assets/fonts/AppIcons.woff2", []byte("x")); err != nil {
		t.Fatalf("EmitFile error = %v", err)
	}
	if data, err := os.ReadFile(filepath.Join(root, "assets", "fonts", "AppIcons.woff2")); err != nil || string(data) != "x" {
		t.Errorf("emitted file = %q, %v", data, err)
	}
	if err := h.EmitFile("../escape.ttf", []byte("x")); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("EmitFile(../) error = %v, want %s", err, errors.ErrCodeInvalidPath)
	}
	if diff := cmp.Diff([]string{"assets/fonts/AppIcons.woff2"}, h.Emitted()); diff != "" {
		t.Errorf("Emitted mismatch (-want +got):\n%s", diff)
	}

	dir := iconDir(t, "star.svg")
	h.AddWatchFile(options.NormalizeDir(dir))
	h.AddWatchFile(options.NormalizeDir(dir))
	files, dirs := h.WatchInputs()
	if len(files) != 1 || !strings.HasSuffix(files[0], "star.svg") {
		t.Errorf("watch files = %v", files)
	}
	if len(dirs) != 1 {
		t.Errorf("watch dirs = %v", dirs)
	}
}

func TestStylesheet(t *testing.T) {
	p := New(options.Config{Dirs: []string{iconDir(t, "star.svg")}})
	p.ConfigResolved(CommandBuild)
	host := newFakeHost()

	css, err := p.Stylesheet(context.Background(), host)
	if err != nil {
		t.Fatalf("Stylesheet() error = %v", err)
	}
	if css != materialise(t, p, host) {
		t.Error("Stylesheet should match the resolve/load/transform sequence")
	}
}
