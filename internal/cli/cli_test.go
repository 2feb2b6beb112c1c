package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/matzehuels/iconfont/pkg/errors"
	"github.com/matzehuels/iconfont/pkg/observability"
	"github.com/matzehuels/iconfont/pkg/options"
	"github.com/matzehuels/iconfont/pkg/plugin"
)

// execute runs the CLI with args in a fresh project directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func exists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("%s: %v", path, err)
		return
	}
	if info.Size() == 0 {
		t.Errorf("%s is empty", path)
	}
}

func TestInitThenBuild(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := execute(t, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	exists(t, "iconfont.toml")
	exists(t, filepath.Join("icons", "star.svg"))

	if _, err := execute(t, "build", "--outdir", "dist"); err != nil {
		t.Fatalf("build: %v", err)
	}
	css, err := os.ReadFile(filepath.Join("dist", "icons.css"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"@font-face", ".icon-star", "/assets/fonts/AppIcons.woff2"} {
		if !strings.Contains(string(css), want) {
			t.Errorf("icons.css lacks %q", want)
		}
	}
	for _, f := range options.DefaultFormats() {
		exists(t, filepath.Join("dist", "assets", "fonts", "AppIcons."+string(f)))
	}
}

func TestBuildWithEntry(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := execute(t, "init"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join("src", "app.css"), `@import "icons.css";`+"\nbody { margin: 0 }\n")

	if _, err := execute(t, "build", "--no-cache", "--entry", "src/app.css", "--outdir", "out", "--formats", "woff2"); err != nil {
		t.Fatalf("build: %v", err)
	}
	bundle, err := os.ReadFile(filepath.Join("out", "app.css"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bundle), ".icon-star") || !strings.Contains(string(bundle), "margin: 0") {
		t.Errorf("bundle:\n%s", bundle)
	}
	exists(t, filepath.Join("out", "assets", "fonts", "AppIcons.woff2"))
	if _, err := os.Stat(filepath.Join("out", "assets", "fonts", "AppIcons.ttf")); !os.IsNotExist(err) {
		t.Error("unrequested ttf should not be written")
	}
}

func TestBuildWritesTypes(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := execute(t, "init"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, "iconfont.toml", "[icons]\ntypes = \"gen/AppIcons.ts\"\nmanifest = \"gen/AppIcons.json\"\n")

	if _, err := execute(t, "build", "--no-cache"); err != nil {
		t.Fatalf("build: %v", err)
	}
	ts, err := os.ReadFile(filepath.Join("gen", "AppIcons.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(ts), "export type AppIconsId =") {
		t.Errorf("types:\n%s", ts)
	}
	exists(t, filepath.Join("gen", "AppIcons.json"))
}

func TestBuildWithoutIcons(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.Mkdir("icons", 0755); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "build", "--no-cache")
	if !errors.Is(err, errors.ErrCodeFontBuild) || !errors.Has(err, errors.ErrCodeNoInput) {
		t.Errorf("error = %v, want FONT_BUILD caused by NO_INPUT", err)
	}
	if _, statErr := os.Stat(filepath.Join("dist", "icons.css")); !os.IsNotExist(statErr) {
		t.Error("a failed build must not write icons.css")
	}
}

func TestBuildEntryWithoutIcons(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "app.css", `@import "icons.css";`)
	if err := os.Mkdir("icons", 0755); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "build", "--no-cache", "--entry", "app.css")
	if !errors.Is(err, errors.ErrCodeFontBuild) || !strings.Contains(err.Error(), "NO_INPUT") {
		t.Errorf("error = %v", err)
	}
}

func TestBuildEntryUnresolvedImport(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := execute(t, "init"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, "app.css", `@import "icons.css";`+"\n"+`@import "./missing.css";`)

	_, err := execute(t, "build", "--no-cache", "--entry", "app.css")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestEsbuildErrorCode(t *testing.T) {
	tests := []struct {
		name string
		msgs []api.Message
		want errors.Code
	}{
		{"resolve failure", []api.Message{{Text: `Could not resolve "./x.css"`}}, errors.ErrCodeInvalidInput},
		{"other plugin", []api.Message{{PluginName: "postcss", Text: "boom"}}, errors.ErrCodeInvalidInput},
		{"icon plugin", []api.Message{{Text: "syntax"}, {PluginName: plugin.Name, Text: "NO_INPUT"}}, errors.ErrCodeFontBuild},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := esbuildError(tt.msgs); !errors.Is(err, tt.want) {
				t.Errorf("esbuildError() = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestBuildFontPathFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := execute(t, "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "build", "--no-cache", "--formats", "woff2", "--font-path", "static/type"); err != nil {
		t.Fatalf("build: %v", err)
	}
	exists(t, filepath.Join("dist", "assets", "static", "type", "AppIcons.woff2"))
	css, err := os.ReadFile(filepath.Join("dist", "icons.css"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(css), "/assets/static/type/AppIcons.woff2") {
		t.Errorf("icons.css does not reference the font path:\n%s", css)
	}
}

func TestBuildRejectsBadFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := execute(t, "build", "--formats", "otf")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
	_, err = execute(t, "build", "--font-path", "../up")
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("error = %v, want INVALID_PATH", err)
	}
}

func TestInitKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "iconfont.toml"), "# mine\n")

	if err := runInit(dir, initOpts{}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "iconfont.toml"))
	if string(data) != "# mine\n" {
		t.Error("init overwrote an existing config without --force")
	}

	if err := runInit(dir, initOpts{force: true, yaml: true}); err != nil {
		t.Fatal(err)
	}
	exists(t, filepath.Join(dir, "iconfont.yaml"))
	if _, err := loadConfig(filepath.Join(dir, "iconfont.yaml")); err != nil {
		t.Errorf("scaffolded yaml does not load: %v", err)
	}
}

func TestScaffoldedTOMLLoads(t *testing.T) {
	dir := t.TempDir()
	if err := runInit(dir, initOpts{}); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(filepath.Join(dir, "iconfont.toml"))
	if err != nil {
		t.Fatalf("scaffolded toml does not load: %v", err)
	}
	if cfg.Icons.FontName != options.DefaultFontName {
		t.Errorf("font name = %q", cfg.Icons.FontName)
	}
}

func TestCompletion(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "iconfont") {
		t.Error("bash completion should mention the program name")
	}
}

func TestCachePath(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "iconfont.toml", "[cache]\ndir = \"cachedir\"\n")

	c := New(io.Discard, LogInfo)
	dir, err := c.fileCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "cachedir" {
		t.Errorf("fileCacheDir() = %q, want cachedir", dir)
	}
}
