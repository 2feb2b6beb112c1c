package plugin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/matzehuels/iconfont/pkg/options"
)

func bundle(t *testing.T, p *Plugin, outdir string, write bool) api.BuildResult {
	t.Helper()
	res := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   `@import "icons.css";` + "\nbody { margin: 0; }\n",
			ResolveDir: t.TempDir(),
			Sourcefile: "main.css",
			Loader:     api.LoaderCSS,
		},
		Bundle:   true,
		Outdir:   outdir,
		Write:    write,
		LogLevel: api.LogLevelSilent,
		Plugins:  []api.Plugin{p.ESBuild(context.Background())},
	})
	return res
}

func TestESBuildBundle(t *testing.T) {
	outdir := t.TempDir()
	p := New(options.Config{Dirs: []string{iconDir(t, "star.svg")}})
	p.ConfigResolved(CommandBuild)

	res := bundle(t, p, outdir, true)
	if len(res.Errors) > 0 {
		t.Fatalf("esbuild errors: %v", res.Errors)
	}
	if len(res.OutputFiles) != 1 {
		t.Fatalf("got %d output files, want 1", len(res.OutputFiles))
	}
	out := string(res.OutputFiles[0].Contents)
	for _, want := range []string{"@font-face", "/assets/fonts/AppIcons.woff2", ".icon-star", "margin: 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("bundle lacks %q:\n%s", want, out)
		}
	}

	for _, f := range options.DefaultFormats() {
		path := filepath.Join(outdir, "assets", "fonts", "AppIcons."+string(f))
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("font file %s not written: %v", path, err)
		}
	}
}

func TestESBuildInMemory(t *testing.T) {
	outdir := t.TempDir()
	p := New(options.Config{Dirs: []string{iconDir(t, "star.svg")}})
	p.ConfigResolved(CommandServe)

	res := bundle(t, p, outdir, false)
	if len(res.Errors) > 0 {
		t.Fatalf("esbuild errors: %v", res.Errors)
	}
	entries, _ := os.ReadDir(outdir)
	if len(entries) != 0 {
		t.Errorf("in-memory build wrote %d entries to disk", len(entries))
	}
	if !p.Registry().Has(options.FormatWOFF2) {
		t.Error("registry should be populated after the bundle")
	}
}

func TestESBuildReportsBuildErrors(t *testing.T) {
	p := New(options.Config{Dirs: []string{t.TempDir()}})
	res := bundle(t, p, t.TempDir(), false)
	if len(res.Errors) == 0 {
		t.Fatal("expected esbuild to report the font build error")
	}
	if !strings.Contains(res.Errors[0].Text, "NO_INPUT") {
		t.Errorf("error text = %q", res.Errors[0].Text)
	}
}

func TestOutputRoot(t *testing.T) {
	tests := []struct {
		opts *api.BuildOptions
		want string
	}{
		{nil, ""},
		{&api.BuildOptions{Outdir: "dist"}, ""},
		{&api.BuildOptions{Outdir: "dist", Write: true}, "dist"},
		{&api.BuildOptions{Outfile: "dist/app.css", Write: true}, "dist"},
	}
	for _, tt := range tests {
		if got := outputRoot(tt.opts); got != tt.want {
			t.Errorf("outputRoot(%+v) = %q, want %q", tt.opts, got, tt.want)
		}
	}
}
