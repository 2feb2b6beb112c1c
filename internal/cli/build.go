package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/cobra"

	"github.com/matzehuels/iconfont/pkg/errors"
	"github.com/matzehuels/iconfont/pkg/plugin"
)

// stylesheetName is the file written by a build without entry points.
const stylesheetName = "icons.css"

// buildOpts holds the flags of the build command.
type buildOpts struct {
	icons   iconFlags
	entries []string
	outdir  string
	minify  bool
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the icon font and stylesheet",
		Long: `Generate the icon font in every configured format together with its stylesheet.

Without --entry, icons.css and the font files are written to the output
directory. With --entry, each CSS entry point is bundled with esbuild and
every import of "icons.css" is replaced by the generated stylesheet.`,
		Example: `  # Fonts and icons.css from ./icons into ./dist
  iconfont build

  # Bundle an app stylesheet that imports icons.css
  iconfont build --entry src/app.css --outdir public/build`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.entries, "entry", "e", nil, "CSS entry point to bundle (repeatable)")
	cmd.Flags().StringVarP(&opts.outdir, "outdir", "o", "dist", "output directory")
	cmd.Flags().BoolVar(&opts.minify, "minify", false, "minify bundled CSS")
	addIconFlags(cmd, &opts.icons)

	return cmd
}

// addIconFlags registers the [icons] overrides shared by several commands.
func addIconFlags(cmd *cobra.Command, f *iconFlags) {
	cmd.Flags().StringArrayVarP(&f.dirs, "dir", "d", nil, "icon directory (repeatable, default ./icons/)")
	cmd.Flags().StringVar(&f.fontName, "font-name", "", "font family name (default AppIcons)")
	cmd.Flags().StringSliceVar(&f.formats, "formats", nil, "font formats: woff2,woff,ttf,eot,svg")
	cmd.Flags().StringVar(&f.selector, "selector", "", "CSS base class selector (default .icon)")
	cmd.Flags().StringVar(&f.fontPath, "font-path", "", "font directory under /assets/ (default fonts)")
}

func (c *CLI) runBuild(ctx context.Context, opts buildOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cfg, err := c.resolveConfig(opts.icons)
	if err != nil {
		return err
	}
	p, closeFn, err := c.newPlugin(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()
	p.ConfigResolved(plugin.CommandBuild)

	spinner := newSpinnerWithContext(ctx, "Building icon font...")
	spinner.Start()

	var files []string
	if len(opts.entries) > 0 {
		files, err = bundleEntries(ctx, p, opts)
	} else {
		files, err = writeStylesheet(ctx, p, opts.outdir)
	}
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}

	glyphs := p.Glyphs()
	spinner.StopWithSuccess(fmt.Sprintf("Built %s", plural(len(glyphs), "glyph")))
	printStats(len(glyphs), p.Registry().Len(), payloadBytes(p), p.Cached())
	for _, f := range files {
		printFile(f)
	}
	prog.done("build finished")
	return nil
}

// writeStylesheet runs the plugin without a bundler and writes icons.css
// next to the emitted fonts.
func writeStylesheet(ctx context.Context, p *plugin.Plugin, outdir string) ([]string, error) {
	host := &plugin.DirHost{Root: outdir}
	css, err := p.Stylesheet(ctx, host)
	if err != nil {
		return nil, err
	}
	dst := filepath.Join(outdir, stylesheetName)
	if err := os.WriteFile(dst, []byte(css), 0644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", dst)
	}

	files := []string{dst}
	for _, name := range host.Emitted() {
		files = append(files, filepath.Join(outdir, filepath.FromSlash(name)))
	}
	return files, nil
}

// bundleEntries bundles every entry point with the plugin installed.
func bundleEntries(ctx context.Context, p *plugin.Plugin, opts buildOpts) ([]string, error) {
	res := api.Build(api.BuildOptions{
		EntryPoints:      opts.entries,
		Bundle:           true,
		Outdir:           opts.outdir,
		Write:            true,
		Metafile:         true,
		MinifyWhitespace: opts.minify,
		LogLevel:         api.LogLevelSilent,
		Plugins:          []api.Plugin{p.ESBuild(ctx)},
	})
	if len(res.Errors) > 0 {
		return nil, esbuildError(res.Errors)
	}

	files, err := metafileOutputs(res.Metafile)
	if err != nil {
		return nil, err
	}
	o := p.Options()
	for _, f := range p.Registry().Formats() {
		files = append(files, filepath.Join(opts.outdir, filepath.FromSlash(o.AssetFileName(f))))
	}
	return files, nil
}

// esbuildError folds bundler messages into one error. It is a FONT_BUILD
// error only when the icon font plugin reported one of the messages; any
// other bundler failure is bad input.
func esbuildError(msgs []api.Message) error {
	code := errors.ErrCodeInvalidInput
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.PluginName == plugin.Name {
			code = errors.ErrCodeFontBuild
		}
		line := m.Text
		if m.Location != nil {
			line = fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text)
		}
		lines = append(lines, line)
	}
	return errors.New(code, "bundle failed:\n  %s", strings.Join(lines, "\n  "))
}

// metafileOutputs lists the output files recorded in an esbuild metafile.
func metafileOutputs(metafile string) ([]string, error) {
	var meta struct {
		Outputs map[string]json.RawMessage `json:"outputs"`
	}
	if err := json.Unmarshal([]byte(metafile), &meta); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read esbuild metafile")
	}
	files := make([]string, 0, len(meta.Outputs))
	for path := range meta.Outputs {
		files = append(files, filepath.FromSlash(path))
	}
	sort.Strings(files)
	return files, nil
}

func payloadBytes(p *plugin.Plugin) int {
	n := 0
	for _, f := range p.Registry().Formats() {
		if a, ok := p.Registry().Get(f); ok {
			n += len(a.Payload)
		}
	}
	return n
}
