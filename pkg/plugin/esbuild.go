package plugin

import (
	"context"
	"path/filepath"
	"regexp"

	"github.com/evanw/esbuild/pkg/api"
)

// Namespace is the esbuild namespace of the virtual module.
const Namespace = Name

// ESBuild adapts the plugin to esbuild's plugin API.
//
// "icons.css" resolves into the plugin namespace and loads as CSS. Imports of
// the font asset URLs are kept external so url() tokens survive bundling
// verbatim. In build mode the font files are written below the build's
// Outdir (or the directory of Outfile) when the build writes to disk.
func (p *Plugin) ESBuild(ctx context.Context) api.Plugin {
	return api.Plugin{
		Name: Name,
		Setup: func(build api.PluginBuild) {
			host := &DirHost{Root: outputRoot(build.InitialOptions)}

			build.OnResolve(api.OnResolveOptions{Filter: `^` + regexp.QuoteMeta(VirtualModuleID) + `$`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					id, ok := p.ResolveID(host, args.Path)
					if !ok {
						return api.OnResolveResult{}, nil
					}
					files, dirs := host.WatchInputs()
					return api.OnResolveResult{
						Path:       id,
						Namespace:  Namespace,
						WatchFiles: files,
						WatchDirs:  dirs,
					}, nil
				})

			build.OnResolve(api.OnResolveOptions{Filter: `^` + regexp.QuoteMeta(p.opts.AssetPrefix())},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{Path: args.Path, External: true}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: Namespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					code, ok := p.Load(args.Path)
					if !ok {
						return api.OnLoadResult{}, nil
					}
					css, _, err := p.Transform(ctx, host, code, args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					files, dirs := host.WatchInputs()
					return api.OnLoadResult{
						Contents:   &css,
						Loader:     api.LoaderCSS,
						WatchFiles: files,
						WatchDirs:  dirs,
					}, nil
				})
		},
	}
}

// outputRoot is where emitted font files go for a build, or "" when the build
// keeps its outputs in memory.
func outputRoot(opts *api.BuildOptions) string {
	if opts == nil || !opts.Write {
		return ""
	}
	if opts.Outdir != "" {
		return opts.Outdir
	}
	if opts.Outfile != "" {
		return filepath.Dir(opts.Outfile)
	}
	return ""
}
