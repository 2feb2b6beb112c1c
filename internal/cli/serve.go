package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/iconfont/pkg/devserver"
)

type serveOpts struct {
	icons   iconFlags
	addr    string
	public  string
	entries []string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development server",
		Long: `Run a development server that rebuilds the icon font whenever an icon changes.

Fonts are served from memory under /assets/<fontPath>/. The stylesheet bundle
is available as /icons.css; a --public directory is served for everything else.`,
		Example: `  iconfont serve
  iconfont serve --addr :8080 --public ./site --entry site/app.css`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default "+devserver.DefaultAddr+")")
	cmd.Flags().StringVar(&opts.public, "public", "", "directory of static files to serve")
	cmd.Flags().StringArrayVarP(&opts.entries, "entry", "e", nil, "CSS entry point to bundle (repeatable)")
	addIconFlags(cmd, &opts.icons)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg, err := c.resolveConfig(opts.icons)
	if err != nil {
		return err
	}
	srvCfg := cfg.Server
	if opts.addr != "" {
		srvCfg.Addr = opts.addr
	}
	if opts.public != "" {
		srvCfg.Public = opts.public
	}
	if len(opts.entries) > 0 {
		srvCfg.Entries = opts.entries
	}

	p, closeFn, err := c.newPlugin(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	srv, err := devserver.New(p, devserver.Config{
		Addr:    srvCfg.Addr,
		Entries: srvCfg.Entries,
		Public:  srvCfg.Public,
		Logger:  c.Logger,
	})
	if err != nil {
		return err
	}

	o := p.Options()
	printInfo("Serving %s from %s", StyleHighlight.Render(o.FontName), StyleDim.Render(o.Dirs[0]))
	for _, f := range o.Formats {
		printDetail("%s", o.AssetURL(f))
	}
	printNewline()

	return srv.ListenAndServe(ctx)
}
