package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/iconfont/pkg/options"
	"github.com/matzehuels/iconfont/pkg/samples"
)

const tomlTemplate = `# iconfont configuration

[icons]
dirs = ["./icons"]
font_name = "AppIcons"
formats = ["woff2", "woff", "ttf", "eot", "svg"]
selector = ".icon"
font_path = "fonts"
# start_codepoint = 0xE001
# types = "src/icons/AppIcons.ts"
# manifest = "src/icons/AppIcons.json"

[server]
addr = "127.0.0.1:5173"
# public = "./public"
# entries = ["src/app.css"]

[cache]
# disabled = true
# redis = "redis://localhost:6379/0"
`

const yamlTemplate = `# iconfont configuration

icons:
  dirs: ["./icons"]
  fontName: AppIcons
  formats: [woff2, woff, ttf, eot, svg]
  selector: .icon
  fontPath: fonts
  # types: src/icons/AppIcons.ts
  # manifest: src/icons/AppIcons.json

server:
  addr: 127.0.0.1:5173

cache: {}
`

type initOpts struct {
	force bool
	yaml  bool
}

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var opts initOpts

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold sample icons and a config file",
		Long: `Create an icons/ directory with a few sample SVG icons and an iconfont.toml
(or iconfont.yaml) in dir, which defaults to the working directory. Existing
files are kept unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite existing files")
	cmd.Flags().BoolVar(&opts.yaml, "yaml", false, "write iconfont.yaml instead of iconfont.toml")

	return cmd
}

func runInit(dir string, opts initOpts) error {
	iconDir := filepath.Join(dir, filepath.FromSlash(options.DefaultDir))
	written, err := samples.WriteTo(iconDir, opts.force)
	if err != nil {
		return err
	}

	name, tmpl := "iconfont.toml", tomlTemplate
	if opts.yaml {
		name, tmpl = "iconfont.yaml", yamlTemplate
	}
	cfgPath := filepath.Join(dir, name)
	if _, err := os.Stat(cfgPath); err == nil && !opts.force {
		printInfo("Keeping existing %s", cfgPath)
	} else {
		if err := os.WriteFile(cfgPath, []byte(tmpl), 0644); err != nil {
			return err
		}
		written = append(written, cfgPath)
	}

	if len(written) == 0 {
		printInfo("Nothing to do")
		return nil
	}
	printSuccess("Initialised %s", dir)
	for _, f := range written {
		printFile(f)
	}
	printNewline()
	printNextStep("Build the font", "iconfont build")
	printNextStep("Start the dev server", "iconfont serve")
	return nil
}
