package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/iconfont/pkg/css"
	"github.com/matzehuels/iconfont/pkg/glyph"
	"github.com/matzehuels/iconfont/pkg/options"
	"github.com/matzehuels/iconfont/pkg/typegen"
)

type glyphsOpts struct {
	icons       iconFlags
	interactive bool
	json        bool
}

// glyphsCommand creates the glyphs command.
func (c *CLI) glyphsCommand() *cobra.Command {
	var opts glyphsOpts

	cmd := &cobra.Command{
		Use:   "glyphs",
		Short: "List glyphs and their codepoints",
		Long: `List every glyph of the icon font with the codepoint it is assigned.

Codepoints are allocated exactly as in a build, so the listing matches the
generated stylesheet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGlyphs(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse glyphs interactively")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the codepoint manifest as JSON")
	addIconFlags(cmd, &opts.icons)

	return cmd
}

func (c *CLI) runGlyphs(ctx context.Context, opts glyphsOpts) error {
	cfg, err := c.resolveConfig(opts.icons)
	if err != nil {
		return err
	}
	b, err := c.newBuilder(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer b.Close()

	resolved := options.Resolve(cfg.Icons)
	res, err := b.Build(ctx, resolved)
	if err != nil {
		return err
	}

	switch {
	case opts.json:
		data, err := typegen.JSON(resolved.FontName, res.Glyphs)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	case opts.interactive:
		m := newGlyphBrowser(resolved, res.Glyphs)
		final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
		if err != nil {
			return err
		}
		if g := final.(glyphBrowser).Selected; g != nil {
			fmt.Println(cssContent(*g))
		}
		return nil
	default:
		fmt.Println(glyphTable(res.Glyphs))
		printDetail("%s · %s", plural(len(res.Glyphs), "glyph"), resolved.FontName)
		return nil
	}
}

// glyphTable renders glyphs as a bordered table.
func glyphTable(glyphs []glyph.Glyph) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, 0, len(glyphs))
	for _, g := range glyphs {
		rows = append(rows, []string{g.Name, glyphCodepoint(g), g.Path})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Codepoint", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1:
				return StyleNumber
			case col == 2:
				return StyleDim
			default:
				return StyleValue
			}
		}).
		Render()
}

func glyphCodepoint(g glyph.Glyph) string {
	r, ok := g.Codepoint()
	if !ok {
		return "-"
	}
	return formatCodepoint(r)
}

// cssContent is the content declaration of g, e.g. `content: "\e001";`.
func cssContent(g glyph.Glyph) string {
	if len(g.Unicode) == 0 {
		return ""
	}
	return `content: "` + css.UnicodeToCSS(g.Unicode[0]) + `";`
}
