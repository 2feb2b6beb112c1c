package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/tdewolff/font"
	"golang.org/x/image/font/sfnt"

	"github.com/matzehuels/iconfont/pkg/errors"
	"github.com/matzehuels/iconfont/pkg/fontgen"
	"github.com/matzehuels/iconfont/pkg/options"
)

// fontReport is what inspect prints about a font file.
type fontReport struct {
	Format     options.Format
	Size       int
	Family     string
	UnitsPerEm int
	NumGlyphs  int
	Mapped     []mappedGlyph
}

type mappedGlyph struct {
	Codepoint rune
	Name      string
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <font>",
		Short: "Show the family name and glyph map of a font file",
		Long: `Read a generated font file back and print its family name, metrics and
character map. WOFF, WOFF2 and EOT files are decoded to SFNT first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", args[0])
			}
			r, err := inspectFont(data)
			if err != nil {
				return err
			}
			printReport(args[0], r)
			return nil
		},
	}
}

// inspectFont decodes data and collects the report.
func inspectFont(data []byte) (*fontReport, error) {
	format, ok := fontgen.Sniff(data)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "not a font file")
	}
	if format == options.FormatSVG {
		return nil, errors.New(errors.ErrCodeUnsupported, "SVG fonts cannot be inspected; inspect the ttf instead")
	}

	raw := data
	if format != options.FormatTTF {
		sfntData, err := font.ToSFNT(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", format)
		}
		raw = sfntData
	}

	f, err := sfnt.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse sfnt")
	}

	var buf sfnt.Buffer
	r := &fontReport{
		Format:     format,
		Size:       len(data),
		UnitsPerEm: int(f.UnitsPerEm()),
		NumGlyphs:  f.NumGlyphs(),
	}
	if family, err := f.Name(&buf, sfnt.NameIDFamily); err == nil {
		r.Family = family
	}

	for cp := rune(0x20); cp <= 0xFFFF; cp++ {
		idx, err := f.GlyphIndex(&buf, cp)
		if err != nil || idx == 0 {
			continue
		}
		name, _ := f.GlyphName(&buf, idx)
		r.Mapped = append(r.Mapped, mappedGlyph{Codepoint: cp, Name: name})
	}
	return r, nil
}

func printReport(path string, r *fontReport) {
	fmt.Println(StyleTitle.Render(path))
	printKeyValue("Format", string(r.Format))
	printKeyValue("Size", formatBytes(r.Size))
	printKeyValue("Family", r.Family)
	printKeyValue("Units/em", fmt.Sprint(r.UnitsPerEm))
	printKeyValue("Glyphs", fmt.Sprint(r.NumGlyphs))
	printNewline()

	if len(r.Mapped) == 0 {
		printWarning("No mapped codepoints")
		return
	}
	rows := make([][]string, 0, len(r.Mapped))
	for _, m := range r.Mapped {
		rows = append(rows, []string{formatCodepoint(m.Codepoint), m.Name})
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	fmt.Println(table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Codepoint", "Glyph").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleNumber
			}
			return StyleValue
		}).
		Render())
}
