package plugin

import (
	"github.com/matzehuels/iconfont/pkg/errors"
	"github.com/matzehuels/iconfont/pkg/glyph"
	"github.com/matzehuels/iconfont/pkg/typegen"
)

// writeOutputs writes the optional TypeScript module and JSON manifest.
func (p *Plugin) writeOutputs(glyphs []glyph.Glyph) error {
	if p.opts.Types != "" {
		if err := typegen.WriteFile(p.opts.Types, typegen.TypeScript(p.opts.FontName, glyphs)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write types %s", p.opts.Types)
		}
		p.logger.Debug("wrote codepoint module", "path", p.opts.Types)
	}
	if p.opts.Manifest != "" {
		data, err := typegen.JSON(p.opts.FontName, glyphs)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode manifest")
		}
		if err := typegen.WriteFile(p.opts.Manifest, data); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write manifest %s", p.opts.Manifest)
		}
		p.logger.Debug("wrote manifest", "path", p.opts.Manifest)
	}
	return nil
}
