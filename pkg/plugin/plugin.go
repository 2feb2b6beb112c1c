// Package plugin wires icon font generation into a host bundler.
//
// A Plugin exposes the lifecycle hooks a bundler calls while it resolves and
// loads modules:
//
//  1. ConfigResolved records whether this is a production build or a dev
//     server session.
//  2. ResolveID claims the virtual module "icons.css" and, when serving,
//     registers every icon glob as a watched input.
//  3. Load answers the virtual module with an opaque sentinel text.
//  4. Transform recognises the sentinel, builds the font, fills the asset
//     registry and returns the stylesheet.
//  5. ConfigureServer mounts one handler per format that serves payloads
//     from the registry.
//
// The hooks are host-agnostic. [Plugin.ESBuild] adapts them to esbuild's Go
// plugin API; other hosts implement [Host] and [Server] directly.
//
// Asset URLs are "/assets/<fontPath>/<fontName>.<format>" in both modes. In
// build mode the payloads are emitted as files under that path; in serve mode
// they are served from memory. The generated CSS is therefore byte-identical
// across modes.
package plugin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/iconfont/pkg/builder"
	"github.com/matzehuels/iconfont/pkg/css"
	"github.com/matzehuels/iconfont/pkg/errors"
	"github.com/matzehuels/iconfont/pkg/glyph"
	"github.com/matzehuels/iconfont/pkg/options"
	"github.com/matzehuels/iconfont/pkg/registry"
)

const (
	// Name identifies the plugin to hosts and in logs.
	Name = "webfont-icons"

	// VirtualModuleID is what application code imports.
	VirtualModuleID = "icons.css"

	// ResolvedVirtualModuleID is the sentinel text Load returns. The leading
	// NUL byte keeps any other plugin from treating it as real CSS.
	ResolvedVirtualModuleID = "\x00" + VirtualModuleID
)

// Command is the kind of host invocation.
type Command string

const (
	CommandBuild Command = "build"
	CommandServe Command = "serve"
)

// State is the materialisation state of the virtual module.
type State int

const (
	StateIdle State = iota
	StateBuilding
	StateReady
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	default:
		return "idle"
	}
}

// Host is the part of the bundler the plugin calls back into.
type Host interface {
	// AddWatchFile registers a path or glob whose changes invalidate the
	// virtual module.
	AddWatchFile(path string)

	// EmitFile adds a file to the build output. fileName is relative to the
	// output root and uses forward slashes.
	EmitFile(fileName string, source []byte) error
}

// Server is a dev server that accepts path handlers.
type Server interface {
	Use(path string, h http.Handler)
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithBuilder sets the font builder, for example one backed by a cache.
func WithBuilder(b *builder.Builder) Option {
	return func(p *Plugin) {
		if b != nil {
			p.builder = b
		}
	}
}

// Plugin is one icon font instance. Every Plugin owns its own registry, so
// several icon sets can be used side by side.
type Plugin struct {
	opts     options.Options
	builder  *builder.Builder
	logger   *log.Logger
	registry *registry.Registry

	mu      sync.Mutex
	command Command
	state   State
	glyphs  []glyph.Glyph
	cached  bool
	lastErr error
}

// New creates a plugin from a possibly partial configuration.
func New(cfg options.Config, opts ...Option) *Plugin {
	p := &Plugin{
		opts:     options.Resolve(cfg),
		logger:   log.New(io.Discard),
		registry: registry.New(),
		command:  CommandBuild,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.builder == nil {
		p.builder = builder.New(nil, nil, p.logger)
	}
	p.logger = p.logger.WithPrefix(Name)
	return p
}

// Name returns the plugin name.
func (p *Plugin) Name() string { return Name }

// Enforce returns the plugin ordering hint; the plugin runs before other
// transforms that handle CSS.
func (p *Plugin) Enforce() string { return "pre" }

// Options returns the resolved options.
func (p *Plugin) Options() options.Options { return p.opts }

// Registry returns the plugin's asset registry.
func (p *Plugin) Registry() *registry.Registry { return p.registry }

// State returns the current materialisation state and the last build error.
func (p *Plugin) State() (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.lastErr
}

// Glyphs returns the glyph table of the last successful build.
func (p *Plugin) Glyphs() []glyph.Glyph {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]glyph.Glyph(nil), p.glyphs...)
}

// Cached reports whether the last successful build was served from the
// font cache.
func (p *Plugin) Cached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cached
}

// Command returns the recorded host command.
func (p *Plugin) Command() Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.command
}

// ConfigResolved records the host command.
func (p *Plugin) ConfigResolved(cmd Command) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.command = cmd
	p.logger.Debug("config resolved", "command", cmd, "font", p.opts.FontName, "formats", p.opts.FormatNames())
}

// ResolveID claims the virtual module. In serve mode every icon glob is
// registered with the host as a watched input.
func (p *Plugin) ResolveID(host Host, source string) (string, bool) {
	if source != VirtualModuleID {
		return "", false
	}
	if p.Command() == CommandServe && host != nil {
		for _, g := range p.opts.Dirs {
			host.AddWatchFile(g)
		}
	}
	return VirtualModuleID, true
}

// Load returns the sentinel text for the virtual module.
func (p *Plugin) Load(id string) (string, bool) {
	if id != VirtualModuleID {
		return "", false
	}
	return ResolvedVirtualModuleID, true
}

// Transform materialises the virtual module. It only acts when code is the
// sentinel returned by Load; handled is false otherwise.
//
// On success every produced format is in the registry before the CSS is
// returned. On failure the state falls back to idle and the build error is
// returned unchanged; no CSS is produced.
func (p *Plugin) Transform(ctx context.Context, host Host, code, id string) (out string, handled bool, err error) {
	if code != ResolvedVirtualModuleID {
		return "", false, nil
	}
	cmd := p.begin()
	defer func() { p.finish(err) }()

	res, err := p.builder.Build(ctx, p.opts)
	if err != nil {
		return "", true, err
	}

	assets := make(map[options.Format]registry.Asset, len(p.opts.Formats))
	for _, f := range p.opts.Formats {
		payload := res.Payloads[f]
		if len(payload) == 0 {
			continue
		}
		if cmd == CommandBuild && host != nil {
			if err := host.EmitFile(p.opts.AssetFileName(f), payload); err != nil {
				return "", true, errors.Wrap(errors.ErrCodeInternal, err, "emit %s", p.opts.AssetFileName(f))
			}
		}
		assets[f] = registry.Asset{URL: p.opts.AssetURL(f), Mime: f.MimeType(), Payload: payload}
	}
	p.registry.Replace(assets)

	out, err = css.Generate(p.opts, p.registry, res.Glyphs)
	if err != nil {
		return "", true, err
	}
	if err := p.writeOutputs(res.Glyphs); err != nil {
		return "", true, err
	}

	p.mu.Lock()
	p.glyphs = res.Glyphs
	p.cached = res.CacheHit
	p.mu.Unlock()

	p.logger.Info("icons ready",
		"mode", cmd,
		"glyphs", len(res.Glyphs),
		"formats", p.registry.Len(),
		"cached", res.CacheHit)
	return out, true, nil
}

// Stylesheet runs the full resolve, load and transform sequence for the
// virtual module, the way a bundler would on `import "icons.css"`.
func (p *Plugin) Stylesheet(ctx context.Context, host Host) (string, error) {
	id, _ := p.ResolveID(host, VirtualModuleID)
	code, _ := p.Load(id)
	out, _, err := p.Transform(ctx, host, code, id)
	return out, err
}

// begin moves to Building and returns the host command of this run.
func (p *Plugin) begin() Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateBuilding
	return p.command
}

func (p *Plugin) finish(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
	if err != nil {
		p.state = StateIdle
		p.logger.Error("icon font build failed", "err", err)
		return
	}
	p.state = StateReady
}

// String implements fmt.Stringer.
func (p *Plugin) String() string {
	return fmt.Sprintf("%s(%s)", Name, p.opts.FontName)
}
