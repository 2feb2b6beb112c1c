// Package builder runs font builds for the plugin and the CLI.
//
// A Builder loads the SVG sources matched by the configured globs, consults
// the cache, and on a miss hands the sources to a [fontgen.Generator] with the
// fixed generator parameters every build uses (sorted allocation, horizontal
// centring, normalisation to a 1000-unit em with a 64-unit descent and a
// fixed 600-unit advance).
//
// # Usage
//
//	b := builder.New(cache, nil, logger)
//	res, err := b.Build(ctx, options.Resolve(cfg))
//	if err != nil {
//	    // err carries errors.ErrCodeFontBuild
//	}
//	woff2 := res.Payloads[options.FormatWOFF2]
//
// Builders hold no per-build state. One Builder may serve concurrent builds.
package builder

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/iconfont/pkg/cache"
	"github.com/matzehuels/iconfont/pkg/errors"
	"github.com/matzehuels/iconfont/pkg/fontgen"
	"github.com/matzehuels/iconfont/pkg/glyph"
	"github.com/matzehuels/iconfont/pkg/observability"
	"github.com/matzehuels/iconfont/pkg/options"
)

// =============================================================================
// Generator Parameters
// =============================================================================

const (
	// FixedWidth is the advance width of every glyph.
	FixedWidth = fontgen.DefaultFixedWidth

	// Descent is the font descent in units.
	Descent = fontgen.DefaultDescent

	// FontHeight is the units-per-em of every generated font.
	FontHeight = fontgen.DefaultFontHeight
)

// cacheKeyType labels font bundle entries in cache hooks.
const cacheKeyType = "font"

// Result is the outcome of one successful build.
type Result struct {
	// BuildID identifies the build in logs.
	BuildID string

	// Payloads has one entry for every requested format.
	Payloads map[options.Format][]byte

	// Glyphs is ordered by codepoint.
	Glyphs []glyph.Glyph

	// CacheHit reports whether the payloads came from the cache.
	CacheHit bool

	Stats Stats
}

// Stats are timing and size figures for logging.
type Stats struct {
	Sources  int
	Bytes    int
	Duration time.Duration
}

// Builder turns resolved options into font payloads.
type Builder struct {
	Generator fontgen.Generator
	Cache     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger

	// Refresh skips cache lookups but still stores fresh results.
	Refresh bool
}

// New creates a builder with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// If logger is nil, log output is discarded.
func New(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Builder {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{
		Generator: fontgen.Default,
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
	}
}

// Build loads the sources matched by opts.Dirs and produces every format in
// opts.Formats. Any failure is returned as an ErrCodeFontBuild error whose
// cause carries the specific code (NO_INPUT, INVALID_SVG, ...).
func (b *Builder) Build(ctx context.Context, opts options.Options) (res *Result, err error) {
	start := time.Now()
	buildID := uuid.NewString()
	logger := b.logger().With("build", buildID[:8])

	sources, err := fontgen.LoadSources(opts.Dirs)
	if err != nil {
		logger.Error("loading sources failed", "globs", opts.Dirs, "err", err)
		return nil, errors.Wrap(errors.ErrCodeFontBuild, err, "font %q", opts.FontName)
	}

	observability.Build().OnBuildStart(ctx, buildID, len(sources))
	defer func() {
		glyphs, hit := 0, false
		if res != nil {
			glyphs, hit = len(res.Glyphs), res.CacheHit
		}
		observability.Build().OnBuildComplete(ctx, buildID, glyphs, hit, time.Since(start), err)
	}()

	req := b.request(sources, opts)
	key := b.keyer().FontKey(sourcesHash(sources), keyOpts(req))

	if !b.Refresh {
		if cached, ok := b.lookup(ctx, logger, key); ok {
			res = &Result{
				BuildID:  buildID,
				Payloads: cached.Payloads,
				Glyphs:   cached.Glyphs,
				CacheHit: true,
			}
			res.Stats = stats(len(sources), res.Payloads, start)
			logger.Info("font loaded from cache", "glyphs", len(res.Glyphs), "duration", res.Stats.Duration)
			return res, nil
		}
	}

	gen := b.Generator
	if gen == nil {
		gen = fontgen.Default
	}
	out, err := gen.Generate(ctx, req)
	if err != nil {
		logger.Error("font generation failed", "font", opts.FontName, "err", err)
		return nil, errors.Wrap(errors.ErrCodeFontBuild, err, "font %q", opts.FontName)
	}

	b.store(ctx, logger, key, bundle{Payloads: out.Payloads, Glyphs: out.Glyphs})

	res = &Result{
		BuildID:  buildID,
		Payloads: out.Payloads,
		Glyphs:   out.Glyphs,
	}
	res.Stats = stats(len(sources), res.Payloads, start)
	logger.Info("font generated",
		"glyphs", len(res.Glyphs),
		"formats", opts.FormatNames(),
		"bytes", res.Stats.Bytes,
		"duration", res.Stats.Duration)
	return res, nil
}

// Close releases resources held by the builder (primarily the cache).
func (b *Builder) Close() error {
	if b.Cache != nil {
		return b.Cache.Close()
	}
	return nil
}

// request applies the fixed generator parameters.
func (b *Builder) request(sources []fontgen.Source, opts options.Options) fontgen.Request {
	return fontgen.Request{
		Sources:            sources,
		FontName:           opts.FontName,
		Formats:            opts.Formats,
		StartCodepoint:     opts.StartCodepoint,
		Sort:               true,
		CenterHorizontally: true,
		Normalize:          true,
		FixedWidth:         FixedWidth,
		Descent:            Descent,
		FontHeight:         FontHeight,
	}
}

func (b *Builder) logger() *log.Logger {
	if b.Logger == nil {
		return log.New(io.Discard)
	}
	return b.Logger
}

func (b *Builder) keyer() cache.Keyer {
	if b.Keyer == nil {
		return cache.NewDefaultKeyer()
	}
	return b.Keyer
}

// =============================================================================
// Caching
// =============================================================================

// bundle is the cached form of a generator result.
type bundle struct {
	Payloads map[options.Format][]byte `json:"payloads"`
	Glyphs   []glyph.Glyph             `json:"glyphs"`
}

// lookup treats every cache failure as a miss.
func (b *Builder) lookup(ctx context.Context, logger *log.Logger, key string) (bundle, bool) {
	if b.Cache == nil {
		return bundle{}, false
	}
	data, hit, err := b.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache lookup failed", "err", err)
		return bundle{}, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return bundle{}, false
	}
	var out bundle
	if err := json.Unmarshal(data, &out); err != nil || len(out.Payloads) == 0 {
		logger.Warn("discarding unreadable cache entry", "key", key)
		_ = b.Cache.Delete(ctx, key)
		return bundle{}, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	return out, true
}

func (b *Builder) store(ctx context.Context, logger *log.Logger, key string, v bundle) {
	if b.Cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := b.Cache.Set(ctx, key, data, cache.TTLFont); err != nil {
		logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

// sourcesHash digests every source path and content.
func sourcesHash(sources []fontgen.Source) string {
	d := cache.NewDigest()
	for _, s := range sources {
		d.Add(s.Path, s.Data)
	}
	return d.Sum()
}

func keyOpts(req fontgen.Request) cache.FontKeyOpts {
	formats := make([]string, len(req.Formats))
	for i, f := range req.Formats {
		formats[i] = string(f)
	}
	return cache.FontKeyOpts{
		FontName:       req.FontName,
		Formats:        formats,
		StartCodepoint: req.StartCodepoint,
		FixedWidth:     req.FixedWidth,
		Descent:        req.Descent,
		FontHeight:     req.FontHeight,
		Sort:           req.Sort,
		Center:         req.CenterHorizontally,
		Normalize:      req.Normalize,
	}
}

func stats(sources int, payloads map[options.Format][]byte, start time.Time) Stats {
	s := Stats{Sources: sources, Duration: time.Since(start)}
	for _, p := range payloads {
		s.Bytes += len(p)
	}
	return s
}
