package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/iconfont/pkg/observability"
)

// logHooks reports build, cache and dev server events at debug level.
type logHooks struct {
	logger *log.Logger
}

func registerHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("hooks")}
	observability.SetBuildHooks(h)
	observability.SetCacheHooks(h)
	observability.SetServeHooks(h)
}

func (h logHooks) OnBuildStart(_ context.Context, buildID string, sources int) {
	h.logger.Debug("build start", "build", short(buildID), "sources", sources)
}

func (h logHooks) OnBuildComplete(_ context.Context, buildID string, glyphs int, cacheHit bool, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("build failed", "build", short(buildID), "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("build complete", "build", short(buildID), "glyphs", glyphs, "cached", cacheHit, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string)  { h.logger.Debug("cache hit", "type", keyType) }
func (h logHooks) OnCacheMiss(_ context.Context, keyType string) { h.logger.Debug("cache miss", "type", keyType) }

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnAssetRequest(_ context.Context, format string, status int) {
	h.logger.Debug("asset", "format", format, "status", status)
}

func (h logHooks) OnRebuild(_ context.Context, d time.Duration, errs int) {
	h.logger.Debug("rebuild", "duration", d.Round(time.Millisecond), "errors", errs)
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
