package plugin

import (
	"net/http"
	"strconv"

	"github.com/matzehuels/iconfont/pkg/observability"
	"github.com/matzehuels/iconfont/pkg/options"
)

// ConfigureServer registers one handler per requested format at the asset
// URL of that format.
func (p *Plugin) ConfigureServer(s Server) {
	for _, f := range p.opts.Formats {
		s.Use(p.opts.AssetURL(f), p.AssetHandler(f))
	}
}

// AssetHandler serves the registry entry of f, or 404 when the font has not
// been built yet or did not produce f.
func (p *Plugin) AssetHandler(f options.Format) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		asset, ok := p.registry.Get(f)
		if !ok {
			p.logger.Debug("asset missing", "format", f, "path", r.URL.Path)
			observability.Serve().OnAssetRequest(r.Context(), string(f), http.StatusNotFound)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", asset.Mime)
		w.Header().Set("Content-Length", strconv.Itoa(len(asset.Payload)))
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write(asset.Payload)
		}
		observability.Serve().OnAssetRequest(r.Context(), string(f), http.StatusOK)
	})
}
