package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/iconfont/pkg/errors"
	"github.com/matzehuels/iconfont/pkg/options"
)

// configNames are the files looked up in the working directory when no
// --config flag is given, in order.
var configNames = []string{"iconfont.toml", "iconfont.yaml", "iconfont.yml"}

// fileConfig is the on-disk configuration.
//
//	[icons]
//	dirs = ["./src/icons"]
//	font_name = "AppIcons"
//
//	[server]
//	addr = "127.0.0.1:5173"
//
//	[cache]
//	redis = "redis://localhost:6379/0"
type fileConfig struct {
	Icons  options.Config `toml:"icons" yaml:"icons"`
	Server serverConfig   `toml:"server" yaml:"server"`
	Cache  cacheConfig    `toml:"cache" yaml:"cache"`

	// path is the file the config was read from, empty for defaults.
	path string
}

type serverConfig struct {
	Addr    string   `toml:"addr" yaml:"addr"`
	Public  string   `toml:"public" yaml:"public"`
	Entries []string `toml:"entries" yaml:"entries"`
}

type cacheConfig struct {
	Disabled bool   `toml:"disabled" yaml:"disabled"`
	Dir      string `toml:"dir" yaml:"dir"`
	Redis    string `toml:"redis" yaml:"redis"`
	Prefix   string `toml:"prefix" yaml:"prefix"`
}

// loadConfig reads path, or the first default config file that exists when
// path is empty. No config file at all yields the zero config.
//
// Relative paths inside the file are resolved against the file's directory.
func loadConfig(path string) (fileConfig, error) {
	if path == "" {
		for _, name := range configNames {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
		if path == "" {
			return fileConfig{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileConfig{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return fileConfig{}, err
	}

	cfg, err := parseConfig(path, data)
	if err != nil {
		return fileConfig{}, err
	}
	if err := cfg.Icons.Validate(); err != nil {
		return fileConfig{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	cfg.path = path
	cfg.rebase(filepath.Dir(path))
	return cfg, nil
}

// parseConfig decodes data by file extension. Unknown keys are errors so
// typos do not silently fall back to defaults.
func parseConfig(path string, data []byte) (fileConfig, error) {
	var cfg fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format: %s (want .toml or .yaml)", path)
	}
	return cfg, nil
}

// rebase makes relative paths relative to dir.
func (c *fileConfig) rebase(dir string) {
	if dir == "." || dir == "" {
		return
	}
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i, d := range c.Icons.Dirs {
		c.Icons.Dirs[i] = join(d)
	}
	for i, e := range c.Server.Entries {
		c.Server.Entries[i] = join(e)
	}
	c.Icons.Types = join(c.Icons.Types)
	c.Icons.Manifest = join(c.Icons.Manifest)
	c.Server.Public = join(c.Server.Public)
	c.Cache.Dir = join(c.Cache.Dir)
}

// iconFlags are the per-command overrides of the [icons] section.
type iconFlags struct {
	dirs     []string
	fontName string
	formats  []string
	selector string
	fontPath string
}

func (f iconFlags) config() options.Config {
	return options.Config{
		Dirs:     f.dirs,
		FontName: f.fontName,
		Formats:  f.formats,
		Selector: f.selector,
		FontPath: f.fontPath,
	}
}

// resolveConfig loads the config file and layers flag overrides on top.
func (c *CLI) resolveConfig(flags iconFlags) (fileConfig, error) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return cfg, err
	}
	cfg.Icons = cfg.Icons.Merge(flags.config())
	if err := cfg.Icons.Validate(); err != nil {
		return cfg, err
	}
	if cfg.path != "" {
		c.Logger.Debug("loaded config", "path", cfg.path)
	}
	return cfg, nil
}
