package config

import (
	_ "embed"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	perrors "github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/logging"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

const (
	// EnvPrefix prefixes every settings environment variable
	EnvPrefix = "PROMOTE_"
	// ProjectConfigFile is read from the base directory when present
	ProjectConfigFile = ".promote.toml"
	userConfigFile    = "promote.toml"
)

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// UserConfigPath returns the location of the per-user settings file
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, logging.AppName, userConfigFile)
}

// Default returns the embedded defaults
func Default() *Config {
	cfg, err := load("", "", false)
	if err != nil {
		// The embedded file is part of the binary; failing to parse it is a
		// build defect.
		panic(err)
	}
	return cfg
}

// Load builds the effective settings for a source tree rooted at baseDir.
// An empty baseDir skips the project layer.
func Load(baseDir string) (*Config, error) {
	return load(baseDir, UserConfigPath(), true)
}

func load(baseDir, userPath string, withEnv bool) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, perrors.Wrap(err, perrors.ErrConfigLoad, "failed to load default settings")
	}

	// 2. User file, 3. project file
	files := []string{userPath}
	if baseDir != "" {
		files = append(files, filepath.Join(baseDir, ProjectConfigFile))
	}
	for _, path := range files {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, perrors.Wrapf(err, perrors.ErrConfigLoad, "failed to load settings from %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded settings file")
	}

	// 4. Environment, PROMOTE_VERIFY_SKIP_HASH_CHECK -> verify.skip_hash_check
	if withEnv {
		err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
		if err != nil {
			return nil, perrors.Wrap(err, perrors.ErrConfigLoad, "failed to load environment settings")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, perrors.Wrap(err, perrors.ErrConfigLoad, "failed to unmarshal settings")
	}

	if err := postProcess(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps PROMOTE_SECTION_SOME_KEY to section.some_key
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func postProcess(cfg *Config) error {
	dir := strings.Trim(filepath.ToSlash(cfg.Metadata.Dir), "/")
	if dir != "" {
		dir = path.Clean(dir)
	}
	if dir == "" || dir == "." || dir == ".." || strings.HasPrefix(dir, "../") {
		return perrors.Newf(perrors.ErrConfigLoad,
			"metadata.dir must name a subdirectory of the base directory, got %q", cfg.Metadata.Dir).
			WithDetail("dir", cfg.Metadata.Dir)
	}
	cfg.Metadata.Dir = dir
	if cfg.Metadata.Manifest == "" {
		return perrors.New(perrors.ErrConfigLoad, "metadata.manifest must not be empty")
	}
	if cfg.Metadata.LoaderExt != "" && !strings.HasPrefix(cfg.Metadata.LoaderExt, ".") {
		cfg.Metadata.LoaderExt = "." + cfg.Metadata.LoaderExt
	}
	return nil
}
