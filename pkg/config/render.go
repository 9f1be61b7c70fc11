package config

import (
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/promote/pkg/errors"
)

// Render serialises cfg as TOML
func Render(cfg *Config) (string, error) {
	data, err := gotoml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render settings")
	}
	return string(data), nil
}

// DefaultsContent returns the embedded defaults file, comments included
func DefaultsContent() string {
	return string(defaultConfig)
}
