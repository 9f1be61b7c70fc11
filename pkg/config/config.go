package config

// Config is the effective set of tool settings
type Config struct {
	Metadata Metadata `koanf:"metadata" toml:"metadata"`
	Builder  Builder  `koanf:"builder" toml:"builder"`
	Verify   Verify   `koanf:"verify" toml:"verify"`
}

// Metadata locates the tool's own files inside a source tree
type Metadata struct {
	Dir       string `koanf:"dir" toml:"dir"`
	Manifest  string `koanf:"manifest" toml:"manifest"`
	LoaderDir string `koanf:"loader_dir" toml:"loader_dir"`
	LoaderExt string `koanf:"loader_ext" toml:"loader_ext"`
}

// Builder holds manifest build settings
type Builder struct {
	ConfigPattern      string `koanf:"config_pattern" toml:"config_pattern"`
	OverridePattern    string `koanf:"override_pattern" toml:"override_pattern"`
	FailOnUnimplicated bool   `koanf:"fail_on_unimplicated" toml:"fail_on_unimplicated"`
}

// Verify holds manifest verification settings
type Verify struct {
	SkipHashCheck    bool `koanf:"skip_hash_check" toml:"skip_hash_check"`
	SkipVersionCheck bool `koanf:"skip_version_check" toml:"skip_version_check"`
	Strict           bool `koanf:"strict" toml:"strict"`
}
