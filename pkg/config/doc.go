// Package config loads promote's own settings.
//
// Settings are layered, later layers overriding earlier ones:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user file at $XDG_CONFIG_HOME/promote/promote.toml
//  3. .promote.toml in the base directory
//  4. PROMOTE_<SECTION>_<KEY> environment variables
//
// These are tool settings only. The builder config file that declares the
// glob rules is parsed by package rules.
package config
