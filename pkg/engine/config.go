package engine

import (
	"github.com/BurntSushi/toml"
)

// Config is an optional on-disk seed for engine.Options (SPEC_FULL §1/§11),
// read before the UCI "setoption" stream arrives. Fields are pointers so a
// config file may set only a subset of options; absent fields fall back to
// the caller-supplied defaults in Merge.
type Config struct {
	Hash       *uint   `toml:"hash"`
	Threads    *uint   `toml:"threads"`
	SyzygyPath *string `toml:"syzygy_path"`
}

// LoadConfig decodes a TOML options file at path. A missing or malformed
// file is a fatal error for the caller to report; callers that want a
// silent fallback should check for an empty path before calling this.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Merge overlays c's set fields onto defaults, returning the combined
// Options later passed to engine.WithOptions. Unset fields in c keep
// defaults' values unchanged.
func (c Config) Merge(defaults Options) Options {
	out := defaults
	if c.Hash != nil {
		out.Hash = clampHash(*c.Hash)
	}
	if c.Threads != nil {
		out.Threads = clampThreads(*c.Threads)
	}
	if c.SyzygyPath != nil {
		out.SyzygyPath = *c.SyzygyPath
	}
	return out
}
