package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Load decodes the TOML configuration at path and validates it into a
// runtime Config. Unlike the teacher's node config, this engine never
// materializes a default file on first run: a missing or unreadable config
// path is a fatal startup error (spec.md §7).
func Load(path string) (*Config, error) {
	var raw Raw
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: unknown key %q in %s", undecoded[0].String(), path)
	}
	if meta.IsDefined("features", "monday_multiplier", "multiplier") && raw.Features.MondayMultiplier.Multiplier < 1 {
		return nil, fmt.Errorf("config: features.monday_multiplier.multiplier must be >= 1, got %d", raw.Features.MondayMultiplier.Multiplier)
	}
	return Validate(raw)
}
