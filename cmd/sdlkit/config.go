package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// config is the sdlkit.toml project file. All keys are optional; command
// line flags override whatever the file provides.
type config struct {
	Schema     configSchema     `toml:"schema"`
	Datasource configDatasource `toml:"datasource"`
}

// configSchema maps [schema].
type configSchema struct {
	Path string `toml:"path"`
}

// configDatasource maps [datasource].
type configDatasource struct {
	Provider string `toml:"provider"`
	URL      string `toml:"url"`
	Schema   string `toml:"schema"`
}

// loadConfig reads an sdlkit.toml. A missing file is not an error; it
// returns the zero config so commands fall back to flags.
func loadConfig(path string) (*config, error) {
	cfg := new(config)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}
