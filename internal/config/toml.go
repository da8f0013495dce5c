package config

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/v2"
)

// tomlParser is a koanf.Parser backed by BurntSushi/toml.
type tomlParser struct{}

// TOML returns a koanf parser for TOML config files.
func TOML() koanf.Parser { return tomlParser{} }

// Unmarshal decodes TOML into a nested map.
func (tomlParser) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if _, err := toml.Decode(string(b), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal encodes a nested map as TOML.
func (tomlParser) Marshal(m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
