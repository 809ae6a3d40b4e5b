package configsource

import "github.com/BurntSushi/toml"

// NewTOMLSource builds a Source that decodes a TOML file. Arrays of
// tables decode as []map[string]interface{}, which
// configtree.FromGo preserves as a sequence of mappings, per the spec's
// TOML parser contract.
func NewTOMLSource(path string) Source {
	return newFileSource(KindTOML, path, func(data []byte) (interface{}, error) {
		var out map[string]interface{}
		if _, err := toml.Decode(string(data), &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}
