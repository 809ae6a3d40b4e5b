package configsource

import "gopkg.in/yaml.v3"

// NewYAMLSource builds a Source that decodes a YAML file through the
// safe subset yaml.v3 already enforces for plain Unmarshal targets: no
// language-specific tag constructors run, while anchors and aliases are
// still resolved by the decoder before this source ever sees the value.
func NewYAMLSource(path string) Source {
	return newFileSource(KindYAML, path, func(data []byte) (interface{}, error) {
		var out interface{}
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return normalizeYAML(out), nil
	})
}

// normalizeYAML rewrites yaml.v3's map[string]interface{} nodes (its
// default decode target for mapping nodes) recursively so nested
// sequences/mappings are also plain Go values configtree.FromGo
// understands without special-casing yaml.Node types.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return t
	}
}
