package configsource

import "encoding/json"

// NewJSONSource builds a Source that decodes a JSON file. Duplicate keys
// within a single JSON object resolve last-wins, matching
// encoding/json's own decode behavior for map[string]interface{} targets.
func NewJSONSource(path string) Source {
	return newFileSource(KindJSON, path, func(data []byte) (interface{}, error) {
		var out interface{}
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}
