package configsource

import (
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// INIOptions configures the INI source.
type INIOptions struct {
	// Section restricts the load to a single section, producing a flat
	// mapping of that section's keys rather than section.key paths.
	Section string
}

// NewINISource builds a Source over an INI file: keys are exposed as
// "section.key" paths, with the DEFAULT section's keys explicitly
// inherited into every other section before its own keys are applied
// (so a section can still override an inherited default), and values
// coerced to bool/int/float/string following the spec's INI coercion
// grammar.
func NewINISource(path string, opts INIOptions) Source {
	return newFileSource(KindINI, path, func(data []byte) (interface{}, error) {
		cfg, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true}, data)
		if err != nil {
			return nil, err
		}

		defaults := map[string]string{}
		if def := cfg.Section(ini.DefaultSection); def != nil {
			for _, key := range def.Keys() {
				defaults[key.Name()] = key.Value()
			}
		}

		out := make(map[string]interface{})
		for _, sec := range cfg.Sections() {
			name := sec.Name()
			if name == ini.DefaultSection {
				continue
			}
			if opts.Section != "" && name != opts.Section {
				continue
			}

			values := map[string]string{}
			for k, v := range defaults {
				values[k] = v
			}
			for _, key := range sec.Keys() {
				values[key.Name()] = key.Value()
			}

			for keyName, raw := range values {
				coerced := coerceINIValue(raw)
				if opts.Section != "" {
					out[keyName] = coerced
				} else {
					out[name+"."+keyName] = coerced
				}
			}
		}
		return expandDotted(out), nil
	})
}

// coerceINIValue applies the spec's §4.2 INI coercion grammar: booleans
// (case-insensitive true|false|yes|no|on|off|1|0), then integers
// (optional sign), then floats (including scientific notation),
// otherwise the original string.
func coerceINIValue(raw string) interface{} {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "true", "yes", "on", "1":
		return true
	case "false", "no", "off", "0":
		return false
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return raw
}

// expandDotted turns a flat map keyed by "a.b.c" into nested
// map[string]interface{} so it composes correctly with sources whose
// roots are already nested (JSON/YAML/TOML).
func expandDotted(flat map[string]interface{}) map[string]interface{} {
	root := make(map[string]interface{})
	for key, val := range flat {
		segs := strings.Split(key, ".")
		cur := root
		for i, seg := range segs {
			if i == len(segs)-1 {
				cur[seg] = val
				continue
			}
			next, ok := cur[seg].(map[string]interface{})
			if !ok {
				next = make(map[string]interface{})
				cur[seg] = next
			}
			cur = next
		}
	}
	return root
}
