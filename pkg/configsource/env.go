package configsource

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/latticeforge/configcore/pkg/configtree"
)

// EnvOptions configures the environment source per the spec's §6
// environment variable mapping.
type EnvOptions struct {
	// Prefix strips this prefix (plus the separator that follows it)
	// from matching variable names before splitting into a path. An
	// empty prefix matches every environment variable.
	Prefix string
	// Separator splits the remaining variable name into nested path
	// segments. Defaults to "_".
	Separator string
	// FoldCase lowercases each path segment when true (the default).
	FoldCase bool
	// ParseValues enables the JSON > numeric > boolean > string
	// fallback parsing of §6. When false, every value is a string.
	ParseValues bool
}

// DefaultEnvOptions returns the spec's default environment mapping:
// separator "_", case folded to lower, values parsed.
func DefaultEnvOptions(prefix string) EnvOptions {
	return EnvOptions{
		Prefix:      prefix,
		Separator:   "_",
		FoldCase:    true,
		ParseValues: true,
	}
}

// envSource reads os.Environ() on every Load — environment variables
// have no mtime, so their fingerprint is a content hash of the matched
// set, recomputed each time exactly as the spec's "dynamic source"
// fingerprint rule describes.
type envSource struct {
	*metaTracker
	opts       EnvOptions
	lastFinger atomic.Value
}

// NewEnvSource builds a Source over process environment variables.
func NewEnvSource(opts EnvOptions) Source {
	if opts.Separator == "" {
		opts.Separator = "_"
	}
	origin := "env:" + opts.Prefix
	s := &envSource{
		metaTracker: newMetaTracker(KindEnv, origin),
		opts:        opts,
	}
	s.lastFinger.Store("")
	return s
}

func (s *envSource) Kind() Kind     { return KindEnv }
func (s *envSource) Origin() string { return s.metaTracker.meta.Origin }

// IsAvailable is always true: the environment always exists, even if no
// variable happens to match the prefix.
func (s *envSource) IsAvailable() bool { return true }

func (s *envSource) Fingerprint() string {
	f, _ := s.lastFinger.Load().(string)
	return f
}

func (s *envSource) Metadata() Metadata { return s.snapshot() }

func (s *envSource) Load() *configtree.Value {
	s.recordAttempt()

	tree := configtree.NewMapping()
	prefix := s.opts.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, s.opts.Separator) {
		prefix += s.opts.Separator
	}

	matched := 0
	for _, kv := range os.Environ() {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			continue
		}
		name, raw := kv[:eq], kv[eq+1:]

		rest := name
		if prefix != "" {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			rest = name[len(prefix):]
		}
		if rest == "" {
			continue
		}
		matched++

		segs := strings.Split(rest, s.opts.Separator)
		if s.opts.FoldCase {
			for i := range segs {
				segs[i] = strings.ToLower(segs[i])
			}
		}
		setPath(tree, segs, s.parseValue(raw))
	}

	fingerprint := configtree.Hash(tree)
	s.lastFinger.Store(fingerprint)
	s.recordSuccess(int64(matched), fingerprint)
	return tree
}

func (s *envSource) parseValue(raw string) *configtree.Value {
	if !s.opts.ParseValues {
		return configtree.String(raw)
	}

	// JSON first: this alone already covers objects, arrays, numbers and
	// booleans, since they're all valid JSON literals.
	var js interface{}
	if err := json.Unmarshal([]byte(raw), &js); err == nil {
		return configtree.FromGo(js)
	}
	// Then numeric, then boolean, then string fallback for raw values
	// that aren't valid JSON on their own (e.g. "localhost", "YES").
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return configtree.Int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return configtree.Float(f)
	}
	if b, ok := parseBoolString(raw); ok {
		return configtree.Bool(b)
	}
	return configtree.String(raw)
}

func parseBoolString(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	default:
		return false, false
	}
}

// setPath writes value at the nested path described by segs, creating
// intermediate mappings as needed.
func setPath(root *configtree.Value, segs []string, value *configtree.Value) {
	cur := root
	for i, seg := range segs {
		if i == len(segs)-1 {
			cur.Set(seg, value)
			return
		}
		next := cur.Child(seg)
		if next == nil || !next.IsMapping() {
			next = configtree.NewMapping()
			cur.Set(seg, next)
		}
		cur = next
	}
}
