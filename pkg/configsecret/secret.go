// Package configsecret implements the read-only secrets contract the
// composer overlays at read time (never merged into the live tree) and
// the masking pass used before any tree is emitted for display or
// logging. Grounded on the teacher's internal/config/sanitizer.go
// (mask-a-copy-never-the-original shape), generalized from a
// hardcoded per-field redaction list to a configurable regex-on-key
// heuristic.
package configsecret

import (
	"regexp"
	"sort"
	"sync"

	"github.com/latticeforge/configcore/pkg/configtree"
)

// Accessor is the read-only contract the composer requires of a
// secrets backend. Retrieval updates an access counter; the composer
// never writes through this interface.
type Accessor interface {
	GetSecret(name string) (value string, ok bool)
	ListSecretNames() []string
	Exists(name string) bool
}

// MemoryAccessor is the in-memory reference implementation: a fixed
// set of name→value pairs, useful as a test double and as the default
// when no production secret store is configured.
type MemoryAccessor struct {
	mu      sync.Mutex
	values  map[string]string
	accessN map[string]int64
}

// NewMemoryAccessor builds an Accessor over a fixed set of secrets.
func NewMemoryAccessor(values map[string]string) *MemoryAccessor {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return &MemoryAccessor{values: cp, accessN: map[string]int64{}}
}

func (m *MemoryAccessor) GetSecret(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[name]
	if ok {
		m.accessN[name]++
	}
	return v, ok
}

func (m *MemoryAccessor) ListSecretNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.values))
	for k := range m.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (m *MemoryAccessor) Exists(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[name]
	return ok
}

// AccessCount reports how many times GetSecret has returned a hit for
// name, for diagnostics and tests.
func (m *MemoryAccessor) AccessCount(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessN[name]
}

// defaultSensitivePattern matches key names the masking pass redacts
// by default: password/secret/token/key and their common variants.
var defaultSensitivePattern = regexp.MustCompile(`(?i)(password|secret|token|api[_-]?key|credential|private[_-]?key)`)

const redactedValue = "***REDACTED***"

// Mask returns a deep copy of tree with every scalar whose mapping key
// matches pattern replaced by a fixed redaction marker. A nil pattern
// uses the default sensitive-name heuristic. The input tree is never
// mutated.
func Mask(tree *configtree.Value, pattern *regexp.Regexp) *configtree.Value {
	if pattern == nil {
		pattern = defaultSensitivePattern
	}
	return maskValue(tree, pattern)
}

func maskValue(v *configtree.Value, pattern *regexp.Regexp) *configtree.Value {
	if v == nil {
		return nil
	}
	switch v.Kind() {
	case configtree.KindMapping:
		out := configtree.NewMapping()
		for _, key := range v.Keys() {
			child := v.Child(key)
			if pattern.MatchString(key) && !child.IsMapping() && !child.IsSequence() {
				out.Set(key, configtree.String(redactedValue))
				continue
			}
			out.Set(key, maskValue(child, pattern))
		}
		return out
	case configtree.KindSequence:
		out := configtree.NewSequence()
		for _, e := range v.Elements() {
			out.Append(maskValue(e, pattern))
		}
		return out
	default:
		return v.Clone()
	}
}
