// Package configprofile implements the profile registry: named
// profiles with optional parent links forming a tree (never a general
// DAG — cycles are rejected at registration), reserved-name aliasing,
// shallow-to-deep variable resolution along the inheritance chain, and
// environment-based active-profile auto-detection. Grounded on the
// teacher's internal/config/config.go profile helpers
// (IsProductionProfile/IsDevelopmentProfile/validateProfile),
// generalized from a fixed three-profile switch into a registry of
// arbitrarily many named, inheriting profiles.
package configprofile

import (
	"fmt"
	"os"
	"strings"
)

// Reserved profile names the spec calls out explicitly.
const (
	Base        = "base"
	Development = "development"
	Testing     = "testing"
	Staging     = "staging"
	Production  = "production"
)

// aliases canonicalizes common spellings onto the reserved names,
// matched case-insensitively.
var aliases = map[string]string{
	"dev":     Development,
	"develop": Development,
	"local":   Development,
	"test":    Testing,
	"stage":   Staging,
	"prod":    Production,
}

// Canonicalize lowercases name and maps it through the alias table; an
// unrecognized name passes through unchanged (profiles need not be one
// of the reserved names).
func Canonicalize(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := aliases[lower]; ok {
		return canon
	}
	return lower
}

// Profile is one registered node: a name, an optional parent name, and
// its own variables (not inherited ones — those are resolved through
// Registry.Get).
type Profile struct {
	Name      string
	Parent    string
	Variables map[string]string
}

// Registry holds every registered profile and the currently active
// one.
type Registry struct {
	profiles map[string]*Profile
	active   string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: map[string]*Profile{}}
}

// Register adds a profile, canonicalizing both its name and its
// parent's name. It fails if the resulting parent chain contains a
// cycle (including a profile naming itself as its own parent,
// directly or transitively).
func (r *Registry) Register(name, parent string, variables map[string]string) error {
	name = Canonicalize(name)
	if parent != "" {
		parent = Canonicalize(parent)
	}

	if variables == nil {
		variables = map[string]string{}
	}
	p := &Profile{Name: name, Parent: parent, Variables: variables}

	previous := r.profiles[name]
	r.profiles[name] = p
	if err := r.checkNoCycle(name); err != nil {
		if previous != nil {
			r.profiles[name] = previous
		} else {
			delete(r.profiles, name)
		}
		return err
	}
	return nil
}

func (r *Registry) checkNoCycle(start string) error {
	seen := map[string]struct{}{}
	cur := start
	for cur != "" {
		if _, ok := seen[cur]; ok {
			return fmt.Errorf("configprofile: cycle detected in parent chain starting at %q", start)
		}
		seen[cur] = struct{}{}
		p, ok := r.profiles[cur]
		if !ok {
			return nil
		}
		cur = p.Parent
	}
	return nil
}

// Has reports whether name (after canonicalization) is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.profiles[Canonicalize(name)]
	return ok
}

// SetActive marks name as the active profile. It is not required to
// be pre-registered.
func (r *Registry) SetActive(name string) {
	r.active = Canonicalize(name)
}

// Active returns the currently active profile name, or "" if none has
// been set.
func (r *Registry) Active() string {
	return r.active
}

// Chain returns name's ancestry from the root-most ancestor down to
// name itself (shallow to deep), the order child-overrides-ancestor
// resolution walks in.
func (r *Registry) Chain(name string) []string {
	name = Canonicalize(name)
	var chain []string
	cur := name
	seen := map[string]struct{}{}
	for cur != "" {
		if _, ok := seen[cur]; ok {
			break
		}
		seen[cur] = struct{}{}
		chain = append([]string{cur}, chain...)
		p, ok := r.profiles[cur]
		if !ok {
			break
		}
		cur = p.Parent
	}
	return chain
}

// Get resolves key by walking name's inheritance chain shallow to
// deep, so a descendant's own value overrides an ancestor's.
func (r *Registry) Get(name, key string) (string, bool) {
	value := ""
	found := false
	for _, profileName := range r.Chain(name) {
		p, ok := r.profiles[profileName]
		if !ok {
			continue
		}
		if v, ok := p.Variables[key]; ok {
			value = v
			found = true
		}
	}
	return value, found
}

// DetectActive auto-detects the active profile from the first
// non-empty environment variable in envVars, falling back to
// fallback when none is set, and canonicalizes the result.
func DetectActive(envVars []string, fallback string) string {
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return Canonicalize(v)
		}
	}
	return Canonicalize(fallback)
}
