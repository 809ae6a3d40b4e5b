package configsource

import (
	"github.com/latticeforge/configcore/pkg/configtree"
)

// SecretReader is the minimal read-only surface this source needs from
// a secrets accessor (see pkg/configsecret.Accessor, which satisfies
// this interface). Declared locally to avoid configsource depending on
// configsecret's masking/provider machinery for what is, here, a single
// lookup per declared mapping.
type SecretReader interface {
	GetSecret(name string) (value string, ok bool)
}

// secretSource looks up a fixed set of declared (config path -> secret
// name) pairs through a SecretReader and places each resolved secret at
// its config path. Missing secrets are simply omitted — the spec treats
// this as a warning-level condition recorded on metadata, never a fatal
// one.
type secretSource struct {
	*metaTracker
	reader   SecretReader
	mappings map[string]string
}

// NewSecretSource builds a Source backed by a SecretReader and a
// declared path->secret-name mapping.
func NewSecretSource(reader SecretReader, mappings map[string]string) Source {
	return &secretSource{
		metaTracker: newMetaTracker(KindSecret, "secrets"),
		reader:      reader,
		mappings:    mappings,
	}
}

func (s *secretSource) Kind() Kind        { return KindSecret }
func (s *secretSource) Origin() string    { return "secrets" }
func (s *secretSource) IsAvailable() bool { return s.reader != nil }

func (s *secretSource) Fingerprint() string {
	return s.snapshot().LastFingerprint
}

func (s *secretSource) Metadata() Metadata { return s.snapshot() }

func (s *secretSource) Load() *configtree.Value {
	s.recordAttempt()

	if s.reader == nil {
		s.recordFailure(nil)
		return configtree.NewMapping()
	}

	tree := configtree.NewMapping()
	missing := 0
	for path, secretName := range s.mappings {
		value, ok := s.reader.GetSecret(secretName)
		if !ok {
			missing++
			continue
		}
		setPath(tree, splitDot(path), configtree.String(value))
	}

	fingerprint := configtree.Hash(tree)
	if missing > 0 {
		s.recordFailure(nil)
	}
	s.recordSuccess(int64(len(s.mappings)-missing), fingerprint)
	return tree
}

func splitDot(path string) []string {
	segs := []string{}
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segs = append(segs, path[start:i])
			start = i + 1
		}
	}
	segs = append(segs, path[start:])
	return segs
}
