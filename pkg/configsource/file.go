package configsource

import (
	"os"

	"github.com/latticeforge/configcore/pkg/configtree"
)

// decodeFunc parses raw file bytes into plain Go data suitable for
// configtree.FromGo. Each format-specific source supplies its own.
type decodeFunc func([]byte) (interface{}, error)

// fileSource is the shared skeleton behind the JSON/YAML/TOML/INI
// sources: they differ only in their decodeFunc and Kind. Grounded on
// warthog618/config's Source wrapping a format-specific Decoder, and on
// the spec's unified file-availability rule (extension mismatch is
// advisory, never fatal).
type fileSource struct {
	*metaTracker
	kind   Kind
	path   string
	decode decodeFunc
}

func newFileSource(kind Kind, path string, decode decodeFunc) *fileSource {
	return &fileSource{
		metaTracker: newMetaTracker(kind, path),
		kind:        kind,
		path:        path,
		decode:      decode,
	}
}

func (s *fileSource) Kind() Kind     { return s.kind }
func (s *fileSource) Origin() string { return s.path }

func (s *fileSource) IsAvailable() bool {
	info, err := os.Stat(s.path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func (s *fileSource) Fingerprint() string {
	info, err := os.Stat(s.path)
	if err != nil {
		return ""
	}
	return info.ModTime().UTC().Format("20060102T150405.000000000")
}

func (s *fileSource) Metadata() Metadata { return s.snapshot() }

// Load reads and decodes the file. Any I/O error, decode error, or
// non-mapping root yields {} and is recorded on metadata — it never
// prevents lower-precedence sources in the composer's stack from
// applying.
func (s *fileSource) Load() *configtree.Value {
	s.recordAttempt()

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.recordFailure(err)
		return configtree.NewMapping()
	}
	if len(data) == 0 {
		s.recordSuccess(0, s.Fingerprint())
		return configtree.NewMapping()
	}

	decoded, err := s.decode(data)
	if err != nil {
		s.recordFailure(err)
		return configtree.NewMapping()
	}

	tree := configtree.FromGo(decoded)
	if !tree.IsMapping() {
		s.recordFailure(errNonMappingRoot)
		return configtree.NewMapping()
	}

	s.recordSuccess(int64(len(data)), s.Fingerprint())
	return tree
}

var errNonMappingRoot = nonMappingRootError{}

type nonMappingRootError struct{}

func (nonMappingRootError) Error() string {
	return "source root is not a mapping"
}
