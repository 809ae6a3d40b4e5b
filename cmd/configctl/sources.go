package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/latticeforge/configcore/internal/composer"
	"github.com/latticeforge/configcore/pkg/configsource"
	"github.com/latticeforge/configcore/pkg/logger"
)

// buildComposer assembles a Composer from CLI flags: zero or more
// file sources (format inferred from extension unless overridden) in
// the order given, followed by an environment source when envPrefix
// is set, mirroring the precedence rule the library itself documents
// (later-added sources win).
func buildComposer(files []string, format, envPrefix string) (*composer.Composer, error) {
	log := logger.New(logger.Config{Level: cliSettings.GetString("log-level"), Format: "text", Output: "stderr"})
	c := composer.New(composer.WithLogger(log))

	for _, path := range files {
		src, err := fileSourceFor(path, format)
		if err != nil {
			return nil, err
		}
		if err := c.AddSource(cliCtx(), src); err != nil {
			return nil, err
		}
	}

	if envPrefix != "" {
		if err := c.AddSource(cliCtx(), configsource.NewEnvSource(configsource.DefaultEnvOptions(envPrefix))); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func fileSourceFor(path, format string) (configsource.Source, error) {
	kind := strings.ToLower(format)
	if kind == "" {
		kind = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch kind {
	case "yaml", "yml":
		return configsource.NewYAMLSource(path), nil
	case "json":
		return configsource.NewJSONSource(path), nil
	case "toml":
		return configsource.NewTOMLSource(path), nil
	case "ini":
		return configsource.NewINISource(path, configsource.INIOptions{}), nil
	default:
		return nil, fmt.Errorf("cannot infer config format for %q, pass --format", path)
	}
}
