package scoring

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides of scoring settings.
// Nested keys are separated by a double underscore:
// LABMATCH_OPTIONS__MIN_SCORE=0.3 sets options.min_score.
const EnvPrefix = "LABMATCH_"

// LoadFile loads a scoring configuration in three layers:
//
//  1. The built-in profile named by the file's "base" key (default "default")
//  2. The YAML file at path, if path is not empty
//  3. LABMATCH_ environment variables
//
// The merged result is validated like NewConfig.
func LoadFile(path string) (*Config, error) {
	fileLayer := koanf.New(".")
	if path != "" {
		if err := fileLayer.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load scoring file %s: %w", path, err)
		}
	}

	base := fileLayer.String("base")
	if base == "" {
		base = DefaultProfile
	}
	build, ok := profiles[base]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, base)
	}
	defaults := build()

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load profile defaults: %w", err)
	}
	if err := k.Merge(fileLayer); err != nil {
		return nil, fmt.Errorf("failed to merge scoring file: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	cfg := Config{}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scoring config: %w", err)
	}
	if path != "" && !fileLayer.Exists("name") {
		cfg.Name = base + "+" + filepath.Base(path)
	}
	return NewConfig(cfg)
}

// envTransform maps LABMATCH_OPTIONS__MIN_SCORE to options.min_score.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
