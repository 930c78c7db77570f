// Package config decodes pattern-set configuration files: the set of
// jsonpath patterns a scan runs, plus the jsonpath.Options to run them
// with, as a single YAML document.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Crescent617/jsonscan/jsonpath"
)

// File is the on-disk shape of a pattern-set configuration.
type File struct {
	Patterns []rawPattern `yaml:"patterns"`
	Options  rawOptions   `yaml:"options"`
}

type rawOptions struct {
	WithPath             bool `yaml:"with_path"`
	SymbolizePathKeys    bool `yaml:"symbolize_path_keys"`
	AllowComments        bool `yaml:"allow_comments"`
	DontValidateStrings  bool `yaml:"dont_validate_strings"`
	AllowTrailingGarbage bool `yaml:"allow_trailing_garbage"`
	AllowMultipleValues  bool `yaml:"allow_multiple_values"`
	AllowPartialValues   bool `yaml:"allow_partial_values"`
	VerboseError         bool `yaml:"verbose_error"`
}

func (o rawOptions) toOptions() jsonpath.Options {
	return jsonpath.Options{
		WithPath:             o.WithPath,
		SymbolizePathKeys:    o.SymbolizePathKeys,
		AllowComments:        o.AllowComments,
		DontValidateStrings:  o.DontValidateStrings,
		AllowTrailingGarbage: o.AllowTrailingGarbage,
		AllowMultipleValues:  o.AllowMultipleValues,
		AllowPartialValues:   o.AllowPartialValues,
		VerboseError:         o.VerboseError,
	}
}

// rawPattern is one pattern: an ordered sequence of entries. Each
// entry's YAML shape — a bare string, a bare integer, or a mapping —
// determines which kind of jsonpath.PatternEntry it decodes to.
type rawPattern []rawEntry

func (p rawPattern) toPattern() jsonpath.Pattern {
	out := make(jsonpath.Pattern, len(p))
	for i, e := range p {
		out[i] = e.entry
	}
	return out
}

type rawEntry struct {
	entry jsonpath.PatternEntry
}

// UnmarshalYAML decodes one pattern entry. A scalar is a key (string)
// or an index (integer); a mapping selects range, any_key, or
// any_index explicitly, since those have no unambiguous scalar form.
func (r *rawEntry) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var asIndex int64
		if err := value.Decode(&asIndex); err == nil {
			r.entry = jsonpath.Index(asIndex)
			return nil
		}
		var asKey string
		if err := value.Decode(&asKey); err != nil {
			return fmt.Errorf("pattern entry %q: %w", value.Value, err)
		}
		r.entry = jsonpath.Key(asKey)
		return nil
	case yaml.MappingNode:
		var m struct {
			Range    []int64 `yaml:"range"`
			AnyKey   bool    `yaml:"any_key"`
			AnyIndex bool    `yaml:"any_index"`
		}
		if err := value.Decode(&m); err != nil {
			return fmt.Errorf("pattern entry: %w", err)
		}
		switch {
		case m.AnyKey:
			r.entry = jsonpath.AnyKey
		case m.AnyIndex:
			r.entry = jsonpath.AnyIndex
		case len(m.Range) == 2:
			r.entry = jsonpath.Range(m.Range[0], m.Range[1])
		default:
			return fmt.Errorf("pattern entry: mapping must set range, any_key, or any_index")
		}
		return nil
	default:
		return fmt.Errorf("pattern entry: unsupported YAML node kind %d", value.Kind)
	}
}

// Load reads and decodes a pattern-set configuration file.
func Load(path string) ([]jsonpath.Pattern, jsonpath.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, jsonpath.Options{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses a pattern-set configuration document already in memory.
func Decode(data []byte) ([]jsonpath.Pattern, jsonpath.Options, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, jsonpath.Options{}, fmt.Errorf("config: decode: %w", err)
	}
	patterns := make([]jsonpath.Pattern, len(f.Patterns))
	for i, p := range f.Patterns {
		patterns[i] = p.toPattern()
	}
	return patterns, f.Options.toOptions(), nil
}
