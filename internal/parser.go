package internal

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Parser loads an academy's data from a source
type Parser interface {
	Parse(path string) (*AcademyData, error)
}

// ParserFunc is a function that implements Parser
type ParserFunc func(path string) (*AcademyData, error)

func (f ParserFunc) Parse(path string) (*AcademyData, error) {
	return f(path)
}

// parsers is the registry of available parsers
var parsers = map[string]Parser{}

// extensions maps file extensions to the parser used when no prefix is given
var extensions = map[string]string{}

// RegisterParser registers a parser with the given name and the file
// extensions (".json") it handles by default.
func RegisterParser(name string, p Parser, exts ...string) {
	parsers[name] = p
	for _, ext := range exts {
		extensions[strings.ToLower(ext)] = name
	}
}

// GetParser returns the parser for the given source type
func GetParser(source string) (Parser, error) {
	p, ok := parsers[source]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %s (available: %v)", source, AvailableSources())
	}
	return p, nil
}

// AvailableSources returns the registered source types, sorted
func AvailableSources() []string {
	sources := make([]string, 0, len(parsers))
	for name := range parsers {
		sources = append(sources, name)
	}
	sort.Strings(sources)
	return sources
}

// IsKnownParser returns true if the name is a registered parser
func IsKnownParser(name string) bool {
	_, ok := parsers[name]
	return ok
}

// ParseFileArg parses a file argument that may have a format prefix.
// Returns (format, path). If no valid prefix, format is empty.
// Example: "yaml:academy.yml" → ("yaml", "academy.yml")
// Example: "academy.json" → ("", "academy.json")
// Example: "C:\path\file.xlsx" → ("", "C:\path\file.xlsx") // Windows path
func ParseFileArg(arg string) (format, path string) {
	idx := strings.Index(arg, ":")
	if idx == -1 {
		return "", arg
	}
	prefix := arg[:idx]
	if IsKnownParser(prefix) {
		return prefix, arg[idx+1:]
	}
	return "", arg
}

// DetectFormat returns the parser registered for the file's extension.
func DetectFormat(path string) (string, bool) {
	name, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return name, ok
}

// LoadSource resolves a source argument ("format:path" or a bare path with a
// known extension) and loads it.
func LoadSource(arg string) (*AcademyData, error) {
	format, path := ParseFileArg(arg)
	if format == "" {
		detected, ok := DetectFormat(path)
		if !ok {
			return nil, fmt.Errorf("cannot detect format of %q; use format:path (available: %v)", path, AvailableSources())
		}
		format = detected
	}

	p, err := GetParser(format)
	if err != nil {
		return nil, err
	}
	data, err := p.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s source %s: %w", format, path, err)
	}
	return data, nil
}

func init() {
	RegisterParser("json", ParserFunc(ParseJSONDocument), ".json")
	RegisterParser("yaml", ParserFunc(ParseYAMLDocument), ".yaml", ".yml")
	RegisterParser("xlsx", ParserFunc(ParseWorkbook), ".xlsx")
}
