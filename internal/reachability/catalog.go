package reachability

import (
	"regexp"
	"strings"
)

// dangerousCatalogEntry names, for a known vulnerable package, the sink
// function S3 looks for — either as a direct regex match, or (when re is
// nil or misses) as a bare function-name occurrence that must coincide
// with an import of the package in the same file.
type dangerousCatalogEntry struct {
	funcName string
	re       *regexp.Regexp
}

// dangerousCatalog is keyed by package name, per the specification's
// worked examples (lodash.template, express.static, axios.get, yaml.load,
// jackson-databind readValue, log4j-core info/error/…, Newtonsoft.Json
// DeserializeObject, nokogiri parse, django raw/extra, sqlalchemy text).
var dangerousCatalog = map[string]dangerousCatalogEntry{
	"lodash": {
		funcName: "_.template",
		re:       regexp.MustCompile(`_\.template\s*\(`),
	},
	"express": {
		funcName: "express.static",
		re:       regexp.MustCompile(`express\.static\s*\(`),
	},
	"axios": {
		funcName: "axios.get",
		re:       regexp.MustCompile(`axios\.(get|post)\s*\([^)]*\+`),
	},
	"js-yaml": {
		funcName: "yaml.load",
		re:       regexp.MustCompile(`\byaml\.load\s*\(`),
	},
	"com.fasterxml.jackson.databind": {
		funcName: "readValue",
		re:       regexp.MustCompile(`\.readValue\s*\(`),
	},
	"org.apache.logging.log4j:log4j-core": {
		funcName: "log4j",
		re:       regexp.MustCompile(`logger\.(info|error|warn|debug)\s*\([^)]*\+`),
	},
	"Newtonsoft.Json": {
		funcName: "JsonConvert.DeserializeObject",
		re:       regexp.MustCompile(`JsonConvert\.DeserializeObject\s*<?\s*\(?`),
	},
	"nokogiri": {
		funcName: "Nokogiri::XML",
		re:       regexp.MustCompile(`Nokogiri::(XML|HTML)\s*\(`),
	},
	"django": {
		funcName: ".raw(",
		re:       regexp.MustCompile(`\.(raw|extra)\s*\(`),
	},
	"sqlalchemy": {
		funcName: "text(",
		re:       regexp.MustCompile(`\btext\s*\([^)]*%|\btext\s*\(f['"]`),
	},
}

// DangerousSink reports the catalog's sink function name for pkg if
// content matches its dangerous regex, or (failing that) contains the
// catalog's bare function name. Used by the call-graph builder to wire
// an edge from the scanning file into the package's sink node; S3 itself
// re-derives the same match independently at analysis time.
func DangerousSink(content []byte, pkg string) (funcName string, ok bool) {
	entry, exists := dangerousCatalog[pkg]
	if !exists {
		return "", false
	}
	if entry.re != nil && entry.re.Match(content) {
		return entry.funcName, true
	}
	if entry.funcName != "" && strings.Contains(string(content), entry.funcName) {
		return entry.funcName, true
	}
	return "", false
}

// KnownDangerousPackages returns the package names in the dangerous-sink
// catalog, for callers that need to probe a file's imports against it.
func KnownDangerousPackages() []string {
	out := make([]string, 0, len(dangerousCatalog))
	for k := range dangerousCatalog {
		out = append(out, k)
	}
	return out
}
