// Package importscan extracts imported package names from source files
// using a fixed, per-language regex catalog.
//
// This is deliberately best-effort: no AST is built, no type information
// is resolved. Confidence scores reflect how unambiguous a given pattern
// is, not certainty.
package importscan

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// Language is the closed set of languages the scanner recognizes.
type Language string

const (
	JavaScript Language = "javascript"
	Python     Language = "python"
	Java       Language = "java"
	GoLang     Language = "go"
	Rust       Language = "rust"
	Ruby       Language = "ruby"
	PHP        Language = "php"
	CSharp     Language = "csharp"
	Dart       Language = "dart"
	Elixir     Language = "elixir"
)

// extByLanguage maps a file extension to the language it implies.
var extByLanguage = map[string]Language{
	".js":   JavaScript,
	".jsx":  JavaScript,
	".ts":   JavaScript,
	".tsx":  JavaScript,
	".mjs":  JavaScript,
	".cjs":  JavaScript,
	".py":   Python,
	".java": Java,
	".go":   GoLang,
	".rs":   Rust,
	".rb":   Ruby,
	".php":  PHP,
	".cs":   CSharp,
	".dart": Dart,
	".ex":   Elixir,
	".exs":  Elixir,
}

// LanguageForFile returns the language implied by a filename's extension,
// and ok=false if no known extension matched.
func LanguageForFile(path string) (Language, bool) {
	for ext, lang := range extByLanguage {
		if strings.HasSuffix(path, ext) {
			return lang, true
		}
	}
	return "", false
}

// Import is a single import statement found in a file.
type Import struct {
	Package     string
	Statement   string
	Language    Language
	File        string
	Offset      int // line number, 1-based
	Confidence  float64
	ImportType  string // "" for a normal import, "conditional" for guarded/lazy imports
}

// commentPrefix reports whether a trimmed line begins with a comment
// marker for the common comment styles across the supported languages.
func commentPrefix(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "--")
}

type pattern struct {
	re         *regexp.Regexp
	confidence float64
	group      int // submatch index holding the package/module name
}

// patternsByLanguage is the exhaustive per-language regex catalog from the
// specification. Changing these regexes changes scan semantics and must
// be treated as a spec change, not a routine refactor.
var patternsByLanguage = map[Language][]pattern{
	JavaScript: {
		{regexp.MustCompile(`\bimport\s+(?:[\w*{}\s,]+?)\s+from\s+['"]([^'"]+)['"]`), 0.95, 1},
		{regexp.MustCompile(`\bimport\s*\(\s*['"]([^'"]+)['"]\s*\)`), 0.8, 1},
		{regexp.MustCompile(`\bimport\s+['"]([^'"]+)['"]`), 0.8, 1},
		{regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`), 0.9, 1},
	},
	Python: {
		{regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\b`), 0.95, 1},
		{regexp.MustCompile(`^\s*import\s+([\w.]+)(?:\s+as\s+\w+)?`), 0.8, 1},
	},
	Java: {
		{regexp.MustCompile(`\bimport\s+static\s+([\w.]+)\s*;`), 0.8, 1},
		{regexp.MustCompile(`\bimport\s+([\w.]+(?:\.\w+)*)\s*;`), 0.8, 1},
	},
	GoLang: {
		{regexp.MustCompile(`"([^"]+)"`), 0.8, 1},
	},
	Rust: {
		{regexp.MustCompile(`\bextern\s+crate\s+([\w]+)\s*;`), 0.98, 1},
		{regexp.MustCompile(`\buse\s+([\w]+)::`), 0.8, 1},
	},
	Ruby: {
		{regexp.MustCompile(`\brequire_relative\s+['"]([^'"]+)['"]`), 0.8, 1},
		{regexp.MustCompile(`\brequire\s+['"]([^'"]+)['"]`), 0.8, 1},
		{regexp.MustCompile(`\bgem\s+['"]([^'"]+)['"]`), 0.8, 1},
	},
	PHP: {
		{regexp.MustCompile(`\buse\s+([\w\\]+)\s*;`), 0.8, 1},
		{regexp.MustCompile(`\brequire(?:_once)?\s*\(?\s*['"][^'"]*?([\w./-]+)['"]`), 0.8, 1},
	},
	CSharp: {
		{regexp.MustCompile(`\busing\s+static\s+([\w.]+)\s*;`), 0.8, 1},
		{regexp.MustCompile(`\busing\s+\w+\s*=\s*([\w.]+)\s*;`), 0.8, 1},
		{regexp.MustCompile(`\busing\s+([\w.]+)\s*;`), 0.8, 1},
	},
	Dart: {
		{regexp.MustCompile(`\bimport\s+['"]package:([\w.]+)/`), 0.8, 1},
	},
	Elixir: {
		{regexp.MustCompile(`\{:([\w]+),`), 0.8, 1},
	},
}

// rustReserved are path roots that are never external crates.
var rustReserved = map[string]struct{}{
	"std": {}, "core": {}, "alloc": {}, "self": {}, "super": {}, "crate": {},
}

// Scan extracts imports from a single file's content. lang selects the
// regex set; file is recorded on each Import for downstream strategies.
func Scan(content []byte, lang Language, file string) []Import {
	pats, ok := patternsByLanguage[lang]
	if !ok {
		return nil
	}
	var out []Import
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	lineNo := 0
	inGoImportBlock := false
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)

		if lang == GoLang {
			switch {
			case strings.HasPrefix(trimmed, "import ("):
				inGoImportBlock = true
				continue
			case inGoImportBlock && trimmed == ")":
				inGoImportBlock = false
				continue
			case inGoImportBlock:
				// fall through to pattern matching below
			case strings.HasPrefix(trimmed, "import "):
				// single-line `import "pkg"` handled by pattern below
			default:
				continue
			}
		}

		commented := commentPrefix(trimmed)

		for _, p := range pats {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := m[p.group]
			if name == "" {
				continue
			}

			switch lang {
			case JavaScript:
				if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "/") {
					continue
				}
			case Rust:
				name = strings.ReplaceAll(name, "_", "-")
				bare := strings.Split(m[p.group], "::")[0]
				if _, reserved := rustReserved[bare]; reserved {
					continue
				}
			case GoLang:
				if !strings.Contains(name, ".") {
					// stdlib import: recognized but not reported as a
					// third-party dependency signal.
					continue
				}
			}

			conf := p.confidence
			if commented {
				conf = 0.2
			}
			out = append(out, Import{
				Package:    name,
				Statement:  trimmed,
				Language:   lang,
				File:       file,
				Offset:     lineNo,
				Confidence: conf,
			})
		}
	}
	return out
}

// ImportsOf reports whether content imports pkg, along with the best
// (highest-confidence) matching import found. The package name is
// escaped via [regexp.QuoteMeta] before compilation, since pkg is
// caller-supplied (a dependency name, not a literal from the spec's
// regex catalog).
func ImportsOf(content []byte, lang Language, file, pkg string) (Import, bool) {
	var best Import
	found := false
	for _, im := range Scan(content, lang, file) {
		if !matchesPackage(im.Package, pkg) {
			continue
		}
		if !found || im.Confidence > best.Confidence {
			best, found = im, true
		}
	}
	return best, found
}

// matchesPackage reports whether an extracted import name refers to pkg,
// allowing a subpath import ("lodash/merge") to match its package root.
func matchesPackage(importName, pkg string) bool {
	if importName == pkg {
		return true
	}
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(pkg) + `(/|$)`)
	return re.MatchString(importName)
}
