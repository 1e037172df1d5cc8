package importscan

import (
	"bufio"
	"bytes"
	"regexp"
)

// conditionalPatterns recognizes imports guarded by a try/catch, an if,
// a ternary, or a deferred/lazy pattern. These carry lower confidence
// than an unconditional import because the import may never execute.
var conditionalPatterns = []struct {
	re         *regexp.Regexp
	confidence float64
}{
	// try { require('pkg') } catch (e) { ... }
	{regexp.MustCompile(`\btry\s*\{[^}]*\brequire\(\s*['"]([^'"]+)['"]\s*\)`), 0.60},
	// if (cond) { require('pkg') }
	{regexp.MustCompile(`\bif\s*\([^)]*\)\s*\{[^}]*\brequire\(\s*['"]([^'"]+)['"]\s*\)`), 0.55},
	// cond ? require('a') : require('b')
	{regexp.MustCompile(`\?\s*require\(\s*['"]([^'"]+)['"]\s*\)\s*:`), 0.50},
	{regexp.MustCompile(`:\s*require\(\s*['"]([^'"]+)['"]\s*\)`), 0.50},
	// await import('pkg') / lazy()
	{regexp.MustCompile(`\bimport\(\s*['"]([^'"]+)['"]\s*\)`), 0.65},
}

// pythonGuardedImport matches a Python import nested inside a try: or
// if: block (detected via leading indentation plus a preceding guard
// line, approximated here as any indented import statement).
var pythonGuardedImport = regexp.MustCompile(`^[ \t]+(?:import\s+([\w.]+)|from\s+([\w.]+)\s+import)`)
var pythonGuardLine = regexp.MustCompile(`^\s*(try\s*:|if\s+.*:)\s*$`)

// ScanConditional extracts conditionally-imported packages: try/catch
// guarded requires, if-guarded requires, ternary requires, dynamic
// import(), and Python try:/if: guarded imports. Results are tagged
// ImportType="conditional" with confidence in [0.50, 0.65].
func ScanConditional(content []byte, lang Language, file string) []Import {
	var out []Import
	switch lang {
	case JavaScript:
		text := string(content)
		for _, p := range conditionalPatterns {
			for _, m := range p.re.FindAllStringSubmatch(text, -1) {
				if len(m) < 2 || m[1] == "" {
					continue
				}
				out = append(out, Import{
					Package:    m[1],
					Language:   lang,
					File:       file,
					Confidence: p.confidence,
					ImportType: "conditional",
				})
			}
		}
	case Python:
		sc := bufio.NewScanner(bytes.NewReader(content))
		lineNo := 0
		guarded := false
		for sc.Scan() {
			lineNo++
			line := sc.Text()
			if pythonGuardLine.MatchString(line) {
				guarded = true
				continue
			}
			if !guarded {
				continue
			}
			if m := pythonGuardedImport.FindStringSubmatch(line); m != nil {
				name := m[1]
				if name == "" {
					name = m[2]
				}
				out = append(out, Import{
					Package:    name,
					Language:   lang,
					File:       file,
					Offset:     lineNo,
					Confidence: 0.60,
					ImportType: "conditional",
				})
				continue
			}
			// a non-indented, non-guard line ends the guarded block.
			if len(line) > 0 && line[0] != ' ' && line[0] != '\t' {
				guarded = false
			}
		}
	}
	return out
}
