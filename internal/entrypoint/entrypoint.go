// Package entrypoint scores source files on a fixed set of weighted
// signals and reports the entry-point set an application can be invoked
// through: HTTP handlers, CLI mains, event dispatch targets, and the
// like.
package entrypoint

import (
	"context"
	"encoding/json"
	"path"
	"regexp"
)

// SignalType is the closed set of entry-point signals.
type SignalType string

const (
	HTTPHandler  SignalType = "HTTP_HANDLER"
	MainFunction SignalType = "MAIN_FUNCTION"
	CLICommand   SignalType = "CLI_COMMAND"
	EventHandler SignalType = "EVENT_HANDLER"
	PackageExport SignalType = "PACKAGE_EXPORT"
	ServerInit   SignalType = "SERVER_INIT"
	NoCallers    SignalType = "NO_CALLERS"
	TestFile     SignalType = "TEST_FILE" // negative signal
)

// Signal is a single detected indicator that a file is (or is not) an
// entry point.
type Signal struct {
	Type       SignalType
	Confidence float64 // negative for TestFile
	Reason     string
	Evidence   string
}

// EntryPoint is a file:function the detector believes execution may
// originate from, along with the evidence behind that judgment.
type EntryPoint struct {
	File               string
	Function           string
	Signals            []Signal
	AggregateConfidence float64
	Type               SignalType
}

// Key returns the "file:function" call-graph node key this entry point
// binds to.
func (e EntryPoint) Key() string {
	return e.File + ":" + e.Function
}

// ConfidenceThreshold is the default aggregate-confidence cutoff above
// which a file is reported as an entry point.
const ConfidenceThreshold = 0.6

type rule struct {
	typ        SignalType
	confidence float64
	re         *regexp.Regexp
	reason     string
}

// rules is the regex pattern library from the specification (§4.4).
// Changing these patterns changes detection semantics.
var rules = []rule{
	// HTTP_HANDLER
	{HTTPHandler, 0.90, regexp.MustCompile(`\bapp\.(get|post|put|delete|patch|all|use)\s*\(`), "express route"},
	{HTTPHandler, 0.85, regexp.MustCompile(`\brouter\.(get|post|put|delete|patch)\s*\(`), "express/koa router"},
	{HTTPHandler, 0.85, regexp.MustCompile(`\bexport\s+(?:async\s+function|const)\s+(GET|POST|PUT|DELETE|PATCH)\b`), "next.js app router export"},
	{HTTPHandler, 0.90, regexp.MustCompile(`@app\.route\s*\(`), "flask route"},
	{HTTPHandler, 0.90, regexp.MustCompile(`@app\.(get|post|put|delete|patch)\s*\(`), "fastapi route"},
	{HTTPHandler, 0.75, regexp.MustCompile(`\bclass\s+\w+\(.*View\):`), "django class-based view"},
	{HTTPHandler, 0.92, regexp.MustCompile(`@(?:Get|Post|Put|Delete|Patch|Request)Mapping\s*\(`), "spring mapping"},
	{HTTPHandler, 0.85, regexp.MustCompile(`\b[rR]\.(GET|POST|PUT|DELETE|PATCH)\s*\(`), "gin/echo route"},
	{HTTPHandler, 0.70, regexp.MustCompile(`\brouter\.(get|post|put|delete)\s*\(`), "koa/hapi/fastify route"},
	{HTTPHandler, 0.70, regexp.MustCompile(`\bresources?\s+:\w+|\bget\s+['"]\/`), "rails/sinatra route"},
	{HTTPHandler, 0.80, regexp.MustCompile(`Route::(get|post|put|delete|patch)\s*\(`), "laravel route"},
	{HTTPHandler, 0.85, regexp.MustCompile(`\bMap(Get|Post|Put|Delete|Patch)\s*\(|\[Http(Get|Post|Put|Delete|Patch)\]`), "asp.net route"},
	{HTTPHandler, 0.80, regexp.MustCompile(`web::(get|post|put|delete)\(\)\.to\s*\(`), "actix-web route"},

	// MAIN_FUNCTION
	{MainFunction, 1.0, regexp.MustCompile(`if\s+__name__\s*==\s*['"]__main__['"]`), "python main guard"},
	{MainFunction, 0.98, regexp.MustCompile(`public\s+static\s+void\s+main\s*\(`), "java main"},
	{MainFunction, 0.98, regexp.MustCompile(`\bfunc\s+main\s*\(\s*\)`), "go/rust main"},
	{MainFunction, 0.95, regexp.MustCompile(`\bint\s+main\s*\(`), "c/c++ main"},
	{MainFunction, 0.90, regexp.MustCompile(`require\.main\s*===\s*module`), "node cjs main guard"},
	{MainFunction, 0.90, regexp.MustCompile(`import\.meta\.url\s*===`), "esm main guard"},
	{MainFunction, 0.85, regexp.MustCompile(`if\s+__FILE__\s*==\s*\$0`), "ruby main guard"},
	{MainFunction, 0.85, regexp.MustCompile(`static\s+(?:void|int)\s+Main\s*\(`), "c#/dart main"},

	// CLI_COMMAND
	{CLICommand, 0.85, regexp.MustCompile(`require\(['"]commander['"]\)|new\s+Command\s*\(`), "commander.js"},
	{CLICommand, 0.85, regexp.MustCompile(`require\(['"]yargs['"]\)`), "yargs"},
	{CLICommand, 0.90, regexp.MustCompile(`@click\.command\s*\(`), "click"},
	{CLICommand, 0.85, regexp.MustCompile(`argparse\.ArgumentParser\s*\(`), "argparse"},
	{CLICommand, 0.90, regexp.MustCompile(`cobra\.Command\{|&cobra\.Command\{`), "cobra"},
	{CLICommand, 0.85, regexp.MustCompile(`#\[derive\(.*Parser.*\)\]|clap::(Command|Parser)`), "clap"},

	// EVENT_HANDLER
	{EventHandler, 0.75, regexp.MustCompile(`\.(on|addListener)\s*\(\s*['"]`), "eventemitter listener"},
	{EventHandler, 0.75, regexp.MustCompile(`\.on\s*\(\s*['"]message['"]`), "websocket message handler"},
	{EventHandler, 0.88, regexp.MustCompile(`@RabbitListener\s*\(|@KafkaListener\s*\(|@SqsListener\s*\(`), "message-queue listener"},
	{EventHandler, 0.75, regexp.MustCompile(`\.subscribe\s*\(|\.consume\s*\(`), "pub/sub subscriber"},
	{EventHandler, 0.85, regexp.MustCompile(`@(Resolver|Query|Mutation)\s*\(`), "graphql resolver"},

	// SERVER_INIT
	{ServerInit, 0.70, regexp.MustCompile(`\bapp\.listen\s*\(`), "server listen"},
	{ServerInit, 0.70, regexp.MustCompile(`\.run\s*\(\s*host\s*=`), "flask/fastapi run"},
	{ServerInit, 0.85, regexp.MustCompile(`@SpringBootApplication`), "spring boot application"},
	{ServerInit, 0.80, regexp.MustCompile(`http\.ListenAndServe\s*\(`), "go http server"},
}

// filenameMainHints matches files that are conventionally entry points by
// name alone, at lower confidence than an in-file signal.
var filenameMainHints = regexp.MustCompile(`(?i)(^|/)(main\.\w+|Main\.java|Program\.cs)$`)

// testFilePattern is the TEST_FILE negative signal.
var testFilePattern = regexp.MustCompile(`(?i)(\.test\.|\.spec\.|_test\.|test_[^/]*\.py$|Test\.java$|__tests__/|/test/|/tests/|/spec/)`)

// Detect scores a single file's content and returns its signals. file is
// the path as it will appear as a call-graph node key.
func Detect(ctx context.Context, file string, content []byte) []Signal {
	text := string(content)
	var signals []Signal

	for _, r := range rules {
		if loc := r.re.FindStringIndex(text); loc != nil {
			signals = append(signals, Signal{
				Type:       r.typ,
				Confidence: r.confidence,
				Reason:     r.reason,
				Evidence:   text[loc[0]:min(loc[1], loc[0]+120)],
			})
		}
	}

	if filenameMainHints.MatchString(file) {
		signals = append(signals, Signal{Type: MainFunction, Confidence: 0.8, Reason: "entry-point filename convention"})
	}

	if testFilePattern.MatchString(file) {
		signals = append(signals, Signal{Type: TestFile, Confidence: -0.8, Reason: "test/fixture path"})
	}

	return signals
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Aggregate combines a file's signals into a single [EntryPoint], per the
// specification's deterministic rule: mean of signal confidences, +0.1
// (capped at 1.0) if at least two signals exceed 0.8, +0.3 if a
// NO_CALLERS signal is present alongside at least one other signal,
// plus the most negative signal's confidence (floored at 0).
//
// NO_CALLERS is excluded from the mean itself: per spec.md §4.4 it is a
// flat bonus ("no incoming call-graph edges AND already has ≥1 other
// signal → +0.3"), not a vote whose own confidence should dilute the
// average of the signals that actually identified the entry point.
func Aggregate(file, function string, signals []Signal) EntryPoint {
	if len(signals) == 0 {
		return EntryPoint{File: file, Function: function, AggregateConfidence: 0}
	}

	var sum float64
	var n int
	highCount := 0
	var mostNegative float64
	var primaryType SignalType
	var primaryConf float64
	hasNoCallers := false

	for _, s := range signals {
		if s.Type == NoCallers {
			hasNoCallers = true
			continue
		}
		sum += s.Confidence
		n++
		if s.Confidence > 0.8 {
			highCount++
		}
		if s.Confidence < mostNegative {
			mostNegative = s.Confidence
		}
		if s.Confidence > 0 && s.Confidence > primaryConf {
			primaryConf = s.Confidence
			primaryType = s.Type
		}
	}

	var conf float64
	if n > 0 {
		conf = sum / float64(n)
	}
	if highCount >= 2 {
		conf += 0.1
	}
	if hasNoCallers && n > 0 {
		conf += 0.3
	}
	conf += mostNegative
	if conf > 1.0 {
		conf = 1.0
	}
	if conf < 0 {
		conf = 0
	}

	if primaryType == "" && hasNoCallers {
		primaryType = NoCallers
	}

	return EntryPoint{
		File:                file,
		Function:            function,
		Signals:             signals,
		AggregateConfidence: conf,
		Type:                primaryType,
	}
}

// IsEntryPoint reports whether an aggregate confidence clears the given
// threshold (use [ConfidenceThreshold] for the default).
func IsEntryPoint(ep EntryPoint, threshold float64) bool {
	return ep.AggregateConfidence >= threshold
}

// PackageExportTarget resolves a package.json's "main" or "exports" field
// to the file path it points at, joined onto dir in the same slash-joined
// form [Detect]'s file argument uses. dir is the manifest's directory
// (e.g. a [depguard.Manifest].Directory). "exports" takes precedence over
// "main" when both are present, per Node's resolution order; a conditional
// "exports" object is resolved through its "." entry, preferring the
// "import", then "require", then "default" condition. Returns ok=false if
// content isn't valid JSON or declares neither field.
func PackageExportTarget(dir string, content []byte) (string, bool) {
	var pkg struct {
		Main    string          `json:"main"`
		Exports json.RawMessage `json:"exports"`
	}
	if err := json.Unmarshal(content, &pkg); err != nil {
		return "", false
	}

	entry := pkg.Main
	if len(pkg.Exports) > 0 {
		if asString, ok := exportsAsString(pkg.Exports); ok {
			entry = asString
		} else if asMap, ok := exportsAsMap(pkg.Exports); ok {
			if resolved, ok := resolveExportsDot(asMap); ok {
				entry = resolved
			}
		}
	}
	if entry == "" {
		return "", false
	}
	return path.Clean(path.Join(dir, entry)), true
}

func exportsAsString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

func exportsAsMap(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

func resolveExportsDot(m map[string]json.RawMessage) (string, bool) {
	dot, ok := m["."]
	if !ok {
		return "", false
	}
	if s, ok := exportsAsString(dot); ok {
		return s, true
	}
	conditions, ok := exportsAsMap(dot)
	if !ok {
		return "", false
	}
	for _, cond := range []string{"import", "require", "default"} {
		if raw, ok := conditions[cond]; ok {
			if s, ok := exportsAsString(raw); ok {
				return s, true
			}
		}
	}
	return "", false
}
