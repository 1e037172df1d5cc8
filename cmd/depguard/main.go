// Command depguard runs a reachability-aware dependency vulnerability
// scan against a project directory and prints findings as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kennethkcox/depguard"
)

func main() {
	var exit int
	defer func() {
		if exit != 0 {
			os.Exit(exit)
		}
	}()

	ctx, done := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		<-ch
		done()
	}()
	defer done()

	fs := flag.NewFlagSet("depguard", flag.ExitOnError)
	root := fs.String("root", ".", "project directory to scan")
	onlyReachable := fs.String("only-reachable", "false", "emit only reachable findings (true/false)")
	minConfidence := fs.Float64("min-confidence", 0.5, "minimum reachability confidence to report")
	if err := fs.Parse(os.Args[1:]); err != nil {
		slog.Error("parse flags", "error", err)
		exit = 2
		return
	}

	cfg := depguard.NewScanConfig(
		noopAdvisoryProvider{},
		depguard.NewFileReader(*root),
		depguard.WithOnlyReachable(*onlyReachable == "true"),
		depguard.WithMinConfidence(*minConfidence),
	)

	result, err := depguard.Scan(ctx, *root, cfg)
	if err != nil {
		slog.Error("scan failed", "error", err)
		exit = 1
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit = 1
	}
}

// noopAdvisoryProvider is the default collaborator when no real
// vulnerability feed is configured: it reports every batch as clean.
// Real deployments inject a provider backed by an OSV/GHSA client.
type noopAdvisoryProvider struct{}

func (noopAdvisoryProvider) Query(ctx context.Context, packages []depguard.Dependency) ([]depguard.Advisory, error) {
	return nil, nil
}
