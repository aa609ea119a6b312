// Command shadow_compare replays read-only requests against the legacy
// Next.js API and the Go API and reports where their answers differ.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		token       string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000", "Legacy API base URL")
	flag.StringVar(&targetsPath, "targets", "", "Optional JSON targets file; the built-in read endpoints are used when empty")
	flag.StringVar(&token, "token", "", "Bearer token sent to both APIs")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets := defaultTargets
	if targetsPath != "" {
		loaded, err := loadTargets(targetsPath)
		if err != nil {
			log.Fatalf("failed to load targets: %v", err)
		}
		targets = loaded
	}

	cmp := &comparer{
		client:     &http.Client{Timeout: timeout},
		goBase:     goBase,
		legacyBase: legacyBase,
		token:      token,
	}

	var (
		results  []comparison
		breaking int
		optional int
	)
	for _, tgt := range targets {
		res := cmp.compare(tgt)
		if !res.ok() {
			if tgt.Critical {
				breaking++
			} else {
				optional++
			}
		}
		results = append(results, res)
	}

	printReport(os.Stdout, results)
	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}
