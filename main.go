package main

import (
	"fmt"
	"log/slog"
	"os"

	cmdexport "labor-stats/command/export"
	cmdfetch "labor-stats/command/fetch"
	cmdweb "labor-stats/command/web"
)

// Labor-cost work-order tooling: ingests the ERP's maintenance export,
// normalizes it into tickets and OTs, and serves the quote builder and
// the analytics dashboard over it.
// Usage:
//   labor-stats fetch [-out data/db.json]
//   labor-stats export [-in data/db.json] [-dir data] [-from 2025-01-01] [-to 2025-03-31]
//   labor-stats web [-addr :8080]

func main() {
	args := os.Args
	// Initialize slog logger (text to stderr)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))

	if len(args) > 1 {
		sub := args[1]
		rest := append([]string{}, args[2:]...)
		switch sub {
		case "fetch":
			if err := cmdfetch.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "export":
			if err := cmdexport.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "web":
			if err := cmdweb.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: labor-stats fetch [-out <file>] | export [-in <file>] [-dir <dir>] [-from <date>] [-to <date>] | web [-addr :8080]\nENV: set CONFIG_PATH to point to a YAML config file (default ./config.yml), API_TOKEN for the ERP credential")
	os.Exit(2)
}
