package fetch

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"labor-stats/connectors/config"
	"labor-stats/connectors/erp"
	"labor-stats/connectors/localdata"
)

// Run executes the fetch subcommand: pull the raw work-order export from
// the ERP and persist it as the local dataset for export/web to consume.
func Run(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	out := fs.String("out", "", "output file (default: data.local_file from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = cfg.Data.LocalFile
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	rows, err := erp.New(cfg).FetchRows(ctx)
	if err != nil {
		return err
	}
	if err := localdata.Save(path, rows); err != nil {
		return err
	}
	slog.Info("fetch.done", "rows", len(rows), "out", path)
	return nil
}
