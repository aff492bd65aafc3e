package export

import (
	"flag"
	"log/slog"
	"os"

	"labor-stats/connectors/config"
	ccsv "labor-stats/connectors/csv"
	"labor-stats/connectors/localdata"
	"labor-stats/domain/analytics"
	"labor-stats/domain/catalog"
)

// Run executes the export subcommand: build the catalog from the local
// dataset and write every dashboard series as a CSV into the data
// directory. Filters apply the same way the web dashboard applies them.
func Run(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	in := fs.String("in", "", "input dataset (default: data.local_file from config)")
	dir := fs.String("dir", "", "output directory (default: data.dir from config)")
	from := fs.String("from", "", "inclusive start date filter (ISO, optional)")
	to := fs.String("to", "", "inclusive end date filter (ISO, optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	if *in == "" {
		*in = cfg.Data.LocalFile
	}
	if *dir == "" {
		*dir = cfg.Data.Dir
	}

	rows, err := localdata.Load(*in)
	if err != nil {
		return err
	}
	res := catalog.Build(rows)

	spec := analytics.FilterSpec{DateStart: *from, DateEnd: *to}
	ots := analytics.Filter(res.OTs, spec)

	series := []ccsv.Series{
		{File: "sector_cost.csv", Label: "sector", Value: "cost", Points: analytics.SectorCost(ots)},
		{File: "sector_hours.csv", Label: "sector", Value: "hours", Points: analytics.SectorHours(ots)},
		{File: "sector_ots.csv", Label: "sector", Value: "ots", Points: analytics.SectorOTCount(ots)},
		{File: "techs_per_ot.csv", Label: "ot", Value: "techs", Points: analytics.TechniciansPerOT(ots, analytics.TopTechnicians)},
		{File: "top_ots_cost.csv", Label: "ot", Value: "cost", Points: analytics.TopOTsByCost(ots, cfg.Dashboard.TopNCost)},
		{File: "top_ots_hours.csv", Label: "ot", Value: "hours", Points: analytics.TopOTsByHours(ots, cfg.Dashboard.TopNHours)},
		{File: "ticket_cost.csv", Label: "ticket", Value: "cost", Points: analytics.TicketCost(ots)},
		{File: "ticket_hours.csv", Label: "ticket", Value: "hours", Points: analytics.TicketHours(ots)},
		{File: "ticket_ots.csv", Label: "ticket", Value: "ots", Points: analytics.TicketOTCount(ots)},
		{File: "avg_cost_per_ot.csv", Label: "ticket", Value: "avg_cost", Points: analytics.AvgCostPerOT(ots)},
		{File: "subject_cost.csv", Label: "subject", Value: "cost", Points: analytics.SubjectCost(ots)},
		{File: "subject_tickets.csv", Label: "subject", Value: "tickets", Points: analytics.SubjectTickets(ots)},
		{File: "subject_ots.csv", Label: "subject", Value: "ots", Points: analytics.SubjectOTs(ots)},
	}

	if err := ccsv.WriteAllCSVs(*dir, res, analytics.KPIs(ots), analytics.ParetoByTicket(ots), series); err != nil {
		return err
	}
	slog.Info("export.done", "tickets", len(res.Tickets), "ots", len(res.OTs), "dir", *dir)
	return nil
}
