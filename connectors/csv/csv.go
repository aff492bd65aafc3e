package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"labor-stats/domain/analytics"
	"labor-stats/domain/catalog"
)

// Series pairs a ranked series with its output file and column headers.
type Series struct {
	File   string
	Label  string
	Value  string
	Points []analytics.SeriesPoint
}

// WriteAllCSVs writes the catalog, the KPI line and every series into dir.
func WriteAllCSVs(dir string, res catalog.Result, kpis analytics.KPISet, pareto []analytics.ParetoPoint, series []Series) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := WriteTicketCSV(filepath.Join(dir, "ticket.csv"), res.Tickets); err != nil {
		return err
	}
	if err := WriteOTCSV(filepath.Join(dir, "ot.csv"), res.OTs); err != nil {
		return err
	}
	if err := WriteKPICSV(filepath.Join(dir, "kpis.csv"), kpis); err != nil {
		return err
	}
	if err := WriteParetoCSV(filepath.Join(dir, "pareto.csv"), pareto); err != nil {
		return err
	}
	for _, s := range series {
		if err := WriteSeriesCSV(filepath.Join(dir, s.File), s); err != nil {
			return err
		}
	}
	return nil
}

func WriteTicketCSV(path string, tickets []catalog.Ticket) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"id", "subject", "sector", "date", "total_cost"}); err != nil {
		return err
	}
	for _, t := range tickets {
		row := []string{t.ID, t.Subject, t.Sector, t.Date, formatFloat(t.TotalCost)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func WriteOTCSV(path string, ots []catalog.OT) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	headers := []string{"id", "ticket_id", "subject", "sector", "labor_hours", "labor_cost", "technicians", "execution_date"}
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, ot := range ots {
		row := []string{
			ot.ID,
			ot.TicketID,
			ot.Subject,
			ot.Sector,
			formatFloat(ot.LaborHours),
			formatFloat(ot.LaborCost),
			strconv.Itoa(ot.Technicians),
			ot.ExecutionDate,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func WriteKPICSV(path string, k analytics.KPISet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"total_hours", "total_cost", "cost_per_hour", "total_ots", "total_tickets", "max_techs"}); err != nil {
		return err
	}
	row := []string{
		formatFloat(k.TotalHours),
		formatFloat(k.TotalCost),
		fmt.Sprintf("%.2f", k.CostPerHour),
		strconv.Itoa(k.OTCount),
		strconv.Itoa(k.TicketCount),
		strconv.Itoa(k.MaxTechnicians),
	}
	if err := w.Write(row); err != nil {
		return err
	}
	return w.Error()
}

func WriteParetoCSV(path string, points []analytics.ParetoPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"ticket", "cost", "cum_cost_pct", "cum_hours_pct"}); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{p.Ticket, formatFloat(p.Cost), fmt.Sprintf("%.2f", p.CumCostPct), fmt.Sprintf("%.2f", p.CumHoursPct)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteSeriesCSV writes one ranked series preserving its sort order; chart
// consumers rely on row order, not on re-sorting.
func WriteSeriesCSV(path string, s Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{s.Label, s.Value}); err != nil {
		return err
	}
	for _, p := range s.Points {
		if err := w.Write([]string{p.Label, formatFloat(p.Value)}); err != nil {
			return err
		}
	}
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
