// Package analytics derives the dashboard series from the OT list. Every
// function is a pure computation over its inputs; callers re-derive from
// scratch whenever filters or the dataset change. Output order is part of
// the contract: chart consumers must not re-sort.
package analytics

import (
	"math"
	"sort"
	"time"

	lo "github.com/samber/lo"

	"labor-stats/domain/catalog"
)

// FilterSpec restricts the OT set. Empty slices and empty date bounds mean
// no restriction. Dates compare as strings, inclusive on both ends, which
// presumes zero-padded ISO-like values in the data.
type FilterSpec struct {
	Sectors   []string `json:"sectors"`
	Tickets   []string `json:"tickets"`
	DateStart string   `json:"date_start"`
	DateEnd   string   `json:"date_end"`
}

// Match reports whether one OT passes every clause of the spec.
func (s FilterSpec) Match(ot catalog.OT) bool {
	if len(s.Sectors) > 0 && !lo.Contains(s.Sectors, ot.Sector) {
		return false
	}
	if len(s.Tickets) > 0 && !lo.Contains(s.Tickets, ot.TicketID) {
		return false
	}
	if s.DateStart != "" && ot.ExecutionDate < s.DateStart {
		return false
	}
	if s.DateEnd != "" && ot.ExecutionDate > s.DateEnd {
		return false
	}
	return true
}

// Filter returns the OTs passing the spec, in input order.
func Filter(ots []catalog.OT, spec FilterSpec) []catalog.OT {
	return lo.Filter(ots, func(ot catalog.OT, _ int) bool { return spec.Match(ot) })
}

// LastNDays builds inclusive date bounds ending today, for the dashboard's
// quick range buttons.
func LastNDays(n int, now time.Time) (start, end string) {
	return now.AddDate(0, 0, -n).Format("2006-01-02"), now.Format("2006-01-02")
}

// KPISet carries the headline indicators of a filtered OT set.
type KPISet struct {
	TotalHours     float64 `json:"total_hours"`
	TotalCost      float64 `json:"total_cost"`
	CostPerHour    float64 `json:"cost_per_hour"`
	OTCount        int     `json:"total_ots"`
	TicketCount    int     `json:"total_tickets"`
	MaxTechnicians int     `json:"max_techs"`
}

// KPIs computes the headline numbers. TotalCost is rounded to the nearest
// unit for display; CostPerHour divides the unrounded sum, treating zero
// hours as one to avoid dividing by zero.
func KPIs(ots []catalog.OT) KPISet {
	hours := lo.SumBy(ots, func(o catalog.OT) float64 { return o.LaborHours })
	cost := lo.SumBy(ots, func(o catalog.OT) float64 { return o.LaborCost })
	divisor := hours
	if divisor == 0 {
		divisor = 1
	}
	maxTechs := 0
	for _, ot := range ots {
		if ot.Technicians > maxTechs {
			maxTechs = ot.Technicians
		}
	}
	return KPISet{
		TotalHours:     hours,
		TotalCost:      math.Round(cost),
		CostPerHour:    cost / divisor,
		OTCount:        len(lo.UniqBy(ots, func(o catalog.OT) string { return o.ID })),
		TicketCount:    len(lo.UniqBy(ots, func(o catalog.OT) string { return o.TicketID })),
		MaxTechnicians: maxTechs,
	}
}

// SeriesPoint is one labeled value of a ranked series.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// GroupSum groups rows by keyFn, sums valueFn per group and returns the
// groups sorted descending by sum. Ties keep first-encounter order.
func GroupSum(ots []catalog.OT, keyFn func(catalog.OT) string, valueFn func(catalog.OT) float64) []SeriesPoint {
	sums := map[string]float64{}
	order := []string{}
	for _, ot := range ots {
		key := keyFn(ot)
		if _, seen := sums[key]; !seen {
			order = append(order, key)
		}
		sums[key] += valueFn(ot)
	}
	points := lo.Map(order, func(key string, _ int) SeriesPoint {
		return SeriesPoint{Label: key, Value: sums[key]}
	})
	sort.SliceStable(points, func(i, j int) bool { return points[i].Value > points[j].Value })
	return points
}

// GroupDistinctCount groups rows by keyFn and counts distinct idFn values
// per group, sorted descending by count with first-encounter tiebreak.
func GroupDistinctCount(ots []catalog.OT, keyFn, idFn func(catalog.OT) string) []SeriesPoint {
	sets := map[string]map[string]struct{}{}
	order := []string{}
	for _, ot := range ots {
		key := keyFn(ot)
		if _, seen := sets[key]; !seen {
			order = append(order, key)
			sets[key] = map[string]struct{}{}
		}
		sets[key][idFn(ot)] = struct{}{}
	}
	points := lo.Map(order, func(key string, _ int) SeriesPoint {
		return SeriesPoint{Label: key, Value: float64(len(sets[key]))}
	})
	sort.SliceStable(points, func(i, j int) bool { return points[i].Value > points[j].Value })
	return points
}

// TopN truncates a sorted series to its first n points. n <= 0 keeps all.
func TopN(points []SeriesPoint, n int) []SeriesPoint {
	if n <= 0 || n >= len(points) {
		return points
	}
	return points[:n]
}

// ParetoPoint is one entry of the cost concentration curve: absolute cost
// plus running cumulative cost and hours as percentages of their totals.
type ParetoPoint struct {
	Ticket      string  `json:"ticket"`
	Cost        float64 `json:"cost"`
	CumCostPct  float64 `json:"cum_cost_pct"`
	CumHoursPct float64 `json:"cum_hours_pct"`
}

// ParetoByTicket ranks tickets by summed cost and walks that single
// ranking for both cumulations: the hours percentage follows the cost
// order, not an independent hours ranking. Percentages are 0 when the
// respective grand total is 0.
func ParetoByTicket(ots []catalog.OT) []ParetoPoint {
	costs := GroupSum(ots, func(o catalog.OT) string { return o.TicketID }, func(o catalog.OT) float64 { return o.LaborCost })
	hours := map[string]float64{}
	for _, ot := range ots {
		hours[ot.TicketID] += ot.LaborHours
	}
	totalCost := lo.SumBy(costs, func(p SeriesPoint) float64 { return p.Value })
	totalHours := lo.SumBy(ots, func(o catalog.OT) float64 { return o.LaborHours })

	points := make([]ParetoPoint, 0, len(costs))
	var cumCost, cumHours float64
	for _, p := range costs {
		cumCost += p.Value
		cumHours += hours[p.Label]
		point := ParetoPoint{Ticket: p.Label, Cost: p.Value}
		if totalCost > 0 {
			point.CumCostPct = cumCost / totalCost * 100
		}
		if totalHours > 0 {
			point.CumHoursPct = cumHours / totalHours * 100
		}
		points = append(points, point)
	}
	return points
}

// ScatterSeries holds parallel hours/cost coordinates for one group.
type ScatterSeries struct {
	Key   string    `json:"key"`
	Hours []float64 `json:"hours"`
	Costs []float64 `json:"costs"`
}

// Scatter partitions rows by keyFn in discovery order; every row lands in
// exactly one series with its hours/cost pair kept aligned by index.
func Scatter(ots []catalog.OT, keyFn func(catalog.OT) string) []ScatterSeries {
	index := map[string]int{}
	series := []ScatterSeries{}
	for _, ot := range ots {
		key := keyFn(ot)
		i, seen := index[key]
		if !seen {
			i = len(series)
			index[key] = i
			series = append(series, ScatterSeries{Key: key})
		}
		series[i].Hours = append(series[i].Hours, ot.LaborHours)
		series[i].Costs = append(series[i].Costs, ot.LaborCost)
	}
	return series
}
