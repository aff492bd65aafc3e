package analytics

import (
	"sort"

	"labor-stats/domain/catalog"
)

// Named dashboard series. Each wraps the generic grouping primitives with
// the key, metric and truncation the corresponding chart expects.

// Default truncations per view family.
const (
	TopTickets     = 15
	TopSubjects    = 10
	TopTechnicians = 10
	DefaultTopN    = 10
)

func bySector(o catalog.OT) string { return o.Sector }
func byTicket(o catalog.OT) string { return o.TicketID }
func bySubject(o catalog.OT) string { return o.Subject }
func byOTID(o catalog.OT) string { return o.ID }
func otCost(o catalog.OT) float64 { return o.LaborCost }
func otHours(o catalog.OT) float64 { return o.LaborHours }

// SectorCost is labor cost summed per sector.
func SectorCost(ots []catalog.OT) []SeriesPoint { return GroupSum(ots, bySector, otCost) }

// SectorHours is labor hours summed per sector.
func SectorHours(ots []catalog.OT) []SeriesPoint { return GroupSum(ots, bySector, otHours) }

// SectorOTCount is the distinct OT count per sector (the pie view).
func SectorOTCount(ots []catalog.OT) []SeriesPoint { return GroupDistinctCount(ots, bySector, byOTID) }

// TechniciansPerOT ranks individual rows by technician head count.
func TechniciansPerOT(ots []catalog.OT, n int) []SeriesPoint {
	rows := append([]catalog.OT{}, ots...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Technicians > rows[j].Technicians })
	points := make([]SeriesPoint, 0, len(rows))
	for _, ot := range rows {
		points = append(points, SeriesPoint{Label: ot.ID, Value: float64(ot.Technicians)})
	}
	return TopN(points, n)
}

// TopOTsByCost and TopOTsByHours back the independently adjustable Top-N
// ranking views.
func TopOTsByCost(ots []catalog.OT, n int) []SeriesPoint {
	return TopN(GroupSum(ots, byOTID, otCost), n)
}

func TopOTsByHours(ots []catalog.OT, n int) []SeriesPoint {
	return TopN(GroupSum(ots, byOTID, otHours), n)
}

// TicketCost, TicketHours and TicketOTCount are the per-ticket rankings.
func TicketCost(ots []catalog.OT) []SeriesPoint {
	return TopN(GroupSum(ots, byTicket, otCost), TopTickets)
}

func TicketHours(ots []catalog.OT) []SeriesPoint {
	return TopN(GroupSum(ots, byTicket, otHours), TopTickets)
}

func TicketOTCount(ots []catalog.OT) []SeriesPoint {
	return TopN(GroupDistinctCount(ots, byTicket, byOTID), TopTickets)
}

// AvgCostPerOT divides each ticket's summed cost by its distinct OT count.
func AvgCostPerOT(ots []catalog.OT) []SeriesPoint {
	costs := map[string]float64{}
	counts := map[string]map[string]struct{}{}
	order := []string{}
	for _, ot := range ots {
		if _, seen := costs[ot.TicketID]; !seen {
			order = append(order, ot.TicketID)
			counts[ot.TicketID] = map[string]struct{}{}
		}
		costs[ot.TicketID] += ot.LaborCost
		counts[ot.TicketID][ot.ID] = struct{}{}
	}
	points := make([]SeriesPoint, 0, len(order))
	for _, ticket := range order {
		points = append(points, SeriesPoint{Label: ticket, Value: costs[ticket] / float64(len(counts[ticket]))})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Value > points[j].Value })
	return TopN(points, TopTickets)
}

// SubjectCost, SubjectTickets and SubjectOTs are the per-subject rankings.
func SubjectCost(ots []catalog.OT) []SeriesPoint {
	return TopN(GroupSum(ots, bySubject, otCost), TopSubjects)
}

func SubjectTickets(ots []catalog.OT) []SeriesPoint {
	return TopN(GroupDistinctCount(ots, bySubject, byTicket), TopSubjects)
}

func SubjectOTs(ots []catalog.OT) []SeriesPoint {
	return TopN(GroupDistinctCount(ots, bySubject, byOTID), TopSubjects)
}

// ScatterBySector is the hours/cost cloud partitioned per sector.
func ScatterBySector(ots []catalog.OT) []ScatterSeries {
	return Scatter(ots, bySector)
}
