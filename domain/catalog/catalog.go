// Package catalog normalizes raw ERP export rows into tickets and work
// orders (OTs). The export schema drifted across ERP versions, so every
// logical field is resolved through an ordered alias list instead of a
// fixed column name.
package catalog

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// RawRow is one row of the export as decoded from JSON. Values may be
// strings, numbers or missing entirely.
type RawRow = map[string]any

// Ticket groups one or more work orders under an issue identifier.
// TotalCost is accumulated during Build and not touched afterwards.
type Ticket struct {
	ID        string  `json:"id"`
	Subject   string  `json:"subject"`
	Sector    string  `json:"sector"`
	Date      string  `json:"date"`
	TotalCost float64 `json:"costo_total"`
}

// OT is a single executed work order. Subject and sector come from the
// row itself and may differ from the owning ticket's.
type OT struct {
	ID            string  `json:"id"`
	TicketID      string  `json:"ticket_id"`
	Subject       string  `json:"subject"`
	Sector        string  `json:"sector"`
	LaborHours    float64 `json:"labor_hours"`
	LaborCost     float64 `json:"labor_cost"`
	Technicians   int     `json:"technicians_count"`
	ExecutionDate string  `json:"fecha_ejecucion"`
}

// Result is the catalog produced by one Build pass.
type Result struct {
	Tickets []Ticket `json:"tickets"`
	OTs     []OT     `json:"ots"`
}

// Defaults applied when no alias resolves. Dates use a lexicographically
// minimal sentinel so unparseable rows sort last in the date-descending
// ticket list.
const (
	DefaultSubject = "Sin asunto"
	DefaultSector  = "N/A"
	DefaultDate    = "0000-00-00"
)

// Alias lists per logical field, in resolution priority order. Keep these
// tables flat and data-driven so schema drift stays auditable in one place.
var (
	ticketIDAliases      = []string{"iss", "ticket", "ID_ISS"}
	ticketSubjectAliases = []string{"subject_ticket", "subject", "asunto"}
	sectorAliases        = []string{"sector"}
	ticketDateAliases    = []string{"fecha_ejecucion", "fecha_ticket", "fecha"}
	otIDAliases          = []string{"ot", "OT", "nro_ot"}
	otSubjectAliases     = []string{"subject_ot", "subject", "subject_ticket"}
	durationAliases      = []string{"duracion", "duration"}
	costAliases          = []string{"costo_mo_total", "costo_mo"}
	technicianAliases    = []string{"nro_tec", "tecnicos"}
	execDateAliases      = []string{"fecha_ejecucion", "fecha"}
)

// NormalizeRow maps one raw row to a ticket fragment and, when the row
// carries a work-order identifier, an OT record. ok is false when no
// ticket identifier alias resolves; such rows contribute nothing.
// NormalizeRow never mutates the row and never fails on bad values:
// unparsable numerics coerce to zero per field.
func NormalizeRow(row RawRow) (Ticket, *OT, bool) {
	iss := firstAlias(row, ticketIDAliases)
	if iss == "" {
		return Ticket{}, nil, false
	}

	t := Ticket{
		ID:      iss,
		Subject: firstAliasDefault(row, ticketSubjectAliases, DefaultSubject),
		Sector:  firstAliasDefault(row, sectorAliases, DefaultSector),
		Date:    firstAliasDefault(row, ticketDateAliases, DefaultDate),
	}

	otID := firstAlias(row, otIDAliases)
	if otID == "" {
		return t, nil, true
	}

	ot := &OT{
		ID:            otID,
		TicketID:      iss,
		Subject:       firstAliasDefault(row, otSubjectAliases, DefaultSubject),
		Sector:        firstAliasDefault(row, sectorAliases, DefaultSector),
		LaborHours:    ParseDuration(firstAlias(row, durationAliases)),
		LaborCost:     toFloat(aliasValue(row, costAliases)),
		Technicians:   toInt(aliasValue(row, technicianAliases)),
		ExecutionDate: firstAliasDefault(row, execDateAliases, DefaultDate),
	}
	return t, ot, true
}

// Build runs one normalization pass over rows in input order. The first
// row naming a ticket wins its attributes; every OT-bearing row adds its
// labor cost to the owning ticket's TotalCost. Tickets are returned in
// date-descending lexicographic order, which is only calendar-correct for
// zero-padded ISO-like dates (documented precondition of the export).
// Malformed individual rows are skipped, never fatal.
func Build(rows []RawRow) Result {
	index := map[string]int{}
	tickets := []Ticket{}
	ots := []OT{}

	for _, row := range rows {
		t, ot, ok := NormalizeRow(row)
		if !ok {
			continue
		}
		i, seen := index[t.ID]
		if !seen {
			i = len(tickets)
			index[t.ID] = i
			tickets = append(tickets, t)
		}
		if ot != nil {
			tickets[i].TotalCost += ot.LaborCost
			ots = append(ots, *ot)
		}
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].Date > tickets[j].Date
	})
	return Result{Tickets: tickets, OTs: ots}
}

// ExtractRows locates the row array inside a decoded payload. Accepted
// shapes: a bare array, or an object carrying the array under "result"
// or "data". Anything else is the build-pass failure of the catalog
// contract: the caller must fall back to an empty catalog and surface a
// status message instead of propagating the error further.
func ExtractRows(payload any) ([]RawRow, error) {
	switch p := payload.(type) {
	case nil:
		return nil, fmt.Errorf("catalog: payload is empty")
	case []RawRow:
		return p, nil
	case []any:
		return coerceRows(p)
	case map[string]any:
		for _, key := range []string{"result", "data"} {
			if inner, ok := p[key]; ok {
				return ExtractRows(inner)
			}
		}
		return nil, fmt.Errorf("catalog: payload object has no result/data array")
	default:
		return nil, fmt.Errorf("catalog: payload is not a row array (%T)", payload)
	}
}

func coerceRows(items []any) ([]RawRow, error) {
	rows := make([]RawRow, 0, len(items))
	for _, it := range items {
		if row, ok := it.(map[string]any); ok {
			rows = append(rows, row)
		}
		// non-object entries are malformed rows: skipped, not fatal
	}
	return rows, nil
}

// ParseDuration turns a duration value into hours. "H:MM" strings sum the
// integer hour part with minutes/60; bare numerics are already hours (so
// "45" is 45 hours, not minutes). Junk yields 0. Rounded to 2 decimals.
func ParseDuration(raw string) float64 {
	var hours float64
	if strings.Contains(raw, ":") {
		parts := strings.SplitN(raw, ":", 2)
		h, _ := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		m, _ := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		hours = h + m/60
	} else {
		hours, _ = strconv.ParseFloat(strings.TrimSpace(raw), 64)
	}
	return math.Round(hours*100) / 100
}

// firstAlias returns the first alias whose value is present and non-empty.
// Numeric zero counts as absent, matching the legacy export where 0 marks
// a missing identifier.
func firstAlias(row RawRow, aliases []string) string {
	for _, key := range aliases {
		if v, ok := row[key]; ok {
			if s := stringValue(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstAliasDefault(row RawRow, aliases []string, def string) string {
	if s := firstAlias(row, aliases); s != "" {
		return s
	}
	return def
}

// aliasValue returns the first present, non-nil raw value without string
// coercion, for numeric fields.
func aliasValue(row RawRow, aliases []string) any {
	for _, key := range aliases {
		if v, ok := row[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == 0 {
			return ""
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		if s == 0 {
			return ""
		}
		return strconv.Itoa(s)
	default:
		return ""
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f
	default:
		return 0
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return int(f)
	default:
		return 0
	}
}
