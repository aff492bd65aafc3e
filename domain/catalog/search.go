package catalog

import (
	"strings"

	lo "github.com/samber/lo"
)

// SearchTickets returns up to limit tickets whose id or subject contains
// the query, case-insensitive, preserving catalog order. An empty query
// matches nothing: the picker only shows results once the user types.
func (r Result) SearchTickets(query string, limit int) []Ticket {
	if query == "" {
		return []Ticket{}
	}
	q := strings.ToLower(query)
	matches := lo.Filter(r.Tickets, func(t Ticket, _ int) bool {
		return strings.Contains(strings.ToLower(t.ID), q) ||
			strings.Contains(strings.ToLower(t.Subject), q)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// FindTicket resolves a ticket by exact id.
func (r Result) FindTicket(id string) (Ticket, bool) {
	return lo.Find(r.Tickets, func(t Ticket) bool { return t.ID == id })
}
