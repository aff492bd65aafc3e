// Package quote holds the mutable quote draft: named line items, each with
// a cost multiplier and an exclusive claim on work orders of the active
// ticket. The draft assumes a single logical writer; callers in a
// concurrent environment must serialize access themselves.
package quote

import (
	"strconv"
	"strings"

	lo "github.com/samber/lo"

	"labor-stats/domain/catalog"
)

const (
	// DefaultItemName marks an item whose name was never customized.
	// The first OT assigned to such an item seeds its name.
	DefaultItemName = "Nuevo Ítem de Cotización"
	DefaultFactor   = 1.5
	// FallbackFactor replaces non-numeric factor input.
	FallbackFactor = 1.0
)

// Item is one priced line of the quote. OTs keeps assignment order.
type Item struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Factor float64      `json:"factor"`
	OTs    []catalog.OT `json:"ots"`
}

// Draft is the quote under construction for one ticket.
type Draft struct {
	Ticket *catalog.Ticket `json:"ticket"`
	Items  []*Item         `json:"items"`

	universe []catalog.OT
	nextID   int64
}

// NewDraft creates an empty draft over the known OT universe.
func NewDraft(ots []catalog.OT) *Draft {
	return &Draft{universe: ots}
}

// SetUniverse replaces the OT universe after a catalog rebuild. Existing
// items keep the OT snapshots they already claimed.
func (d *Draft) SetUniverse(ots []catalog.OT) {
	d.universe = ots
}

// SelectTicket makes ticket the active one and discards every item: a
// quote draft never spans tickets, so switching is a hard reset.
func (d *Draft) SelectTicket(ticket catalog.Ticket) {
	d.Ticket = &ticket
	d.Items = nil
}

// AddItem appends a new item with default name and factor.
func (d *Draft) AddItem() *Item {
	d.nextID++
	item := &Item{ID: d.nextID, Name: DefaultItemName, Factor: DefaultFactor}
	d.Items = append(d.Items, item)
	return item
}

// RenameItem sets the item's name. Unknown ids are ignored.
func (d *Draft) RenameItem(id int64, name string) {
	if item := d.find(id); item != nil {
		item.Name = name
	}
}

// SetFactor parses input as a real multiplier. Non-numeric input falls
// back to 1, not to the previous value.
func (d *Draft) SetFactor(id int64, input string) {
	item := d.find(id)
	if item == nil {
		return
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || f == 0 {
		f = FallbackFactor
	}
	item.Factor = f
}

// DeleteItem removes the item; its OTs return to the available pool.
func (d *Draft) DeleteItem(id int64) {
	d.Items = lo.Filter(d.Items, func(item *Item, _ int) bool { return item.ID != id })
}

// AssignOT claims the OT for the given item. The OT is resolved against
// the universe; unknown ids are a silent no-op. Any claim another item
// holds on the same OT is released in the same step, so an OT belongs to
// at most one item at all times. An item still carrying the default name
// takes the subject of its first assigned OT as its name.
func (d *Draft) AssignOT(otID string, itemID int64) {
	ot, found := lo.Find(d.universe, func(o catalog.OT) bool { return o.ID == otID })
	if !found {
		return
	}
	for _, item := range d.Items {
		item.OTs = lo.Filter(item.OTs, func(o catalog.OT, _ int) bool { return o.ID != otID })
		if item.ID == itemID {
			item.OTs = append(item.OTs, ot)
			if item.Name == DefaultItemName && len(item.OTs) == 1 {
				item.Name = ot.Subject
			}
		}
	}
}

// UnassignOT releases the OT from the named item only.
func (d *Draft) UnassignOT(itemID int64, otID string) {
	if item := d.find(itemID); item != nil {
		item.OTs = lo.Filter(item.OTs, func(o catalog.OT, _ int) bool { return o.ID != otID })
	}
}

// AvailableOTs lists the active ticket's OTs not claimed by any item,
// recomputed from scratch on every call.
func (d *Draft) AvailableOTs() []catalog.OT {
	if d.Ticket == nil {
		return []catalog.OT{}
	}
	claimed := map[string]bool{}
	for _, item := range d.Items {
		for _, ot := range item.OTs {
			claimed[ot.ID] = true
		}
	}
	return lo.Filter(d.universe, func(o catalog.OT, _ int) bool {
		return o.TicketID == d.Ticket.ID && !claimed[o.ID]
	})
}

// ItemTotal is the summed labor cost of the item's OTs times its factor.
func ItemTotal(item *Item) float64 {
	base := lo.SumBy(item.OTs, func(o catalog.OT) float64 { return o.LaborCost })
	return base * item.Factor
}

// GrandTotal sums every item's total.
func (d *Draft) GrandTotal() float64 {
	return lo.SumBy(d.Items, ItemTotal)
}

func (d *Draft) find(id int64) *Item {
	item, _ := lo.Find(d.Items, func(it *Item) bool { return it.ID == id })
	return item
}
