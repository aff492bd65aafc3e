package quote

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Renderers produce the downloadable artifacts of a draft. Both are plain
// strings; offering them as files is the caller's concern.

const separator = "------------------------------------------"

// money formats with the es-AR convention (dot thousands, comma decimals)
// used on the grand-total line.
var money = message.NewPrinter(language.Spanish)

// Summary renders the multi-line text report of the draft: a header with
// ticket id, subject, generation timestamp and data source, one block per
// item with its OT lines and 2-decimal subtotal, and a locale-formatted
// grand total.
func (d *Draft) Summary(now time.Time, source string) string {
	if d.Ticket == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "COTIZACION DE MANO DE OBRA - %s\n", d.Ticket.ID)
	fmt.Fprintf(&b, "ASUNTO: %s\n", d.Ticket.Subject)
	fmt.Fprintf(&b, "FECHA: %s\n", now.Format("02/01/2006 15:04:05"))
	if source != "" {
		fmt.Fprintf(&b, "FUENTE: %s\n", source)
	}
	b.WriteString(separator + "\n")

	for i, item := range d.Items {
		fmt.Fprintf(&b, "\nITEM %d: %s\n", i+1, strings.ToUpper(item.Name))
		fmt.Fprintf(&b, "FACTOR: %s\n", formatFactor(item.Factor))
		for _, ot := range item.OTs {
			fmt.Fprintf(&b, "- OT: %s | %s\n", ot.ID, ot.Subject)
		}
		fmt.Fprintf(&b, "SUBTOTAL: $%.2f\n", ItemTotal(item))
	}

	b.WriteString("\n" + separator + "\n")
	fmt.Fprintf(&b, "TOTAL GENERAL: $ %s\n", money.Sprintf("%.2f", d.GrandTotal()))
	return b.String()
}

// CSV renders the semicolon-separated export: UTF-8 with a single leading
// BOM, one row per (item, OT) pair. The subtotal column repeats the item's
// total on each of its rows and uses a decimal comma.
func (d *Draft) CSV() string {
	var b strings.Builder
	b.WriteString("\uFEFF")
	b.WriteString("Item;Nombre;Factor;OT;OT_Asunto;Subtotal\n")
	for i, item := range d.Items {
		subtotal := strings.ReplaceAll(fmt.Sprintf("%.2f", ItemTotal(item)), ".", ",")
		for _, ot := range item.OTs {
			fmt.Fprintf(&b, "%d;%q;%s;%s;%q;%s\n",
				i+1, item.Name, formatFactor(item.Factor), ot.ID, ot.Subject, subtotal)
		}
	}
	return b.String()
}

// formatFactor prints the multiplier without trailing zeros (1.5, not 1.50).
func formatFactor(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
