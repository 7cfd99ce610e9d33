// pkg/report/report.go
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/jafshop/medallion/pkg/analytics"
	"github.com/jafshop/medallion/pkg/storage"
	"github.com/jafshop/medallion/pkg/table"
)

// Printer formats a console summary from the Gold layer outputs. Pure
// presentation: it reads the persisted metric tables and renders them,
// making no decisions of its own.
type Printer struct {
	goldFolder string
	out        io.Writer
}

// NewPrinter creates a Printer for the given gold folder.
func NewPrinter(goldFolder string, out io.Writer) *Printer {
	return &Printer{goldFolder: goldFolder, out: out}
}

var (
	heading = color.New(color.FgCyan, color.Bold)
	label   = color.New(color.FgWhite)
	errText = color.New(color.FgRed)
)

// Print renders the full summary. Missing metric files are reported
// inline rather than failing the report.
func (p *Printer) Print() error {
	heading.Fprintln(p.out, "PIPELINE EXECUTION SUMMARY")
	fmt.Fprintln(p.out)

	p.printOverallMetrics()
	p.printTicketAnalytics()
	p.printTopCustomers()
	p.printTicketsPerOrder()
	return nil
}

func (p *Printer) read(name string) (table.Table, bool) {
	t, err := storage.ReadTable(filepath.Join(p.goldFolder, name))
	if err != nil {
		errText.Fprintf(p.out, "  %s unavailable: %v\n\n", name, err)
		return table.Table{}, false
	}
	return t, true
}

func (p *Printer) printOverallMetrics() {
	heading.Fprintln(p.out, "OVERALL METRICS")
	t, ok := p.read(analytics.FileOverallMetrics)
	if !ok {
		return
	}
	for _, row := range t.Rows {
		label.Fprintf(p.out, "  Average Order Value (AOV):  $%s\n", table.AsString(row["value"]))
		label.Fprintf(p.out, "  Total Revenue:              $%s\n", table.AsString(row["total_revenue"]))
		label.Fprintf(p.out, "  Total Orders:               %s\n", table.AsString(row["total_orders"]))
	}
	fmt.Fprintln(p.out)
}

func (p *Printer) printTicketAnalytics() {
	heading.Fprintln(p.out, "SUPPORT TICKETS BY CATEGORY")
	t, ok := p.read(analytics.FileTicketAnalytics)
	if !ok {
		return
	}

	w := tabwriter.NewWriter(p.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  Category\tTickets\tPercentage")
	for _, row := range t.Rows {
		fmt.Fprintf(w, "  %s\t%s\t%s%%\n",
			table.AsString(row["issue_type"]),
			table.AsString(row["ticket_count"]),
			table.AsString(row["percentage"]))
	}
	w.Flush()
	fmt.Fprintln(p.out)
}

func (p *Printer) printTopCustomers() {
	heading.Fprintln(p.out, "TOP 10 CUSTOMERS BY AVERAGE ORDER VALUE")
	t, ok := p.read(analytics.FileAverageOrderValue)
	if !ok {
		return
	}

	rows := append([]table.Record(nil), t.Rows...)
	sort.SliceStable(rows, func(a, b int) bool {
		av, _ := table.AsFloat(rows[a]["avg_order_value"])
		bv, _ := table.AsFloat(rows[b]["avg_order_value"])
		return av > bv
	})
	if len(rows) > 10 {
		rows = rows[:10]
	}

	w := tabwriter.NewWriter(p.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  Customer\tRevenue\tAvg Order Value\tOrders")
	for _, row := range rows {
		fmt.Fprintf(w, "  %s\t$%s\t$%s\t%s\n",
			table.AsString(row["customer_id"]),
			table.AsString(row["total_revenue"]),
			table.AsString(row["avg_order_value"]),
			table.AsString(row["total_orders"]))
	}
	w.Flush()
	fmt.Fprintln(p.out)
}

func (p *Printer) printTicketsPerOrder() {
	heading.Fprintln(p.out, "TICKETS PER ORDER")
	t, ok := p.read(analytics.FileTicketsPerOrder)
	if !ok {
		return
	}

	totalOrders := t.RowCount()
	ordersWithTickets := 0
	totalTickets := 0.0
	for _, row := range t.Rows {
		n, err := table.AsFloat(row["num_tickets"])
		if err != nil {
			continue
		}
		totalTickets += n
		if n > 0 {
			ordersWithTickets++
		}
	}

	if totalOrders > 0 {
		rate := float64(ordersWithTickets) / float64(totalOrders) * 100
		label.Fprintf(p.out, "  Average Tickets Per Order:  %.2f\n", totalTickets/float64(totalOrders))
		label.Fprintf(p.out, "  Orders with Tickets:        %d (%.1f%%)\n", ordersWithTickets, rate)
		label.Fprintf(p.out, "  Orders without Tickets:     %d (%.1f%%)\n", totalOrders-ordersWithTickets, 100-rate)
		label.Fprintf(p.out, "  Total Orders Analyzed:      %d\n", totalOrders)
	}
	fmt.Fprintln(p.out)
}
