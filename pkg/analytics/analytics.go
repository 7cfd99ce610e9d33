// pkg/analytics/analytics.go
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jafshop/medallion/pkg/cleaner"
	"github.com/jafshop/medallion/pkg/table"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// customerStats accumulates per-group order statistics.
type customerStats struct {
	revenue float64
	orders  int64
}

// AverageOrderValue computes per-customer revenue, mean order value and
// order count, plus the same statistics globally. The monetary-total
// and customer-identifier columns are resolved through the schema
// reconciler; an unresolvable role fails the computation with a
// data-quality error rather than guessing.
func AverageOrderValue(orders table.Table) (byCustomer, overall table.Table, err error) {
	valueCol, err := cleaner.ResolveRole(orders, cleaner.RoleMonetaryTotal)
	if err != nil {
		return table.Table{}, table.Table{}, fmt.Errorf("average order value: %w", err)
	}
	customerCol, err := cleaner.ResolveRole(orders, cleaner.RoleCustomerID)
	if err != nil {
		return table.Table{}, table.Table{}, fmt.Errorf("average order value: %w", err)
	}

	coerced := cleaner.CoerceNumerics(orders, []string{valueCol})

	stats := make(map[string]*customerStats)
	var order []string
	totalRevenue := 0.0

	for _, row := range coerced.Rows {
		customer := table.AsString(row[customerCol])
		value, ferr := table.AsFloat(row[valueCol])
		if ferr != nil {
			value = 0
		}

		s, seen := stats[customer]
		if !seen {
			s = &customerStats{}
			stats[customer] = s
			order = append(order, customer)
		}
		s.revenue += value
		s.orders++
		totalRevenue += value
	}

	byCustomer = table.New("customer_id", "total_revenue", "avg_order_value", "total_orders")
	for _, customer := range order {
		s := stats[customer]
		byCustomer.Append(table.Record{
			"customer_id":     customer,
			"total_revenue":   round2(s.revenue),
			"avg_order_value": round2(s.revenue / float64(s.orders)),
			"total_orders":    s.orders,
		})
	}

	overall = table.New("metric", "value", "total_revenue", "total_orders")
	overallAOV := 0.0
	if coerced.RowCount() > 0 {
		overallAOV = totalRevenue / float64(coerced.RowCount())
	}
	overall.Append(table.Record{
		"metric":        "Overall AOV",
		"value":         round2(overallAOV),
		"total_revenue": round2(totalRevenue),
		"total_orders":  int64(coerced.RowCount()),
	})

	return byCustomer, overall, nil
}

// ticketCounts tallies tickets per order identifier.
func ticketCounts(tickets table.Table) map[string]int64 {
	counts := make(map[string]int64)
	if !tickets.HasColumn("order_id") {
		return counts
	}
	for _, row := range tickets.Rows {
		if v := row["order_id"]; v != nil {
			counts[table.AsString(v)]++
		}
	}
	return counts
}

// TicketsPerOrder joins orders to their support-ticket counts. The join
// is a left join anchored on orders, so orders without tickets are
// retained with a zero count rather than dropped.
func TicketsPerOrder(orders, tickets table.Table) (table.Table, error) {
	if !tickets.HasColumn("order_id") {
		return table.Table{}, &cleaner.ValidationError{
			Entity: "support_tickets",
			Reason: "order_id column not found",
		}
	}

	idCol, err := cleaner.ResolveRole(orders, cleaner.RoleOrderID)
	if err != nil {
		return table.Table{}, fmt.Errorf("tickets per order: %w", err)
	}

	columns := []string{idCol}
	if customerCol, err := cleaner.ResolveRole(orders, cleaner.RoleCustomerID); err == nil {
		columns = append(columns, customerCol)
	}
	columns = append(columns, "num_tickets")
	if valueCol, err := cleaner.ResolveRole(orders, cleaner.RoleMonetaryTotal); err == nil {
		columns = append(columns, valueCol)
	}
	if dateCol, err := cleaner.ResolveRole(orders, cleaner.RoleOrderDate); err == nil {
		columns = append(columns, dateCol)
	}

	counts := ticketCounts(tickets)
	out := table.New(columns...)
	for _, row := range orders.Rows {
		joined := make(table.Record, len(columns))
		for _, col := range columns {
			if col == "num_tickets" {
				joined[col] = counts[table.AsString(row[idCol])]
				continue
			}
			joined[col] = row[col]
		}
		out.Append(joined)
	}
	return out, nil
}

// RestaurantSummary merges orders with ticket counts and the distinct
// issue categories raised against each order. Orders without tickets
// get a zero count and the "None" marker.
func RestaurantSummary(orders, tickets table.Table) (table.Table, error) {
	idCol, err := cleaner.ResolveRole(orders, cleaner.RoleOrderID)
	if err != nil {
		return table.Table{}, fmt.Errorf("restaurant summary: %w", err)
	}

	counts := ticketCounts(tickets)
	issues := issuesByOrder(tickets)

	columns := append(append([]string(nil), orders.Columns...), "num_tickets", "issue_types", "has_issues")
	out := table.New(columns...)
	for _, row := range orders.Rows {
		merged := make(table.Record, len(columns))
		for _, col := range orders.Columns {
			merged[col] = row[col]
		}
		id := table.AsString(row[idCol])
		merged["num_tickets"] = counts[id]
		merged["has_issues"] = counts[id] > 0
		if list, ok := issues[id]; ok {
			merged["issue_types"] = strings.Join(list, ", ")
		} else {
			merged["issue_types"] = "None"
		}
		out.Append(merged)
	}
	return out, nil
}

// issuesByOrder collects the distinct issue categories per order in
// first-seen order.
func issuesByOrder(tickets table.Table) map[string][]string {
	issues := make(map[string][]string)
	issueCol, err := cleaner.ResolveRole(tickets, cleaner.RoleIssueCategory)
	if err != nil || !tickets.HasColumn("order_id") {
		return issues
	}

	seen := make(map[string]map[string]struct{})
	for _, row := range tickets.Rows {
		if row["order_id"] == nil || row[issueCol] == nil {
			continue
		}
		id := table.AsString(row["order_id"])
		issue := table.AsString(row[issueCol])
		if seen[id] == nil {
			seen[id] = make(map[string]struct{})
		}
		if _, dup := seen[id][issue]; dup {
			continue
		}
		seen[id][issue] = struct{}{}
		issues[id] = append(issues[id], issue)
	}
	return issues
}

// TicketAnalytics groups tickets by the resolved issue-category role
// and produces counts with percentage-of-total. Percentages are rounded
// independently to two decimals; their sum can drift slightly from
// 100.0, which is accepted floating-point behavior.
func TicketAnalytics(tickets table.Table) (table.Table, error) {
	issueCol, err := cleaner.ResolveRole(tickets, cleaner.RoleIssueCategory)
	if err != nil {
		return table.Table{}, fmt.Errorf("ticket analytics: %w", err)
	}

	counts := make(map[string]int64)
	var order []string
	total := int64(0)
	for _, row := range tickets.Rows {
		issue := table.AsString(row[issueCol])
		if _, seen := counts[issue]; !seen {
			order = append(order, issue)
		}
		counts[issue]++
		total++
	}

	// sort by count descending, ties keep first-seen order
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	out := table.New("issue_type", "ticket_count", "percentage")
	for _, issue := range order {
		percentage := 0.0
		if total > 0 {
			percentage = round2(float64(counts[issue]) / float64(total) * 100)
		}
		out.Append(table.Record{
			"issue_type":   issue,
			"ticket_count": counts[issue],
			"percentage":   percentage,
		})
	}
	return out, nil
}
