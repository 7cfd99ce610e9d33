// pkg/ingest/sample.go
package ingest

import (
	"fmt"
	"math"
	"time"

	"github.com/jafshop/medallion/pkg/table"
)

// Deterministic demo datasets used when synthetic fallback is enabled.
// Shapes mirror the production sources so the full pipeline stays
// runnable end-to-end without credentials.

func sampleDate(start time.Time, day int) string {
	return start.AddDate(0, 0, day).Format("2006-01-02")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SampleOrders generates 100 demo orders.
func SampleOrders() table.Table {
	t := table.New("order_id", "customer_id", "order_date", "total_value", "status")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 100; i++ {
		status := "completed"
		if i%10 == 0 {
			status = "cancelled"
		}
		t.Append(table.Record{
			"order_id":    fmt.Sprintf("ORD%04d", i),
			"customer_id": fmt.Sprintf("CUST%03d", (i%20)+1),
			"order_date":  sampleDate(start, i-1),
			"total_value": round2(50 + math.Mod(float64(i)*3.5, 200)),
			"status":      status,
		})
	}
	return t
}

// SampleCustomers generates 20 demo customers.
func SampleCustomers() table.Table {
	t := table.New("customer_id", "customer_name", "email", "join_date")
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 20; i++ {
		t.Append(table.Record{
			"customer_id":   fmt.Sprintf("CUST%03d", i),
			"customer_name": fmt.Sprintf("Customer %d", i),
			"email":         fmt.Sprintf("customer%d@example.com", i),
			"join_date":     sampleDate(start, (i-1)*15),
		})
	}
	return t
}

// SampleProducts generates 30 demo products.
func SampleProducts() table.Table {
	t := table.New("product_id", "product_name", "category", "price")
	categories := []string{"Food", "Beverage", "Dessert"}
	for i := 1; i <= 30; i++ {
		t.Append(table.Record{
			"product_id":   fmt.Sprintf("PROD%03d", i),
			"product_name": fmt.Sprintf("Product %d", i),
			"category":     categories[i%3],
			"price":        round2(5 + float64(i)*2.5),
		})
	}
	return t
}

// SampleOrderItems generates 200 demo order items.
func SampleOrderItems() table.Table {
	t := table.New("order_item_id", "order_id", "product_id", "quantity", "unit_price")
	for i := 1; i <= 200; i++ {
		t.Append(table.Record{
			"order_item_id": fmt.Sprintf("OI%05d", i),
			"order_id":      fmt.Sprintf("ORD%04d", (i%100)+1),
			"product_id":    fmt.Sprintf("PROD%03d", (i%30)+1),
			"quantity":      float64((i % 5) + 1),
			"unit_price":    round2(5 + math.Mod(float64(i)*2.5, 50)),
		})
	}
	return t
}

// SampleTickets generates 50 demo support tickets.
func SampleTickets() table.Table {
	t := table.New("ticket_id", "order_id", "customer_id", "issue_type", "ticket_date", "status", "priority")
	issues := []string{"Delivery Issue", "Quality Issue", "Wrong Order", "Other"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 50; i++ {
		priority := "low"
		switch {
		case i%5 == 0:
			priority = "high"
		case i%5 == 1 || i%5 == 2:
			priority = "medium"
		}
		status := "resolved"
		if i%3 == 0 {
			status = "open"
		}
		t.Append(table.Record{
			"ticket_id":   fmt.Sprintf("TKT%05d", i),
			"order_id":    fmt.Sprintf("ORD%04d", (i%100)+1),
			"customer_id": fmt.Sprintf("CUST%03d", (i%20)+1),
			"issue_type":  issues[i%4],
			"ticket_date": sampleDate(start, (i-1)*2),
			"status":      status,
			"priority":    priority,
		})
	}
	return t
}
