// pkg/cleaner/policy.go
package cleaner

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jafshop/medallion/pkg/table"
)

// CleaningPolicy is the typed per-entity cleaning configuration: the
// raw-alias rename map, the columns requiring numeric coercion, the
// identifier column used for deduplication, and the columns (or roles)
// required for post-clean validation.
type CleaningPolicy struct {
	Entity          string            `yaml:"entity"`
	Rename          map[string]string `yaml:"rename"`
	NumericColumns  []string          `yaml:"numeric_columns"`
	IDColumn        string            `yaml:"id_column"`
	RequiredColumns []string          `yaml:"required_columns"`
	Fill            map[string]FillStrategy `yaml:"-"`

	// RequiredRoles are validated via the schema reconciler, so a table
	// satisfying any candidate alias passes. Not expressible in YAML.
	RequiredRoles []Role `yaml:"-"`

	// Derive optionally appends computed columns after coercion.
	Derive func(table.Table) table.Table `yaml:"-"`
}

// Validate rejects policies with malformed semantics before any table
// is touched.
func (p CleaningPolicy) Validate() error {
	if p.Entity == "" {
		return fmt.Errorf("cleaning policy: entity name is required")
	}
	for alias, target := range p.Rename {
		if strings.TrimSpace(target) == "" {
			return fmt.Errorf("cleaning policy %s: rename for %q has empty target", p.Entity, alias)
		}
	}
	for _, col := range p.NumericColumns {
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("cleaning policy %s: empty numeric column name", p.Entity)
		}
	}
	return nil
}

// OrdersPolicy returns the built-in policy for the orders entity.
func OrdersPolicy() CleaningPolicy {
	return CleaningPolicy{
		Entity: "orders",
		Rename: map[string]string{
			"orderid":     "order_id",
			"customerid":  "customer_id",
			"total":       "total_value",
			"amount":      "total_value",
			"order_total": "total_value",
		},
		NumericColumns: []string{"subtotal", "tax_paid", "total_value"},
		IDColumn:       "order_id",
		RequiredRoles:  []Role{RoleOrderID},
	}
}

// TicketsPolicy returns the built-in policy for the support tickets
// entity.
func TicketsPolicy() CleaningPolicy {
	return CleaningPolicy{
		Entity: "support_tickets",
		Rename: map[string]string{
			"ticketid":   "ticket_id",
			"orderid":    "order_id",
			"created_at": "ticket_date",
			"issue":      "issue_type",
			"status":     "ticket_status",
		},
		IDColumn:        "ticket_id",
		RequiredColumns: []string{"ticket_id"},
	}
}

// CustomersPolicy returns the built-in policy for the customers entity.
func CustomersPolicy() CleaningPolicy {
	return CleaningPolicy{
		Entity:   "customers",
		IDColumn: "customer_id",
	}
}

// ProductsPolicy returns the built-in policy for the products entity.
func ProductsPolicy() CleaningPolicy {
	return CleaningPolicy{
		Entity:         "products",
		NumericColumns: []string{"price"},
		IDColumn:       "product_id",
	}
}

// OrderItemsPolicy returns the built-in policy for the order items
// entity. Line totals are derived when both factors are present.
func OrderItemsPolicy() CleaningPolicy {
	return CleaningPolicy{
		Entity:         "order_items",
		NumericColumns: []string{"quantity", "unit_price"},
		IDColumn:       "order_item_id",
		Derive:         deriveLineTotal,
	}
}

func deriveLineTotal(t table.Table) table.Table {
	if !t.HasColumn("quantity") || !t.HasColumn("unit_price") {
		return t
	}
	out := t.Clone()
	out.AddColumn("line_total")
	for _, row := range out.Rows {
		qty, qerr := table.AsFloat(row["quantity"])
		price, perr := table.AsFloat(row["unit_price"])
		if qerr != nil || perr != nil {
			row["line_total"] = nil
			continue
		}
		row["line_total"] = qty * price
	}
	return out
}

// BuiltinPolicies maps bronze file basenames (without extension) to
// their authored policies. Files without an entry go through the
// generic cleaner.
func BuiltinPolicies() map[string]CleaningPolicy {
	return map[string]CleaningPolicy{
		"orders":          OrdersPolicy(),
		"customers":       CustomersPolicy(),
		"products":        ProductsPolicy(),
		"order_items":     OrderItemsPolicy(),
		"support_tickets": TicketsPolicy(),
	}
}

// policyFile mirrors the YAML shape of an externally authored policy.
type policyFile struct {
	Entity          string            `yaml:"entity"`
	Rename          map[string]string `yaml:"rename"`
	NumericColumns  []string          `yaml:"numeric_columns"`
	IDColumn        string            `yaml:"id_column"`
	RequiredColumns []string          `yaml:"required_columns"`
	Fill            map[string]string `yaml:"fill"`
}

// LoadPolicy reads a cleaning policy from a YAML file. Fill entries are
// either a strategy keyword (mean, median, mode, default) or a literal
// prefixed with "literal:"; anything else is rejected at load time
// rather than silently ignored at apply time.
func LoadPolicy(path string) (CleaningPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CleaningPolicy{}, fmt.Errorf("read policy file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return CleaningPolicy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	policy := CleaningPolicy{
		Entity:          file.Entity,
		Rename:          file.Rename,
		NumericColumns:  file.NumericColumns,
		IDColumn:        file.IDColumn,
		RequiredColumns: file.RequiredColumns,
	}

	if len(file.Fill) > 0 {
		policy.Fill = make(map[string]FillStrategy, len(file.Fill))
		for col, spec := range file.Fill {
			strategy, err := parseFillSpec(spec)
			if err != nil {
				return CleaningPolicy{}, fmt.Errorf("policy %s, column %q: %w", path, col, err)
			}
			policy.Fill[col] = strategy
		}
	}

	if err := policy.Validate(); err != nil {
		return CleaningPolicy{}, err
	}
	return policy, nil
}

func parseFillSpec(spec string) (FillStrategy, error) {
	switch spec {
	case "mean":
		return Mean(), nil
	case "median":
		return Median(), nil
	case "mode":
		return Mode(), nil
	case "default":
		return FillStrategy{Kind: FillTypeDefault}, nil
	}
	if literal, ok := strings.CutPrefix(spec, "literal:"); ok {
		return Literal(literal), nil
	}
	return FillStrategy{}, fmt.Errorf("unknown fill strategy %q", spec)
}
