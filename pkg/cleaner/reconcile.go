// pkg/cleaner/reconcile.go
package cleaner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jafshop/medallion/pkg/table"
)

// ErrRoleUnresolved signals that none of a role's candidate column
// names is present in the table. Callers that require the role for a
// downstream computation must fail their stage rather than guess.
var ErrRoleUnresolved = errors.New("role unresolved")

// Role is a semantic purpose a column serves, resolved by matching the
// table's columns against an ordered priority list of known aliases.
type Role struct {
	Name       string
	Candidates []string
}

// Built-in roles, candidates in priority order.
var (
	RoleMonetaryTotal = Role{
		Name:       "monetary_total",
		Candidates: []string{"order_total", "total_value", "subtotal", "total", "amount"},
	}
	RoleCustomerID = Role{
		Name:       "customer_identifier",
		Candidates: []string{"customer", "customer_id", "customer_external_id"},
	}
	RoleOrderID = Role{
		Name:       "order_identifier",
		Candidates: []string{"id", "order_id"},
	}
	RoleIssueCategory = Role{
		Name:       "issue_category",
		Candidates: []string{"issue_type", "category"},
	}
	RoleOrderDate = Role{
		Name:       "order_timestamp",
		Candidates: []string{"ordered_at", "order_date", "created_at"},
	}
)

// ResolveRole returns the first candidate column present in the table.
// Resolution happens once per table, not per row. The returned error
// wraps ErrRoleUnresolved and names the role and the columns that were
// tried, so the failure reads as a required-column-missing condition.
func ResolveRole(t table.Table, role Role) (string, error) {
	for _, candidate := range role.Candidates {
		if t.HasColumn(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s (tried %s; table has %s)",
		ErrRoleUnresolved, role.Name,
		strings.Join(role.Candidates, ", "),
		strings.Join(t.Columns, ", "))
}
