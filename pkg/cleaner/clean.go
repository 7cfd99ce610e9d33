// pkg/cleaner/clean.go
package cleaner

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jafshop/medallion/pkg/table"
)

// ValidationError is a data-quality failure: retrying without human
// correction of the source data will not help. It aborts only the
// affected entity's cleaning stage.
type ValidationError struct {
	Entity string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Entity, e.Reason)
}

// IsDataQuality reports whether an error belongs to the data-quality
// taxonomy (validation failure or unresolved required role).
func IsDataQuality(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrRoleUnresolved)
}

// Result summarizes a single entity clean for stage observability.
type Result struct {
	Entity            string
	RowsIn            int
	RowsOut           int
	DuplicatesRemoved int
	CoercionFailures  int
	CellsImputed      int
}

// Cleaner runs the canonical per-entity normalization pipeline.
type Cleaner struct {
	logger *zap.Logger
}

// NewCleaner creates a Cleaner instance.
func NewCleaner(logger *zap.Logger) (*Cleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Cleaner{logger: logger}, nil
}

// genericNumericColumns is the fixed candidate list of numeric column
// names used when no entity-specific policy has been authored.
var genericNumericColumns = []string{"subtotal", "tax_paid", "order_total", "price", "cost", "tax_rate", "quantity", "unit_price"}

// Clean applies the fixed composition to a raw table, parameterized by
// the entity's policy: normalize names, rename aliases, coerce date
// columns, coerce declared numeric columns and zero-fill them,
// deduplicate on the identifier column, impute remaining gaps, then
// validate. Each step is a pure function; the input table is never
// mutated.
func (c *Cleaner) Clean(t table.Table, policy CleaningPolicy) (table.Table, Result, error) {
	result := Result{Entity: policy.Entity, RowsIn: t.RowCount()}

	if err := policy.Validate(); err != nil {
		return table.Table{}, result, err
	}

	out := NormalizeColumns(t)
	out = Rename(out, policy.Rename)

	out = CoerceDates(out, DateColumns(out))

	// Money and quantity nulls default to zero rather than a non-numeric
	// sentinel: a missing amount is more safely treated as zero.
	if len(policy.NumericColumns) > 0 {
		before := out.NullCount()
		out = CoerceNumerics(out, policy.NumericColumns)
		result.CoercionFailures = out.NullCount() - before

		zeroFill := make(map[string]FillStrategy, len(policy.NumericColumns))
		for _, col := range policy.NumericColumns {
			zeroFill[col] = Literal(float64(0))
		}
		out = Impute(out, zeroFill)
	}

	if policy.IDColumn != "" && out.HasColumn(policy.IDColumn) {
		var removed int
		out, removed = Deduplicate(out, []string{policy.IDColumn})
		result.DuplicatesRemoved = removed
		if removed > 0 {
			c.logger.Info("Removed duplicate rows",
				zap.String("entity", policy.Entity),
				zap.String("key", policy.IDColumn),
				zap.Int("removed", removed))
		}
	}

	nullsBefore := out.NullCount()
	if len(policy.Fill) > 0 {
		out = Impute(out, policy.Fill)
	}
	out = Impute(out, nil)
	result.CellsImputed = nullsBefore - out.NullCount()

	if policy.Derive != nil {
		out = policy.Derive(out)
	}

	result.RowsOut = out.RowCount()

	if err := c.validate(out, policy); err != nil {
		return table.Table{}, result, err
	}

	c.logger.Info("Entity cleaned",
		zap.String("entity", policy.Entity),
		zap.Int("rowsIn", result.RowsIn),
		zap.Int("rowsOut", result.RowsOut),
		zap.Int("duplicatesRemoved", result.DuplicatesRemoved),
		zap.Int("cellsImputed", result.CellsImputed))

	return out, result, nil
}

// CleanGeneric is the schema-agnostic variant for entities without a
// bespoke policy: date columns inferred by name pattern, a fixed
// candidate list of numeric columns, deduplication on the first column
// literally named "id" or ending in "_id", and default imputation.
func (c *Cleaner) CleanGeneric(t table.Table, entity string) (table.Table, Result, error) {
	result := Result{Entity: entity, RowsIn: t.RowCount()}

	out := NormalizeColumns(t)
	out = CoerceDates(out, DateColumns(out))

	before := out.NullCount()
	out = CoerceNumerics(out, genericNumericColumns)
	result.CoercionFailures = out.NullCount() - before

	if idCol := firstIDColumn(out); idCol != "" {
		var removed int
		out, removed = Deduplicate(out, []string{idCol})
		result.DuplicatesRemoved = removed
	}

	nullsBefore := out.NullCount()
	out = Impute(out, nil)
	result.CellsImputed = nullsBefore - out.NullCount()
	result.RowsOut = out.RowCount()

	if out.Empty() {
		return table.Table{}, result, &ValidationError{Entity: entity, Reason: "table is empty"}
	}

	c.logger.Info("Entity cleaned (generic)",
		zap.String("entity", entity),
		zap.Int("rowsIn", result.RowsIn),
		zap.Int("rowsOut", result.RowsOut),
		zap.Int("duplicatesRemoved", result.DuplicatesRemoved))

	return out, result, nil
}

// validate confirms required columns (and role-satisfiable aliases) are
// present and the table is non-empty.
func (c *Cleaner) validate(t table.Table, policy CleaningPolicy) error {
	if t.Empty() {
		return &ValidationError{Entity: policy.Entity, Reason: "table is empty"}
	}

	var missing []string
	for _, col := range policy.RequiredColumns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			Entity: policy.Entity,
			Reason: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		}
	}

	for _, role := range policy.RequiredRoles {
		if _, err := ResolveRole(t, role); err != nil {
			return &ValidationError{
				Entity: policy.Entity,
				Reason: fmt.Sprintf("required column missing: %v", err),
			}
		}
	}

	return nil
}

// firstIDColumn returns the first column named "id" or ending in "_id".
func firstIDColumn(t table.Table) string {
	for _, col := range t.Columns {
		if col == "id" || strings.HasSuffix(col, "_id") {
			return col
		}
	}
	return ""
}
