// pkg/cleaner/impute.go
package cleaner

import (
	"fmt"
	"sort"
	"time"

	"github.com/jafshop/medallion/pkg/table"
)

// UnknownSentinel fills missing text and categorical cells.
const UnknownSentinel = "Unknown"

// FillKind enumerates the supported missing-value fill strategies.
type FillKind int

const (
	// FillTypeDefault fills numeric columns with zero and text columns
	// with the Unknown sentinel.
	FillTypeDefault FillKind = iota
	// FillLiteral fills with a caller-supplied literal value.
	FillLiteral
	// FillMean fills with the column arithmetic mean, ignoring nils.
	FillMean
	// FillMedian fills with the column median, ignoring nils.
	FillMedian
	// FillMode fills with the most frequent non-nil value.
	FillMode
)

// String returns the strategy keyword as used in policy files.
func (k FillKind) String() string {
	switch k {
	case FillTypeDefault:
		return "default"
	case FillLiteral:
		return "literal"
	case FillMean:
		return "mean"
	case FillMedian:
		return "median"
	case FillMode:
		return "mode"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// FillStrategy is one validated per-column imputation rule.
type FillStrategy struct {
	Kind  FillKind
	Value any // only set for FillLiteral
}

// Literal builds a strategy filling with a fixed value.
func Literal(v any) FillStrategy { return FillStrategy{Kind: FillLiteral, Value: v} }

// Mean builds a strategy filling with the column arithmetic mean.
func Mean() FillStrategy { return FillStrategy{Kind: FillMean} }

// Median builds a strategy filling with the column median.
func Median() FillStrategy { return FillStrategy{Kind: FillMedian} }

// Mode builds a strategy filling with the most frequent non-nil value.
func Mode() FillStrategy { return FillStrategy{Kind: FillMode} }

// Impute fills nil cells according to the per-column policy. A nil or
// empty policy applies the default: numeric-typed columns fill with
// zero, text and categorical columns with the Unknown sentinel, and
// date columns are left untouched. Policy keys for columns not present
// in the table are ignored. Imputation never changes the row count and
// never fails: statistics over an all-nil column degrade to the type
// default.
func Impute(t table.Table, policy map[string]FillStrategy) table.Table {
	out := t.Clone()

	if len(policy) == 0 {
		for _, col := range out.Columns {
			fillDefault(out, col)
		}
		return out
	}

	for col, strategy := range policy {
		if !out.HasColumn(col) {
			continue
		}
		applyStrategy(out, col, strategy)
	}

	return out
}

func applyStrategy(t table.Table, col string, strategy FillStrategy) {
	switch strategy.Kind {
	case FillLiteral:
		fillWith(t, col, strategy.Value)
	case FillMean:
		if mean, ok := columnMean(t, col); ok {
			fillWith(t, col, mean)
		} else {
			fillDefault(t, col)
		}
	case FillMedian:
		if median, ok := columnMedian(t, col); ok {
			fillWith(t, col, median)
		} else {
			fillDefault(t, col)
		}
	case FillMode:
		if mode, ok := columnMode(t, col); ok {
			fillWith(t, col, mode)
		} else {
			fillWith(t, col, UnknownSentinel)
		}
	default:
		fillDefault(t, col)
	}
}

// fillDefault applies the type-aware default fill to one column.
func fillDefault(t table.Table, col string) {
	switch inferColumnType(t, col) {
	case columnNumeric:
		fillWith(t, col, float64(0))
	case columnDate:
		// missing dates stay null rather than getting a sentinel
	default:
		fillWith(t, col, UnknownSentinel)
	}
}

func fillWith(t table.Table, col string, value any) {
	for _, row := range t.Rows {
		if v, ok := row[col]; !ok || v == nil {
			row[col] = value
		}
	}
}

type columnType int

const (
	columnText columnType = iota
	columnNumeric
	columnDate
)

// inferColumnType classifies a column by its non-nil values: numeric if
// every non-nil cell is numeric, date if every non-nil cell is a
// time.Time, text otherwise. An all-nil column is text.
func inferColumnType(t table.Table, col string) columnType {
	sawValue := false
	allNumeric := true
	allDates := true

	for _, row := range t.Rows {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		sawValue = true
		if !table.IsNumeric(v) {
			allNumeric = false
		}
		if _, isTime := v.(time.Time); !isTime {
			allDates = false
		}
	}

	switch {
	case sawValue && allNumeric:
		return columnNumeric
	case sawValue && allDates:
		return columnDate
	default:
		return columnText
	}
}

func columnValues(t table.Table, col string) []float64 {
	var values []float64
	for _, row := range t.Rows {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		f, err := table.AsFloat(v)
		if err != nil {
			continue
		}
		values = append(values, f)
	}
	return values
}

func columnMean(t table.Table, col string) (float64, bool) {
	values := columnValues(t, col)
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func columnMedian(t table.Table, col string) (float64, bool) {
	values := columnValues(t, col)
	if len(values) == 0 {
		return 0, false
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2, true
	}
	return values[mid], true
}

// columnMode returns the most frequent non-nil value; ties resolve to
// the first-seen value in row order.
func columnMode(t table.Table, col string) (any, bool) {
	counts := make(map[string]int)
	firstSeen := make(map[string]any)
	var order []string

	for _, row := range t.Rows {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		key := table.AsString(v)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
			firstSeen[key] = v
		}
		counts[key]++
	}

	if len(order) == 0 {
		return nil, false
	}

	best := order[0]
	for _, key := range order[1:] {
		if counts[key] > counts[best] {
			best = key
		}
	}
	return firstSeen[best], true
}
