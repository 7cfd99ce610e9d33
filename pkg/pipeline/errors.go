// pkg/pipeline/errors.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jafshop/medallion/pkg/cleaner"
)

// ErrorKind categorizes pipeline errors by how they should be handled.
type ErrorKind int

const (
	// ErrorKindTransient covers remote fetch failures and malformed
	// input units; retried or skipped, never aborts the whole run.
	ErrorKindTransient ErrorKind = iota
	// ErrorKindDataQuality covers validation failures and unresolved
	// required roles; aborts only the affected entity's stage, since
	// retrying without correcting the source will not help.
	ErrorKindDataQuality
	// ErrorKindConfig covers missing credentials or source folders;
	// handled at the ingestion boundary, optionally via synthetic
	// fallback.
	ErrorKindConfig
	// ErrorKindFatal covers pipeline-level failures (cannot create an
	// output directory, disk full); propagates and aborts the run.
	ErrorKindFatal
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindTransient:
		return "Transient"
	case ErrorKindDataQuality:
		return "DataQuality"
	case ErrorKindConfig:
		return "Config"
	case ErrorKindFatal:
		return "Fatal"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Classify determines the kind of an error.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindTransient
	case cleaner.IsDataQuality(err):
		return ErrorKindDataQuality
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorKindTransient
	case strings.Contains(err.Error(), "synthetic fallback disabled"),
		strings.Contains(err.Error(), "credentials"):
		return ErrorKindConfig
	case strings.Contains(err.Error(), "connection"),
		strings.Contains(err.Error(), "timeout"),
		strings.Contains(err.Error(), "temporary"):
		return ErrorKindTransient
	default:
		return ErrorKindFatal
	}
}
