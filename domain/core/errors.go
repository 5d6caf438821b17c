package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Data errors
	ErrDataUnavailable    = errors.New("data unavailable")
	ErrUnknownProtocol    = fmt.Errorf("%w: unknown protocol", ErrDataUnavailable)
	ErrUnknownSplit       = fmt.Errorf("%w: unknown split", ErrDataUnavailable)
	ErrUnknownClass       = fmt.Errorf("%w: unknown class", ErrDataUnavailable)
	ErrUnknownVariable    = fmt.Errorf("%w: unknown variable", ErrDataUnavailable)
	ErrEmptyClass         = errors.New("empty class")
	ErrDegenerateVariance = errors.New("degenerate variance")

	// Selection errors
	ErrInvalidSelection = errors.New("invalid selection")

	// Shape errors
	ErrShapeMismatch = errors.New("shape mismatch")
)

// NewDataUnavailableError reports a protocol/split/class/variable combination the
// data source cannot serve. kind is one of the ErrUnknown* sentinels.
func NewDataUnavailableError(kind error, name string) error {
	return fmt.Errorf("%w %q", kind, name)
}

func NewEmptyClassError(protocol, split, class string) error {
	return fmt.Errorf("%w: class %q has no %s samples for protocol %q", ErrEmptyClass, class, split, protocol)
}

// VarianceError reports a constant column in pooled training data. Name is empty when
// the reporter only knows the position.
type VarianceError struct {
	Column int
	Name   string
	Err    error
}

func (e *VarianceError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%v: column %d has zero variance in pooled training data", e.Err, e.Column)
	}
	return fmt.Sprintf("%v: variable %q has zero variance in pooled training data", e.Err, e.Name)
}

func (e *VarianceError) Unwrap() error {
	return e.Err
}

func NewDegenerateVarianceError(column int, name string) error {
	return &VarianceError{Column: column, Name: name, Err: ErrDegenerateVariance}
}

func NewInvalidSelectionError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidSelection, field, reason)
}

// NewEvaluationError annotates a failure with the protocol and variable subset that
// produced it. The cause stays reachable through errors.Is.
func NewEvaluationError(protocol string, variables []string, err error) error {
	return fmt.Errorf("protocol %q, variables [%s]: %w", protocol, strings.Join(variables, " + "), err)
}

// Error checking helpers
func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}

func IsDegenerateVariance(err error) bool {
	return errors.Is(err, ErrDegenerateVariance)
}

func IsEmptyClass(err error) bool {
	return errors.Is(err, ErrEmptyClass)
}

func IsInvalidSelection(err error) bool {
	return errors.Is(err, ErrInvalidSelection)
}

// Kind names the failure category for user-facing diagnostics.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsInvalidSelection(err):
		return "InvalidSelection"
	case IsDataUnavailable(err):
		return "DataUnavailable"
	case IsDegenerateVariance(err):
		return "DegenerateVariance"
	case IsEmptyClass(err):
		return "EmptyClass"
	default:
		return "Internal"
	}
}
