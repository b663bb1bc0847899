package store

import (
	"errors"
	"fmt"
)

// ErrEmptyExpression is returned for blank selector expressions.
var ErrEmptyExpression = errors.New("store: expression must not be empty")

// Phases reported by EvaluationError.
const (
	PhaseCompile = "compile"
	PhaseEval    = "eval"
)

// EvaluationError annotates an engine failure with the expression and the
// tree version it ran against.
type EvaluationError struct {
	Engine  string
	Phase   string
	Expr    string
	Version string
	Err     error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("store: %s %s %q", e.Engine, e.Phase, e.Expr)
	if e.Version != "" {
		msg += " at " + e.Version
	}
	return msg + ": " + fmt.Sprint(e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// evalFailure wraps err in an EvaluationError. An EvaluationError already in
// the chain is copied with its empty fields filled in.
func evalFailure(engine, phase, expr, version string, err error) error {
	if err == nil {
		return nil
	}
	var existing *EvaluationError
	if errors.As(err, &existing) {
		merged := *existing
		if merged.Engine == "" {
			merged.Engine = engine
		}
		if merged.Phase == "" {
			merged.Phase = phase
		}
		if merged.Expr == "" {
			merged.Expr = expr
		}
		if merged.Version == "" {
			merged.Version = version
		}
		return &merged
	}
	return &EvaluationError{
		Engine:  engine,
		Phase:   phase,
		Expr:    expr,
		Version: version,
		Err:     err,
	}
}
