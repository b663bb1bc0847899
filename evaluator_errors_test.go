package store

import (
	"errors"
	"testing"
)

func TestEvalFailureAnnotates(t *testing.T) {
	base := errors.New("boom")
	err := evalFailure(EngineExpr, PhaseEval, "len(product.items)", "v3", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != EngineExpr || evalErr.Phase != PhaseEval || evalErr.Version != "v3" {
		t.Fatalf("unexpected metadata %+v", evalErr)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected base error in chain")
	}
	want := `store: expr eval "len(product.items)" at v3: boom`
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestEvalFailureCompileOmitsVersion(t *testing.T) {
	err := evalFailure(EngineCEL, PhaseCompile, "size(", "", errors.New("syntax"))
	if err.Error() != `store: cel compile "size(": syntax` {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestEvalFailureFillsExistingWithoutMutating(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{Engine: EngineExpr, Phase: PhaseCompile, Err: base}

	err := evalFailure(EngineCEL, PhaseEval, "rule", "v9", existing)

	var merged *EvaluationError
	if !errors.As(err, &merged) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if merged.Engine != EngineExpr || merged.Phase != PhaseCompile {
		t.Fatalf("set fields must be kept, got %+v", merged)
	}
	if merged.Expr != "rule" || merged.Version != "v9" {
		t.Fatalf("empty fields must be filled, got %+v", merged)
	}
	if existing.Expr != "" {
		t.Fatalf("original error was mutated")
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected base error in chain")
	}
}

func TestEvalFailureNil(t *testing.T) {
	if evalFailure(EngineExpr, PhaseEval, "x", "v1", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
