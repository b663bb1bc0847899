//go:build !js_eval

package store

// NewJSEvaluator returns nil in builds without the js_eval tag. Use
// NewEvaluator to get ErrNoEvaluator instead.
func NewJSEvaluator(...EngineOption) Evaluator {
	return nil
}

func jsEvaluatorAvailable() bool { return false }
