package tool

import (
	"context"

	"github.com/expr-lang/expr"
	"github.com/invopop/jsonschema"
)

type (
	CalculatorRequest struct {
		Expression string `json:"expression" jsonschema_description:"The arithmetic expression to evaluate, e.g. '23 * 17 + 4'"`
	}

	CalculatorResponse struct {
		Expression string `json:"expression"`
		Result     any    `json:"result"`
	}

	calculatorTool struct{}
)

var _ Tool = (*calculatorTool)(nil)

// NewCalculatorTool evaluates arithmetic expressions. Expressions are
// compiled and run in an empty environment, so there is nothing to reach
// beyond the expression itself.
func NewCalculatorTool() Tool {
	return &calculatorTool{}
}

func (t *calculatorTool) Name() string {
	return "calculator"
}

func (t *calculatorTool) Description() string {
	return "Use when you need to compute a numeric result from an arithmetic expression."
}

func (t *calculatorTool) InputSchema() *jsonschema.Schema {
	return schemaFor[CalculatorRequest]()
}

func (t *calculatorTool) Execute(ctx context.Context, params map[string]any) *Result {
	var req CalculatorRequest
	if err := decodeParams(params, &req); err != nil {
		return NewErrorResult(err)
	}
	if req.Expression == "" {
		return NewErrorResultf("expression is required")
	}

	program, err := expr.Compile(req.Expression)
	if err != nil {
		return NewErrorResultf("invalid expression: %v", err)
	}

	value, err := expr.Run(program, nil)
	if err != nil {
		return NewErrorResultf("evaluation failed: %v", err)
	}

	return NewResult(&CalculatorResponse{
		Expression: req.Expression,
		Result:     value,
	})
}
