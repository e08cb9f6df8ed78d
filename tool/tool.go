package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/lumon-ai/agentloop/errors"
	"github.com/mitchellh/mapstructure"
)

type (
	// Tool is a capability the agent can invoke by name. Parameters arrive as
	// a loose map because they are parsed out of model output; each tool
	// decodes them into its own request type.
	Tool interface {
		Name() string
		Description() string
		InputSchema() *jsonschema.Schema
		Execute(ctx context.Context, params map[string]any) *Result
	}

	// Result is the uniform outcome of a tool execution. A failed execution
	// is still a Result, not an error: the agent feeds failures back into the
	// transcript so the model can recover.
	Result struct {
		Success bool   `json:"success"`
		Data    any    `json:"data,omitempty"`
		Error   string `json:"error,omitempty"`
		Message string `json:"message,omitempty"`
	}
)

func NewResult(data any) *Result {
	return &Result{Success: true, Data: data}
}

func NewErrorResult(err error) *Result {
	return &Result{Success: false, Error: err.Error()}
}

func NewErrorResultf(format string, args ...any) *Result {
	return &Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Flatten renders the result as a single JSON line for the transcript.
func (r *Result) Flatten() string {
	out, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":%q}`, err.Error())
	}
	return string(out)
}

func schemaFor[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	return reflector.Reflect(new(T))
}

// decodeParams maps the loose params into a typed request, honoring the
// request's json tags. Unknown keys are ignored, matching how the model tends
// to over-specify.
func decodeParams[T any](params map[string]any, req *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           req,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to build params decoder")
	}
	if err := decoder.Decode(params); err != nil {
		return errors.Wrapf(errors.ErrInvalidParams, "%v", err)
	}
	return nil
}
