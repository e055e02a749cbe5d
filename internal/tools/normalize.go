package tools

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/bytedance/sonic"
	errx "github.com/lapu-lapu-poc/server/internal/core/error"
	"github.com/lapu-lapu-poc/server/internal/model"
)

var (
	ErrEmptyPayload = errors.New("empty tool call payload")
	ErrMissingName  = errors.New("tool call has no name")
)

// toolCallPayload is the union of both invocation shapes the platform sends:
// {name, args, call:{call_id}} and {tool_name, arguments}.
type toolCallPayload struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
	Call *struct {
		CallID string `json:"call_id"`
	} `json:"call"`

	ToolName  string          `json:"tool_name"`
	Arguments json.RawMessage `json:"arguments"`
	CallID    string          `json:"call_id"`
}

// Normalize turns a raw tool-call body into the canonical invocation.
// Arguments may be an object or a JSON-encoded string of one.
func Normalize(body []byte) (model.ToolInvocation, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return model.ToolInvocation{}, errx.Validation(ErrEmptyPayload)
	}

	var p toolCallPayload
	if err := sonic.Unmarshal(body, &p); err != nil {
		return model.ToolInvocation{}, errx.Validation(err)
	}

	inv := model.ToolInvocation{Name: strings.TrimSpace(p.Name), CallID: p.CallID}
	raw := p.Args
	if inv.Name == "" {
		inv.Name = strings.TrimSpace(p.ToolName)
	}
	if len(raw) == 0 {
		raw = p.Arguments
	}
	if p.Call != nil && p.Call.CallID != "" {
		inv.CallID = p.Call.CallID
	}
	if inv.Name == "" {
		return model.ToolInvocation{}, errx.Validation(ErrMissingName)
	}

	args, err := decodeArgs(raw)
	if err != nil {
		return model.ToolInvocation{}, errx.Validation(err)
	}
	inv.Args = args
	return inv, nil
}

func decodeArgs(raw []byte) (map[string]any, error) {
	args := map[string]any{}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return args, nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var encoded string
		if err := sonic.UnmarshalString(trimmed, &encoded); err != nil {
			return nil, err
		}
		if strings.TrimSpace(encoded) == "" {
			return args, nil
		}
		trimmed = encoded
	}
	if err := sonic.UnmarshalString(trimmed, &args); err != nil {
		return nil, err
	}
	return args, nil
}
