package model

// ToolInvocation is the canonical shape of a tool call after normalization.
type ToolInvocation struct {
	Name   string         `json:"name"`
	Args   map[string]any `json:"args"`
	CallID string         `json:"call_id"`
}

// ToolResponse is what the agent platform expects back; Result is spoken verbatim.
type ToolResponse struct {
	Result string `json:"result"`
}

// Tool names the agent is configured with.
const (
	ToolLookupProduct   = "lookup_product"
	ToolCreateOrder     = "create_order"
	ToolLogComplaint    = "log_complaint"
	ToolTransferToHuman = "transfer_to_human"
)
