package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/lapu-lapu-poc/server/internal/model"
)

type TransferToHumanInput struct {
	Reason     string `json:"reason"`
	Department string `json:"department"`
}

var transferToHumanParams = map[string]*schema.ParameterInfo{
	"reason": {
		Type:     schema.String,
		Desc:     "Why the caller needs a person, e.g. prescription question or complaint escalation.",
		Required: true,
	},
	"department": {
		Type: schema.String,
		Desc: "Team to route to, e.g. pharmacist, customer care, billing.",
	},
}

func newTransferToHumanTool(calls CallLog) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name:        model.ToolTransferToHuman,
			Desc:        "Hand the call over to a human team member when the caller asks for one or the request is outside what you can handle.",
			ParamsOneOf: schema.NewParamsOneOfByParams(transferToHumanParams),
		},
		func(ctx context.Context, in *TransferToHumanInput) (string, error) {
			department := strings.TrimSpace(in.Department)
			callID := CallIDFrom(ctx)
			calls.Append(model.EventTransferRequested, callID, model.TransferRequest{
				Reason:     strings.TrimSpace(in.Reason),
				Department: department,
				CallID:     callID,
			})
			return transferMessage(department), nil
		},
	)
}
