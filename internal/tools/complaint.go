package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/lapu-lapu-poc/server/internal/fulfillment"
	"github.com/lapu-lapu-poc/server/internal/model"
	logx "github.com/lapu-lapu-poc/server/pkg/logger"
)

type LogComplaintInput struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	ComplaintType string `json:"complaint_type"`
	Description   string `json:"description"`
}

var logComplaintParams = map[string]*schema.ParameterInfo{
	"customer_name": {
		Type:     schema.String,
		Desc:     "Caller's name.",
		Required: true,
	},
	"customer_phone": {
		Type:     schema.String,
		Desc:     "Number our customer care team can call back.",
		Required: true,
	},
	"complaint_type": {
		Type:     schema.String,
		Desc:     "Short category, e.g. delivery, product_quality, service, billing.",
		Required: true,
	},
	"description": {
		Type:     schema.String,
		Desc:     "The caller's concern in their own words.",
		Required: true,
	},
}

func newLogComplaintTool(ledger Ledger) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name:        model.ToolLogComplaint,
			Desc:        "Record a customer complaint or concern so the customer care team can follow up.",
			ParamsOneOf: schema.NewParamsOneOfByParams(logComplaintParams),
		},
		func(ctx context.Context, in *LogComplaintInput) (string, error) {
			c := ledger.LogComplaint(fulfillment.ComplaintInput{
				CallID:        CallIDFrom(ctx),
				CustomerName:  strings.TrimSpace(in.CustomerName),
				CustomerPhone: strings.TrimSpace(in.CustomerPhone),
				ComplaintType: strings.TrimSpace(in.ComplaintType),
				Description:   strings.TrimSpace(in.Description),
			})
			logx.Info().Str("complaint_id", c.ID).Str("call_id", c.CallID).Str("type", c.ComplaintType).Msg("complaint logged")
			return complaintConfirmation(c), nil
		},
	)
}
