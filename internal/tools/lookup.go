package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/lapu-lapu-poc/server/internal/catalog"
	"github.com/lapu-lapu-poc/server/internal/model"
)

type LookupProductInput struct {
	Query string `json:"query"`
}

var lookupProductParams = map[string]*schema.ParameterInfo{
	"query": {
		Type:     schema.String,
		Desc:     "What the caller asked for: brand name, generic name, or condition, e.g. \"paracetamol\" or \"biogesic 500\".",
		Required: true,
	},
}

func newLookupProductTool(products Catalog) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name:        model.ToolLookupProduct,
			Desc:        "Look up a medicine or health product in the pharmacy catalog. Returns price, PWD/Senior price, and usage details ready to be read to the caller.",
			ParamsOneOf: schema.NewParamsOneOfByParams(lookupProductParams),
		},
		func(ctx context.Context, in *LookupProductInput) (string, error) {
			query := strings.TrimSpace(in.Query)
			if query == "" {
				return askProductMessage, nil
			}

			matches := products.Search(query)
			switch len(matches) {
			case 0:
				return noMatchMessage(query), nil
			case 1:
				return catalog.FormatDetailsForVoice(matches[0]), nil
			default:
				return multipleMatchesMessage(query, matches), nil
			}
		},
	)
}
