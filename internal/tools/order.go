package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	errx "github.com/lapu-lapu-poc/server/internal/core/error"
	"github.com/lapu-lapu-poc/server/internal/fulfillment"
	"github.com/lapu-lapu-poc/server/internal/model"
	logx "github.com/lapu-lapu-poc/server/pkg/logger"
)

type CreateOrderInput struct {
	ProductName     string `json:"product_name"`
	Quantity        int    `json:"quantity"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	DeliveryAddress string `json:"delivery_address"`
	IsPWDSenior     bool   `json:"is_pwd_senior"`
}

var createOrderParams = map[string]*schema.ParameterInfo{
	"product_name": {
		Type:     schema.String,
		Desc:     "Product name as confirmed with the caller, preferably the exact name returned by lookup_product.",
		Required: true,
	},
	"quantity": {
		Type:     schema.Integer,
		Desc:     "Number of units. Defaults to 1.",
		Required: true,
	},
	"customer_name": {
		Type:     schema.String,
		Desc:     "Caller's full name.",
		Required: true,
	},
	"customer_phone": {
		Type:     schema.String,
		Desc:     "Mobile number for order confirmation, e.g. 0917 123 4567.",
		Required: true,
	},
	"delivery_address": {
		Type: schema.String,
		Desc: "Delivery address, if the caller wants the order delivered.",
	},
	"is_pwd_senior": {
		Type: schema.Boolean,
		Desc: "True when the caller has a PWD or Senior Citizen ID and qualifies for the discounted price.",
	},
}

func newCreateOrderTool(products Catalog, ledger Ledger) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name:        model.ToolCreateOrder,
			Desc:        "Place an order for a catalog product once the caller has confirmed the product, quantity, and contact details.",
			ParamsOneOf: schema.NewParamsOneOfByParams(createOrderParams),
		},
		func(ctx context.Context, in *CreateOrderInput) (string, error) {
			product, err := orderProduct(products, in.ProductName)
			if err != nil {
				if errx.KindOf(err) == errx.KindNotFound {
					logx.Debug().Err(err).Str("call_id", CallIDFrom(ctx)).Msg("order product not resolved")
					return confirmProductMessage, nil
				}
				return "", err
			}

			order := ledger.CreateOrder(fulfillment.OrderInput{
				CallID:          CallIDFrom(ctx),
				Product:         product,
				Quantity:        in.Quantity,
				CustomerName:    strings.TrimSpace(in.CustomerName),
				CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
				DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
				IsPWDSenior:     in.IsPWDSenior,
			})
			logx.Info().
				Str("order_id", order.ID).
				Str("call_id", order.CallID).
				Str("product", order.ProductName).
				Int("quantity", order.Quantity).
				Str("total", order.TotalPrice.String()).
				Msg("order created")
			return orderConfirmation(order), nil
		},
	)
}

// orderProduct picks the best catalog match for name. A blank name or an
// empty result is reported as errx.KindNotFound.
func orderProduct(products Catalog, name string) (model.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Product{}, errx.NotFound("order product name is empty")
	}
	matches := products.Search(name)
	if len(matches) == 0 {
		return model.Product{}, errx.NotFound("no catalog product matches " + name)
	}
	return matches[0], nil
}
