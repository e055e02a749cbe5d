// Package tools answers the voice agent's mid-call tool invocations with
// lines the agent can speak back to the caller.
package tools

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"

	"github.com/bytedance/sonic"
	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	errx "github.com/lapu-lapu-poc/server/internal/core/error"
	"github.com/lapu-lapu-poc/server/internal/fulfillment"
	"github.com/lapu-lapu-poc/server/internal/model"
	"github.com/lapu-lapu-poc/server/internal/observers"
	logx "github.com/lapu-lapu-poc/server/pkg/logger"
	"github.com/spf13/cast"
)

// runType tags callback RunInfo for tools served to the call platform.
const runType = "RetellTool"

type Catalog interface {
	Search(query string) []model.Product
}

type Ledger interface {
	CreateOrder(in fulfillment.OrderInput) model.Order
	LogComplaint(in fulfillment.ComplaintInput) model.Complaint
}

type CallLog interface {
	Append(event, callID string, data any) model.CallLogEntry
}

type registered struct {
	tool   tool.InvokableTool
	info   *schema.ToolInfo
	params map[string]*schema.ParameterInfo
}

// Dispatcher routes a normalized invocation to its tool. Dispatch never
// returns an error; every failure becomes a spoken fallback line.
type Dispatcher struct {
	tools     map[string]registered
	callbacks []einocb.Handler
	metrics   *observers.Metrics
}

type Option func(*Dispatcher)

// WithCallbacks adds eino callback handlers fired around every tool run.
func WithCallbacks(handlers ...einocb.Handler) Option {
	return func(d *Dispatcher) { d.callbacks = append(d.callbacks, handlers...) }
}

// WithMetrics counts invocations that never reach a tool.
func WithMetrics(m *observers.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func NewDispatcher(products Catalog, ledger Ledger, calls CallLog, opts ...Option) *Dispatcher {
	d := &Dispatcher{tools: map[string]registered{}}
	d.register(newLookupProductTool(products), lookupProductParams)
	d.register(newCreateOrderTool(products, ledger), createOrderParams)
	d.register(newLogComplaintTool(ledger), logComplaintParams)
	d.register(newTransferToHumanTool(calls), transferToHumanParams)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) register(t tool.InvokableTool, params map[string]*schema.ParameterInfo) {
	info, err := t.Info(context.Background())
	if err != nil {
		// Infos are static literals; this only fires on a programming error.
		panic(fmt.Sprintf("tools: invalid tool definition: %v", err))
	}
	d.tools[info.Name] = registered{tool: t, info: info, params: params}
}

// Tools returns the registered tool definitions sorted by name.
func (d *Dispatcher) Tools() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(d.tools))
	for _, r := range d.tools {
		infos = append(infos, r.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// HandleRaw normalizes a raw request body and dispatches it.
func (d *Dispatcher) HandleRaw(ctx context.Context, body []byte) string {
	inv, err := Normalize(body)
	if err != nil {
		logx.Warn().Err(err).Str("kind", string(errx.KindOf(err))).Msg("invalid tool call payload")
		d.metrics.ToolCall("", observers.OutcomeRejected)
		return FallbackMessage
	}
	return d.Dispatch(ctx, inv)
}

// Dispatch runs inv and returns the line to speak.
func (d *Dispatcher) Dispatch(ctx context.Context, inv model.ToolInvocation) string {
	r, ok := d.tools[inv.Name]
	if !ok {
		err := errx.UnknownTool(inv.Name)
		logx.Warn().Err(err).Str("tool", inv.Name).Str("call_id", inv.CallID).Msg("unknown tool requested")
		d.metrics.ToolCall(inv.Name, observers.OutcomeUnknown)
		return UnknownToolMessage
	}

	args, err := sonic.MarshalString(coerceArgs(inv.Args, r.params))
	if err != nil {
		logx.Error().Err(err).Str("tool", inv.Name).Msg("failed to encode tool arguments")
		d.metrics.ToolCall(inv.Name, observers.OutcomeError)
		return FallbackMessage
	}

	ctx = WithCallID(ctx, inv.CallID)
	ctx = einocb.InitCallbacks(ctx, &einocb.RunInfo{
		Name:      inv.Name,
		Type:      runType,
		Component: components.ComponentOfTool,
	}, d.callbacks...)
	ctx = einocb.OnStart(ctx, &tool.CallbackInput{ArgumentsInJSON: args})

	out, err := run(ctx, r.tool, args)
	if err != nil {
		einocb.OnError(ctx, err)
		return FallbackMessage
	}
	einocb.OnEnd(ctx, &tool.CallbackOutput{Response: out})
	return out
}

func run(ctx context.Context, t tool.InvokableTool, args string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool panicked: %v\n%s", rec, debug.Stack())
		}
	}()
	return t.InvokableRun(ctx, args)
}

// coerceArgs converts loosely typed platform arguments ("3", "true", 1) to the
// declared parameter types. Values that cannot be converted are dropped so
// the tool sees its zero-value default.
func coerceArgs(args map[string]any, params map[string]*schema.ParameterInfo) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		p, ok := params[k]
		if !ok || v == nil {
			continue
		}
		var (
			converted any
			err       error
		)
		switch p.Type {
		case schema.Integer:
			converted, err = toInt(v)
		case schema.Number:
			converted, err = cast.ToFloat64E(v)
		case schema.Boolean:
			converted, err = cast.ToBoolE(v)
		case schema.String:
			converted, err = cast.ToStringE(v)
		default:
			converted = v
		}
		if err != nil {
			logx.Debug().Err(err).Str("arg", k).Msg("dropping unconvertible tool argument")
			continue
		}
		out[k] = converted
	}
	return out
}

// toInt accepts "3", 3, and 3.0. cast.ToIntE rejects "3.0" so strings fall
// back to a float parse.
func toInt(v any) (int, error) {
	n, err := cast.ToIntE(v)
	if err == nil {
		return n, nil
	}
	f, ferr := cast.ToFloat64E(v)
	if ferr != nil {
		return 0, err
	}
	return int(f), nil
}
