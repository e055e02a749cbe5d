// Package observers hooks logging and metrics into tool execution.
package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/tool"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
	logx "github.com/lapu-lapu-poc/server/pkg/logger"
)

// newToolHandler logs each lifecycle stage and counts the outcome.
func newToolHandler(m *Metrics) *callbackHelper.ToolCallbackHandler {
	log := logx.Component("tools")
	return &callbackHelper.ToolCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *tool.CallbackInput) context.Context {
			log.Debug().Str("tool", info.Name).Str("args", input.ArgumentsInJSON).Msg("tool start")
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *tool.CallbackOutput) context.Context {
			log.Info().Str("tool", info.Name).Int("response_len", len(output.Response)).Msg("tool end")
			m.ToolCall(info.Name, OutcomeOK)
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			log.Error().Err(err).Str("tool", info.Name).Msg("tool failed")
			m.ToolCall(info.Name, OutcomeError)
			return ctx
		},
	}
}

// NewToolCallbacks returns a callbacks.Handler that logs tool lifecycle
// events and records them on m. m may be nil.
func NewToolCallbacks(m *Metrics) einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		Tool(newToolHandler(m)).
		Handler()
}
