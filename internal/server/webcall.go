package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	errx "github.com/lapu-lapu-poc/server/internal/core/error"
	"github.com/lapu-lapu-poc/server/internal/ratelimit"
	logx "github.com/lapu-lapu-poc/server/pkg/logger"
)

const webCallSource = "poc-test"

type createWebCallRequest struct {
	AgentID string `json:"agent_id" binding:"required"`
}

func (s *Server) createWebCall(c *gin.Context) {
	var req createWebCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.deps.Metrics.WebCallRejected("invalid_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "agent_id is required",
			"hint":  "Get your agent_id from the Retell dashboard after creating an agent",
		})
		return
	}

	ctx := c.Request.Context()
	identity := ratelimit.IdentityFromRequest(c.Request)
	admission, err := s.deps.Limiter.Admit(ctx, identity)
	if err != nil {
		s.rejectWebCall(c, identity, err)
		return
	}

	call, err := s.deps.Platform.CreateWebCall(ctx, req.AgentID, map[string]any{
		"source":    webCallSource,
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		admission.Cancel(ctx)
		logx.Error().Err(err).Str("agent_id", req.AgentID).Msg("failed to create web call")
		c.JSON(errx.StatusOf(err), gin.H{"error": "Failed to create web call", "message": err.Error()})
		return
	}
	admission.Commit()

	logx.Info().Str("call_id", call.CallID).Str("agent_id", call.AgentID).Str("identity", identity).Msg("web call created")
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"call_id":      call.CallID,
		"access_token": call.AccessToken,
		"agent_id":     call.AgentID,
	})
}

func (s *Server) rejectWebCall(c *gin.Context, identity string, err error) {
	var appErr *errx.AppError
	if !errors.As(err, &appErr) || appErr.Kind != errx.KindRateLimited {
		logx.Error().Err(err).Str("identity", identity).Msg("rate limiter unavailable")
		c.JSON(errx.StatusOf(err), gin.H{"error": "Failed to create web call", "message": err.Error()})
		return
	}

	reason := "identity"
	if errors.Is(err, ratelimit.ErrDailyLimited) {
		reason = "daily"
	}
	s.deps.Metrics.WebCallRejected(reason)
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":     appErr.Message,
		"reason":    reason,
		"retryable": appErr.Retryable(),
	})
}

func (s *Server) listAgents(c *gin.Context) {
	agents, err := s.deps.Platform.ListAgents(c.Request.Context())
	if err != nil {
		logx.Error().Err(err).Msg("failed to list agents")
		c.JSON(errx.StatusOf(err), gin.H{"error": "Failed to list agents", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "agents": agents})
}

func (s *Server) rateLimitStatus(c *gin.Context) {
	st, err := s.deps.Limiter.Status(c.Request.Context(), ratelimit.IdentityFromRequest(c.Request))
	if err != nil {
		logx.Error().Err(err).Msg("failed to read rate limit status")
		c.JSON(errx.StatusOf(err), gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, st)
}
