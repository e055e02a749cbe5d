// Package retell is a minimal client for the voice platform's REST API.
package retell

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
	errx "github.com/lapu-lapu-poc/server/internal/core/error"
	"github.com/lapu-lapu-poc/server/internal/model"
)

const (
	DefaultBaseURL = "https://api.retellai.com"
	DefaultTimeout = 10 * time.Second

	createWebCallPath = "/v2/create-web-call"
	listAgentsPath    = "/list-agents"
)

var ErrMissingAPIKey = errors.New("RETELL_API_KEY environment variable is not set")

// CallPlatform is the subset of the platform API the server depends on.
type CallPlatform interface {
	CreateWebCall(ctx context.Context, agentID string, metadata map[string]any) (*WebCall, error)
	ListAgents(ctx context.Context) ([]Agent, error)
}

type WebCall struct {
	CallID      string `json:"call_id"`
	AccessToken string `json:"access_token"`
	AgentID     string `json:"agent_id"`
}

type Agent struct {
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"`
	VoiceID   string `json:"voice_id"`
}

type createWebCallRequest struct {
	AgentID  string         `json:"agent_id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type apiError struct {
	Message      string `json:"message"`
	ErrorMessage string `json:"error_message"`
}

func (e *apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorMessage
}

type Client struct {
	http   *resty.Client
	hasKey bool
}

var _ CallPlatform = (*Client)(nil)

func New(cfg model.RetellConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		http.SetAuthToken(cfg.APIKey)
	}
	return &Client{http: http, hasKey: cfg.APIKey != ""}
}

// CreateWebCall registers a browser call for agentID and returns the token
// the frontend needs to join it.
func (c *Client) CreateWebCall(ctx context.Context, agentID string, metadata map[string]any) (*WebCall, error) {
	if !c.hasKey {
		return nil, errx.Upstream(ErrMissingAPIKey)
	}

	var (
		out    WebCall
		apiErr apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(createWebCallRequest{AgentID: agentID, Metadata: metadata}).
		SetResult(&out).
		SetError(&apiErr).
		Post(createWebCallPath)
	if err := check(resp, err, &apiErr); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	if !c.hasKey {
		return nil, errx.Upstream(ErrMissingAPIKey)
	}

	var (
		out    []Agent
		apiErr apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get(listAgentsPath)
	if err := check(resp, err, &apiErr); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Agent{}
	}
	return out, nil
}

func check(resp *resty.Response, err error, apiErr *apiError) error {
	if err != nil {
		if isTimeout(err) {
			return errx.Timeout(fmt.Errorf("retell request timed out: %w", err))
		}
		return errx.Upstream(fmt.Errorf("retell request failed: %w", err))
	}
	if resp.IsError() {
		msg := apiErr.text()
		if msg == "" {
			msg = resp.String()
		}
		return errx.Upstream(fmt.Errorf("retell %s %s: status %d: %s",
			resp.Request.Method, resp.Request.URL, resp.StatusCode(), msg))
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
