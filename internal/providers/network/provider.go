// Package network serves outbound HTTP and websocket access gated by
// the caller's host allowlist. The host check runs against the registry
// on every request, so a revoked grant takes effect immediately.
package network

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/mecattaf/web-shell-sub003/internal/bridge"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/resilience"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// Provider implements allowlist-gated outbound requests.
type Provider struct {
	client  *resty.Client
	limiter *rate.Limiter

	mu       sync.Mutex
	sockets  map[string]*websocket.Conn      // socket id -> open connection
	breakers map[string]*resilience.Breaker  // host -> circuit breaker
}

// NewProvider creates a network provider with retrying transport.
func NewProvider() *Provider {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 15 * time.Second
	retryClient.Logger = nil

	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", "web-shell/1.0")
	client.SetTransport(retryClient.HTTPClient.Transport)

	return &Provider{
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(20), 40),
		sockets:  make(map[string]*websocket.Conn),
		breakers: make(map[string]*resilience.Breaker),
	}
}

// breakerFor returns the circuit breaker for a host, creating it on
// first use. A host that keeps failing stops consuming retries for a
// cooldown window.
func (p *Provider) breakerFor(host string) *resilience.Breaker {
	p.mu.Lock()
	defer p.mu.Unlock()
	br, ok := p.breakers[host]
	if !ok {
		br = resilience.New(host, resilience.Settings{
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
		p.breakers[host] = br
	}
	return br
}

// Definition returns service metadata.
func (p *Provider) Definition() bridge.Service {
	return bridge.Service{
		ID:          "network",
		Name:        "Network Service",
		Description: "Outbound HTTP and websockets within the host allowlist",
		Category:    types.CategoryNetwork,
		Tools: []bridge.Tool{
			{
				ID:          "network.request",
				Name:        "HTTP Request",
				Description: "Perform an HTTP request to an allowed host",
				Action:      types.ActionConnect,
				Parameters: []bridge.Parameter{
					{Name: "url", Type: "string", Description: "Request URL", Required: true},
					{Name: "method", Type: "string", Description: "HTTP method, default GET", Required: false},
					{Name: "body", Type: "string", Description: "Request body", Required: false},
					{Name: "headers", Type: "object", Description: "Request headers", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "network.connect",
				Name:        "Open WebSocket",
				Description: "Open a websocket connection to an allowed host",
				Action:      types.ActionWebSockets,
				Parameters: []bridge.Parameter{
					{Name: "url", Type: "string", Description: "ws:// or wss:// URL", Required: true},
				},
				Returns: "string",
			},
			{
				ID:          "network.disconnect",
				Name:        "Close WebSocket",
				Description: "Close an open websocket connection",
				Action:      types.ActionWebSockets,
				Parameters: []bridge.Parameter{
					{Name: "socket_id", Type: "string", Description: "Socket id from network.connect", Required: true},
				},
				Returns: "boolean",
			},
		},
	}
}

// Execute runs a network operation.
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	switch toolID {
	case "network.request":
		return p.request(ctx, params, call)
	case "network.connect":
		return p.connect(ctx, params, call)
	case "network.disconnect":
		return p.disconnect(params)
	default:
		return bridge.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

// hostOf extracts the gate target from a request URL.
func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("url has no host: %s", rawURL)
	}
	return u.Hostname(), nil
}

func (p *Provider) request(ctx context.Context, params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	rawURL, ok := params["url"].(string)
	if !ok || rawURL == "" {
		return bridge.Failure("url parameter required")
	}

	host, err := hostOf(rawURL)
	if err != nil {
		return bridge.Failure(err.Error())
	}
	if err := call.Enforcer.EnforceNetwork(host); err != nil {
		return bridge.Failure(err.Error())
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return bridge.Failure("request cancelled")
	}

	method := "GET"
	if m, ok := params["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}

	req := p.client.R().SetContext(ctx)
	if body, ok := params["body"].(string); ok && body != "" {
		req.SetBody(body)
	}
	if headers, ok := params["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, ok := v.(string); ok {
				req.SetHeader(k, s)
			}
		}
	}

	raw, err := p.breakerFor(host).Execute(func() (any, error) {
		return req.Execute(method, rawURL)
	})
	if err != nil {
		return bridge.Failure(fmt.Sprintf("request failed: %v", err))
	}
	resp := raw.(*resty.Response)

	return bridge.Success(map[string]any{
		"status":  resp.StatusCode(),
		"body":    resp.String(),
		"headers": resp.Header(),
		"elapsed": resp.Time().String(),
	})
}

func (p *Provider) connect(ctx context.Context, params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	rawURL, ok := params["url"].(string)
	if !ok || rawURL == "" {
		return bridge.Failure("url parameter required")
	}

	host, err := hostOf(rawURL)
	if err != nil {
		return bridge.Failure(err.Error())
	}
	if err := call.Enforcer.EnforceNetwork(host); err != nil {
		return bridge.Failure(err.Error())
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return bridge.Failure(fmt.Sprintf("connect failed: %v", err))
	}

	socketID := call.CallID.String()
	p.mu.Lock()
	p.sockets[socketID] = conn
	p.mu.Unlock()

	return bridge.Success(map[string]any{"socket_id": socketID})
}

func (p *Provider) disconnect(params map[string]any) (*bridge.Result, error) {
	socketID, ok := params["socket_id"].(string)
	if !ok || socketID == "" {
		return bridge.Failure("socket_id parameter required")
	}

	p.mu.Lock()
	conn, found := p.sockets[socketID]
	delete(p.sockets, socketID)
	p.mu.Unlock()

	if !found {
		return bridge.Failure("unknown socket id")
	}
	conn.Close()
	return bridge.Success(map[string]any{"closed": true})
}

// Close closes all open sockets.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, conn := range p.sockets {
		conn.Close()
		delete(p.sockets, id)
	}
	return nil
}
