package gateway

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/gaborage/go-sequencer/logger"
)

const (
	// DefaultTimeout is the default per-attempt timeout
	DefaultTimeout = 30 * time.Second

	gatewayPath       = "gateway"
	feederGatewayPath = "feeder_gateway"
)

// Network is a public Starknet deployment with a known sequencer.
type Network string

const (
	Mainnet     Network = "mainnet"
	Sepolia     Network = "sepolia"
	Integration Network = "integration"
)

var networkURLs = map[Network]string{
	Mainnet:     "https://alpha-mainnet.starknet.io",
	Sepolia:     "https://alpha-sepolia.starknet.io",
	Integration: "https://integration-sepolia.starknet.io",
}

// BaseURL returns the sequencer base URL of n.
func (n Network) BaseURL() (string, error) {
	u, ok := networkURLs[n]
	if !ok {
		return "", fmt.Errorf("unknown network %q", n)
	}
	return u, nil
}

// Client talks to the gateway and feeder gateway of one sequencer.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
	gatewayURL *url.URL
	feederURL  *url.URL
	apiKey     string
	retry      bool
	policy     RetryPolicy
	metrics    MetricsRecorder
	limiter    *rate.Limiter
	sleep      Sleeper
}

// ClientBuilder provides a fluent interface for configuring a Client
type ClientBuilder struct {
	logger     logger.Logger
	baseURL    string
	network    Network
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	retry      bool
	policy     RetryPolicy
	metrics    MetricsRecorder
	limiter    *rate.Limiter
}

// NewClientBuilder creates a builder with retries enabled and the OpenTelemetry recorder.
func NewClientBuilder(log logger.Logger) *ClientBuilder {
	if log == nil {
		log = logger.NewNop()
	}
	return &ClientBuilder{
		logger:  log,
		timeout: DefaultTimeout,
		retry:   true,
		policy:  DefaultRetryPolicy(),
		metrics: NewOTelRecorder(),
	}
}

// WithBaseURL sets the sequencer base URL; /gateway and /feeder_gateway are derived from it.
func (b *ClientBuilder) WithBaseURL(base string) *ClientBuilder {
	b.baseURL = base
	return b
}

// ForNetwork uses the sequencer of a public network. WithBaseURL takes precedence.
func (b *ClientBuilder) ForNetwork(n Network) *ClientBuilder {
	b.network = n
	return b
}

// WithAPIKey sets the X-Throttling-Bypass token.
func (b *ClientBuilder) WithAPIKey(key string) *ClientBuilder {
	b.apiKey = key
	return b
}

// WithTimeout sets the per-attempt timeout. Ignored when WithHTTPClient is used.
func (b *ClientBuilder) WithTimeout(timeout time.Duration) *ClientBuilder {
	b.timeout = timeout
	return b
}

// WithHTTPClient replaces the underlying HTTP client.
func (b *ClientBuilder) WithHTTPClient(c *http.Client) *ClientBuilder {
	b.httpClient = c
	return b
}

// WithRetry sets the retry default used by the endpoint helpers.
func (b *ClientBuilder) WithRetry(retry bool) *ClientBuilder {
	b.retry = retry
	return b
}

// WithRetryPolicy overrides the backoff schedule.
func (b *ClientBuilder) WithRetryPolicy(p RetryPolicy) *ClientBuilder {
	b.policy = p
	return b
}

// WithMetricsRecorder replaces the metrics recorder. nil disables metrics.
func (b *ClientBuilder) WithMetricsRecorder(m MetricsRecorder) *ClientBuilder {
	b.metrics = m
	return b
}

// WithRateLimit throttles attempts to rps per second with the given burst. rps <= 0 disables it.
func (b *ClientBuilder) WithRateLimit(rps float64, burst int) *ClientBuilder {
	if rps <= 0 {
		b.limiter = nil
		return b
	}
	b.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	return b
}

// Build validates the configuration and creates the Client.
func (b *ClientBuilder) Build() (*Client, error) {
	raw := b.baseURL
	if raw == "" {
		if b.network == "" {
			return nil, fmt.Errorf("sequencer base URL or network is required")
		}
		var err error
		if raw, err = b.network.BaseURL(); err != nil {
			return nil, err
		}
	}

	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid sequencer base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid sequencer base URL %q: scheme must be http or https", raw)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid sequencer base URL %q: missing host", raw)
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: b.timeout}
	}

	metrics := b.metrics
	if metrics == nil {
		metrics = NewNoopRecorder()
	}

	return &Client{
		httpClient: httpClient,
		logger:     b.logger,
		gatewayURL: base.JoinPath(gatewayPath),
		feederURL:  base.JoinPath(feederGatewayPath),
		apiKey:     b.apiKey,
		retry:      b.retry,
		policy:     b.policy.withDefaults(),
		metrics:    metrics,
		limiter:    b.limiter,
		sleep:      sleepContext,
	}, nil
}

// GatewayRequest starts a request against the write endpoint (/gateway).
func (c *Client) GatewayRequest() MethodStage {
	return NewRequest(c, c.gatewayURL, c.apiKey)
}

// FeederGatewayRequest starts a request against the read endpoint (/feeder_gateway).
func (c *Client) FeederGatewayRequest() MethodStage {
	return NewRequest(c, c.feederURL, c.apiKey)
}

// Retry reports the client's retry default.
func (c *Client) Retry() bool {
	return c.retry
}

// GatewayURL returns the /gateway URL used for writes.
func (c *Client) GatewayURL() string {
	return c.gatewayURL.String()
}

// FeederGatewayURL returns the /feeder_gateway URL used for reads.
func (c *Client) FeederGatewayURL() string {
	return c.feederURL.String()
}
