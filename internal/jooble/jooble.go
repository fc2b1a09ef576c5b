// Package jooble is a thin client for the Jooble keyword job-search API.
package jooble

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiURL    = "https://jooble.org/api"
	userAgent = "mveldman/jobmatch (jobs@bvenp.nl)"

	// The public API tolerates about one request per second per key.
	defaultRequestsPerSecond = 1
	defaultBurst             = 2
)

type Client struct {
	key     string
	logger  *zap.Logger
	limiter *rate.Limiter

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(key string, logger *zap.Logger) *Client {
	return &Client{
		key:     key,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultBurst),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
		APIURL:    apiURL,
	}
}

// SetRateLimit overrides the default request rate. Zero or negative values
// disable throttling.
func (c *Client) SetRateLimit(reqPerSec float64, burst int) {
	if reqPerSec <= 0 {
		c.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(reqPerSec), burst)
}
