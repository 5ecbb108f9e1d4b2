// Package parser talks to the remote recipe parsing service, which turns a
// recipe page URL into structured recipe data.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pageza/recipe-hub/backend/internal/logging"
	"github.com/pageza/recipe-hub/backend/internal/model"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultRatePerSecond = 2.0
	maxResponseBytes     = 1 << 20
)

var (
	// ErrURLRequired is returned before any request is made when the URL is blank.
	ErrURLRequired = errors.New("URL is required")
	// ErrUnreachable wraps transport failures talking to the parser.
	ErrUnreachable = errors.New("failed to connect to server")
	// ErrInvalidRecipe wraps a success response whose recipe fails validation.
	ErrInvalidRecipe = errors.New("received invalid recipe data from server")
)

// Error is a failure reported by the parser itself.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// Client posts URLs to the parsing service. Outbound requests are throttled.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	log      logging.Logger
}

// NewClient creates a client for endpoint. A non-positive timeout or rate
// falls back to the defaults.
func NewClient(endpoint string, timeout time.Duration, perSecond float64, log logging.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if perSecond <= 0 {
		perSecond = DefaultRatePerSecond
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		log:      log.With("component", "parser"),
	}
}

type parseRequest struct {
	URL string `json:"url"`
}

// Parse asks the service to extract the recipe at pageURL. The result is
// validated; it carries no id until it is saved.
func (c *Client) Parse(ctx context.Context, pageURL string) (model.Recipe, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return model.Recipe{}, ErrURLRequired
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return model.Recipe{}, fmt.Errorf("parser rate limit: %w", err)
	}

	body, err := json.Marshal(parseRequest{URL: pageURL})
	if err != nil {
		return model.Recipe{}, fmt.Errorf("failed to encode parse request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return model.Recipe{}, fmt.Errorf("failed to create parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error(ctx, "parser request failed", "url", pageURL, "error", err)
		return model.Recipe{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.Recipe{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	c.log.Debug(ctx, "parser responded", "url", pageURL, "status", resp.StatusCode, "duration", time.Since(start))

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return model.Recipe{}, &Error{StatusCode: resp.StatusCode, Message: "Failed to parse recipe"}
	}

	if ok, _ := payload["success"].(bool); !ok {
		msg, _ := payload["error"].(string)
		if strings.TrimSpace(msg) == "" {
			msg = "Failed to parse recipe"
		}
		return model.Recipe{}, &Error{StatusCode: resp.StatusCode, Message: msg}
	}

	delete(payload, "error")
	delete(payload, "id")
	recipe, err := model.Validate(payload)
	if err != nil {
		c.log.Warn(ctx, "parser returned an invalid recipe", "url", pageURL, "error", err)
		return model.Recipe{}, fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}
	return recipe, nil
}
