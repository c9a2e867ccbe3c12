// Package poporing is a client for the poporing.life item and price API.
package poporing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"poporingbot/domain/entities"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

var (
	// ErrUpstream covers transport failures, non-2xx responses and an open circuit breaker
	ErrUpstream = errors.New("upstream request failed")
	// ErrMalformedResponse means the response body did not have the expected shape
	ErrMalformedResponse = errors.New("malformed upstream response")
)

const (
	DefaultSEABaseURL    = "https://api.poporing.life"
	DefaultGlobalBaseURL = "https://api-global.poporing.life"

	// UserAgent identifies the bot to the API
	UserAgent = "PoporingBot-01282019"

	seaOrigin    = "https://poporing.life"
	globalOrigin = "https://global.poporing.life"
)

// Options configure a Client. Zero values fall back to defaults.
type Options struct {
	SEABaseURL    string
	GlobalBaseURL string
	Timeout       time.Duration
	RetryMax      int
	RetryWaitMin  time.Duration
	RetryWaitMax  time.Duration
}

// Client fetches the item list and latest prices with retries and a circuit breaker
type Client struct {
	http    *retryablehttp.Client
	breaker *gobreaker.CircuitBreaker
	seaURL  string
	globURL string
}

// NewClient creates a poporing API client
func NewClient(opts Options) *Client {
	if opts.SEABaseURL == "" {
		opts.SEABaseURL = DefaultSEABaseURL
	}
	if opts.GlobalBaseURL == "" {
		opts.GlobalBaseURL = DefaultGlobalBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryMax == 0 {
		opts.RetryMax = 3
	}
	if opts.RetryWaitMin == 0 {
		opts.RetryWaitMin = 200 * time.Millisecond
	}
	if opts.RetryWaitMax == 0 {
		opts.RetryWaitMax = 2 * time.Second
	}

	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = opts.RetryWaitMin
	client.RetryWaitMax = opts.RetryWaitMax
	client.HTTPClient.Timeout = opts.Timeout
	client.Logger = nil

	settings := gobreaker.Settings{
		Name:        "poporing-api",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// A body we cannot parse still means the API is reachable
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrMalformedResponse)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &Client{
		http:    client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		seaURL:  strings.TrimRight(opts.SEABaseURL, "/"),
		globURL: strings.TrimRight(opts.GlobalBaseURL, "/"),
	}
}

type itemListResponse struct {
	Data *struct {
		ItemList []entities.Item `json:"item_list"`
	} `json:"data"`
}

type latestPriceResponse struct {
	Data *struct {
		Data *entities.PriceData `json:"data"`
	} `json:"data"`
}

// FetchItemList downloads the full item list. The list is the same for every region.
func (c *Client) FetchItemList(ctx context.Context) ([]entities.Item, error) {
	var resp itemListResponse
	if err := c.getJSON(ctx, c.seaURL+"/get_item_list", seaOrigin, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.ItemList == nil {
		return nil, fmt.Errorf("%w: missing data.item_list", ErrMalformedResponse)
	}
	return resp.Data.ItemList, nil
}

// FetchLatestPrice returns the latest price snapshot of an item in a region
func (c *Client) FetchLatestPrice(ctx context.Context, region entities.Region, name string) (entities.PriceData, error) {
	base, origin := c.seaURL, seaOrigin
	if region == entities.RegionGlobal {
		base, origin = c.globURL, globalOrigin
	}

	var resp latestPriceResponse
	if err := c.getJSON(ctx, base+"/get_latest_price/"+url.PathEscape(name), origin, &resp); err != nil {
		return entities.PriceData{}, err
	}
	if resp.Data == nil || resp.Data.Data == nil {
		return entities.PriceData{}, fmt.Errorf("%w: missing data.data", ErrMalformedResponse)
	}
	return *resp.Data.Data, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL, origin string, out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, rawURL, origin, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, rawURL, origin string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to build request: %w", ErrUpstream, err)
	}
	req.Header.Set("Origin", origin)
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read body: %w", ErrUpstream, err)
	}

	log.WithFields(log.Fields{
		"url":      rawURL,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Poporing API response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status code %d", ErrUpstream, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}
