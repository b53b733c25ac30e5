// Package itunes downloads artists and albums from the iTunes Search API.
package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amonks/albumengine/limiter"
	"github.com/amonks/albumengine/request"
	"github.com/rs/zerolog"
	"resty.dev/v3"
)

const (
	DefaultBaseURL = "https://itunes.apple.com"
	DefaultTimeout = 10 * time.Second

	// MaxAlbums is how many albums a top-albums lookup asks for.
	MaxAlbums = 5
)

type Options struct {
	BaseURL string
	Timeout time.Duration
	Limiter *limiter.Limiter
	Logger  zerolog.Logger
}

// New creates a new iTunes client. Zero options fall back to the public API
// and a ten second timeout.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Limiter == nil {
		opts.Limiter = limiter.New("", time.Minute, opts.Logger)
	}
	return &Client{
		http: resty.New().
			SetBaseURL(opts.BaseURL).
			SetTimeout(opts.Timeout).
			SetHeader("Accept", "application/json"),
		lim: opts.Limiter,
		log: opts.Logger,
	}
}

type Client struct {
	http *resty.Client
	lim  *limiter.Limiter
	log  zerolog.Logger
}

func (c *Client) Close() error {
	return c.http.Close()
}

// get does a GET on path and decodes the JSON response into v. While the
// limiter's window is open it fails fast, and a 429 opens a new window.
// Nothing is retried.
func (c *Client) get(ctx context.Context, path string, query map[string]string, v any) error {
	if err := c.lim.Check(); err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetDoNotParseResponse(true).
		Get(path)
	if err != nil {
		return fmt.Errorf("%w: error fetching '%s': %w", request.ErrFetch, path, err)
	}
	if resp.RawResponse != nil && resp.RawResponse.Body != nil {
		defer resp.RawResponse.Body.Close()
	}

	if err := request.Error(resp); err != nil {
		if resp.StatusCode() == 429 {
			if err := c.lim.SetNextAt(resp.Header().Get("Retry-After")); err != nil {
				c.log.Error().Err(err).Msg("error recording rate limit")
			}
		}
		return fmt.Errorf("error fetching '%s': %w", path, err)
	}

	// iTunes labels its JSON text/javascript, so it's decoded here rather
	// than by resty.
	if err := json.NewDecoder(resp.RawResponse.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: error decoding response from '%s': %w", request.ErrFetch, path, err)
	}
	return nil
}
