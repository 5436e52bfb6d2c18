// Package opensea is a small client for the OpenSea v2 REST API.
package opensea

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// APIError is a non-2xx answer from OpenSea, or a failure to reach it.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("opensea: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) HTTPStatus() int { return e.StatusCode }

type Config struct {
	BaseURL string
	Chain   string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	chain   string
	apiKey  string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		chain:   cfg.Chain,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		cb:      newCircuitBreaker("opensea"),
	}
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	var st gobreaker.Settings
	st.Name = name
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}
	// client errors and abandoned requests say nothing about upstream health
	st.IsSuccessful = func(err error) bool {
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		var apiErr *APIError
		return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
	}
	return gobreaker.NewCircuitBreaker[[]byte](st)
}

// ListingsForCollection returns the raw listings body for a collection slug.
func (c *Client) ListingsForCollection(ctx context.Context, slug string) (json.RawMessage, error) {
	body, err := c.get(ctx, "/listings/collection/"+url.PathEscape(slug)+"/all", nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// CollectionListings is ListingsForCollection decoded.
func (c *Client) CollectionListings(ctx context.Context, slug string) (json.RawMessage, *CollectionListings, error) {
	raw, err := c.ListingsForCollection(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	var out CollectionListings
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, nil, errors.Wrap(err, "decode collection listings")
	}
	return raw, &out, nil
}

// NFTsForAccount lists the NFTs held by address, optionally restricted to one
// contract.
func (c *Client) NFTsForAccount(ctx context.Context, address, contract string) ([]NFT, error) {
	var query url.Values
	if contract != "" {
		query = url.Values{"asset_contract_address": {contract}}
	}
	var out nftsResponse
	if err := c.getJSON(ctx, c.chainPath("account", address, "nfts"), query, &out); err != nil {
		return nil, err
	}
	return orEmpty(out.NFTs), nil
}

// ContractNFTs lists the NFTs minted by contract.
func (c *Client) ContractNFTs(ctx context.Context, contract string) ([]NFT, error) {
	var out nftsResponse
	if err := c.getJSON(ctx, c.chainPath("contract", contract, "nfts"), nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out.NFTs), nil
}

func (c *Client) CollectionStats(ctx context.Context, slug string) (*CollectionStats, error) {
	body, err := c.get(ctx, "/collections/"+url.PathEscape(slug)+"/stats", nil)
	if err != nil {
		return nil, err
	}
	var out CollectionStats
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, "decode collection stats")
	}
	return &out, nil
}

// NFTListings returns the active listings of a single token.
func (c *Client) NFTListings(ctx context.Context, contract, identifier string) ([]Listing, error) {
	var out listingsResponse
	if err := c.getJSON(ctx, c.chainPath("contract", contract, "nfts", identifier, "listings"), nil, &out); err != nil {
		return nil, err
	}
	return out.Listings, nil
}

func (c *Client) chainPath(parts ...string) string {
	escaped := make([]string, 0, len(parts)+2)
	escaped = append(escaped, "chain", url.PathEscape(c.chain))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return "/" + strings.Join(escaped, "/")
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v interface{}) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, target)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &APIError{StatusCode: http.StatusServiceUnavailable, Message: err.Error()}
	}
	return body, err
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: upstreamMessage(body, resp.Status)}
	}
	return body, nil
}

// upstreamMessage pulls a readable message out of an OpenSea error body.
func upstreamMessage(body []byte, fallback string) string {
	var e struct {
		Message string   `json:"message"`
		Detail  string   `json:"detail"`
		Errors  []string `json:"errors"`
	}
	if json.Unmarshal(body, &e) == nil {
		switch {
		case e.Message != "":
			return e.Message
		case e.Detail != "":
			return e.Detail
		case len(e.Errors) > 0:
			return strings.Join(e.Errors, "; ")
		}
	}
	return fallback
}

func orEmpty(nfts []NFT) []NFT {
	if nfts == nil {
		return []NFT{}
	}
	return nfts
}
