// Package product is a read-only client for the product service's context
// endpoint. The extraction pipeline uses it purely for prompt grounding;
// record persistence stays on the product service side.
package product

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client fetches existing domain objects for a product.
type Client interface {
	GetContext(ctx context.Context, productID string) (*ContextResponse, error)
}

// Item is a compact view of one existing domain object.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// ContextResponse is the payload of GET /products/{id}/context.
type ContextResponse struct {
	Strategies   []Item `json:"strategies,omitempty"`
	Problems     []Item `json:"problems,omitempty"`
	Features     []Item `json:"features,omitempty"`
	Tasks        []Item `json:"tasks,omitempty"`
	Workstreams  []Item `json:"workstreams,omitempty"`
	Stakeholders []Item `json:"stakeholders,omitempty"`
	Metrics      []Item `json:"metrics,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a product service client for the given base URL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) GetContext(ctx context.Context, productID string) (*ContextResponse, error) {
	url := fmt.Sprintf("%s/products/%s/context", c.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "product: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "product: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "product: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("product: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result ContextResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "product: unmarshal response")
	}

	return &result, nil
}
