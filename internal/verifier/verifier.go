// Package verifier calls the external identity-assertion verification
// service. The service is the sole authority on assertion validity; no
// local parsing of the assertion is attempted.
package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StatusOkay is the status the verification service reports for a valid
// assertion. Anything else is a rejection.
const StatusOkay = "okay"

// Result is the service's parsed verdict. It is transient and never
// persisted.
type Result struct {
	Status string `json:"status"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// Okay reports whether the service accepted the assertion.
func (r *Result) Okay() bool {
	return r.Status == StatusOkay
}

type Client struct {
	verifyURL  string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(verifyURL string, opts ...Option) *Client {
	c := &Client{
		verifyURL:  verifyURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify POSTs the assertion and audience to the verification service and
// returns its parsed verdict. Transport failures, unexpected statuses, and
// malformed bodies come back as errors; a well-formed rejection comes back
// as a Result whose Okay method reports false. The two are distinct
// failure modes and callers must not conflate them.
func (c *Client) Verify(ctx context.Context, assertion, audience string) (*Result, error) {
	form := url.Values{
		"assertion": {assertion},
		"audience":  {audience},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post to verifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verifier returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode verifier response: %w", err)
	}
	return &result, nil
}
