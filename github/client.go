package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// apiVersion pins the REST API version the client was written against.
	apiVersion = "2022-11-28"

	// maxErrorBody bounds how much of a failed response ends up in APIError.
	maxErrorBody = 512
)

// Client talks to the repository-listing API
type Client struct {
	// Base URL of the API, e.g. https://api.github.com
	BaseURL string

	// Optional bearer token; anonymous requests are rate limited harder
	Token string

	// HTTP client with a timeout
	client *http.Client
}

// ListOptions parameterise a repository listing
type ListOptions struct {
	Sort    string
	PerPage int
}

// APIError is returned for any non-2xx response
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("repository listing failed with status %d: %s", e.StatusCode, e.Body)
}

// NewClient creates a new API client
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListUserRepos fetches one page of a user's public repositories. Records are
// returned undecoded so callers can judge each one on its own.
func (c *Client) ListUserRepos(ctx context.Context, user string, opts ListOptions) ([]json.RawMessage, error) {
	query := url.Values{}
	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}
	if opts.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(opts.PerPage))
	}

	endpoint := fmt.Sprintf("%s/users/%s/repos", c.BaseURL, url.PathEscape(user))
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
		}
	}

	var records []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	return records, nil
}
