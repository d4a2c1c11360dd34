package hosting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseSize = 1 << 20 // 1 MB

// Compile-time check that Client implements Backend.
var _ Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// Client talks to a GitLab-compatible hosting API.
type Client struct {
	host       string // e.g. https://git.example.com
	token      string
	httpClient *http.Client
}

// NewClient creates a hosting client for the given host.
func NewClient(host string, opts ...Option) *Client {
	c := &Client{
		host:       strings.TrimRight(host, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken sets the auth token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// RemoteExists checks for a project with the given full name.
func (c *Client) RemoteExists(ctx context.Context, fullName string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/v4/projects/%s", c.host, url.PathEscape(fullName))

	status, _, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("checking remote %s: HTTP %d", fullName, status)
	}
}

// Provision creates a new project under the organization encoded in fullName.
func (c *Client) Provision(ctx context.Context, fullName string, visibility Visibility) (*Remote, error) {
	org, name, found := strings.Cut(fullName, "/")
	if !found {
		return nil, fmt.Errorf("invalid full name %q (want org/name)", fullName)
	}

	payload, err := json.Marshal(map[string]string{
		"name":       name,
		"namespace":  org,
		"visibility": string(visibility),
	})
	if err != nil {
		return nil, err
	}

	endpoint := c.host + "/api/v4/projects"
	status, body, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, fmt.Errorf("provisioning %s: HTTP %d", fullName, status)
	}

	var created struct {
		PathWithNamespace string `json:"path_with_namespace"`
		SSHURLToRepo      string `json:"ssh_url_to_repo"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("parsing provision response: %w", err)
	}
	if created.PathWithNamespace == "" {
		created.PathWithNamespace = fullName
	}

	return &Remote{FullName: created.PathWithNamespace, CloneURL: created.SSHURLToRepo}, nil
}

// Authenticated verifies the token against the user endpoint.
func (c *Client) Authenticated(ctx context.Context) (bool, error) {
	status, _, err := c.do(ctx, http.MethodGet, c.host+"/api/v4/user", nil)
	if err != nil {
		return false, err
	}
	return status == http.StatusOK, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, err
	}
	if c.token != "" {
		req.Header.Set("PRIVATE-TOKEN", c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("reading response from %s: %w", endpoint, err)
	}
	return resp.StatusCode, data, nil
}
