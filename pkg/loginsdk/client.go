package loginsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to one kakaologin server. Redirects are not followed so the
// page-mode callback can be inspected.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

func (c *Client) doRequest(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// getJSON performs a request and decodes a 2xx body into target.
func (c *Client) getJSON(ctx context.Context, method, path string, target any) error {
	resp, err := c.doRequest(ctx, method, path)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target)
}

func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseErrorResponse(resp, body)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// AuthURL asks the server for the Kakao authorization URL.
func (c *Client) AuthURL(ctx context.Context) (*AuthURLResponse, error) {
	var out AuthURLResponse
	if err := c.getJSON(ctx, http.MethodGet, "/api/auth/kakao", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Callback completes a login with the code Kakao redirected back with.
func (c *Client) Callback(ctx context.Context, code string) (*LoginResponse, error) {
	return c.CallbackQuery(ctx, url.Values{"code": {code}})
}

// CallbackQuery sends arbitrary callback parameters, e.g. a provider error.
func (c *Client) CallbackQuery(ctx context.Context, q url.Values) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.getJSON(ctx, http.MethodGet, "/api/auth/kakao/callback?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CallbackRedirect completes a page-mode login and returns the Location the
// server redirected to.
func (c *Client) CallbackRedirect(ctx context.Context, q url.Values) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/auth/kakao/callback?"+q.Encode())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		body, _ := io.ReadAll(resp.Body)
		return "", parseErrorResponse(resp, body)
	}
	return resp.Header.Get("Location"), nil
}

func (c *Client) CurrentUser(ctx context.Context) (*CurrentUserResponse, error) {
	var out CurrentUserResponse
	if err := c.getJSON(ctx, http.MethodGet, "/api/auth/user", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.getJSON(ctx, http.MethodPost, "/api/auth/logout", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context) (*UsersResponse, error) {
	var out UsersResponse
	if err := c.getJSON(ctx, http.MethodGet, "/api/users", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*UserResponse, error) {
	var out UserResponse
	if err := c.getJSON(ctx, http.MethodGet, "/api/users/"+strconv.FormatInt(id, 10), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.getJSON(ctx, http.MethodDelete, "/api/users/"+strconv.FormatInt(id, 10), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, http.MethodGet, "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Info(ctx context.Context) (*InfoResponse, error) {
	var out InfoResponse
	if err := c.getJSON(ctx, http.MethodGet, "/api", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DBStatus reports the user store's connectivity. A disconnected store
// answers 500 or 503 and comes back as *APIError.
func (c *Client) DBStatus(ctx context.Context) (*DBStatusResponse, error) {
	var out DBStatusResponse
	if err := c.getJSON(ctx, http.MethodGet, "/api/db/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
