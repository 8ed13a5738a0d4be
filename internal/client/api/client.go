// Package api is the command-line client's view of the to-do server: an
// HTTP client for the JSON endpoints plus the local session file that keeps
// the bearer token between invocations.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/todokeeper/internal/models"
)

const (
	pathSignup = "/auth/signup"
	pathSignin = "/auth/signin"
	pathTodo   = "/todo"
)

// ErrNotSignedIn is returned by to-do calls made without a token.
var ErrNotSignedIn = errors.New("not signed in, run -cmd signin first")

// APIError is a non-200 response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// Client talks to the to-do server. Token is sent as a bearer token on
// every /todo request.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New returns a Client for baseURL using httpClient, or a default client
// with a 10 second timeout when httpClient is nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    httpClient,
	}
}

// NewHTTPClient builds an HTTP client that additionally trusts the CA
// certificate at caPath. An empty caPath yields a client using the system
// roots.
func NewHTTPClient(caPath string) (*http.Client, error) {
	if caPath == "" {
		return &http.Client{Timeout: 10 * time.Second}, nil
	}
	caCert, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			RootCAs:    caPool,
			MinVersion: tls.VersionTLS12,
		},
	}
	return &http.Client{Transport: transport, Timeout: 10 * time.Second}, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, username, password string) (models.UserDTO, error) {
	var out models.UserDTO
	err := c.do(ctx, http.MethodPost, pathSignup, false, models.UserDTO{Username: username, Password: password}, &out)
	return out, err
}

// Signin logs in and stores the returned token on the client.
func (c *Client) Signin(ctx context.Context, username, password string) (models.UserDTO, error) {
	var out models.UserDTO
	if err := c.do(ctx, http.MethodPost, pathSignin, false, models.UserDTO{Username: username, Password: password}, &out); err != nil {
		return out, err
	}
	c.Token = out.Token
	return out, nil
}

// List returns all of the signed-in user's items.
func (c *Client) List(ctx context.Context) ([]models.Todo, error) {
	return c.todos(ctx, http.MethodGet, nil)
}

// Add creates an item and returns the updated list.
func (c *Client) Add(ctx context.Context, title string, done bool) ([]models.Todo, error) {
	return c.todos(ctx, http.MethodPost, models.TodoDTO{Title: title, Done: done})
}

// Update overwrites the title and done flag of an existing item.
func (c *Client) Update(ctx context.Context, id, title string, done bool) ([]models.Todo, error) {
	return c.todos(ctx, http.MethodPut, models.TodoDTO{ID: id, Title: title, Done: done})
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, id string) ([]models.Todo, error) {
	return c.todos(ctx, http.MethodDelete, models.TodoDTO{ID: id})
}

func (c *Client) todos(ctx context.Context, method string, body any) ([]models.Todo, error) {
	if c.Token == "" {
		return nil, ErrNotSignedIn
	}
	var out models.ResponseDTO[models.Todo]
	if err := c.do(ctx, method, pathTodo, true, body, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, body, dst any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e models.ErrorDTO
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
