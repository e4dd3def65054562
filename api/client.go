////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 substring tech                                            //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package api implements the REST client for the chat backend. All requests
// share a single http.Client with a common timeout; authenticated requests
// carry the bearer token set on the client after sign in.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// requestTimeout is the ceiling shared by every REST request. Exceeding it is
// treated as a network failure by callers.
const requestTimeout = 10 * time.Second

// ErrNotAuthenticated is returned when an authenticated endpoint is called
// without a bearer token on the client. Callers are expected to send the user
// back through sign in.
var ErrNotAuthenticated = errors.New("not signed in: no bearer token present")

// Client talks to the chat backend REST API rooted at a fixed base URL.
type Client struct {
	baseURL string
	client  *http.Client

	mux   sync.RWMutex
	token string
}

// NewClient returns a client for the backend at the given base URL (e.g.
// "http://localhost:8080"). No token is set; SignIn, SignUp, or SetToken must
// run before authenticated endpoints are used.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// BaseURL returns the server base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken replaces the bearer token used for authenticated requests.
func (c *Client) SetToken(token string) {
	c.mux.Lock()
	c.token = token
	c.mux.Unlock()
}

// Token returns the bearer token currently set on the client, or an empty
// string when the client is unauthenticated.
func (c *Client) Token() string {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.token
}

// errorBody is the error envelope the backend uses on non-2xx responses.
// Different controllers use different keys.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e errorBody) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// do issues a JSON request against path, decoding the response into out when
// out is not nil. A non-2xx status is returned as an error carrying the
// server's message when one is present.
func (c *Client) do(method, path string, body, out interface{},
	authed bool) error {

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal body for %s", path)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrapf(err, "failed to build request for %s", path)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		token := c.Token()
		if token == "" {
			return ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.send(req, path, out)
}

// send executes a prepared request and decodes the response. It is shared by
// the JSON path and the multipart upload path.
func (c *Client) send(req *http.Request, path string, out interface{}) error {
	jww.DEBUG.Printf("[API] %s %s", req.Method, path)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request to %s failed", path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read response from %s", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.text() != "" {
			return errors.Errorf("%s %s returned %d: %s",
				req.Method, path, resp.StatusCode, eb.text())
		}
		return errors.Errorf("%s %s returned %d",
			req.Method, path, resp.StatusCode)
	}

	if out != nil {
		if err = json.Unmarshal(data, out); err != nil {
			return errors.Wrapf(err,
				"failed to decode response from %s", path)
		}
	}

	return nil
}

func (c *Client) post(path string, body, out interface{}, authed bool) error {
	return c.do(http.MethodPost, path, body, out, authed)
}

func (c *Client) get(path string, out interface{}) error {
	return c.do(http.MethodGet, path, nil, out, true)
}

// FileURL resolves a message's relative attachment URL against the server
// base URL for retrieval.
func (c *Client) FileURL(fileURL string) string {
	if fileURL == "" || strings.Contains(fileURL, "://") {
		return fileURL
	}
	return fmt.Sprintf("%s%s", c.baseURL, fileURL)
}
