package twitter

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

	"twitterdl/pkg/errors"
	"twitterdl/pkg/logger"
)

// Client is the outbound HTTP client shared by the guest token provider, the
// lookup, and the login flow. It carries a base header set; callers pass
// request-scoped headers per call.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	apiBase    string
	gqlBase    string
	logger     logger.Logger
}

// NewClient creates a Client with the given timeout. The timeout bounds each
// individual request; exceeding it surfaces as an upstream error.
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"Accept":          "*/*",
			"Accept-Language": "en-US,en;q=0.9",
		},
		apiBase: DefaultAPIBase,
		gqlBase: DefaultGraphQLBase,
		logger:  log,
	}
}

// SetProxy routes all requests through an HTTP proxy.
func (c *Client) SetProxy(host string, port int) error {
	proxyURL, err := url.Parse(fmt.Sprintf("http://%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("invalid proxy address: %w", err)
	}
	c.httpClient.Transport = &http.Transport{
		Proxy: http.ProxyURL(proxyURL),
	}
	return nil
}

// SetHeader sets a base header applied to every request.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetBases overrides the upstream base URLs. Used by tests.
func (c *Client) SetBases(apiBase, gqlBase string) {
	if apiBase != "" {
		c.apiBase = apiBase
	}
	if gqlBase != "" {
		c.gqlBase = gqlBase
	}
}

// do sends the request with base plus request-scoped headers and classifies
// transport failures.
func (c *Client) do(req *http.Request, headers map[string]string) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Newf(errors.KindUpstream, "network error: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON response into target.
func (c *Client) GetJSON(ctx context.Context, rawurl string, query url.Values, headers map[string]string, target interface{}) error {
	if len(query) > 0 {
		rawurl = rawurl + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return errors.Newf(errors.KindUnknown, "failed to create request: %v", err)
	}

	resp, err := c.do(req, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WithCode(errors.KindUpstream, resp.StatusCode,
			fmt.Sprintf("failed to read response body: %v", err))
	}

	if err := c.checkStatus(resp.StatusCode, body, req.URL.String()); err != nil {
		return err
	}

	return c.decode(body, target, resp.StatusCode, req.URL.String())
}

// PostJSON performs a POST request with a JSON body and decodes the JSON
// response into target. It returns the response headers so callers can read
// Set-Cookie values.
func (c *Client) PostJSON(ctx context.Context, rawurl string, headers map[string]string, payload, target interface{}) (http.Header, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Newf(errors.KindUnknown, "failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawurl, reader)
	if err != nil {
		return nil, errors.Newf(errors.KindUnknown, "failed to create request: %v", err)
	}

	resp, err := c.do(req, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.Header, errors.WithCode(errors.KindUpstream, resp.StatusCode,
			fmt.Sprintf("failed to read response body: %v", err))
	}

	if err := c.checkStatus(resp.StatusCode, body, req.URL.String()); err != nil {
		return resp.Header, err
	}

	if target != nil {
		if err := c.decode(body, target, resp.StatusCode, req.URL.String()); err != nil {
			return resp.Header, err
		}
	}

	return resp.Header, nil
}

// Download fetches raw bytes, typically media content from a CDN URL.
func (c *Client) Download(ctx context.Context, rawurl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, errors.Newf(errors.KindUnknown, "failed to create request: %v", err)
	}

	resp, err := c.do(req, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithCode(statusKind(resp.StatusCode), resp.StatusCode,
			fmt.Sprintf("unexpected status %d downloading media", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Newf(errors.KindUpstream, "failed to read media body: %v", err)
	}
	return data, nil
}

// checkStatus converts non-2xx responses into classified errors. Upstream
// error messages from the body are folded into the message so challenge
// markers stay visible to the login flow's classifier.
func (c *Client) checkStatus(status int, body []byte, requestURL string) error {
	if status >= 200 && status < 300 {
		return nil
	}

	message := fmt.Sprintf("request failed with status %d", status)
	if upstream := upstreamMessages(body); upstream != "" {
		message = fmt.Sprintf("%s: %s", message, upstream)
	}

	c.logger.WarnWithFields("upstream returned error", map[string]interface{}{
		"status": status,
		"url":    requestURL,
	})

	return errors.WithCode(statusKind(status), status, message)
}

func statusKind(status int) errors.Kind {
	if status == http.StatusNotFound {
		return errors.KindNotFound
	}
	return errors.KindUpstream
}

// upstreamMessages extracts and joins the error messages from a platform
// error body, or returns "" when the body is not the known error shape.
func upstreamMessages(body []byte) string {
	var parsed apiErrors
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Errors) == 0 {
		return ""
	}

	messages := make([]string, 0, len(parsed.Errors))
	for _, e := range parsed.Errors {
		messages = append(messages, e.Message)
	}
	return strings.Join(messages, "; ")
}

func (c *Client) decode(body []byte, target interface{}, status int, requestURL string) error {
	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          requestURL,
			"status":       status,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return errors.WithCode(errors.KindDataShape, status,
			fmt.Sprintf("failed to parse JSON: %v", err))
	}
	return nil
}
