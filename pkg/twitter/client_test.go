package twitter

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitterdl/pkg/errors"
	"twitterdl/pkg/logger"
)

// mockRoundTripper intercepts HTTP requests so tests never touch the network.
type mockRoundTripper struct {
	mu      sync.Mutex
	handler func(req *http.Request) (*http.Response, error)
	calls   []*http.Request
	bodies  []string
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	body := ""
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		body = string(data)
		req.Body = io.NopCloser(strings.NewReader(body))
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.bodies = append(m.bodies, body)
	m.mu.Unlock()

	return m.handler(req)
}

func (m *mockRoundTripper) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func newTestClient(t *testing.T, handler func(req *http.Request) (*http.Response, error)) (*Client, *mockRoundTripper) {
	t.Helper()
	rt := &mockRoundTripper{handler: handler}
	client := NewClient(30*time.Second, logger.NewTestLogger())
	client.httpClient = &http.Client{Transport: rt, Timeout: 30 * time.Second}
	return client, rt
}

func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newResponseWithCookies(statusCode int, body string, setCookies ...string) *http.Response {
	resp := newResponse(statusCode, body)
	for _, c := range setCookies {
		resp.Header.Add("Set-Cookie", c)
	}
	return resp
}

func TestClientSendsBaseAndRequestHeaders(t *testing.T) {
	var seen http.Header
	client, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		seen = req.Header
		return newResponse(http.StatusOK, `{}`), nil
	})
	client.SetHeader("X-Base", "base")

	var out struct{}
	err := client.GetJSON(context.Background(), "https://api.twitter.com/x", nil,
		map[string]string{"X-Scoped": "scoped"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "base", seen.Get("X-Base"))
	assert.Equal(t, "scoped", seen.Get("X-Scoped"))
	assert.Equal(t, "en-US,en;q=0.9", seen.Get("Accept-Language"))
}

func TestClientGetJSONQueryEncoding(t *testing.T) {
	var seenURL string
	client, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		seenURL = req.URL.String()
		return newResponse(http.StatusOK, `{}`), nil
	})

	var out struct{}
	err := client.GetJSON(context.Background(), "https://twitter.com/i/api/graphql/q",
		LookupQuery("123"), nil, &out)
	require.NoError(t, err)

	assert.Contains(t, seenURL, "variables=")
	assert.Contains(t, seenURL, "features=")
	assert.Contains(t, seenURL, "123")
}

func TestClientClassifiesNetworkError(t *testing.T) {
	client, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, io.ErrUnexpectedEOF
	})

	var out struct{}
	err := client.GetJSON(context.Background(), "https://api.twitter.com/x", nil, nil, &out)
	require.Error(t, err)
	assert.Equal(t, errors.KindUpstream, errors.KindOf(err))
}

func TestClientClassifiesStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   errors.Kind
	}{
		{http.StatusNotFound, errors.KindNotFound},
		{http.StatusUnauthorized, errors.KindUpstream},
		{http.StatusForbidden, errors.KindUpstream},
		{http.StatusInternalServerError, errors.KindUpstream},
		{http.StatusTooManyRequests, errors.KindUpstream},
	}

	for _, tt := range tests {
		client, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			return newResponse(tt.status, `{}`), nil
		})

		var out struct{}
		err := client.GetJSON(context.Background(), "https://api.twitter.com/x", nil, nil, &out)
		require.Error(t, err)
		assert.Equal(t, tt.want, errors.KindOf(err))
	}
}

func TestClientFoldsUpstreamMessagesIntoError(t *testing.T) {
	body := `{"errors":[{"code":399,"message":"Denied: LoginAcid challenge required"}]}`
	client, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusBadRequest, body), nil
	})

	_, err := client.PostJSON(context.Background(), "https://api.twitter.com/x", nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LoginAcid")
}

func TestClientMalformedJSONIsDataShape(t *testing.T) {
	client, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusOK, `{"data":`), nil
	})

	var out struct{}
	err := client.GetJSON(context.Background(), "https://api.twitter.com/x", nil, nil, &out)
	require.Error(t, err)
	assert.Equal(t, errors.KindDataShape, errors.KindOf(err))
}

func TestClientPostJSONReturnsHeaders(t *testing.T) {
	client, rt := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return newResponseWithCookies(http.StatusOK, `{"flow_token":"t1"}`,
			"att=abc; Path=/; Domain=.twitter.com; Secure"), nil
	})

	var out flowResponse
	header, err := client.PostJSON(context.Background(), "https://api.twitter.com/x", nil,
		flowStartRequest{FlowName: "login"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "t1", out.FlowToken)
	assert.Equal(t, []string{"att=abc; Path=/; Domain=.twitter.com; Secure"}, header.Values("Set-Cookie"))
	assert.Contains(t, rt.bodies[0], `"flow_name":"login"`)
}

func TestClientDownload(t *testing.T) {
	client, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusOK, "media-bytes"), nil
	})

	data, err := client.Download(context.Background(), "https://video.twimg.com/v.mp4")
	require.NoError(t, err)
	assert.Equal(t, []byte("media-bytes"), data)
}

func TestClientDownloadNon200(t *testing.T) {
	client, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusForbidden, ""), nil
	})

	_, err := client.Download(context.Background(), "https://video.twimg.com/v.mp4")
	require.Error(t, err)
	assert.Equal(t, errors.KindUpstream, errors.KindOf(err))
}

func TestClientSetProxy(t *testing.T) {
	client := NewClient(time.Second, logger.NewTestLogger())
	require.NoError(t, client.SetProxy("127.0.0.1", 8080))

	transport, ok := client.httpClient.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, transport.Proxy)

	req, _ := http.NewRequest(http.MethodGet, "https://twitter.com", nil)
	proxyURL, err := transport.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", proxyURL.String())
}

func TestClientSetBases(t *testing.T) {
	client := NewClient(time.Second, logger.NewTestLogger())
	client.SetBases("http://localhost:1", "")

	assert.Equal(t, "http://localhost:1", client.apiBase)
	assert.Equal(t, DefaultGraphQLBase, client.gqlBase)
}
