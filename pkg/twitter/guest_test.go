package twitter

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivateGuestToken(t *testing.T) {
	var seen *http.Request
	client, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		seen = req
		return newResponse(http.StatusOK, `{"guest_token":"1726349143"}`), nil
	})

	token, err := client.ActivateGuestToken(context.Background(), "Bearer app-token")
	require.NoError(t, err)
	assert.Equal(t, "1726349143", token)

	assert.Equal(t, http.MethodPost, seen.Method)
	assert.Equal(t, "/1.1/guest/activate.json", seen.URL.Path)
	assert.Equal(t, "Bearer app-token", seen.Header.Get("Authorization"))
}

func TestActivateGuestTokenFailure(t *testing.T) {
	client, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusForbidden, `{"errors":[{"code":200,"message":"Forbidden"}]}`), nil
	})

	token, err := client.ActivateGuestToken(context.Background(), "Bearer bad")
	assert.Error(t, err)
	assert.Empty(t, token)
}

func TestActivateGuestTokenEmptyBody(t *testing.T) {
	client, _ := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusOK, `{}`), nil
	})

	token, err := client.ActivateGuestToken(context.Background(), "Bearer app-token")
	require.NoError(t, err)
	assert.Empty(t, token)
}
