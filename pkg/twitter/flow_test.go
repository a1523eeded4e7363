package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitterdl/pkg/errors"
)

const challengeErrorBody = `{"errors":[{"code":399,"message":"To protect your account, you must verify: LoginAcid"}]}`

// flowScript serves one canned response per flow step, in call order.
type flowScript struct {
	responses []*http.Response
}

func (s *flowScript) handler() func(req *http.Request) (*http.Response, error) {
	i := 0
	return func(req *http.Request) (*http.Response, error) {
		if i >= len(s.responses) {
			return newResponse(http.StatusInternalServerError, `{}`), nil
		}
		resp := s.responses[i]
		i++
		return resp, nil
	}
}

func stepOK(token string, cookies ...string) *http.Response {
	return newResponseWithCookies(http.StatusOK, fmt.Sprintf(`{"flow_token":%q,"status":"success"}`, token), cookies...)
}

func decodeStepBody(t *testing.T, body string) flowStepRequest {
	t.Helper()
	var req flowStepRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestLoginCookieHappyPath(t *testing.T) {
	script := &flowScript{responses: []*http.Response{
		stepOK("t1", "att=first; Domain=.twitter.com; Path=/", "guest_id=g; Domain=.other.com"),
		stepOK("t2"),
		stepOK("t3"),
		stepOK("t4"),
		stepOK("t5", "ct0=csrf-value; Domain=.twitter.com", "auth_token=tok; Domain=.twitter.com"),
	}}
	client, rt := newTestClient(t, script.handler())

	cookie, err := client.LoginCookie(context.Background(),
		Credentials{Username: "user", Password: "pass"}, "Bearer auth", "guest-token")
	require.NoError(t, err)

	// step-1 and final-step cookies combined, domain filtered, arrival order.
	assert.Equal(t, "att=first;ct0=csrf-value;auth_token=tok", cookie)
	assert.Equal(t, 5, rt.callCount())

	// Every step hits the single flow endpoint.
	for _, req := range rt.calls {
		assert.Equal(t, "/1.1/onboarding/task.json", req.URL.Path)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "guest-token", req.Header.Get("X-Guest-Token"))
	}

	// Flow-token continuity: each step submits the previous step's token.
	assert.Contains(t, rt.bodies[0], `"flow_name":"login"`)
	for i, wantToken := range []string{"t1", "t2", "t3", "t4"} {
		step := decodeStepBody(t, rt.bodies[i+1])
		assert.Equal(t, wantToken, step.FlowToken)
	}

	// Step order and payload shape.
	assert.Equal(t, "LoginJsInstrumentationSubtask", decodeStepBody(t, rt.bodies[1]).SubtaskInputs[0].SubtaskID)
	identifier := decodeStepBody(t, rt.bodies[2]).SubtaskInputs[0]
	assert.Equal(t, "LoginEnterUserIdentifierSSO", identifier.SubtaskID)
	assert.Equal(t, "user", identifier.SettingsList.SettingResponses[0].ResponseData.TextData.Result)
	password := decodeStepBody(t, rt.bodies[3]).SubtaskInputs[0]
	assert.Equal(t, "LoginEnterPassword", password.SubtaskID)
	assert.Equal(t, "pass", password.EnterPassword.Password)
	assert.Equal(t, "AccountDuplicationCheck", decodeStepBody(t, rt.bodies[4]).SubtaskInputs[0].SubtaskID)

	// Accumulated cookies ride along from step 2 onward.
	assert.Equal(t, "att=first", rt.calls[1].Header.Get("Cookie"))
}

func TestLoginCookieRequiresCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
	}{
		{"empty", Credentials{}},
		{"missing password", Credentials{Username: "user"}},
		{"missing username", Credentials{Password: "pass"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, rt := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				t.Fatal("no network call expected")
				return nil, nil
			})

			_, err := client.LoginCookie(context.Background(), tt.creds, "Bearer auth", "gt")
			require.Error(t, err)
			assert.Equal(t, errors.KindCredentialsRequired, errors.KindOf(err))
			assert.Equal(t, 0, rt.callCount())
		})
	}
}

func TestLoginCookieFatalWithoutStartCookie(t *testing.T) {
	script := &flowScript{responses: []*http.Response{
		stepOK("t1"), // no Set-Cookie
	}}
	client, rt := newTestClient(t, script.handler())

	_, err := client.LoginCookie(context.Background(),
		Credentials{Username: "user", Password: "pass"}, "Bearer auth", "gt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to get cookie for login!")

	// The flow never proceeds to step 2.
	assert.Equal(t, 1, rt.callCount())
}

func TestLoginCookieChallengeWithoutCode(t *testing.T) {
	script := &flowScript{responses: []*http.Response{
		stepOK("t1", "att=first; Domain=.twitter.com"),
		stepOK("t2"),
		stepOK("t3"),
		stepOK("t4"),
		newResponse(http.StatusBadRequest, challengeErrorBody),
	}}
	client, rt := newTestClient(t, script.handler())

	_, err := client.LoginCookie(context.Background(),
		Credentials{Username: "user", Password: "pass"}, "Bearer auth", "gt")
	require.Error(t, err)
	assert.Equal(t, errors.KindVerificationRequired, errors.KindOf(err))

	// No further network calls after the intercepted step 5.
	assert.Equal(t, 5, rt.callCount())
}

func TestLoginCookieChallengeWithCode(t *testing.T) {
	script := &flowScript{responses: []*http.Response{
		stepOK("t1", "att=first; Domain=.twitter.com"),
		stepOK("t2"),
		stepOK("t3"),
		stepOK("t4"),
		newResponse(http.StatusBadRequest, challengeErrorBody),
		stepOK("t6", "auth_token=tok; Domain=.twitter.com"),
	}}
	client, rt := newTestClient(t, script.handler())

	cookie, err := client.LoginCookie(context.Background(),
		Credentials{Username: "user", Password: "pass", VerificationCode: "123456"},
		"Bearer auth", "gt")
	require.NoError(t, err)
	assert.Equal(t, "att=first;auth_token=tok", cookie)
	require.Equal(t, 6, rt.callCount())

	// The confirmation submits the code under the detected subtask id.
	confirmation := decodeStepBody(t, rt.bodies[5]).SubtaskInputs[0]
	assert.Equal(t, "LoginAcid", confirmation.SubtaskID)
	assert.Equal(t, "123456", confirmation.EnterText.Text)
	assert.Equal(t, "t4", decodeStepBody(t, rt.bodies[5]).FlowToken)
}

func TestLoginCookieTwoFactorMarker(t *testing.T) {
	body := `{"errors":[{"code":399,"message":"LoginTwoFactorAuthChallenge required"}]}`
	script := &flowScript{responses: []*http.Response{
		stepOK("t1", "att=first; Domain=.twitter.com"),
		stepOK("t2"),
		stepOK("t3"),
		stepOK("t4"),
		newResponse(http.StatusBadRequest, body),
		stepOK("t6", "auth_token=tok; Domain=.twitter.com"),
	}}
	client, rt := newTestClient(t, script.handler())

	_, err := client.LoginCookie(context.Background(),
		Credentials{Username: "user", Password: "pass", VerificationCode: "000000"},
		"Bearer auth", "gt")
	require.NoError(t, err)

	confirmation := decodeStepBody(t, rt.bodies[5]).SubtaskInputs[0]
	assert.Equal(t, "LoginTwoFactorAuthChallenge", confirmation.SubtaskID)
}

func TestLoginCookieUnknownFailurePropagates(t *testing.T) {
	script := &flowScript{responses: []*http.Response{
		stepOK("t1", "att=first; Domain=.twitter.com"),
		stepOK("t2"),
		stepOK("t3"),
		stepOK("t4"),
		newResponse(http.StatusBadRequest, `{"errors":[{"code":366,"message":"flow aborted"}]}`),
	}}
	client, rt := newTestClient(t, script.handler())

	_, err := client.LoginCookie(context.Background(),
		Credentials{Username: "user", Password: "pass", VerificationCode: "123"},
		"Bearer auth", "gt")
	require.Error(t, err)
	// Not a challenge: the original failure propagates unchanged.
	assert.Equal(t, errors.KindUpstream, errors.KindOf(err))
	assert.Contains(t, err.Error(), "flow aborted")
	assert.Equal(t, 5, rt.callCount())
}

func TestLoginCookieTransportFailureAborts(t *testing.T) {
	calls := 0
	client, rt := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 3 {
			return nil, fmt.Errorf("connection reset")
		}
		return stepOK(fmt.Sprintf("t%d", calls), "att=first; Domain=.twitter.com"), nil
	})

	_, err := client.LoginCookie(context.Background(),
		Credentials{Username: "user", Password: "pass"}, "Bearer auth", "gt")
	require.Error(t, err)
	assert.Equal(t, errors.KindUpstream, errors.KindOf(err))
	assert.Equal(t, 3, rt.callCount())
}

func TestClassifyChallenge(t *testing.T) {
	assert.Equal(t, "LoginAcid", classifyChallenge("blah LoginAcid blah"))
	assert.Equal(t, "LoginTwoFactorAuthChallenge", classifyChallenge("x LoginTwoFactorAuthChallenge"))
	assert.Equal(t, "", classifyChallenge("some other failure"))
	assert.Equal(t, "", classifyChallenge(""))
}

func TestFlowStepString(t *testing.T) {
	assert.Equal(t, "start", stepStart.String())
	assert.Equal(t, "instrumentation", stepInstrumentation.String())
	assert.Equal(t, "identifier", stepIdentifier.String())
	assert.Equal(t, "password", stepPassword.String())
	assert.Equal(t, "duplication-check", stepDuplicationCheck.String())
	assert.Equal(t, "confirmation", stepConfirmation.String())
}
