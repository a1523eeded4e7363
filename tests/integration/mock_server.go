package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
)

// MockTwitterServer simulates the upstream endpoints the resolver talks to:
// guest activation, the GraphQL tweet lookup, the onboarding login flow, and
// a media CDN for download tests.
type MockTwitterServer struct {
	server *httptest.Server

	mu              sync.Mutex
	lookupResponses []lookupResponse
	lookupCalls     int32
	flowStep        int
	flowFailStep    int
	flowFailBody    string
	guestToken      string
	requestCount    int32
}

// lookupResponse is one scripted lookup answer.
type lookupResponse struct {
	status int
	body   string
}

// NewMockTwitterServer creates a mock server. Lookup responses are consumed
// in order, so a gated document followed by a public one exercises the
// login-and-retry path.
func NewMockTwitterServer() *MockTwitterServer {
	m := &MockTwitterServer{
		guestToken: "mock-guest-token",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/guest/activate.json", m.handleGuestActivate)
	mux.HandleFunc("/1.1/onboarding/task.json", m.handleFlow)
	mux.HandleFunc("/graphql/", m.handleLookup)
	mux.HandleFunc("/media/", m.handleMedia)

	m.server = httptest.NewServer(mux)
	return m
}

// URL returns the server's base URL, usable as both the API and GraphQL base.
func (m *MockTwitterServer) URL() string {
	return m.server.URL
}

// Close shuts the server down.
func (m *MockTwitterServer) Close() {
	m.server.Close()
}

// QueueLookup appends a scripted lookup response.
func (m *MockTwitterServer) QueueLookup(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupResponses = append(m.lookupResponses, lookupResponse{status: status, body: body})
}

// FailFlowStep makes the numbered flow step (1-based) answer with a 400 and
// the given body, simulating a login challenge.
func (m *MockTwitterServer) FailFlowStep(step int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flowFailStep = step
	m.flowFailBody = body
}

// LookupCalls returns how many lookup requests were served.
func (m *MockTwitterServer) LookupCalls() int {
	return int(atomic.LoadInt32(&m.lookupCalls))
}

// RequestCount returns the total number of requests served.
func (m *MockTwitterServer) RequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

func (m *MockTwitterServer) handleGuestActivate(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.Header.Get("Authorization") == "" {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":[{"code":99,"message":"Unable to verify your credentials"}]}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"guest_token": m.guestToken})
}

func (m *MockTwitterServer) handleLookup(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	if !strings.Contains(r.URL.Path, "TweetResultByRestId") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	atomic.AddInt32(&m.lookupCalls, 1)

	m.mu.Lock()
	var resp lookupResponse
	if len(m.lookupResponses) > 0 {
		resp = m.lookupResponses[0]
		m.lookupResponses = m.lookupResponses[1:]
	} else {
		resp = lookupResponse{status: http.StatusInternalServerError, body: `{}`}
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	fmt.Fprint(w, resp.body)
}

// handleFlow walks the onboarding login flow. The first call (flow start)
// sets an att cookie; the final duplication-check step sets the session
// cookies the resolver needs for its retry.
func (m *MockTwitterServer) handleFlow(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	m.mu.Lock()
	m.flowStep++
	step := m.flowStep
	failStep := m.flowFailStep
	failBody := m.flowFailBody
	m.mu.Unlock()

	if failStep > 0 && step == failStep {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, failBody)
		return
	}

	// Raw header values: the upstream sends the dotted Domain form, which
	// http.SetCookie would strip.
	switch step {
	case 1:
		w.Header().Add("Set-Cookie", "att=flow-att; Path=/; Domain=.twitter.com; Secure")
	case 5, 6:
		w.Header().Add("Set-Cookie", "ct0=mock-csrf; Path=/; Domain=.twitter.com; Secure")
		w.Header().Add("Set-Cookie", "auth_token=mock-auth; Path=/; Domain=.twitter.com; Secure; HttpOnly")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"flow_token": fmt.Sprintf("flow-%d", step),
		"status":     "success",
	})
}

func (m *MockTwitterServer) handleMedia(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	w.Header().Set("Content-Type", "application/octet-stream")
	fmt.Fprintf(w, "media-bytes-for-%s", strings.TrimPrefix(r.URL.Path, "/media/"))
}
