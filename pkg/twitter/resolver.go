package twitter

import (
	"context"
	stderrors "errors"
	"time"

	"twitterdl/pkg/errors"
	"twitterdl/pkg/logger"
	"twitterdl/pkg/models"
)

// Terminal result messages. Callers distinguish error kinds by message; the
// structured kind is available on the validation error path.
const (
	msgInvalidURL       = "Invalid twitter url!"
	msgIDNotFound       = "There was an error getting twitter id. Make sure your twitter url is correct!"
	msgGuestTokenFailed = "Failed to get Guest Token. Authorization is invalid!"
	msgTweetNotFound    = "Tweet not found!"
	msgSensitiveContent = "This tweet contains sensitive content!"
)

// Options configure a Resolver. The zero value uses the built-in app
// authorization, no cookie, no proxy, and a 30 second timeout.
type Options struct {
	// Authorization overrides the default app bearer token.
	Authorization string
	// Cookie is a pre-authenticated session cookie string; its CSRF
	// fragment is sent with lookups.
	Cookie string
	// Proxy routing for all outbound requests.
	UseProxy  bool
	ProxyHost string
	ProxyPort int
	// Timeout bounds every individual network call.
	Timeout   time.Duration
	UserAgent string
	// APIBase and GraphQLBase override upstream base URLs; tests use these.
	APIBase     string
	GraphQLBase string

	Logger logger.Logger
}

// Resolver orchestrates one-post lookups. It is stateless across Resolve
// calls and safe for concurrent use.
type Resolver struct {
	client        *Client
	authorization string
	cookie        string
	userAgent     string
	log           logger.Logger
}

// NewResolver builds a Resolver from options.
func NewResolver(opts Options) (*Resolver, error) {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := NewClient(timeout, log)
	client.SetBases(opts.APIBase, opts.GraphQLBase)
	if opts.UseProxy {
		if err := client.SetProxy(opts.ProxyHost, opts.ProxyPort); err != nil {
			return nil, err
		}
	}

	authorization := opts.Authorization
	if authorization == "" {
		authorization = DefaultAuthorization
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_3) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.132 Safari/537.36"
	}

	return &Resolver{
		client:        client,
		authorization: authorization,
		cookie:        opts.Cookie,
		userAgent:     userAgent,
		log:           log,
	}, nil
}

// Resolve looks up a single post by URL. Input validation failures return a
// classified error before any network call; every failure past that point is
// folded into a terminal error-status result, never an error return.
func (r *Resolver) Resolve(ctx context.Context, postURL string, creds *Credentials) (*models.Tweet, error) {
	if !ValidatePostURL(postURL) {
		return nil, errors.New(errors.KindInvalidInput, msgInvalidURL)
	}
	id := ExtractPostID(postURL)
	if id == "" {
		return nil, errors.New(errors.KindInvalidInput, msgIDNotFound)
	}

	log := r.log.WithField("tweet_id", id)

	guestToken, err := r.client.ActivateGuestToken(ctx, r.authorization)
	if err != nil || guestToken == "" {
		return errorResult(msgGuestTokenFailed), nil
	}

	doc, err := r.lookup(ctx, id, guestToken, CSRFToken(r.cookie))
	if err != nil {
		return errorResult(errMessage(err)), nil
	}

	result := doc.Data.TweetResult.Result
	if result == nil {
		return errorResult(msgTweetNotFound), nil
	}

	var sessionCookie string
	if result.gated() {
		log.Info("post is sensitivity-gated, attempting login")

		var flowCreds Credentials
		if creds != nil {
			flowCreds = *creds
		}
		sessionCookie, err = r.client.LoginCookie(ctx, flowCreds, r.authorization, guestToken)
		if err != nil {
			if errors.Is(err, errors.KindCredentialsRequired) {
				return errorResult(msgSensitiveContent), nil
			}
			return errorResult(errMessage(err)), nil
		}
		if sessionCookie == "" {
			return errorResult(msgSensitiveContent), nil
		}

		doc, err = r.lookup(ctx, id, guestToken, CSRFToken(sessionCookie))
		if err != nil {
			return errorResult(errMessage(err)), nil
		}
		result = doc.Data.TweetResult.Result
		if result == nil {
			return errorResult(msgTweetNotFound), nil
		}
		if result.gated() {
			return errorResult(msgSensitiveContent), nil
		}
	}

	cookie := sessionCookie
	if cookie == "" {
		cookie = r.cookie
	}

	log.Debug("lookup resolved, normalizing")
	return normalize(result, cookie, r.log), nil
}

// Client exposes the underlying HTTP client, e.g. for media downloads that
// should share proxy and timeout settings.
func (r *Resolver) Client() *Client {
	return r.client
}

// lookup issues one TweetResultByRestId query.
func (r *Resolver) lookup(ctx context.Context, id, guestToken, csrfToken string) (*lookupResponse, error) {
	headers := map[string]string{
		"Authorization": r.authorization,
		"x-csrf-token":  csrfToken,
		"x-guest-token": guestToken,
		"user-agent":    r.userAgent,
	}

	var doc lookupResponse
	if err := r.client.GetJSON(ctx, TweetLookupURL(r.client.gqlBase), LookupQuery(id), headers, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Resolve is a convenience wrapper that builds a throwaway Resolver.
func Resolve(ctx context.Context, postURL string, opts Options, creds *Credentials) (*models.Tweet, error) {
	r, err := NewResolver(opts)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, postURL, creds)
}

func errorResult(message string) *models.Tweet {
	return &models.Tweet{
		Status:  models.StatusError,
		Message: message,
	}
}

// errMessage prefers the classified error's bare message over the decorated
// Error() string, matching the result shape callers see.
func errMessage(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
