package twitter

// Raw wire shapes for the upstream API. These mirror the nested GraphQL
// document and the onboarding flow bodies; nothing here leaks past
// normalization.

// guestTokenResponse is returned by the guest activation endpoint.
type guestTokenResponse struct {
	GuestToken string `json:"guest_token"`
}

// lookupResponse is the envelope of a TweetResultByRestId query.
type lookupResponse struct {
	Data struct {
		TweetResult struct {
			Result *rawResult `json:"result"`
		} `json:"tweetResult"`
	} `json:"data"`
}

// rawResult is the lookup result. When Typename tags it as visibility
// wrapped, the actual tweet sits one level deeper in Tweet; otherwise the
// embedded RawTweet fields apply directly.
type rawResult struct {
	Typename string    `json:"__typename"`
	Reason   string    `json:"reason"`
	Tweet    *RawTweet `json:"tweet"`
	RawTweet
}

const (
	typenameVisibilityWrapped = "TweetWithVisibilityResults"

	// reasonGated marks a post whose full data needs an authenticated session.
	reasonGated = "NsfwLoggedOut"
)

// unwrap descends through the optional visibility indirection.
func (r *rawResult) unwrap() *RawTweet {
	if r.Typename == typenameVisibilityWrapped && r.Tweet != nil {
		return r.Tweet
	}
	return &r.RawTweet
}

// gated reports whether the result carries the sensitivity reason marker.
func (r *rawResult) gated() bool {
	return r.Reason == reasonGated
}

// RawTweet is the platform-shaped tweet document.
type RawTweet struct {
	Legacy rawTweetLegacy `json:"legacy"`
	Core   struct {
		UserResults struct {
			Result rawUser `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
	Views struct {
		// Count is string-typed upstream.
		Count string `json:"count"`
	} `json:"views"`
}

type rawTweetLegacy struct {
	IDStr                     string `json:"id_str"`
	CreatedAt                 string `json:"created_at"`
	FullText                  string `json:"full_text"`
	Lang                      string `json:"lang"`
	PossiblySensitive         bool   `json:"possibly_sensitive"`
	PossiblySensitiveEditable bool   `json:"possibly_sensitive_editable"`
	IsQuoteStatus             bool   `json:"is_quote_status"`
	ReplyCount                int    `json:"reply_count"`
	RetweetCount              int    `json:"retweet_count"`
	FavoriteCount             int    `json:"favorite_count"`
	Entities                  struct {
		Media []rawMedia `json:"media"`
	} `json:"entities"`
}

type rawUser struct {
	Legacy rawUserLegacy `json:"legacy"`
}

type rawUserLegacy struct {
	ScreenName           string `json:"screen_name"`
	Description          string `json:"description"`
	PossiblySensitive    bool   `json:"possibly_sensitive"`
	Verified             bool   `json:"verified"`
	Location             string `json:"location"`
	ProfileBannerURL     string `json:"profile_banner_url"`
	ProfileImageURLHTTPS string `json:"profile_image_url_https"`
	FavouritesCount      int    `json:"favourites_count"`
	FollowersCount       int    `json:"followers_count"`
	FriendsCount         int    `json:"friends_count"`
	StatusesCount        int    `json:"statuses_count"`
	ListedCount          int    `json:"listed_count"`
	MediaCount           int    `json:"media_count"`
}

type rawMedia struct {
	Type          string `json:"type"`
	MediaURLHTTPS string `json:"media_url_https"`
	ExpandedURL   string `json:"expanded_url"`
	OriginalInfo  struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"original_info"`
	VideoInfo *rawVideoInfo `json:"video_info"`
}

type rawVideoInfo struct {
	DurationMillis int          `json:"duration_millis"`
	Variants       []rawVariant `json:"variants"`
}

type rawVariant struct {
	Bitrate     int    `json:"bitrate"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// Onboarding flow bodies.

type flowStartRequest struct {
	FlowName      string        `json:"flow_name"`
	InputFlowData inputFlowData `json:"input_flow_data"`
}

type inputFlowData struct {
	FlowContext flowContext `json:"flow_context"`
}

type flowContext struct {
	DebugOverrides struct{}      `json:"debug_overrides"`
	StartLocation  startLocation `json:"start_location"`
}

type startLocation struct {
	Location string `json:"location"`
}

type flowStepRequest struct {
	FlowToken     string         `json:"flow_token"`
	SubtaskInputs []subtaskInput `json:"subtask_inputs"`
}

type subtaskInput struct {
	SubtaskID            string                `json:"subtask_id"`
	JsInstrumentation    *jsInstrumentation    `json:"js_instrumentation,omitempty"`
	SettingsList         *settingsList         `json:"settings_list,omitempty"`
	EnterPassword        *enterPassword        `json:"enter_password,omitempty"`
	CheckLoggedInAccount *checkLoggedInAccount `json:"check_logged_in_account,omitempty"`
	EnterText            *enterText            `json:"enter_text,omitempty"`
}

type jsInstrumentation struct {
	Response string `json:"response"`
	Link     string `json:"link"`
}

type settingsList struct {
	SettingResponses []settingResponse `json:"setting_responses"`
	Link             string            `json:"link"`
}

type settingResponse struct {
	Key          string       `json:"key"`
	ResponseData responseData `json:"response_data"`
}

type responseData struct {
	TextData textData `json:"text_data"`
}

type textData struct {
	Result string `json:"result"`
}

type enterPassword struct {
	Password string `json:"password"`
	Link     string `json:"link"`
}

type checkLoggedInAccount struct {
	Link string `json:"link"`
}

type enterText struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

type flowResponse struct {
	FlowToken string `json:"flow_token"`
	Status    string `json:"status"`
}

// apiErrors is the error body the platform returns on failed requests.
type apiErrors struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}
