// Package models defines the flat domain model returned to callers. It is
// the only artifact of a lookup; once constructed it is never mutated.
package models

// Status values carried by Tweet.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Media type tags.
const (
	MediaTypePhoto       = "photo"
	MediaTypeVideo       = "video"
	MediaTypeAnimatedGIF = "animated_gif"
)

// Tweet is the result of a single post lookup. On error only Status and
// Message are set. Cookie4SensitiveContent carries a session cookie acquired
// while resolving gated content so callers can reuse it.
type Tweet struct {
	Status                  string       `json:"status"`
	Message                 string       `json:"message,omitempty"`
	Result                  *TweetResult `json:"result,omitempty"`
	Cookie4SensitiveContent string       `json:"cookie4SensitiveContent,omitempty"`
}

// TweetResult holds the normalized post payload.
type TweetResult struct {
	ID                        string     `json:"id"`
	CreatedAt                 string     `json:"createdAt"`
	Description               string     `json:"description"`
	Language                  string     `json:"language"`
	PossiblySensitive         bool       `json:"possiblySensitive"`
	PossiblySensitiveEditable bool       `json:"possiblySensitiveEditable"`
	IsQuoteStatus             bool       `json:"isQuoteStatus"`
	MediaCount                int        `json:"mediaCount"`
	Author                    Author     `json:"author"`
	Statistics                Statistics `json:"statistics"`
	Media                     []Media    `json:"media"`
}

// Statistics holds post engagement counters.
type Statistics struct {
	ReplyCount    int `json:"replyCount"`
	RetweetCount  int `json:"retweetCount"`
	FavoriteCount int `json:"favoriteCount"`
	ViewCount     int `json:"viewCount"`
}

// Author holds the post author's profile data. URL is derived from the
// platform base URL and the username.
type Author struct {
	Username          string           `json:"username"`
	Bio               string           `json:"bio"`
	PossiblySensitive bool             `json:"possiblySensitive"`
	Verified          bool             `json:"verified"`
	Location          string           `json:"location"`
	ProfileBannerURL  string           `json:"profileBannerUrl"`
	ProfileImageURL   string           `json:"profileImageUrl"`
	URL               string           `json:"url"`
	Statistics        AuthorStatistics `json:"statistics"`
}

// AuthorStatistics holds the author's account counters.
type AuthorStatistics struct {
	FavoriteCount  int `json:"favoriteCount"`
	FollowersCount int `json:"followersCount"`
	FriendsCount   int `json:"friendsCount"`
	StatusesCount  int `json:"statusesCount"`
	ListedCount    int `json:"listedCount"`
	MediaCount     int `json:"mediaCount"`
}

// Media is a tagged union over attachment kinds. Photos carry Image and
// ExpandedURL only; videos and animated GIFs carry Cover, Duration,
// ExpandedURL and the MP4 variant list.
type Media struct {
	Type        string         `json:"type"`
	Image       string         `json:"image,omitempty"`
	ExpandedURL string         `json:"expandedUrl"`
	Cover       string         `json:"cover,omitempty"`
	Duration    string         `json:"duration,omitempty"`
	Videos      []VideoVariant `json:"videos,omitempty"`
}

// IsVideoLike reports whether the media entry carries encoded variants.
func (m Media) IsVideoLike() bool {
	return m.Type == MediaTypeVideo || m.Type == MediaTypeAnimatedGIF
}

// VideoVariant is one encoded rendition of a video or animated GIF.
type VideoVariant struct {
	Bitrate     int    `json:"bitrate"`
	ContentType string `json:"content_type"`
	Quality     string `json:"quality"`
	URL         string `json:"url"`
}
