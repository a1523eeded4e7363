package twitter

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"twitterdl/pkg/logger"
	"twitterdl/pkg/models"
)

const contentTypeMP4 = "video/mp4"

// QualityUnknown labels an encoded variant whose delivery URL lacks the
// embedded resolution segment. Such variants are kept, not dropped.
const QualityUnknown = "unknown"

var resolutionPattern = regexp.MustCompile(`/(\d+x\d+)/`)

// normalize maps the raw lookup result onto the flat domain model. It is a
// pure transform: identical inputs always produce identical outputs, and no
// network or retry behavior lives here.
func normalize(result *rawResult, cookie string, log logger.Logger) *models.Tweet {
	if log == nil {
		log = logger.GetLogger()
	}
	tweet := result.unwrap()
	legacy := tweet.Legacy
	user := tweet.Core.UserResults.Result.Legacy

	media := make([]models.Media, 0, len(legacy.Entities.Media))
	for _, m := range legacy.Entities.Media {
		media = append(media, normalizeMedia(m, log))
	}

	return &models.Tweet{
		Status: models.StatusSuccess,
		Result: &models.TweetResult{
			ID:                        legacy.IDStr,
			CreatedAt:                 legacy.CreatedAt,
			Description:               legacy.FullText,
			Language:                  legacy.Lang,
			PossiblySensitive:         legacy.PossiblySensitive,
			PossiblySensitiveEditable: legacy.PossiblySensitiveEditable,
			IsQuoteStatus:             legacy.IsQuoteStatus,
			MediaCount:                len(media),
			Author: models.Author{
				Username:          user.ScreenName,
				Bio:               user.Description,
				PossiblySensitive: user.PossiblySensitive,
				Verified:          user.Verified,
				Location:          user.Location,
				ProfileBannerURL:  user.ProfileBannerURL,
				ProfileImageURL:   user.ProfileImageURLHTTPS,
				URL:               ProfileURL(user.ScreenName),
				Statistics: models.AuthorStatistics{
					FavoriteCount:  user.FavouritesCount,
					FollowersCount: user.FollowersCount,
					FriendsCount:   user.FriendsCount,
					StatusesCount:  user.StatusesCount,
					ListedCount:    user.ListedCount,
					MediaCount:     user.MediaCount,
				},
			},
			Statistics: models.Statistics{
				ReplyCount:    legacy.ReplyCount,
				RetweetCount:  legacy.RetweetCount,
				FavoriteCount: legacy.FavoriteCount,
				ViewCount:     parseViewCount(tweet.Views.Count),
			},
			Media: media,
		},
		Cookie4SensitiveContent: cookie,
	}
}

// normalizeMedia maps one attachment by its declared type. Photos carry no
// duration, cover, or variants; videos and animated GIFs carry all three.
func normalizeMedia(m rawMedia, log logger.Logger) models.Media {
	if m.Type == models.MediaTypePhoto {
		return models.Media{
			Type:        m.Type,
			Image:       m.MediaURLHTTPS,
			ExpandedURL: m.ExpandedURL,
		}
	}

	duration := 0
	if m.VideoInfo != nil {
		duration = m.VideoInfo.DurationMillis
	}

	return models.Media{
		Type:        m.Type,
		Cover:       m.MediaURLHTTPS,
		Duration:    formatDuration(duration),
		ExpandedURL: m.ExpandedURL,
		Videos:      mp4Variants(m, log),
	}
}

// mp4Variants keeps only the MP4 renditions and attaches a human-readable
// quality label. Animated GIFs report no per-variant resolution; their label
// is the original pixel size. True videos embed it in the delivery URL as a
// /WxH/ segment; a variant missing that segment gets QualityUnknown and a
// warning rather than being dropped.
func mp4Variants(m rawMedia, log logger.Logger) []models.VideoVariant {
	if m.VideoInfo == nil {
		return nil
	}

	isGIF := m.Type == models.MediaTypeAnimatedGIF
	variants := make([]models.VideoVariant, 0, len(m.VideoInfo.Variants))
	for _, v := range m.VideoInfo.Variants {
		if v.ContentType != contentTypeMP4 {
			continue
		}

		var quality string
		if isGIF {
			quality = fmt.Sprintf("%dx%d", m.OriginalInfo.Width, m.OriginalInfo.Height)
		} else if match := resolutionPattern.FindStringSubmatch(v.URL); match != nil {
			quality = match[1]
		} else {
			log.WarnWithFields("variant URL lacks resolution segment", map[string]interface{}{
				"url": v.URL,
			})
			quality = QualityUnknown
		}

		variants = append(variants, models.VideoVariant{
			Bitrate:     v.Bitrate,
			ContentType: v.ContentType,
			Quality:     quality,
			URL:         v.URL,
		})
	}
	return variants
}

// formatDuration renders a millisecond duration as m:ss. A zero duration
// (animated GIFs) renders as "0:00".
func formatDuration(millis int) string {
	minutes := millis / 60000
	seconds := int(math.Round(float64(millis%60000) / 1000))
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// parseViewCount reads the string-typed view counter leniently: anything
// non-numeric counts as zero.
func parseViewCount(count string) int {
	n, err := strconv.Atoi(count)
	if err != nil {
		return 0
	}
	return n
}
