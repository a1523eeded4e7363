package downloader

import (
	"fmt"

	"twitterdl/pkg/models"
)

// JobsForTweet builds one download job per media item on a resolved post.
// Photos download the original image; videos and animated GIFs download the
// highest-bitrate MP4 variant.
func JobsForTweet(result *models.TweetResult) []DownloadJob {
	if result == nil {
		return nil
	}

	jobs := make([]DownloadJob, 0, len(result.Media))
	for i, media := range result.Media {
		url, ext := mediaSource(media)
		if url == "" {
			continue
		}

		jobs = append(jobs, DownloadJob{
			URL:      url,
			Filename: fmt.Sprintf("%s_%d%s", result.ID, i+1, ext),
			TweetID:  result.ID,
		})
	}

	return jobs
}

// mediaSource picks the download URL and file extension for one media item.
func mediaSource(media models.Media) (string, string) {
	if media.Type == models.MediaTypePhoto {
		return media.Image, ".jpg"
	}

	var best *models.VideoVariant
	for i := range media.Videos {
		if best == nil || media.Videos[i].Bitrate > best.Bitrate {
			best = &media.Videos[i]
		}
	}
	if best == nil {
		return "", ""
	}
	return best.URL, ".mp4"
}
