package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"twitterdl/internal/downloader"
	"twitterdl/pkg/auth"
	"twitterdl/pkg/config"
	"twitterdl/pkg/logger"
	"twitterdl/pkg/models"
	"twitterdl/pkg/storage"
	"twitterdl/pkg/twitter"
)

var (
	fetchUsername     string
	fetchPassword     string
	fetchVerification string
	fetchAccount      string
	fetchCookie       string
	fetchDownload     bool
	fetchOutputDir    string
	fetchConcurrent   int
)

// fetchCmd resolves a single post and prints its metadata as JSON.
var fetchCmd = &cobra.Command{
	Use:   "fetch <tweet_url>",
	Short: "Resolve a tweet URL into structured metadata",
	Long: `Resolve a single Twitter/X post URL into structured JSON metadata.

For sensitivity-gated posts, credentials are looked up in this order:
  - the --username/--password flags
  - the account named by --account
  - the default stored account (see 'twitterdl auth login')
  - TWITTERDL_USERNAME and TWITTERDL_PASSWORD environment variables

With --download, every media item on the post is downloaded concurrently:
photos at original quality, videos and GIFs as the highest-bitrate MP4.`,
	Example: `  # Print tweet metadata as JSON
  twitterdl fetch https://twitter.com/user/status/1234567890

  # Resolve a gated post with explicit credentials
  twitterdl fetch https://x.com/user/status/1234567890 -u myuser

  # Download all media to a directory
  twitterdl fetch https://x.com/user/status/1234567890 --download -o ./media`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchUsername, "username", "u", "", "account username for gated posts")
	fetchCmd.Flags().StringVar(&fetchPassword, "password", "", "account password (prompted when omitted)")
	fetchCmd.Flags().StringVar(&fetchVerification, "verification-code", "", "verification code for login challenges")
	fetchCmd.Flags().StringVarP(&fetchAccount, "account", "a", "", "use a specific stored account")
	fetchCmd.Flags().StringVar(&fetchCookie, "cookie", "", "pre-authenticated session cookie")
	fetchCmd.Flags().BoolVarP(&fetchDownload, "download", "d", false, "download all media on the post")
	fetchCmd.Flags().StringVarP(&fetchOutputDir, "output", "o", "", "output directory for downloads")
	fetchCmd.Flags().IntVar(&fetchConcurrent, "concurrent", 0, "number of concurrent downloads")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	postURL := strings.TrimSpace(args[0])

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFetchOverrides(cfg)

	if err := logger.Initialize(logger.Options{Level: cfg.Logging.Level, File: cfg.Logging.File}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	creds := resolveCredentials(log)

	resolver, err := twitter.NewResolver(twitter.Options{
		Authorization: cfg.Twitter.Authorization,
		Cookie:        cfg.Twitter.Cookie,
		UseProxy:      cfg.Proxy.Enabled,
		ProxyHost:     cfg.Proxy.Host,
		ProxyPort:     cfg.Proxy.Port,
		Timeout:       cfg.Twitter.RequestTimeout,
		UserAgent:     cfg.Twitter.UserAgent,
		Logger:        log,
	})
	if err != nil {
		return fmt.Errorf("failed to build resolver: %w", err)
	}

	tweet, err := resolver.Resolve(context.Background(), postURL, creds)
	if err != nil {
		return err
	}

	output, err := json.MarshalIndent(tweet, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(output))

	if tweet.Status != models.StatusSuccess {
		os.Exit(1)
	}

	if fetchDownload && tweet.Result != nil {
		if err := downloadMedia(cfg, resolver, tweet.Result, log); err != nil {
			return err
		}
	}

	return nil
}

// applyFetchOverrides folds command line flags into the loaded configuration.
func applyFetchOverrides(cfg *config.Config) {
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if fetchCookie != "" {
		cfg.Twitter.Cookie = fetchCookie
	}
	if fetchOutputDir != "" {
		cfg.Download.OutputDir = fetchOutputDir
	}
	if fetchConcurrent > 0 {
		cfg.Download.ConcurrentDownloads = fetchConcurrent
	}
}

// resolveCredentials picks login credentials from flags, stored accounts, or
// the environment. A nil return means the post must be public.
func resolveCredentials(log logger.Logger) *twitter.Credentials {
	if fetchUsername != "" {
		password := fetchPassword
		if password == "" {
			fmt.Fprintf(os.Stderr, "Password for %s: ", fetchUsername)
			read, err := readPassword()
			if err != nil {
				log.WithError(err).Error("Failed to read password")
				os.Exit(1)
			}
			password = read
		}
		return &twitter.Credentials{
			Username:         fetchUsername,
			Password:         password,
			VerificationCode: fetchVerification,
		}
	}

	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Debug("Credential manager unavailable")
		return nil
	}

	var account *auth.Account
	if fetchAccount != "" {
		account, err = manager.Retrieve(fetchAccount)
		if err != nil {
			log.WithField("account", fetchAccount).Error("Stored account not found")
			os.Exit(1)
		}
	} else {
		account, err = manager.RetrieveDefault()
		if err != nil {
			return nil
		}
	}

	return &twitter.Credentials{
		Username:         account.Username,
		Password:         account.Password,
		VerificationCode: fetchVerification,
	}
}

// downloadMedia fetches every media item on the post through a worker pool.
func downloadMedia(cfg *config.Config, resolver *twitter.Resolver, result *models.TweetResult, log logger.Logger) error {
	jobs := downloader.JobsForTweet(result)
	if len(jobs) == 0 {
		log.Info("Post has no downloadable media")
		return nil
	}

	manager, err := storage.NewManager(cfg.Download.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}

	pool := downloader.NewWorkerPool(cfg.Download.ConcurrentDownloads, resolver.Client(), manager, log)
	pool.Start()

	for _, job := range jobs {
		if err := pool.Submit(job); err != nil {
			log.WithError(err).WithField("filename", job.Filename).Error("Failed to queue download")
		}
	}

	done := make(chan struct{})
	var failed int
	go func() {
		defer close(done)
		for result := range pool.Results() {
			if result.Error != nil {
				failed++
				fmt.Fprintf(os.Stderr, "failed: %s: %v\n", result.Job.Filename, result.Error)
				continue
			}
			if result.Skipped {
				fmt.Fprintf(os.Stderr, "exists: %s\n", result.Job.Filename)
				continue
			}
			fmt.Fprintf(os.Stderr, "saved: %s (%d bytes)\n", result.Job.Filename, result.Size)
		}
	}()

	pool.Stop()
	<-done

	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(jobs))
	}
	return nil
}
