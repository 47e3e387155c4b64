package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sitelens/sitelens/internal/analyser"
	"github.com/sitelens/sitelens/internal/crawler"
	"github.com/sitelens/sitelens/internal/storage"
)

// Config holds the application configuration loaded from environment variables
type Config struct {
	Env       string // Environment (development/production)
	SentryDSN string // Sentry DSN for error tracking
	LogLevel  string // Log level (debug, info, warn, error)
}

func main() {
	// Load .env files - .env.local takes priority for development
	godotenv.Load(".env.local", ".env")

	config := &Config{
		Env:       getEnvWithDefault("APP_ENV", "development"),
		SentryDSN: os.Getenv("SENTRY_DSN"),
		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
	}

	var (
		siteURL       = flag.String("url", "", "Site URL to analyse (required)")
		maxPages      = flag.Int("max-pages", 0, "Maximum pages to analyse (default 50, max 1000)")
		includeImages = flag.Bool("images", false, "Collect image references")
		deepAnalysis  = flag.Bool("deep", false, "Run exact-order content extraction per page")
		rateLimit     = flag.Int("rate", 2, "Maximum requests per second")
		outPath       = flag.String("out", "", "Write results as JSON Lines to this file")
	)
	flag.Parse()

	setupLogging(config)

	if *siteURL == "" {
		fmt.Fprintln(os.Stderr, "Usage: sitelens -url https://example.com [-max-pages N] [-images] [-deep] [-out results.jsonl]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	// Initialise Sentry for error tracking
	if config.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.SentryDSN,
			Environment: config.Env,
			TracesSampleRate: func() float64 {
				if config.Env == "production" {
					return 0.1 // 10% sampling in production
				}
				return 1.0 // 100% sampling in development
			}(),
			AttachStacktrace: true,
			Debug:            config.Env == "development",
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialise Sentry")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	crawlerConfig := crawler.DefaultConfig()
	crawlerConfig.RateLimit = *rateLimit

	opts := analyser.Options{
		MaxPages:      *maxPages,
		IncludeImages: *includeImages,
		DeepAnalysis:  *deepAnalysis,
	}

	var sink *storage.JSONLSink
	if *outPath != "" {
		var err error
		sink, err = storage.OpenJSONLSink(*outPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *outPath).Msg("Failed to open output file")
		}
		defer sink.Close()
	}

	a, err := analyser.New(crawlerConfig, opts, sinkOrNil(sink), nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid options")
	}

	// Cancel the run on Ctrl-C; pages analysed so far are kept
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run, err := a.Run(ctx, *siteURL)
	if err != nil {
		log.Fatal().Err(err).Str("url", *siteURL).Msg("Analysis failed")
	}

	if sink != nil {
		if err := sink.WriteRunSummary(run); err != nil {
			log.Error().Err(err).Msg("Failed to write run summary")
		}
	}

	log.Info().
		Str("run_id", run.RunID).
		Str("mode", string(run.DiscoveryMode)).
		Int("pages_crawled", run.PagesCrawled).
		Int("pages_failed", run.PagesFailed).
		Int("technologies", len(run.Technologies)).
		Msg("Done")
}

// sinkOrNil avoids handing the analyser a typed-nil interface value.
func sinkOrNil(sink *storage.JSONLSink) analyser.Sink {
	if sink == nil {
		return nil
	}
	return sink
}

// getEnvWithDefault gets an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupLogging configures the logging system
func setupLogging(config *Config) {
	// Configure log level
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	// Use console writer in development
	if config.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).
			With().
			Timestamp().
			Str("service", "sitelens").
			Logger()
	}
}
