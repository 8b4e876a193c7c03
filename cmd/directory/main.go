// cmd/directory/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"maginhawa-directory/internal/collection"
	"maginhawa-directory/internal/common/aws"
	"maginhawa-directory/internal/common/config"
	"maginhawa-directory/internal/common/database"
	stderrors "maginhawa-directory/internal/common/errors"
	"maginhawa-directory/internal/common/logger"
	"maginhawa-directory/internal/index"
	"maginhawa-directory/internal/pipeline"
	"maginhawa-directory/internal/publish"
	"maginhawa-directory/internal/submission"
	"maginhawa-directory/internal/validation"
)

// Exit statuses for the validate command. CI gates merges on these.
const (
	exitOK              = 0
	exitInvalidRecords  = 1
	exitExecutionFailed = 2
)

var (
	cfgFile    string
	jsonReport bool

	cfg    *config.Config
	zapLog *zap.Logger
	log    logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "directory",
	Short: "Content pipeline for the community restaurant directory",
	Long: `directory validates place records, builds the derived search index and
stats artifacts, and serves the submission API for external collaborators.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFromFile(cfgFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
		log = logger.NewZapAdapter(zapLog)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if zapLog != nil {
			_ = zapLog.Sync()
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate place records against the schema",
	Long: `Validates every record in the collection, or a single file when one is
given. All field violations for a record are reported together. Exits 1 when
any record is invalid and 2 when validation itself could not run.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		summary, err := runValidate(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitExecutionFailed)
		}

		if jsonReport {
			report, err := summary.MachineReport()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(exitExecutionFailed)
			}
			fmt.Println(report)
		} else {
			fmt.Print(summary.Report())
		}

		if !summary.AllValid() {
			os.Exit(exitInvalidRecords)
		}
	},
}

var buildIndexCmd = &cobra.Command{
	Use:   "build-index",
	Short: "Build the search index artifact from valid records",
	RunE: func(cmd *cobra.Command, args []string) error {
		pl := pipeline.New(cfg.Content.RecordsDir, cfg.Content.IndexArtifact, cfg.Content.StatsArtifact, log)
		idx, err := pl.BuildIndex()
		if err != nil {
			return err
		}

		if cfg.Search.Enabled {
			if err := publishToSearch(cmd.Context(), idx); err != nil {
				return err
			}
		}
		return nil
	},
}

var buildStatsCmd = &cobra.Command{
	Use:   "build-stats",
	Short: "Build the stats artifact from valid records",
	RunE: func(cmd *cobra.Command, args []string) error {
		pl := pipeline.New(cfg.Content.RecordsDir, cfg.Content.IndexArtifact, cfg.Content.StatsArtifact, log)
		_, err := pl.BuildStats()
		return err
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build both the index and stats artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		pl := pipeline.New(cfg.Content.RecordsDir, cfg.Content.IndexArtifact, cfg.Content.StatsArtifact, log)
		idx, _, err := pl.Build()
		if err != nil {
			return err
		}

		if cfg.Search.Enabled {
			if err := publishToSearch(cmd.Context(), idx); err != nil {
				return err
			}
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the submission API",
	RunE:  runServe,
}

func runValidate(args []string) (*validation.Summary, error) {
	var files []collection.File

	if len(args) == 1 {
		file, err := collection.ReadOne(args[0])
		if err != nil {
			return nil, err
		}
		files = []collection.File{file}
	} else {
		var err error
		files, err = collection.Read(cfg.Content.RecordsDir)
		if err != nil {
			return nil, err
		}
	}

	return validation.ValidateCollection(files), nil
}

func publishToSearch(ctx context.Context, idx *index.Index) error {
	esClient, err := database.NewElasticsearch(cfg.Search)
	if err != nil {
		return fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}
	if err := esClient.Ping(); err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}

	publisher := publish.NewSearchPublisher(esClient, cfg.Search.IndexName, log)
	return publisher.Publish(ctx, idx)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	limiter, cleanup, err := buildLimiter(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	notifier, err := buildNotifier(ctx)
	if err != nil {
		return err
	}

	sink := submission.NewDirectorySink(cfg.Content.ProposalsDir)
	service := submission.NewService(cfg.Content.RecordsDir, limiter, sink, notifier, log)
	handler := submission.NewHandler(service, cfg.Server.CSRFCookieName, cfg.Server.CSRFHeaderName, log)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Routes())

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Submission API listening", map[string]interface{}{
			"address": cfg.Server.Address,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	log.Info("Shutdown signal received, draining connections...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildLimiter(ctx context.Context) (submission.Limiter, func(), error) {
	limit := cfg.RateLimit.Limit
	window := config.GetDuration(cfg.RateLimit.Window)

	if cfg.RateLimit.Backend == "redis" {
		redisClient, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		if err := redisClient.Ping(ctx); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		limiter := submission.NewRedisLimiter(redisClient.GetClient(), limit, window, nil)
		return limiter, func() { _ = redisClient.Close() }, nil
	}

	return submission.NewMemoryLimiter(limit, window, nil), func() {}, nil
}

func buildNotifier(ctx context.Context) (submission.Notifier, error) {
	if !cfg.Notifications.Email.Enabled {
		return submission.NoOpNotifier{}, nil
	}

	sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SES client: %w", err)
	}
	return submission.NewSESNotifier(
		sesClient,
		cfg.Notifications.Email.FromEmail,
		cfg.Notifications.Email.ToEmails,
		log,
	), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	validateCmd.Flags().BoolVar(&jsonReport, "json", false, "emit a machine-readable JSON report")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(buildIndexCmd)
	rootCmd.AddCommand(buildStatsCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if _, ok := stderrors.CodeOf(err); ok {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitExecutionFailed)
	}
}
