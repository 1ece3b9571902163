package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mkamenskiy/greenboard/internal/ai"
	"github.com/mkamenskiy/greenboard/internal/ai/gemini"
	"github.com/mkamenskiy/greenboard/internal/board"
	"github.com/mkamenskiy/greenboard/internal/classify"
	"github.com/mkamenskiy/greenboard/internal/logger"
	"github.com/mkamenskiy/greenboard/internal/pipeline"
	"github.com/mkamenskiy/greenboard/internal/registry"
	"github.com/mkamenskiy/greenboard/internal/secrets"
	"github.com/mkamenskiy/greenboard/internal/source"
	"github.com/mkamenskiy/greenboard/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes             = "Yes"
	PromptNo              = "No"
	PromptReportByCompany = "Report by company"
	PromptPostingsToFile  = "Dump postings to file"

	topListSize = 10
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Commit these postings?",
	Items: []string{PromptYes, PromptNo, PromptReportByCompany, PromptPostingsToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion pass and commit the results",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before committing postings")
	runCmd.Flags().Bool("dry-run", false, "collect and score without touching the database")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting greenboard", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	fetchers, err := buildFetchers(config, logger)
	if err != nil {
		logger.Fatal("building source fetchers", zap.Error(err))
	}

	pl, err := buildPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	sink, cleanup, err := buildStore(ctx, cmd, config, logger)
	if err != nil {
		logger.Fatal("building the store", zap.Error(err))
	}
	defer cleanup()

	result, err := pl.Collect(ctx, fetchers)
	if err != nil {
		logger.Fatal("ingestion pass failed", zap.Error(err))
	}

	if len(result.Postings) == 0 {
		logger.Info("exiting", zap.String("reason", "no postings survived the pass"))
		return
	}

	action := PromptYes
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of postings", zap.Int("count", len(result.Postings)))

		if err := handleAction(ctx, action, pl, sink, logger, result); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, pl *pipeline.Pipeline, sink pipeline.Store, logger *zap.Logger, result *pipeline.Result) error {
	switch action {
	case PromptYes:
		written, err := pl.Commit(ctx, sink, result.Postings)
		if err != nil {
			return err
		}
		logger.Info("postings committed", zap.Int("count", written))
		logTop(ctx, sink, logger)
		return errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(board.ReportByCompany(result.Postings), "", "  ")
		logger.Info(string(pretty), zap.Int("postings count", len(result.Postings)))
		return nil
	case PromptPostingsToFile:
		filename, err := board.DumpToTmpFile(result.Postings)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

type queryStore interface {
	pipeline.Store
	TopByScore(ctx context.Context, n int) ([]*board.StoredPosting, error)
}

func logTop(ctx context.Context, sink pipeline.Store, logger *zap.Logger) {
	qs, ok := sink.(queryStore)
	if !ok {
		return
	}

	top, err := qs.TopByScore(ctx, topListSize)
	if err != nil {
		logger.Warn("listing top postings", zap.Error(err))
		return
	}

	for _, p := range top {
		logger.Info("top posting",
			zap.String("title", p.Title),
			zap.String("company", p.Company),
			zap.Int("score", p.MatchScore),
			zap.Int("probability", p.SuccessProbability),
			zap.String("visa", string(p.VisaConfidence)),
			zap.String("url", p.URL),
		)
	}
}

func buildFetchers(config *Config, logger *zap.Logger) ([]source.Fetcher, error) {
	if config.Sources == nil {
		return nil, errors.New("at least one source must be configured under sources")
	}

	var fetchers []source.Fetcher
	if config.Sources.Adzuna != nil {
		fetchers = append(fetchers, source.NewAdzuna(*config.Sources.Adzuna, logger))
	}
	if config.Sources.Reed != nil {
		fetchers = append(fetchers, source.NewReed(*config.Sources.Reed, logger))
	}

	if len(fetchers) == 0 {
		return nil, errors.New("at least one source must be configured under sources")
	}

	return fetchers, nil
}

func buildPipeline(ctx context.Context, config *Config, logger *zap.Logger) (*pipeline.Pipeline, error) {
	var cache *registry.Cache
	if config.Redis != nil && config.Redis.URL != "" {
		opts, err := redis.ParseURL(config.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		cache = registry.NewCache(redis.NewClient(opts))
	} else {
		logger.Warn("redis is not configured, registry downloads will not be cached")
	}

	scorer, err := buildAIScorer(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("skipping external scorer", zap.Error(err))
	}

	return pipeline.New(pipeline.Config{
		Classifier:    classify.New(),
		SponsorLoader: registry.NewSponsorLoader(cache, logger),
		BCorpLoader:   registry.NewBCorpLoader(cache, logger),
		AIScorer:      scorer,
		MinScore:      config.MinScore,
		Logger:        logger,
	}), nil
}

func buildStore(ctx context.Context, cmd *cobra.Command, config *Config, logger *zap.Logger) (pipeline.Store, func(), error) {
	if cmd != nil && cmd.Flag("dry-run") != nil && cmd.Flag("dry-run").Value.String() == "true" {
		logger.Info("dry run, postings will not be persisted")
		return store.NewMemory(), func() {}, nil
	}

	if config.Postgres == nil || config.Postgres.DSN == "" {
		return nil, nil, errors.New("postgres dsn is not configured (set postgres.dsn or GREENBOARD_POSTGRES_DSN)")
	}

	pg, err := store.NewPostgres(ctx, config.Postgres.DSN, logger)
	if err != nil {
		return nil, nil, err
	}

	return pg, pg.Close, nil
}

func buildAIScorer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Scorer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when the external scorer is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	scorerLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewScorer(generator, scorerLogger, cfg.Gemini.MaxLogLength, 0), nil
}
