package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mveldman/jobmatch/internal/ai"
	"github.com/mveldman/jobmatch/internal/ai/gemini"
	"github.com/mveldman/jobmatch/internal/jooble"
	"github.com/mveldman/jobmatch/internal/logger"
	"github.com/mveldman/jobmatch/internal/pipeline"
	"github.com/mveldman/jobmatch/internal/planner"
	"github.com/mveldman/jobmatch/internal/secrets"
	"github.com/mveldman/jobmatch/internal/server"
	"github.com/mveldman/jobmatch/internal/sink"
)

const (
	defaultAddress  = ":8080"
	defaultLocation = "Netherlands"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matching pipeline over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (default :8080)")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the jobmatch server", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	pipe, snk, err := buildPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}
	defer snk.Close()

	address := defaultAddress
	if config.Server != nil && config.Server.Address != "" {
		address = config.Server.Address
	}
	if flagAddr := viper.GetString("server.address"); flagAddr != "" {
		address = flagAddr
	}

	logger.Info("listening", zap.String("address", address), zap.Bool("sink_enabled", snk.Enabled()))

	srv := server.New(pipe, snk, logger)
	if err := srv.Run(address); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// buildPipeline wires the provider client, the optional scorer and the
// optional sink from the config. Every collaborator is constructed here
// and injected; nothing ambient survives past this function.
func buildPipeline(ctx context.Context, config *Config, logger *zap.Logger) (*pipeline.Pipeline, *sink.Sink, error) {
	if config.Provider == nil {
		return nil, nil, fmt.Errorf("provider configuration is required")
	}

	key, err := secrets.Load(secrets.Source{
		Name: "jooble api key",
		File: config.Provider.APIKeyFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set provider.api-key-file or JOOBLE_KEY_FILE)", err)
	}

	provider := jooble.New(key, logger)
	if config.Provider.APIURL != "" {
		provider.APIURL = config.Provider.APIURL
	}
	if config.Provider.UserAgent != "" {
		provider.UserAgent = config.Provider.UserAgent
	}
	if config.Provider.RequestsPerSecond > 0 {
		provider.SetRateLimit(config.Provider.RequestsPerSecond, config.Provider.Burst)
	}

	scorer, err := buildScorer(ctx, config.AI, logger)
	if err != nil {
		return nil, nil, err
	}

	var snk *sink.Sink
	if config.Sink != nil && config.Sink.Path != "" {
		snk, err = sink.Open(config.Sink.Path, logger)
		if err != nil {
			// The sink is best effort: run without persistence.
			logger.Warn("result sink not connected, persistence disabled",
				zap.String("path", config.Sink.Path),
				zap.Error(err),
			)
			snk = nil
		}
	}

	cfg := &pipeline.Config{
		Location:      defaultLocation,
		FallbackQuery: planner.DefaultFallback,
	}
	if config.Search != nil {
		if config.Search.Location != "" {
			cfg.Location = config.Search.Location
		}
		if config.Search.FallbackQuery != "" {
			cfg.FallbackQuery = config.Search.FallbackQuery
		}
		cfg.MaxResults = config.Search.MaxResults
		cfg.TopK = config.Search.TopK
		cfg.Blocklist = config.Search.Blocklist
	}

	return pipeline.New(cfg, provider, scorer, snk, logger), snk, nil
}

func buildScorer(ctx context.Context, config *AIConfig, logger *zap.Logger) (ai.Scorer, error) {
	if config == nil || !config.Enabled {
		logger.Info("ai scoring disabled")
		return nil, nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.Model)
	if err != nil {
		return nil, err
	}

	cooldown := time.Duration(config.CooldownSeconds) * time.Second

	scorerLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewScorer(generator, cooldown, config.MaxLogLength, scorerLogger), nil
}
