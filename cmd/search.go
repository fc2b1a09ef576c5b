package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mveldman/jobmatch/internal/export"
	"github.com/mveldman/jobmatch/internal/logger"
	"github.com/mveldman/jobmatch/internal/pipeline"
	"github.com/mveldman/jobmatch/internal/posting"
)

const (
	PromptReport    = "Report by company"
	PromptDumpFile  = "Dump postings to file"
	PromptExportCSV = "Export postings to CSV"
	PromptQuit      = "Quit"
	csvExportPath   = "found_jobs.csv"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptReport, PromptDumpFile, PromptExportCSV, PromptQuit},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one matching pass from the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		search(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringArrayP("title", "t", nil, "raw role title (repeatable, first two are used)")
	searchCmd.Flags().StringSliceP("skills", "s", nil, "candidate skills for AI scoring")
	searchCmd.Flags().StringP("name", "n", "", "candidate name recorded in the result sink")
}

// search is the one-shot counterpart of the serve command: one pipeline
// run, then an interactive loop over the results.
func search(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	titles, _ := cmd.Flags().GetStringArray("title")
	skills, _ := cmd.Flags().GetStringSlice("skills")
	name, _ := cmd.Flags().GetString("name")

	if len(titles) == 0 {
		logger.Fatal("at least one --title is required")
	}

	pipe, snk, err := buildPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}
	defer snk.Close()

	signal := &pipeline.Signal{
		JobTitles: titles,
		Skills:    skills,
		RealName:  name,
	}

	results, err := pipe.Run(ctx, signal)
	if err != nil {
		logger.Fatal("running the pipeline", zap.Error(err))
	}

	if results.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	for {
		logger.Info("current list of postings", zap.Int("count", results.Len()))

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, results, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, results *posting.Postings, logger *zap.Logger) error {
	switch action {
	case PromptReport:
		pretty, _ := json.MarshalIndent(results.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("postings count", results.Len()))
		return nil
	case PromptDumpFile:
		filename, err := results.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExportCSV:
		file, err := os.Create(csvExportPath)
		if err != nil {
			return fmt.Errorf("create csv file: %w", err)
		}
		defer file.Close()

		if err := export.WriteCSV(file, results); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		logger.Info("exported postings", zap.String("filename", csvExportPath))
		return nil
	case PromptQuit:
		logger.Info("exiting", zap.String("reason", "got quit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}
