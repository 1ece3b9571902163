package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mkamenskiy/greenboard/internal/board"
	"github.com/mkamenskiy/greenboard/internal/logger"
	"github.com/mkamenskiy/greenboard/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored postings, best first",
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, pg *store.Postgres, logger *zap.Logger) error {
			visa, _ := cmd.Flags().GetString("visa")
			minScore, _ := cmd.Flags().GetInt("min-score")
			status, _ := cmd.Flags().GetString("status")
			savedOnly, _ := cmd.Flags().GetBool("saved")
			sortBy, _ := cmd.Flags().GetString("sort")
			limit, _ := cmd.Flags().GetInt("limit")

			filter := store.Filter{
				Confidence: board.VisaConfidence(visa),
				MinScore:   minScore,
				Status:     board.Status(status),
				SavedOnly:  savedOnly,
				SortBy:     sortBy,
				Limit:      limit,
			}

			postings, err := pg.Query(ctx, filter)
			if err != nil {
				return err
			}

			for _, p := range postings {
				marker := " "
				if p.Saved {
					marker = "*"
				}
				fmt.Printf("%s %s  %3d  %3d%%  %-7s %-12s %s / %s\n",
					marker, p.ID, p.MatchScore, p.SuccessProbability,
					p.VisaConfidence, p.Status, p.Title, p.Company)
			}

			logger.Info("postings listed", zap.Int("count", len(postings)))
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one posting with its full verdict",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		withStore(func(ctx context.Context, pg *store.Postgres, _ *zap.Logger) error {
			p, err := pg.GetByID(ctx, args[0])
			if err != nil {
				return err
			}

			pretty, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(pretty))
			return nil
		})
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <id>",
	Short: "Toggle the saved flag on a posting",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		withStore(func(ctx context.Context, pg *store.Postgres, logger *zap.Logger) error {
			saved, err := pg.ToggleSaved(ctx, args[0])
			if err != nil {
				return err
			}
			logger.Info("saved flag updated", zap.String("id", args[0]), zap.Bool("saved", saved))
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Set the application status of a posting",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		withStore(func(ctx context.Context, pg *store.Postgres, logger *zap.Logger) error {
			if err := pg.SetStatus(ctx, args[0], args[1]); err != nil {
				return err
			}
			logger.Info("status updated", zap.String("id", args[0]), zap.String("status", args[1]))
			return nil
		})
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes <id> <text...>",
	Short: "Replace the notes on a posting",
	Args:  cobra.MinimumNArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		withStore(func(ctx context.Context, pg *store.Postgres, logger *zap.Logger) error {
			notes := strings.Join(args[1:], " ")
			if err := pg.SetNotes(ctx, args[0], notes); err != nil {
				return err
			}
			logger.Info("notes updated", zap.String("id", args[0]))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd, showCmd, saveCmd, statusCmd, notesCmd)

	listCmd.Flags().String("visa", "", "filter by visa confidence (green, yellow, red)")
	listCmd.Flags().Int("min-score", 0, "filter by minimum match score")
	listCmd.Flags().String("status", "", "filter by application status")
	listCmd.Flags().Bool("saved", false, "only saved postings")
	listCmd.Flags().String("sort", "", "sort order: score (default), probability, posted_at")
	listCmd.Flags().Int("limit", 50, "maximum postings to list")
}

func withStore(fn func(context.Context, *store.Postgres, *zap.Logger) error) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil || config.Postgres == nil || config.Postgres.DSN == "" {
		logger.Fatal("postgres dsn is not configured (set postgres.dsn or GREENBOARD_POSTGRES_DSN)")
	}

	pg, err := store.NewPostgres(ctx, config.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("connecting to the store", zap.Error(err))
	}
	defer pg.Close()

	if err := fn(ctx, pg, logger); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}
