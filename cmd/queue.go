package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shenikar/incident_board/internal/config"
	"github.com/shenikar/incident_board/internal/models"
	"github.com/shenikar/incident_board/internal/repository"
	"github.com/shenikar/incident_board/internal/seed"
	"github.com/shenikar/incident_board/internal/service"
	"github.com/shenikar/incident_board/internal/webhook"
	"github.com/shenikar/incident_board/pkg/logger"
)

func newQueueCmd() *cobra.Command {
	var (
		filterValue string
		seedFile    string
	)

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Print incidents from the seed ordered by priority",
		Example: "  incident-board queue --filter OPEN\n" +
			"  incident-board queue --filter critical --seed ./board.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := models.ParseFilter(filterValue)
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if seedFile == "" {
				seedFile = cfg.SeedFile
			}

			now := time.Now()
			board, err := seed.Load(seedFile, now)
			if err != nil {
				return fmt.Errorf("failed to load seed: %w", err)
			}

			log := logger.NewWithOutput(cfg.LogLevel, os.Stderr)
			dispatchService := service.NewDispatchService(repository.NewBoardRepository(board), log, webhook.NoopPublisher{})

			incidents, err := dispatchService.ListIncidents(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printIncidents(cmd.OutOrStdout(), incidents, now)
		},
	}

	cmd.Flags().StringVarP(&filterValue, "filter", "f", "ALL", "ALL, OPEN, a priority or an incident status")
	cmd.Flags().StringVar(&seedFile, "seed", "", "seed YAML file (defaults to SEED_FILE or the embedded seed)")
	return cmd
}

// printIncidents выводит инциденты таблицей
func printIncidents(out io.Writer, incidents []*models.Incident, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRIORITY\tSTATUS\tTYPE\tAGE\tUNITS\tTITLE")
	for _, inc := range incidents {
		units := "-"
		if len(inc.AssignedUnits) > 0 {
			units = strings.Join(inc.AssignedUnits, ",")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			inc.ID, inc.Priority, inc.Status, inc.Type,
			now.Sub(inc.Timestamp).Truncate(time.Minute), units, inc.Title)
	}
	return w.Flush()
}
