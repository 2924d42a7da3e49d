package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/signlab/pjmsign/internal/report"
	"github.com/signlab/pjmsign/internal/runstore"
)

func runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded training runs",
	}
	cmd.AddCommand(runsListCommand(), runsPlotCommand())
	return cmd
}

func runsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List training runs, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			store, err := runstore.New(settings.RunStorePath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs().List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No training runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tFINISHED\tEPOCHS\tBATCH\tLR\tBEST ACC")
			for _, r := range runs {
				finished := "-"
				if r.FinishedAt.Valid {
					finished = r.FinishedAt.Time.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%g\t%.4f\n",
					r.ID, r.StartedAt.Format("2006-01-02 15:04"), finished,
					r.Epochs, r.BatchSize, r.LearningRate, r.BestAccuracy)
			}
			return w.Flush()
		},
	}
}

func runsPlotCommand() *cobra.Command {
	var runID, outPath string

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a run's training curves to a PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			store, err := runstore.New(settings.RunStorePath)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Runs().GetByID(runID)
			if err != nil {
				return fmt.Errorf("run %s: %w", runID, err)
			}

			epochs, err := store.Runs().EpochsByRun(run.ID)
			if err != nil {
				return err
			}
			if len(epochs) == 0 {
				return fmt.Errorf("run %s has no recorded epochs", run.ID)
			}

			title := fmt.Sprintf("Run %s (%s)", run.ID, run.StartedAt.Format("2006-01-02"))
			if err := report.TrainingCurves(epochs, title, outPath); err != nil {
				return err
			}

			fmt.Printf("Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "run ID to plot")
	cmd.Flags().StringVar(&outPath, "out", "training.png", "output PNG path")
	cmd.MarkFlagRequired("run")

	return cmd
}
