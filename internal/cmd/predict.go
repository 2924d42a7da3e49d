package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signlab/pjmsign/internal/imgio"
	"github.com/signlab/pjmsign/internal/labels"
	"github.com/signlab/pjmsign/internal/landmarks"
	"github.com/signlab/pjmsign/internal/pipeline"
)

func predictCommand() *cobra.Command {
	var (
		modelPath string
		showProbs bool
	)

	cmd := &cobra.Command{
		Use:   "predict IMAGE...",
		Short: "Recognize the static sign in one or more images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if modelPath == "" {
				modelPath = settings.CheckpointPath
			}

			providerCfg := landmarks.Config{
				MinConfidence:   settings.MinConfidence,
				MinTrackingConf: settings.MinTrackingConf,
				ScriptPath:      settings.ProviderScript,
			}
			provider, err := landmarks.NewHolisticProvider(providerCfg, landmarks.DefaultOrder())
			if err != nil {
				return fmt.Errorf("start landmark provider: %w", err)
			}

			rec, err := pipeline.Load(modelPath, provider, landmarks.DefaultOrder())
			if err != nil {
				provider.Close()
				return err
			}
			defer rec.Close()

			return runPredict(rec, args, showProbs)
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "trained artifact path (default: checkpoint_path setting)")
	cmd.Flags().BoolVar(&showProbs, "probs", false, "print the full class distribution")

	return cmd
}

func runPredict(rec *pipeline.Recognizer, paths []string, showProbs bool) error {
	for _, path := range paths {
		img, err := imgio.Open(path)
		if err != nil {
			return err
		}

		pred, err := rec.Recognize(img)
		img.Close()
		if err != nil {
			// A failed detection is recoverable for the batch: report the
			// image and move on. Anything else aborts.
			var detErr *landmarks.DetectionError
			if errors.As(err, &detErr) {
				fmt.Printf("%s: no sign detected (%s missing)\n", path, detErr.Region)
				continue
			}
			return fmt.Errorf("%s: %w", path, err)
		}

		fmt.Printf("%s: %s (confidence %.3f)\n", path, pred.Display, pred.Confidence)
		if showProbs {
			for i, p := range pred.Probabilities {
				label, _ := labels.Map(i)
				fmt.Printf("  %-8s %.4f\n", label, p)
			}
		}
	}
	return nil
}
