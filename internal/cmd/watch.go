package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/signlab/pjmsign/internal/capture"
	"github.com/signlab/pjmsign/internal/landmarks"
	"github.com/signlab/pjmsign/internal/pipeline"
)

func watchCommand() *cobra.Command {
	var (
		modelPath string
		source    string
		interval  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recognize signs live from a camera or video file",
		Long: `Watch reads frames from a camera device (numeric source) or a video
file and prints a prediction whenever the recognized sign changes.
Frames without a detectable signer are skipped. Stop with Ctrl-C;
a video file stops on its own at the end.`,
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

			stream := capture.NewStream(capture.ParseSource(source))
			if err := stream.Open(); err != nil {
				return err
			}
			defer stream.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, stream, rec, interval, cmd)
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "trained artifact path (default: checkpoint_path setting)")
	cmd.Flags().StringVar(&source, "source", "0", "camera device index or video file path")
	cmd.Flags().DurationVar(&interval, "interval", 200*time.Millisecond, "delay between frames")

	return cmd
}

// runWatch drives the frame loop. Only changes in the displayed label are
// printed so a held sign produces one line, not one per frame.
func runWatch(ctx context.Context, stream capture.Stream, rec *pipeline.Recognizer, interval time.Duration, cmd *cobra.Command) error {
	var last string

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := stream.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		pred, err := rec.Recognize(frame)
		frame.Close()
		if err != nil {
			var detErr *landmarks.DetectionError
			if errors.As(err, &detErr) {
				last = ""
				sleepCtx(ctx, interval)
				continue
			}
			return err
		}

		if string(pred.Display) != last {
			last = string(pred.Display)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (confidence %.3f)\n", pred.Display, pred.Confidence)
		}

		sleepCtx(ctx, interval)
	}
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
