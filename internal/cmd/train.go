package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signlab/pjmsign/internal/config"
	"github.com/signlab/pjmsign/internal/dataset"
	"github.com/signlab/pjmsign/internal/features"
	"github.com/signlab/pjmsign/internal/labels"
	"github.com/signlab/pjmsign/internal/landmarks"
	"github.com/signlab/pjmsign/internal/model"
	"github.com/signlab/pjmsign/internal/report"
	"github.com/signlab/pjmsign/internal/runstore"
)

func trainCommand() *cobra.Command {
	var (
		epochs    int
		batchSize int
		lr        float64
		plotPath  string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the sign classifier on pre-split CSV datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("epochs") {
				settings.Epochs = epochs
			}
			if cmd.Flags().Changed("batch-size") {
				settings.BatchSize = batchSize
			}
			if cmd.Flags().Changed("learning-rate") {
				settings.LearningRate = lr
			}
			return runTrain(settings, plotPath)
		},
	}

	cmd.Flags().IntVar(&epochs, "epochs", 100, "number of training epochs")
	cmd.Flags().IntVar(&batchSize, "batch-size", 32, "mini-batch size")
	cmd.Flags().Float64Var(&lr, "learning-rate", 1e-4, "Adamax learning rate")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write training curves to this PNG after the run")

	return cmd
}

func runTrain(settings *config.Settings, plotPath string) error {
	x, y, err := dataset.LoadSplit(settings.TrainFeatures, settings.TrainTargets, 0, labels.Count)
	if err != nil {
		return fmt.Errorf("load training set: %w", err)
	}
	log.Printf("Loaded %d training samples with %d features", len(x), len(x[0]))

	var valX, valY [][]float64
	if settings.TestFeatures != "" {
		valX, valY, err = dataset.LoadSplit(settings.TestFeatures, settings.TestTargets, len(x[0]), labels.Count)
		if err != nil {
			return fmt.Errorf("load test set: %w", err)
		}
		log.Printf("Loaded %d validation samples", len(valX))
	}

	// The scaler is fit on the training set only and reused verbatim for
	// validation and inference.
	scaler := features.NewMinMaxScaler()
	scaledX, err := scaler.FitTransform(x)
	if err != nil {
		return fmt.Errorf("fit scaler: %w", err)
	}
	scaledVal := make([][]float64, len(valX))
	for i, v := range valX {
		if scaledVal[i], err = scaler.Transform(v); err != nil {
			return fmt.Errorf("scale validation sample %d: %w", i, err)
		}
	}

	network := model.NewNetwork(len(x[0]), settings.Seed)
	order := landmarks.DefaultOrder()

	store, err := runstore.New(settings.RunStorePath)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer store.Close()

	run := &runstore.Run{
		Epochs:       settings.Epochs,
		BatchSize:    settings.BatchSize,
		LearningRate: settings.LearningRate,
	}
	if err := store.Runs().Create(run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	log.Printf("Started training run %s", run.ID)

	if err := os.MkdirAll(filepath.Dir(settings.CheckpointPath), 0755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}

	cfg := model.TrainConfig{
		Epochs:       settings.Epochs,
		BatchSize:    settings.BatchSize,
		LearningRate: settings.LearningRate,
		Checkpoint: func(m model.EpochMetrics) error {
			art := &model.Artifact{Scaler: scaler, Network: network, OrderVersion: order.Version}
			if err := art.Save(settings.CheckpointPath); err != nil {
				return err
			}
			log.Printf("Epoch %d improved validation accuracy to %.4f, checkpoint saved", m.Epoch, m.ValAccuracy)
			return nil
		},
	}

	history, err := network.Train(scaledX, y, scaledVal, valY, cfg)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	for _, m := range history.Epochs {
		if err := store.Runs().AddEpoch(run.ID, m); err != nil {
			return fmt.Errorf("record epoch %d: %w", m.Epoch, err)
		}
	}
	if err := store.Runs().Finish(run.ID, history.Best.ValAccuracy, settings.CheckpointPath); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	if plotPath != "" {
		if err := report.TrainingCurves(history.Epochs, "run "+run.ID, plotPath); err != nil {
			return err
		}
		log.Printf("Training curves written to %s", plotPath)
	}

	fmt.Printf("Run %s finished: best validation accuracy %.4f at epoch %d (model: %s)\n",
		run.ID, history.Best.ValAccuracy, history.Best.Epoch, settings.CheckpointPath)
	return nil
}
