package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signlab/pjmsign/internal/dataset"
	"github.com/signlab/pjmsign/internal/features"
	"github.com/signlab/pjmsign/internal/imgio"
	"github.com/signlab/pjmsign/internal/labels"
	"github.com/signlab/pjmsign/internal/landmarks"
)

func datasetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Build and augment feature datasets from labeled images",
	}
	cmd.AddCommand(datasetBuildCommand(), datasetAugmentCommand())
	return cmd
}

func datasetBuildCommand() *cobra.Command {
	var (
		imagesDir    string
		featuresPath string
		targetsPath  string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Extract feature vectors from a directory of labeled images",
		Long: `Build walks a directory whose subdirectories are named after sign
labels (one subdirectory per class), extracts landmarks from every image
and writes the pairwise-distance feature vectors and one-hot targets as
CSV files. Images where detection fails are skipped and logged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
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
			defer provider.Close()

			return runDatasetBuild(provider, imagesDir, featuresPath, targetsPath)
		},
	}

	cmd.Flags().StringVar(&imagesDir, "images", "images", "directory of per-label image subdirectories")
	cmd.Flags().StringVar(&featuresPath, "features", "X.csv", "output CSV for feature vectors")
	cmd.Flags().StringVar(&targetsPath, "targets", "y.csv", "output CSV for one-hot targets")

	return cmd
}

func runDatasetBuild(provider landmarks.Provider, imagesDir, featuresPath, targetsPath string) error {
	order := landmarks.DefaultOrder()
	builder := features.NewBuilder(order)

	entries, err := os.ReadDir(imagesDir)
	if err != nil {
		return fmt.Errorf("read images directory: %w", err)
	}

	var x, y [][]float64
	skipped := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		label := labels.Label(entry.Name())
		classIdx := labels.Index(label)
		if classIdx < 0 {
			log.Printf("Skipping directory %q: not a known sign label", entry.Name())
			continue
		}

		target, err := labels.OneHot(classIdx)
		if err != nil {
			return err
		}

		dir := filepath.Join(imagesDir, entry.Name())
		images, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("read %s: %w", dir, err)
		}

		for _, imgEntry := range images {
			if imgEntry.IsDir() || !isImageFile(imgEntry.Name()) {
				continue
			}
			path := filepath.Join(dir, imgEntry.Name())

			vec, err := extractFeatures(provider, builder, path)
			if err != nil {
				var detErr *landmarks.DetectionError
				if errors.As(err, &detErr) {
					log.Printf("Skipping %s: %s not detected", path, detErr.Region)
					skipped++
					continue
				}
				return fmt.Errorf("%s: %w", path, err)
			}

			x = append(x, vec)
			y = append(y, target)
		}
	}

	if len(x) == 0 {
		return fmt.Errorf("no usable samples found in %s", imagesDir)
	}

	if err := dataset.SaveMatrix(featuresPath, x); err != nil {
		return err
	}
	if err := dataset.SaveMatrix(targetsPath, y); err != nil {
		return err
	}

	fmt.Printf("Wrote %d samples (%d skipped) to %s / %s\n", len(x), skipped, featuresPath, targetsPath)
	return nil
}

func extractFeatures(provider landmarks.Provider, builder *features.Builder, path string) ([]float64, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	set, err := provider.Detect(img)
	if err != nil {
		return nil, err
	}
	return builder.Build(set)
}

func datasetAugmentCommand() *cobra.Command {
	var inDir, outDir string

	cmd := &cobra.Command{
		Use:   "augment",
		Short: "Mirror labeled images to double the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDatasetAugment(inDir, outDir)
		},
	}

	cmd.Flags().StringVar(&inDir, "in", "images", "input directory of per-label image subdirectories")
	cmd.Flags().StringVar(&outDir, "out", "images-mirrored", "output directory for mirrored images")

	return cmd
}

func runDatasetAugment(inDir, outDir string) error {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return fmt.Errorf("read input directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		srcDir := filepath.Join(inDir, entry.Name())
		dstDir := filepath.Join(outDir, entry.Name())
		if err := os.MkdirAll(dstDir, 0755); err != nil {
			return err
		}

		images, err := os.ReadDir(srcDir)
		if err != nil {
			return err
		}

		for _, imgEntry := range images {
			if imgEntry.IsDir() || !isImageFile(imgEntry.Name()) {
				continue
			}

			img, err := imgio.Open(filepath.Join(srcDir, imgEntry.Name()))
			if err != nil {
				return err
			}

			mirrored := imgio.Mirror(img)
			dst := filepath.Join(dstDir, "mirror_"+imgEntry.Name())
			err = imgio.Save(dst, mirrored)
			mirrored.Close()
			img.Close()
			if err != nil {
				return err
			}
			count++
		}
	}

	fmt.Printf("Mirrored %d images into %s\n", count, outDir)
	return nil
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".bmp":
		return true
	}
	return false
}
