package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/zimage/internal/blur"
	"github.com/MeKo-Tech/zimage/internal/imageio"
	"github.com/MeKo-Tech/zimage/internal/raster"
	"github.com/MeKo-Tech/zimage/internal/worker"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Blur every image in a directory",
	Long: `Apply the same blur to every image in a directory, in parallel.

Each image gets its own independent blur; an empty --rect blurs each image
in full. Failed images are reported and skipped, the rest of the batch
continues.`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("dir", "", "Directory containing input images")
	batchCmd.Flags().String("out-dir", "", "Directory for blurred output images")
	batchCmd.Flags().String("rect", "", "Region to blur in each image: x,y,width,height (default: whole image)")
	batchCmd.Flags().String("kind", "box", "Blur kind: box, motion or gaussian")
	batchCmd.Flags().IntP("radius", "r", 10, "Blur radius (box and motion only)")
	batchCmd.Flags().Float32("sigma", blur.DefaultGaussianSigma, "Gaussian sigma (gaussian kind only)")
	batchCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	batchCmd.Flags().Bool("progress", true, "Show progress bar")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"batch.dir", "dir"},
		{"batch.out_dir", "out-dir"},
		{"batch.rect", "rect"},
		{"batch.kind", "kind"},
		{"batch.radius", "radius"},
		{"batch.sigma", "sigma"},
		{"batch.workers", "workers"},
		{"batch.progress", "progress"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, batchCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

// blurProcessor applies one blur configuration to each file it is handed.
type blurProcessor struct {
	rect        string
	kindName    string
	radius      int
	sigma       float32
	jpegQuality int
}

func (p *blurProcessor) Process(ctx context.Context, t worker.Task) error {
	src, err := imageio.Load(t.InPath)
	if err != nil {
		return err
	}

	region := raster.FullImage(src)
	if p.rect != "" {
		region, err = parseRect(p.rect)
		if err != nil {
			return err
		}
	}

	var result = src
	if strings.EqualFold(p.kindName, "gaussian") {
		result = blur.Gaussian(src, region, p.sigma)
	} else {
		kind, err := blur.ParseKind(p.kindName)
		if err != nil {
			return err
		}
		result, err = blur.BlurContext(ctx, src, region, blur.Params{Kind: kind, Radius: p.radius}, nil)
		if err != nil {
			return err
		}
	}

	return imageio.Save(t.OutPath, result, p.jpegQuality)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	dir := viper.GetString("batch.dir")
	outDir := viper.GetString("batch.out_dir")
	rect := viper.GetString("batch.rect")
	kindName := viper.GetString("batch.kind")
	radius := viper.GetInt("batch.radius")
	sigma := float32(viper.GetFloat64("batch.sigma"))
	workers := viper.GetInt("batch.workers")
	showProgress := viper.GetBool("batch.progress")
	jpegQuality := viper.GetInt("jpeg_quality")

	if dir == "" || outDir == "" {
		return fmt.Errorf("both --dir and --out-dir are required")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	// Validate up front so a bad flag fails before any file work.
	if !strings.EqualFold(kindName, "gaussian") {
		if _, err := blur.ParseKind(kindName); err != nil {
			return fmt.Errorf("%w (or 'gaussian')", err)
		}
	}
	if rect != "" {
		if _, err := parseRect(rect); err != nil {
			return err
		}
	}

	files, err := listImages(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported images found in %s", dir)
	}

	tasks := make([]worker.Task, 0, len(files))
	for _, name := range files {
		tasks = append(tasks, worker.Task{
			InPath:  filepath.Join(dir, name),
			OutPath: filepath.Join(outDir, name),
		})
	}

	logger.Info("starting batch blur",
		"dir", dir,
		"images", len(tasks),
		"kind", kindName,
		"workers", workers,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := worker.NewProgress(len(tasks), showProgress)
	pool := worker.New(worker.Config{
		Workers: workers,
		Processor: &blurProcessor{
			rect:        rect,
			kindName:    kindName,
			radius:      radius,
			sigma:       sigma,
			jpegQuality: jpegQuality,
		},
		OnProgress: progress.Callback(),
	})

	results := pool.Run(ctx, tasks)
	progress.Done()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Error("image failed", "in", r.Task.InPath, "error", r.Err)
		}
	}
	logger.Info(progress.Summary())

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(tasks))
	}
	return nil
}

// listImages returns the supported image file names in dir, sorted.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageio.SupportedExt(filepath.Ext(entry.Name())) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
