package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/zimage/internal/imageio"
	"github.com/MeKo-Tech/zimage/internal/resize"
	"github.com/MeKo-Tech/zimage/internal/thumbcache"
	"github.com/MeKo-Tech/zimage/internal/worker"
)

// Thumbnail size bounds, matching the original browser's slider range.
const (
	defaultThumbSize = 200
	minThumbSize     = 100
	maxThumbSize     = 400
)

var thumbsCmd = &cobra.Command{
	Use:   "thumbs",
	Short: "Generate thumbnails for a directory of images",
	Long: `Generate PNG thumbnails for every image in a directory.

Thumbnails are cached in a SQLite database keyed by source path, size and
modification time, so unchanged images are not re-rendered on later runs.`,
	RunE: runThumbs,
}

func init() {
	rootCmd.AddCommand(thumbsCmd)

	thumbsCmd.Flags().String("dir", "", "Directory containing input images")
	thumbsCmd.Flags().String("out-dir", "", "Directory for thumbnails (default: <dir>/thumbs)")
	thumbsCmd.Flags().Int("size", defaultThumbSize, fmt.Sprintf("Thumbnail bounding-box size (clamped to %d-%d)", minThumbSize, maxThumbSize))
	thumbsCmd.Flags().String("cache", "", "Cache database path (default: <out-dir>/thumbs.db)")
	thumbsCmd.Flags().Bool("force", false, "Re-render all thumbnails, ignoring the cache")
	thumbsCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	thumbsCmd.Flags().Bool("progress", true, "Show progress bar")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"thumbs.dir", "dir"},
		{"thumbs.out_dir", "out-dir"},
		{"thumbs.size", "size"},
		{"thumbs.cache", "cache"},
		{"thumbs.force", "force"},
		{"thumbs.workers", "workers"},
		{"thumbs.progress", "progress"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, thumbsCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

// thumbProcessor renders one thumbnail per task, going through the cache.
type thumbProcessor struct {
	cache *thumbcache.Cache
	size  int
	force bool
}

func (p *thumbProcessor) Process(ctx context.Context, t worker.Task) error {
	info, err := os.Stat(t.InPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", t.InPath, err)
	}

	if !p.force {
		data, ok, err := p.cache.Get(t.InPath, info.ModTime(), p.size)
		if err != nil {
			return err
		}
		if ok {
			return os.WriteFile(t.OutPath, data, 0o644)
		}
	}

	src, err := imageio.Load(t.InPath)
	if err != nil {
		return err
	}

	thumb, err := resize.Thumbnail(src, p.size)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return fmt.Errorf("failed to encode thumbnail for %s: %w", t.InPath, err)
	}

	if err := p.cache.Put(t.InPath, info.ModTime(), p.size, buf.Bytes()); err != nil {
		return err
	}
	return os.WriteFile(t.OutPath, buf.Bytes(), 0o644)
}

func runThumbs(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	dir := viper.GetString("thumbs.dir")
	outDir := viper.GetString("thumbs.out_dir")
	size := viper.GetInt("thumbs.size")
	cachePath := viper.GetString("thumbs.cache")
	force := viper.GetBool("thumbs.force")
	workers := viper.GetInt("thumbs.workers")
	showProgress := viper.GetBool("thumbs.progress")

	if dir == "" {
		return fmt.Errorf("--dir is required")
	}
	if outDir == "" {
		outDir = filepath.Join(dir, "thumbs")
	}
	if cachePath == "" {
		cachePath = filepath.Join(outDir, "thumbs.db")
	}
	if size < minThumbSize {
		size = minThumbSize
	}
	if size > maxThumbSize {
		size = maxThumbSize
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	files, err := listImages(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported images found in %s", dir)
	}

	cache, err := thumbcache.Open(cachePath)
	if err != nil {
		return err
	}
	defer cache.Close()

	tasks := make([]worker.Task, 0, len(files))
	for _, name := range files {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		tasks = append(tasks, worker.Task{
			InPath:  filepath.Join(dir, name),
			OutPath: filepath.Join(outDir, base+".png"),
		})
	}

	logger.Info("generating thumbnails",
		"dir", dir,
		"images", len(tasks),
		"size", size,
		"workers", workers,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := worker.NewProgress(len(tasks), showProgress)
	pool := worker.New(worker.Config{
		Workers:    workers,
		Processor:  &thumbProcessor{cache: cache, size: size, force: force},
		OnProgress: progress.Callback(),
	})

	results := pool.Run(ctx, tasks)
	progress.Done()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Error("thumbnail failed", "in", r.Task.InPath, "error", r.Err)
		}
	}
	logger.Info(progress.Summary())

	if failed > 0 {
		return fmt.Errorf("%d of %d thumbnails failed", failed, len(tasks))
	}
	return nil
}
