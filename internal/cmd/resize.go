package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/zimage/internal/imageio"
	"github.com/MeKo-Tech/zimage/internal/resize"
)

var resizeCmd = &cobra.Command{
	Use:   "resize",
	Short: "Resize an image",
	RunE:  runResize,
}

func init() {
	rootCmd.AddCommand(resizeCmd)

	resizeCmd.Flags().StringP("in", "i", "", "Input image path")
	resizeCmd.Flags().StringP("out", "o", "", "Output image path")
	resizeCmd.Flags().Int("width", 0, "Target width in pixels")
	resizeCmd.Flags().Int("height", 0, "Target height in pixels")
	resizeCmd.Flags().Bool("keep-aspect", true, "Preserve the aspect ratio (fit within width x height)")
	resizeCmd.Flags().String("filter", "catmullrom", "Interpolation filter: nearest, bilinear or catmullrom")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"resize.in", "in"},
		{"resize.out", "out"},
		{"resize.width", "width"},
		{"resize.height", "height"},
		{"resize.keep_aspect", "keep-aspect"},
		{"resize.filter", "filter"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, resizeCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runResize(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	inPath := viper.GetString("resize.in")
	outPath := viper.GetString("resize.out")
	width := viper.GetInt("resize.width")
	height := viper.GetInt("resize.height")
	keepAspect := viper.GetBool("resize.keep_aspect")
	filterName := viper.GetString("resize.filter")
	jpegQuality := viper.GetInt("jpeg_quality")

	if inPath == "" || outPath == "" {
		return fmt.Errorf("both --in and --out are required")
	}

	filter, err := resize.ParseFilter(filterName)
	if err != nil {
		return err
	}

	src, err := imageio.Load(inPath)
	if err != nil {
		return err
	}

	result, err := resize.Resize(src, resize.Options{
		Width:      width,
		Height:     height,
		KeepAspect: keepAspect,
		Filter:     filter,
	})
	if err != nil {
		return err
	}

	if err := imageio.Save(outPath, result, jpegQuality); err != nil {
		return err
	}

	b := result.Bounds()
	logger.Info("image resized", "out", outPath, "width", b.Dx(), "height", b.Dy())
	return nil
}
