package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/extcodec/internal/pool"
	"github.com/discochess/extcodec/internal/stats"
)

var compressCmd = &cobra.Command{
	Use:   "compress INPUT OUTPUT",
	Short: "Compress one image with a custom codec",
	Long: `Load INPUT (png, jpg, ppm, pgm or pnm), compress it with --codec and
write the encoded bytes to OUTPUT.

Examples:
  extcodec compress --codec jxl:cjxl:djxl:-d:1 kodim01.png kodim01.jxl`,
	Args: cobra.ExactArgs(2),
	RunE: runCompress,
}

var (
	compressCodec  string
	compressTiming bool
)

func init() {
	compressCmd.Flags().StringVar(&compressCodec, "codec", "", "codec spec EXT:COMPRESSOR:DECOMPRESSOR[:ARG...]")
	compressCmd.Flags().BoolVar(&compressTiming, "timing", false, "show compression timing")
	compressCmd.MarkFlagRequired("codec")
	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	in, out := args[0], args[1]

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	p := pool.New(workers)
	img, err := loadImage(ctx, in, logger, p)
	if err != nil {
		return err
	}
	codec, err := newCodec(compressCodec, logger, stats.NewNoop())
	if err != nil {
		return err
	}

	speed := stats.NewSpeed()
	data, err := codec.Compress(ctx, in, img, p, speed)
	if err != nil {
		return fmt.Errorf("compressing %s: %w", in, err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	b := img.Bounds()
	bpp := float64(len(data)*8) / float64(b.Dx()*b.Dy())
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, %.4f bpp (%s)\n", out, formatBytes(int64(len(data))), bpp, codec.Description())
	if compressTiming {
		fmt.Fprintf(cmd.OutOrStdout(), "Time: %s\n", seconds(speed.Summary().Median))
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
