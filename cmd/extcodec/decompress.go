package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/discochess/extcodec/internal/imageio"
	"github.com/discochess/extcodec/internal/pool"
	"github.com/discochess/extcodec/internal/stats"
)

var decompressCmd = &cobra.Command{
	Use:   "decompress INPUT OUTPUT",
	Short: "Decompress one file with a custom codec",
	Long: `Decompress INPUT with --codec and write the image to OUTPUT, whose
extension (png, jpg, ppm, pgm or pnm) selects the format.

Examples:
  extcodec decompress --codec jxl:cjxl:djxl kodim01.jxl kodim01.out.png`,
	Args: cobra.ExactArgs(2),
	RunE: runDecompress,
}

var (
	decompressCodec  string
	decompressTiming bool
)

func init() {
	decompressCmd.Flags().StringVar(&decompressCodec, "codec", "", "codec spec EXT:COMPRESSOR:DECOMPRESSOR[:ARG...]")
	decompressCmd.Flags().BoolVar(&decompressTiming, "timing", false, "show decompression timing")
	decompressCmd.MarkFlagRequired("codec")
	rootCmd.AddCommand(decompressCmd)
}

func runDecompress(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	in, out := args[0], args[1]

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}
	codec, err := newCodec(decompressCodec, logger, stats.NewNoop())
	if err != nil {
		return err
	}

	p := pool.New(workers)
	speed := stats.NewSpeed()
	img, err := codec.Decompress(ctx, in, data, p, speed)
	if err != nil {
		return fmt.Errorf("decompressing %s: %w", in, err)
	}

	err = imageio.New(logger).EncodeToFile(ctx, img, img.Encoding, img.Metadata.BitsPerSample, out, p)
	if err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	b := img.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d, %d bits\n", out, b.Dx(), b.Dy(), img.Metadata.BitsPerSample)
	if decompressTiming {
		fmt.Fprintf(cmd.OutOrStdout(), "Time: %s\n", seconds(speed.Summary().Median))
	}
	return nil
}
