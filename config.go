package extcodec

import (
	"github.com/spf13/pflag"
)

// Flag names registered by Config.AddFlags.
const (
	FlagExtension  = "custom_codec_extension"
	FlagColorspace = "custom_codec_colorspace"
	FlagQuiet      = "custom_codec_quiet"
)

// Config holds the process-wide settings shared by every custom codec.
type Config struct {
	// StagingExtension is the file format exchanged with the external
	// tools, without a leading dot.
	StagingExtension string

	// Colorspace, when set, is the color encoding description the image is
	// converted to before it is handed to the compressor. The decompressed
	// file is interpreted in the same encoding.
	Colorspace string

	// Quiet suppresses the external tools' standard output and error.
	Quiet bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		StagingExtension: "png",
	}
}

// AddFlags registers the configuration as command-line flags on fs.
// Values already in c are the flag defaults.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.StagingExtension, FlagExtension, c.StagingExtension,
		"extension used to pass images to and from the custom codec")
	fs.StringVar(&c.Colorspace, FlagColorspace, c.Colorspace,
		"if not empty, converts the image to this colorspace before passing it to the custom codec")
	fs.BoolVar(&c.Quiet, FlagQuiet, c.Quiet,
		"whether stdout and stderr of the custom codec should be suppressed")
}

func (c Config) withDefaults() Config {
	if c.StagingExtension == "" {
		c.StagingExtension = DefaultConfig().StagingExtension
	}
	return c
}
