package extcodec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidParam indicates a codec parameter that could not be parsed.
var ErrInvalidParam = errors.New("extcodec: invalid parameter")

// Stage is the role of the next parameter fed to Codec.ParseParam.
type Stage int

const (
	// StageExtension expects the encoded file extension.
	StageExtension Stage = iota
	// StageCompressCommand expects the compressor executable.
	StageCompressCommand
	// StageDecompressCommand expects the decompressor executable.
	StageDecompressCommand
	// StageExtraArgs accepts any number of extra compressor arguments.
	StageExtraArgs
)

func (s Stage) String() string {
	switch s {
	case StageExtension:
		return "extension"
	case StageCompressCommand:
		return "compress-command"
	case StageDecompressCommand:
		return "decompress-command"
	case StageExtraArgs:
		return "extra-args"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Template is what the positional parameters configure.
type Template struct {
	// Extension of the encoded file, without a leading dot.
	Extension string
	// CompressCommand is run as: CompressCommand ExtraArgs... staging encoded
	CompressCommand string
	// DecompressCommand is run as: DecompressCommand encoded staging
	DecompressCommand string
	ExtraArgs         []string
}

// BaseParams are the generic codec knobs shared with built-in codecs.
// Zero means unset.
type BaseParams struct {
	// Quality is the q<float> knob.
	Quality float64
	// Distance is the d<float> butteraugli distance target.
	Distance float64
	// Bitrate is the r<float> bits-per-pixel target.
	Bitrate float64
}

// ParseParam parses one generic knob such as "d1.5".
func (b *BaseParams) ParseParam(param string) error {
	if len(param) < 2 {
		return fmt.Errorf("%w: %q", ErrInvalidParam, param)
	}
	var dst *float64
	switch param[0] {
	case 'q':
		dst = &b.Quality
	case 'd':
		dst = &b.Distance
	case 'r':
		dst = &b.Bitrate
	default:
		return fmt.Errorf("%w: unknown knob %q", ErrInvalidParam, param)
	}
	v, err := strconv.ParseFloat(param[1:], 64)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidParam, param, err)
	}
	*dst = v
	return nil
}

// ParseParam consumes the next positional parameter: the encoded extension,
// then the compress command, then the decompress command, then any number of
// extra compressor arguments. The codec is usable once three parameters have
// been consumed.
//
// An extra argument longer than two characters that starts with "-d" is also
// forwarded, minus its leading dash, to BaseParams.ParseParam, so "-d1.5"
// both reaches the tool and sets the distance knob.
func (c *Codec) ParseParam(param string) error {
	switch c.stage {
	case StageExtension:
		c.template.Extension = param
		c.description = param
	case StageCompressCommand:
		c.template.CompressCommand = param
		c.description += ":" + commandName(param)
	case StageDecompressCommand:
		c.template.DecompressCommand = param
	default:
		if len(param) > 2 && strings.HasPrefix(param, "-d") {
			if err := c.base.ParseParam(param[1:]); err != nil {
				return fmt.Errorf("parsing %q: %w", param, err)
			}
		}
		c.template.ExtraArgs = append(c.template.ExtraArgs, param)
		c.description += ":" + trimDashes(param)
		return nil
	}
	c.stage++
	return nil
}

// ParseSpec feeds each ':'-separated token of spec to ParseParam. A leading
// "custom" selector, as in "custom:jxl:cjxl:djxl:-d1", is skipped.
func (c *Codec) ParseSpec(spec string) error {
	tokens := strings.Split(spec, ":")
	if len(tokens) > 0 && tokens[0] == "custom" {
		tokens = tokens[1:]
	}
	for _, tok := range tokens {
		if err := c.ParseParam(tok); err != nil {
			return err
		}
	}
	return nil
}

func commandName(cmd string) string {
	if i := strings.LastIndexByte(cmd, '/'); i >= 0 {
		return cmd[i+1:]
	}
	return cmd
}

func trimDashes(param string) string {
	if len(param) > 2 {
		if strings.HasPrefix(param, "--") {
			return param[2:]
		}
		if strings.HasPrefix(param, "-") {
			return param[1:]
		}
	}
	return param
}
