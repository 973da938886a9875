// Package config parses the shaderbg command line.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/cjlester41/shaderbg/compositor"
	"github.com/cjlester41/shaderbg/shader"
)

// Usage is printed for -h and for every argument error.
const Usage = "shaderbg [-h|--fps F|--layer l|--speed S] output-name shader.frag\n" +
	"The provided fragment shaders should follow the Shadertoy API\n"

// ErrHelp is returned by Parse for -h/--help.
var ErrHelp = errors.New("config: help requested")

// Config is the parsed command line.
type Config struct {
	// Selector is the output name, or "*" for every output.
	Selector   string
	ShaderPath string
	// FPS is the target rate, +Inf when unbounded.
	FPS       float64
	Speed     float64
	Layer     compositor.Layer
	Verbosity int
}

// UsageError is an invalid command line. Its message is the one-line
// diagnostic shown above the usage text.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// Parse parses args, excluding the program name.
func Parse(args []string) (*Config, error) {
	cfg := &Config{
		FPS:   math.Inf(1),
		Speed: 1,
		Layer: compositor.LayerBackground,
	}
	var (
		help bool
		bad  *UsageError
	)

	fs := pflag.NewFlagSet("shaderbg", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.BoolVarP(&help, "help", "h", false, "print usage and the shader prefix and suffix")
	fs.VarP(&positiveFloat{v: &cfg.FPS, what: "fps", bad: &bad}, "fps", "f", "target frames per second (default unbounded)")
	fs.VarP(&positiveFloat{v: &cfg.Speed, what: "speed", bad: &bad}, "speed", "s", "time dilation applied to iTime and iTimeDelta")
	fs.VarP(&layerValue{v: &cfg.Layer, bad: &bad}, "layer", "l", "one of background, bottom, top, overlay")
	fs.CountVarP(&cfg.Verbosity, "verbose", "v", "log more, repeat for trace output")

	if err := fs.Parse(args); err != nil {
		if bad != nil {
			return nil, bad
		}
		if errors.Is(err, pflag.ErrHelp) {
			return nil, ErrHelp
		}
		return nil, &UsageError{Msg: err.Error()}
	}
	if help {
		return nil, ErrHelp
	}

	if fs.NArg() != 2 {
		return nil, &UsageError{Msg: fmt.Sprintf("Expected 2 arguments, got %d", fs.NArg())}
	}
	cfg.Selector, cfg.ShaderPath = fs.Arg(0), fs.Arg(1)
	return cfg, nil
}

// PrintHelp writes the usage followed by the shader prologue and
// epilogue.
func PrintHelp(w io.Writer) error {
	_, err := io.WriteString(w, Usage+shader.Help())
	return err
}

// PrintUsageError writes the diagnostic and the usage.
func PrintUsageError(w io.Writer, err error) error {
	_, werr := fmt.Fprintf(w, "%s\n%s", err, Usage)
	return werr
}

type positiveFloat struct {
	v    *float64
	bad  **UsageError
	what string
}

func (p *positiveFloat) Set(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !(f > 0) || math.IsNaN(f) {
		*p.bad = &UsageError{Msg: fmt.Sprintf("Invalid %s '%s'", p.what, s)}
		return *p.bad
	}
	*p.v = f
	return nil
}

func (p *positiveFloat) String() string {
	if p.v == nil {
		return ""
	}
	return strconv.FormatFloat(*p.v, 'g', -1, 64)
}

func (p *positiveFloat) Type() string { return "float" }

type layerValue struct {
	v   *compositor.Layer
	bad **UsageError
}

func (l *layerValue) Set(s string) error {
	layer, ok := compositor.ParseLayer(s)
	if !ok {
		*l.bad = &UsageError{Msg: fmt.Sprintf("Invalid layer '%s'; should be one of 'background', 'bottom', 'top', 'overlay'", s)}
		return *l.bad
	}
	*l.v = layer
	return nil
}

func (l *layerValue) String() string {
	if l.v == nil {
		return ""
	}
	return l.v.String()
}

func (l *layerValue) Type() string { return "layer" }
