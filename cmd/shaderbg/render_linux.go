//go:build linux && cgo

package main

import (
	"context"
	"runtime"

	"github.com/cjlester41/shaderbg/config"
	"github.com/cjlester41/shaderbg/egl"
	"github.com/cjlester41/shaderbg/logging"
	"github.com/cjlester41/shaderbg/session"
	"github.com/cjlester41/shaderbg/shader"
	"github.com/cjlester41/shaderbg/wayland"
)

// The GL context is bound to the thread that made it current.
func init() { runtime.LockOSThread() }

func render(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	src, err := shader.Load(cfg.ShaderPath)
	if err != nil {
		return err
	}

	display, err := wayland.Connect(log)
	if err != nil {
		return err
	}
	defer display.Close()

	gfx, err := egl.NewContext(display.NativeDisplay(), display, log)
	if err != nil {
		return err
	}
	defer gfx.Close()

	prog, err := gfx.Compile(src)
	if err != nil {
		return err
	}
	defer prog.Close()

	s, err := session.New(session.Config{
		Selector: cfg.Selector,
		FPS:      cfg.FPS,
		Speed:    cfg.Speed,
		Layer:    cfg.Layer,
	}, display, display, gfx, prog, session.WithLogger(log))
	if err != nil {
		return err
	}
	display.SetHandler(s.HandleEvent)
	defer s.Close()

	return s.Run(ctx)
}
