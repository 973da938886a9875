//go:build !(linux && cgo)

package main

import (
	"context"
	"errors"

	"github.com/cjlester41/shaderbg/config"
	"github.com/cjlester41/shaderbg/logging"
	"github.com/cjlester41/shaderbg/shader"
)

func render(_ context.Context, cfg *config.Config, _ *logging.Logger) error {
	if _, err := shader.Load(cfg.ShaderPath); err != nil {
		return err
	}
	return errors.New("wayland rendering requires linux and cgo")
}
