//go:build ebiten

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"rulehunt/internal/app"
	"rulehunt/internal/core"
)

const windowScale = 8

// runInteractive opens the graphical viewer for a single automaton.
func runInteractive(_ context.Context, cfg core.RunConfig) error {
	auto, err := app.NewAutomaton(cfg)
	if err != nil {
		return err
	}
	viewer := app.NewViewer(cfg, auto, windowScale)

	g := auto.Grid()
	ebiten.SetWindowSize(g.W()*windowScale, g.H()*windowScale)
	ebiten.SetWindowTitle(fmt.Sprintf("rulehunt - %#x", auto.Rule().Encode()))
	ebiten.SetTPS(cfg.TPS)

	if err := ebiten.RunGame(viewer); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
