//go:build !ebiten

package main

import (
	"context"
	"fmt"
	"strings"

	"rulehunt/internal/app"
	"rulehunt/internal/core"
)

// runInteractive streams text frames in headless builds. It stops after the
// configured generation budget or on cancellation, whichever comes first.
func runInteractive(ctx context.Context, cfg core.RunConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	grids, err := app.RunInteractive(ctx, cfg)
	if err != nil {
		return err
	}

	gen := 0
	for g := range grids {
		fmt.Printf("generation %d (population %d)\n", gen, g.Population())
		printGrid(g)
		if gen >= cfg.Generations {
			return nil
		}
		gen++
	}
	return nil
}

func printGrid(g *core.Grid) {
	var b strings.Builder
	for y := 0; y < g.H(); y++ {
		for x := 0; x < g.W(); x++ {
			if g.At(x, y) != 0 {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	fmt.Print(b.String())
}
