//go:build ebiten

package app

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"rulehunt/internal/core"
	"rulehunt/internal/render"
)

// Viewer adapts an automaton to the ebiten.Game interface. It consumes the
// core's grid state by read-only borrow during Draw and contains no
// simulation logic of its own.
type Viewer struct {
	cfg     core.RunConfig
	auto    *Automaton
	painter *render.GridPainter

	onColor  color.Color
	offColor color.Color

	scale    int
	paused   bool
	tickOnce bool
}

// NewViewer constructs a viewer for the configured automaton.
func NewViewer(cfg core.RunConfig, auto *Automaton, scale int) *Viewer {
	g := auto.Grid()
	return &Viewer{
		cfg:      cfg,
		auto:     auto,
		painter:  render.NewGridPainter(g.W(), g.H()),
		onColor:  color.White,
		offColor: color.Black,
		scale:    scale,
	}
}

// Update handles per-frame input and advances the automaton.
func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		v.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := v.auto.Reset(v.cfg, v.cfg.Seed); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := v.auto.Reset(v.cfg, time.Now().UnixNano()); err != nil {
			return err
		}
	}

	if !v.paused || v.tickOnce {
		v.tickOnce = false
		return v.auto.Step()
	}
	return nil
}

// Draw renders the current grid state.
func (v *Viewer) Draw(screen *ebiten.Image) {
	v.painter.Blit(screen, v.auto.Grid(), v.onColor, v.offColor, v.scale)
}

// Layout returns the logical screen size.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	g := v.auto.Grid()
	return g.W() * v.scale, g.H() * v.scale
}
