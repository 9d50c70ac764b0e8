// Command avplay is a minimal command-line media player built on top of
// the avplay package.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/erparts/avplay"
	"github.com/erparts/avplay/internal/config"
	"github.com/erparts/avplay/internal/surface"
)

const seekStep = config.SeekStepUS * time.Microsecond

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s FILE\n", filepath.Base(os.Args[0]))
		os.Exit(255)
	}

	path, err := filepath.Abs(os.Args[1])
	if err != nil {
		fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		fatal(err)
	}

	if err := avplay.CreateAudioContextForMedia(path); err != nil && err != avplay.ErrNoAudio {
		fatal(err)
	}
	player, err := avplay.NewPlayer(path)
	if err != nil {
		fatal(err)
	}

	ebiten.SetWindowTitle("avplay - " + filepath.Base(path))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	w, h := player.Resolution()
	if w == 0 || h == 0 {
		w, h = 640, 360
	}
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(&game{player: player}); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "avplay: %s\n", err)
	os.Exit(255)
}

// game adapts avplay.Player to ebiten.Game, translating keyboard input into
// controller requests.
type game struct {
	player *avplay.Player
	frame  *ebiten.Image
}

func (g *game) Layout(_, _ int) (int, int) {
	panic("Layout() should not be called when LayoutF() exists")
}

func (g *game) LayoutF(w, h float64) (float64, float64) {
	scale := ebiten.Monitor().DeviceScaleFactor()
	return w * scale, h * scale
}

func (g *game) Update() error {
	g.frame = g.player.CurrentFrame()

	for _, in := range surface.PollEvents() {
		switch in {
		case surface.InputQuit:
			if err := g.player.Close(); err != nil {
				return err
			}
			return ebiten.Termination

		case surface.InputTogglePause:
			if g.player.State() == avplay.Playing {
				g.player.Pause()
			} else {
				g.player.Play()
			}

		case surface.InputSeekForward:
			g.player.Seek(g.player.Position() + seekStep)

		case surface.InputSeekBackward:
			g.player.Seek(g.player.Position() - seekStep)

		case surface.InputDumpQueues:
			dumpQueues(g.player)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if err := g.player.Close(); err != nil {
			return err
		}
		return ebiten.Termination
	}

	return nil
}

func (g *game) Draw(canvas *ebiten.Image) {
	if g.frame != nil {
		avplay.Draw(canvas, g.frame)
	}
}

func dumpQueues(p *avplay.Player) {
	o := p.QueueOccupancy()
	if o.HasVideo {
		fmt.Fprintf(os.Stderr, "video: frames=%d\n", o.VideoFrames)
	}
	if o.HasAudio {
		fmt.Fprintf(os.Stderr, "audio: frames=%d\n", o.AudioFrames)
	}
}
