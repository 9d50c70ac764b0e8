// Package surface adapts Ebitengine to an abstract graphics surface
// interface: commit a decoded frame (with VSync dedup to the latest one) and
// poll input events; close requests are left to the ebiten.Game loop (see
// the note at the end of this file). It also doubles as the
// keyboard input source for the controller, polling keys inside
// ebiten.Game.Update the same way a bundled example player would.
package surface

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputKind tags a keyboard-originated controller request.
type InputKind uint8

const (
	InputQuit InputKind = iota
	InputTogglePause
	InputSeekForward
	InputSeekBackward
	InputDumpQueues
)

// Surface owns the on-screen image and dedups committed frames: a video
// presenter may commit faster than VSync draws (queue builds up, only the
// newest matters) or slower (the same image is redrawn every tick). Either
// way Latest always returns whatever was most recently committed.
type Surface struct {
	img     *ebiten.Image
	width   int
	height  int
	pending []byte
	dirty   bool
	mu      chan struct{} // 1-buffered channel used as a mutex between CommitFrame and Latest
}

// New creates a surface sized to the video stream's resolution, starting on
// a black frame.
func New(width, height int) *Surface {
	img := ebiten.NewImage(width, height)
	img.Fill(color.Black)
	s := &Surface{
		img:    img,
		width:  width,
		height: height,
		mu:     make(chan struct{}, 1),
	}
	s.mu <- struct{}{}
	return s
}

// CommitFrame replaces whatever frame was pending (if any) with rgba. Only
// the most recently committed frame survives to the next Latest() call.
func (s *Surface) CommitFrame(rgba []byte) {
	<-s.mu
	s.pending = rgba
	s.dirty = true
	s.mu <- struct{}{}
}

// Latest returns the image to draw this VSync, applying the newest
// committed frame (if any) since the last call.
func (s *Surface) Latest() *ebiten.Image {
	<-s.mu
	if s.dirty {
		s.img.WritePixels(s.pending)
		s.dirty = false
	}
	s.mu <- struct{}{}
	return s.img
}

// Resolution returns the surface's fixed pixel dimensions.
func (s *Surface) Resolution() (int, int) {
	return s.width, s.height
}

// PollEvents reports the controller-relevant keys pressed since the last
// call: quit, toggle pause, seek forward/backward, dump queue occupancy.
func PollEvents() []InputKind {
	var events []InputKind
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		events = append(events, InputQuit)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		events = append(events, InputTogglePause)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		events = append(events, InputSeekForward)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		events = append(events, InputSeekBackward)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		events = append(events, InputDumpQueues)
	}
	return events
}

// There is no CloseRequested here: the ebiten.Game loop handles it itself.
// Update returns ebiten.Termination on InputQuit or the Escape key, and
// Ebitengine ends RunGame on its own when the OS window is closed.
