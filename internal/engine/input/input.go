// Package input turns SDL2 events into viewer controls.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Frame holds the controls gathered during one frame.
type Frame struct {
	Quit bool

	// Mouse movement while the left button is held.
	DragX, DragY float32
	// Wheel movement, positive away from the user.
	Zoom float32

	Resized       bool
	Width, Height int

	// Keys pressed this frame.
	Pressed []sdl.Scancode
}

// KeyPressed reports whether key was pressed this frame.
func (f *Frame) KeyPressed(key sdl.Scancode) bool {
	for _, k := range f.Pressed {
		if k == key {
			return true
		}
	}
	return false
}

// Input tracks button state across frames.
type Input struct {
	dragging bool
	frame    Frame
}

// New creates a new input handler.
func New() *Input {
	return &Input{}
}

// Update polls pending SDL events and returns the controls for this frame.
// The returned frame is reused by the next call.
func (i *Input) Update() *Frame {
	i.frame = Frame{Pressed: i.frame.Pressed[:0]}

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.frame.Quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.frame.Resized = true
				i.frame.Width = int(e.Data1)
				i.frame.Height = int(e.Data2)
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.frame.Pressed = append(i.frame.Pressed, e.Keysym.Scancode)
				if e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
					i.frame.Quit = true
				}
			}

		case *sdl.MouseButtonEvent:
			if e.Button == sdl.BUTTON_LEFT {
				i.dragging = e.Type == sdl.MOUSEBUTTONDOWN
			}

		case *sdl.MouseMotionEvent:
			if i.dragging {
				i.frame.DragX += float32(e.XRel)
				i.frame.DragY += float32(e.YRel)
			}

		case *sdl.MouseWheelEvent:
			i.frame.Zoom += float32(e.Y)
		}
	}

	return &i.frame
}
