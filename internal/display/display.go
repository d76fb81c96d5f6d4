// Package display drives the 8x8 RGB LED matrix used for station status.
package display

import (
	"context"
	"time"
)

const (
	Width  = 8
	Height = 8
)

// Color is an RGB triple.
type Color struct {
	R, G, B uint8
}

var (
	Blue   = Color{0, 0, 255}
	Red    = Color{255, 0, 0}
	Green  = Color{0, 255, 0}
	White  = Color{255, 255, 255}
	Yellow = Color{255, 255, 0}
	Navy   = Color{0, 0, 127}
	Off    = Color{}
)

// Image is a row-major 8x8 pixel buffer.
type Image [Width * Height]Color

// At returns the pixel at column x, row y.
func (img *Image) At(x, y int) Color {
	return img[y*Width+x]
}

// Set sets the pixel at column x, row y.
func (img *Image) Set(x, y int, c Color) {
	img[y*Width+x] = c
}

// Fill returns an image with every pixel set to c.
func Fill(c Color) Image {
	var img Image
	for i := range img {
		img[i] = c
	}
	return img
}

// Display is an LED matrix sink.
type Display interface {
	// ShowMessage scrolls text across the matrix and returns when done.
	ShowMessage(ctx context.Context, text string, fg, bg Color) error
	SetPixels(img Image) error
	// SetRotation rotates subsequent output by 0, 90, 180 or 270 degrees.
	SetRotation(degrees int) error
	Clear() error
	Close() error
}

// Spin rotates the current picture through a full turn, one quarter per
// second, and leaves the display at 0 degrees.
func Spin(ctx context.Context, d Display, step time.Duration) error {
	for _, deg := range []int{90, 180, 270, 0} {
		if err := sleep(ctx, step); err != nil {
			_ = d.SetRotation(0)
			return err
		}
		if err := d.SetRotation(deg); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// rotate returns img turned clockwise by degrees.
func rotate(img Image, degrees int) Image {
	var out Image
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			var sx, sy int
			switch degrees {
			case 90:
				sx, sy = y, Height-1-x
			case 180:
				sx, sy = Width-1-x, Height-1-y
			case 270:
				sx, sy = Width-1-y, x
			default:
				sx, sy = x, y
			}
			out.Set(x, y, img.At(sx, sy))
		}
	}
	return out
}

func validRotation(degrees int) bool {
	switch degrees {
	case 0, 90, 180, 270:
		return true
	}
	return false
}
