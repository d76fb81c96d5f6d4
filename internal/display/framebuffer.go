package display

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	senseFBName        = "RPi-Sense FB"
	graphicsClassDir   = "/sys/class/graphics"
	DefaultScrollSpeed = 100 * time.Millisecond
)

var ErrNoFramebuffer = errors.New("display: Sense HAT framebuffer not found")

// Framebuffer writes RGB565 pixels to the Sense HAT LED framebuffer device.
type Framebuffer struct {
	mu       sync.Mutex
	f        *os.File
	rotation int
	current  Image
	scroll   time.Duration
}

// FindSenseHAT returns the /dev path of the Sense HAT framebuffer by
// scanning classDir (normally /sys/class/graphics).
func FindSenseHAT(classDir string) (string, error) {
	if classDir == "" {
		classDir = graphicsClassDir
	}
	names, err := filepath.Glob(filepath.Join(classDir, "fb*", "name"))
	if err != nil {
		return "", err
	}
	for _, n := range names {
		b, err := os.ReadFile(n)
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(b)) == senseFBName {
			return filepath.Join("/dev", filepath.Base(filepath.Dir(n))), nil
		}
	}
	return "", ErrNoFramebuffer
}

// OpenFramebuffer opens the framebuffer device at path.
func OpenFramebuffer(path string, scroll time.Duration) (*Framebuffer, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer %s: %w", path, err)
	}
	if scroll <= 0 {
		scroll = DefaultScrollSpeed
	}
	return &Framebuffer{f: f, scroll: scroll}, nil
}

func (fb *Framebuffer) ShowMessage(ctx context.Context, text string, fg, bg Color) error {
	for _, frame := range scrollFrames(text, fg, bg) {
		if err := fb.SetPixels(frame); err != nil {
			return err
		}
		if err := sleep(ctx, fb.scroll); err != nil {
			return err
		}
	}
	return nil
}

func (fb *Framebuffer) SetPixels(img Image) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.current = img
	return fb.flush()
}

func (fb *Framebuffer) SetRotation(degrees int) error {
	if !validRotation(degrees) {
		return fmt.Errorf("display: invalid rotation %d", degrees)
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.rotation = degrees
	return fb.flush()
}

func (fb *Framebuffer) Clear() error {
	return fb.SetPixels(Image{})
}

func (fb *Framebuffer) Close() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.f.Close()
}

func (fb *Framebuffer) flush() error {
	if _, err := fb.f.WriteAt(encodeRGB565(rotate(fb.current, fb.rotation)), 0); err != nil {
		return fmt.Errorf("write framebuffer: %w", err)
	}
	return nil
}

func encodeRGB565(img Image) []byte {
	buf := make([]byte, len(img)*2)
	for i, c := range img {
		v := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	return buf
}
