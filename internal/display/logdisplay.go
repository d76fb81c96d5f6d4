package display

import (
	"context"
	"log/slog"
)

// LogDisplay stands in for the LED matrix on hosts without one.
type LogDisplay struct {
	logger *slog.Logger
}

func NewLogDisplay(logger *slog.Logger) *LogDisplay {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDisplay{logger: logger}
}

func (d *LogDisplay) ShowMessage(_ context.Context, text string, fg, bg Color) error {
	d.logger.Debug("display message", "text", text, "fg", fg, "bg", bg)
	return nil
}

func (d *LogDisplay) SetPixels(img Image) error {
	d.logger.Debug("display image", "icon", Name(img))
	return nil
}

func (d *LogDisplay) SetRotation(degrees int) error {
	d.logger.Debug("display rotation", "degrees", degrees)
	return nil
}

func (d *LogDisplay) Clear() error {
	d.logger.Debug("display clear")
	return nil
}

func (d *LogDisplay) Close() error { return nil }

// Name returns the icon name for known images.
func Name(img Image) string {
	switch img {
	case ArrowUp:
		return "arrow_up"
	case ArrowDown:
		return "arrow_down"
	case EqualBars:
		return "equal_bars"
	case QuestionMark:
		return "question_mark"
	case Image{}:
		return "blank"
	}
	return "custom"
}
