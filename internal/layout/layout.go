// Package layout composes saved chart images into fixed-slot grid
// layouts on a transparent canvas.
package layout

import (
	"fmt"
	"image"

	"github.com/haasonsaas/chartd/internal/config"
)

// Slot geometry constants, in pixels.
const (
	Padding = 8
	Gap     = 8
)

// Slot is one rectangular placement area on the canvas.
type Slot struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Types lists the valid layout names in presentation order.
var Types = []string{
	"full",
	"half-top",
	"half-bottom",
	"half-left",
	"half-right",
	"split-horizontal",
	"split-vertical",
	"grid",
}

// UnknownTypeError reports a layout name outside the template catalog.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown layout type: %s", e.Type)
}

// SlotCountError reports a chart list whose length does not match the
// layout's slot count.
type SlotCountError struct {
	Type string
	Want int
	Got  int
}

func (e *SlotCountError) Error() string {
	return fmt.Sprintf("layout '%s' requires %d charts, got %d", e.Type, e.Want, e.Got)
}

// ImageNotFoundError reports a missing chart image file.
type ImageNotFoundError struct {
	Path string
}

func (e *ImageNotFoundError) Error() string {
	return fmt.Sprintf("chart image not found: %s", e.Path)
}

// Slots returns the ordered slot rectangles for a layout type. Geometry is
// derived from the shared canvas size: the content area is the canvas
// inset by Padding on every side, and two-across slots split it around a
// Gap.
func Slots(layoutType string) ([]Slot, error) {
	contentW := config.ChartWidthPx - 2*Padding
	contentH := config.ChartHeightPx - 2*Padding
	halfW := (contentW - Gap) / 2
	halfH := (contentH - Gap) / 2
	col2 := Padding + halfW + Gap
	row2 := Padding + halfH + Gap

	switch layoutType {
	case "full":
		return []Slot{{Padding, Padding, contentW, contentH}}, nil
	case "half-top":
		return []Slot{{Padding, Padding, contentW, halfH}}, nil
	case "half-bottom":
		return []Slot{{Padding, row2, contentW, halfH}}, nil
	case "half-left":
		return []Slot{{Padding, Padding, halfW, contentH}}, nil
	case "half-right":
		return []Slot{{col2, Padding, halfW, contentH}}, nil
	case "split-horizontal":
		return []Slot{
			{Padding, Padding, halfW, contentH},
			{col2, Padding, halfW, contentH},
		}, nil
	case "split-vertical":
		return []Slot{
			{Padding, Padding, contentW, halfH},
			{Padding, row2, contentW, halfH},
		}, nil
	case "grid":
		return []Slot{
			{Padding, Padding, halfW, halfH},
			{col2, Padding, halfW, halfH},
			{Padding, row2, halfW, halfH},
			{col2, row2, halfW, halfH},
		}, nil
	}
	return nil, &UnknownTypeError{Type: layoutType}
}

// SlotCount returns the number of slots in a layout type.
func SlotCount(layoutType string) (int, error) {
	slots, err := Slots(layoutType)
	if err != nil {
		return 0, err
	}
	return len(slots), nil
}

// Valid reports whether the layout type exists.
func Valid(layoutType string) bool {
	_, err := Slots(layoutType)
	return err == nil
}

// bounds returns the slot as an image rectangle.
func (s Slot) bounds() image.Rectangle {
	return image.Rect(s.X, s.Y, s.X+s.Width, s.Y+s.Height)
}

// containFit returns the largest rectangle with the source's aspect ratio
// that fits inside the slot, centered.
func (s Slot) containFit(srcW, srcH int) image.Rectangle {
	scaleW := float64(s.Width) / float64(srcW)
	scaleH := float64(s.Height) / float64(srcH)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	w := int(float64(srcW) * scale)
	h := int(float64(srcH) * scale)
	x := s.X + (s.Width-w)/2
	y := s.Y + (s.Height-h)/2
	return image.Rect(x, y, x+w, y+h)
}
