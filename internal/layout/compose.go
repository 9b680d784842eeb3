package layout

import (
	"fmt"
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/haasonsaas/chartd/internal/config"
)

// Compose places one chart image per slot of the named layout onto a
// transparent canvas. Images are scaled aspect-preserving to fit their
// slot and centered within it.
func Compose(layoutType string, imagePaths []string) (*image.NRGBA, error) {
	slots, err := Slots(layoutType)
	if err != nil {
		return nil, err
	}
	if len(imagePaths) != len(slots) {
		return nil, &SlotCountError{Type: layoutType, Want: len(slots), Got: len(imagePaths)}
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, config.ChartWidthPx, config.ChartHeightPx))
	for i, path := range imagePaths {
		src, err := loadImage(path)
		if err != nil {
			return nil, err
		}
		b := src.Bounds()
		target := slots[i].containFit(b.Dx(), b.Dy())
		xdraw.CatmullRom.Scale(canvas, target, src, b, xdraw.Over, nil)
	}
	return canvas, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ImageNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("opening chart image: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}
