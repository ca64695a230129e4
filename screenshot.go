package parallax

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// defaultScreenshotDir is where Capture writes when ScreenshotDir is empty.
const defaultScreenshotDir = "screenshots"

// Capture queues a labeled capture of the next drawn frame. The PNG is
// written to ScreenshotDir as <frame>_<label>.png at the end of Draw, so a
// scroll script produces the same file names on every run.
func (p *Page) Capture(label string) {
	p.captureQueue = append(p.captureQueue, label)
}

// flushCaptures writes every queued capture of screen. Called at the end of
// Page.Draw. Failures are logged; drawing never fails because of them.
func (p *Page) flushCaptures(screen *ebiten.Image) {
	if len(p.captureQueue) == 0 {
		return
	}
	defer func() { p.captureQueue = p.captureQueue[:0] }()

	dir := p.ScreenshotDir
	if dir == "" {
		dir = defaultScreenshotDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		p.logger.Error("capture failed", "dir", dir, "err", err)
		return
	}

	img := unpremultiply(screen)
	for _, label := range p.captureQueue {
		path := filepath.Join(dir, fmt.Sprintf("%06d_%s.png", p.frame, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			p.logger.Error("capture failed", "label", label, "err", err)
			continue
		}
		p.logger.Info("captured frame", "path", path, "scrollY", p.viewport.ScrollY)
	}
}

// unpremultiply reads screen back and converts it to straight-alpha NRGBA.
func unpremultiply(screen *ebiten.Image) *image.NRGBA {
	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	screen.ReadPixels(img.Pix)
	for i := 0; i < len(img.Pix); i += 4 {
		a := int(img.Pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for c := 0; c < 3; c++ {
			img.Pix[i+c] = uint8(min(int(img.Pix[i+c])*255/a, 255))
		}
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.', replacing anything else
// with '_'. An empty label becomes "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
