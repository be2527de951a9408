package compositor

import (
	"image"
	"image/color"
	"testing"

	"github.com/wilburlive/compositor/surface"
)

// stubOverlay is an Overlay returning a fixed image.
type stubOverlay struct {
	img image.Image
}

func (o *stubOverlay) Image() image.Image { return o.img }

// panicOverlay simulates an overlay whose producer died mid-refresh.
type panicOverlay struct{}

func (panicOverlay) Image() image.Image { panic("renderer gone") }

func TestOverlayBinderUnbound(t *testing.T) {
	var b overlayBinder
	target := surface.NewImageSurface(8, 8)
	defer target.Close()

	target.Fill(target.Bounds(), color.RGBA{R: 255, A: 255})
	b.Draw(target)

	// No overlay bound: the target is untouched.
	if got := target.Image().RGBAAt(4, 4); got.R != 255 {
		t.Errorf("pixel = %v, want untouched red", got)
	}
}

func TestOverlayBinderDraw(t *testing.T) {
	var b overlayBinder
	b.Bind(&stubOverlay{img: solidImage(4, 4, color.RGBA{G: 255, A: 255})})

	target := surface.NewImageSurface(8, 8)
	defer target.Close()
	target.Fill(target.Bounds(), color.RGBA{R: 255, A: 255})

	b.Draw(target)

	// The overlay scales to cover the whole target.
	if got := target.Image().RGBAAt(4, 4); got.G != 255 || got.R != 0 {
		t.Errorf("pixel = %v, want overlay green", got)
	}
	if got := target.Image().RGBAAt(0, 0); got.G != 255 {
		t.Errorf("corner pixel = %v, want overlay green", got)
	}
}

func TestOverlayBinderSkipsNilImage(t *testing.T) {
	var b overlayBinder
	b.Bind(&stubOverlay{}) // Bound but content-less

	target := surface.NewImageSurface(8, 8)
	defer target.Close()
	target.Fill(target.Bounds(), color.RGBA{B: 255, A: 255})

	b.Draw(target)

	if got := target.Image().RGBAAt(4, 4); got.B != 255 {
		t.Errorf("pixel = %v, want untouched blue", got)
	}
}

func TestOverlayBinderAbsorbsPanic(t *testing.T) {
	var b overlayBinder
	b.Bind(panicOverlay{})

	target := surface.NewImageSurface(8, 8)
	defer target.Close()
	target.Fill(target.Bounds(), color.RGBA{B: 255, A: 255})

	// A panicking overlay skips the layer, never propagates.
	b.Draw(target)

	if got := target.Image().RGBAAt(4, 4); got.B != 255 {
		t.Errorf("pixel = %v, want untouched blue", got)
	}
}

func TestOverlayBinderUnbind(t *testing.T) {
	var b overlayBinder
	b.Bind(&stubOverlay{img: solidImage(4, 4, color.RGBA{G: 255, A: 255})})
	b.Unbind()

	target := surface.NewImageSurface(8, 8)
	defer target.Close()
	target.Fill(target.Bounds(), color.RGBA{R: 255, A: 255})

	b.Draw(target)

	if got := target.Image().RGBAAt(4, 4); got.R != 255 {
		t.Errorf("pixel = %v, want untouched red after Unbind", got)
	}
}
