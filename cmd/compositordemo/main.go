// Command compositordemo runs a short compositor session against a
// synthetic source track and overlay, then saves the final composited
// frame as a PNG.
//
// Configuration comes from flags, with defaults overridable through a
// .env file (COMPOSITOR_WIDTH, COMPOSITOR_HEIGHT, COMPOSITOR_FPS,
// COMPOSITOR_MODE).
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/wilburlive/compositor"
)

func main() {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	var (
		width    = flag.Int("width", envInt("COMPOSITOR_WIDTH", 640), "render target width")
		height   = flag.Int("height", envInt("COMPOSITOR_HEIGHT", 360), "render target height")
		fps      = flag.Int("fps", envInt("COMPOSITOR_FPS", 30), "target frames per second")
		mode     = flag.String("mode", envStr("COMPOSITOR_MODE", "pass-through"), "background mode: pass-through or solid")
		duration = flag.Duration("duration", 2*time.Second, "how long to run the session")
		output   = flag.String("output", "composited.png", "output file")
		verbose  = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	compositor.SetLogger(logger)

	opts := compositor.Options{
		Overlay:   newClockOverlay(*width, *height),
		TargetFPS: *fps,
		Width:     *width,
		Height:    *height,
	}

	frames := make(chan image.Image, 1)
	switch *mode {
	case "solid":
		opts.Mode = compositor.ModeSolid
		opts.BackgroundColor = compositor.Hex("#0b0f19").Color()
	default:
		opts.Mode = compositor.ModePassThrough
		opts.TrackFrames = frames
		go produceFrames(frames, *width, *height)
	}

	sess, err := compositor.Start(opts)
	if err != nil {
		slog.Error("start failed", "error", err)
		os.Exit(1)
	}
	defer sess.Stop()

	stream := sess.Stream()
	sub := stream.Subscribe()
	defer sub.Close()

	// Halfway through, swap to a solid background to show a live mode
	// switch: the stream keeps flowing, only the draw behavior changes.
	swap := time.After(*duration / 2)
	deadline := time.After(*duration)

	var last *compositor.Frame
loop:
	for {
		select {
		case f, ok := <-sub.Frames():
			if !ok {
				break loop
			}
			last = f
		case <-swap:
			sess.SwapMode(compositor.ModeSolid, compositor.Hex("#112233").Color())
		case <-deadline:
			break loop
		}
	}

	slog.Info("session finished",
		"frames", sess.FramesDrawn(), "dropped", sub.Drops(), "stream", stream.ID())

	if last == nil {
		slog.Error("no frame composited")
		os.Exit(1)
	}
	if err := savePNG(*output, last.Image); err != nil {
		slog.Error("save failed", "error", err)
		os.Exit(1)
	}
	slog.Info("frame saved", "file", *output, "seq", last.Seq)
}

// produceFrames feeds the session's proxy track with a slowly shifting
// gradient, standing in for a live capture source.
func produceFrames(frames chan<- image.Image, w, h int) {
	tick := time.NewTicker(33 * time.Millisecond)
	defer tick.Stop()

	var phase uint8
	for range tick.C {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetRGBA(x, y, color.RGBA{
					R: uint8(x * 255 / w),
					G: uint8(y*255/h) + phase,
					B: 0x40,
					A: 0xff,
				})
			}
		}
		phase += 8

		select {
		case frames <- img:
		default: // session not keeping up; drop
		}
	}
}

// clockOverlay draws a moving block, standing in for externally produced
// annotations.
type clockOverlay struct {
	w, h  int
	start time.Time
}

func newClockOverlay(w, h int) *clockOverlay {
	return &clockOverlay{w: w, h: h, start: time.Now()}
}

func (o *clockOverlay) Image() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, o.w, o.h))

	offset := int(time.Since(o.start).Seconds()*60) % (o.w - 40)
	block := image.Rect(offset, o.h/2-20, offset+40, o.h/2+20)
	for y := block.Min.Y; y < block.Max.Y; y++ {
		for x := block.Min.X; x < block.Max.X; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 0xff, G: 0x3b, B: 0x30, A: 0xff})
		}
	}
	return img
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
