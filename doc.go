// Package compositor merges a live source video track with a
// dynamically-updated overlay into a single composited output stream.
//
// # Overview
//
// A session owns one fixed-size render target and one render loop. Each
// throttled tick the loop runs the draw sequence
//
//	clear -> background -> overlay -> publish
//
// where the background is either the live source track (pass-through
// mode) or a flat fill color (solid mode). The composited frame is
// published to the session's output stream, whose identity is stable for
// the whole session: mode swaps change draw behavior, never the stream.
//
// # Usage
//
//	sess, err := compositor.Start(compositor.Options{
//	    Mode:            compositor.ModeSolid,
//	    BackgroundColor: compositor.Hex("#0b0f19").Color(),
//	    Overlay:         annotations,
//	    TargetFPS:       30,
//	})
//	if err != nil {
//	    return err
//	}
//	defer sess.Stop()
//
//	sub := sess.Stream().Subscribe()
//	for frame := range sub.Frames() {
//	    recorder.Write(frame)
//	}
//
// Sessions are explicit, caller-owned values: any number of independent
// sessions can coexist, and lifetime is controlled by the caller through
// Stop, which is idempotent and safe to call from any goroutine at any
// time.
//
// # Error model
//
// Only construction-time failures surface as errors from Start (bad
// options, no usable surface backend). Steady-state per-frame failures —
// a source with no decodable frame yet, an overlay that panics while
// drawing, any panic inside a draw pass — are absorbed: the affected
// layer or frame degrades and the loop keeps scheduling. A single bad
// frame never takes down the stream.
//
// The package produces no log output by default; see SetLogger.
package compositor
