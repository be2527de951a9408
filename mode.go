package compositor

import (
	"image/color"
	"sync"
)

// modeController holds the current background mode and color.
//
// Swap is a non-blocking setter; the render loop reads one consistent
// (mode, color) pair at the start of each draw pass, so a swap becomes
// visible at the next frame boundary and never mid-frame.
type modeController struct {
	mu         sync.Mutex
	mode       Mode
	background color.Color
}

func newModeController(mode Mode, background color.Color) *modeController {
	return &modeController{
		mode:       mode,
		background: background,
	}
}

// Swap sets the mode for subsequent frames. A nil background keeps the
// current color.
func (m *modeController) Swap(mode Mode, background color.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mode = mode
	if background != nil {
		m.background = background
	}
}

// Snapshot returns the mode and color a draw pass should use.
func (m *modeController) Snapshot() (Mode, color.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.mode, m.background
}
