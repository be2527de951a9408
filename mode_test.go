package compositor

import (
	"image/color"
	"testing"
)

func TestModeControllerSnapshot(t *testing.T) {
	bg := Hex("#0b0f19").Color()
	m := newModeController(ModePassThrough, bg)

	mode, got := m.Snapshot()
	if mode != ModePassThrough {
		t.Errorf("mode = %v, want pass-through", mode)
	}
	if got != bg {
		t.Errorf("background = %v, want %v", got, bg)
	}
}

func TestModeControllerSwap(t *testing.T) {
	m := newModeController(ModePassThrough, color.Black)

	white := Hex("#ffffff").Color()
	m.Swap(ModeSolid, white)

	mode, bg := m.Snapshot()
	if mode != ModeSolid {
		t.Errorf("mode = %v, want solid", mode)
	}
	if bg != white {
		t.Errorf("background = %v, want white", bg)
	}
}

func TestModeControllerSwapKeepsColorOnNil(t *testing.T) {
	bg := Hex("#112233").Color()
	m := newModeController(ModeSolid, bg)

	m.Swap(ModePassThrough, nil)

	mode, got := m.Snapshot()
	if mode != ModePassThrough {
		t.Errorf("mode = %v, want pass-through", mode)
	}
	if got != bg {
		t.Errorf("background = %v, want unchanged %v", got, bg)
	}
}

func TestModeString(t *testing.T) {
	if ModePassThrough.String() != "pass-through" {
		t.Errorf("ModePassThrough.String() = %q", ModePassThrough.String())
	}
	if ModeSolid.String() != "solid" {
		t.Errorf("ModeSolid.String() = %q", ModeSolid.String())
	}
	if Mode(99).String() != "unknown" {
		t.Errorf("Mode(99).String() = %q", Mode(99).String())
	}
}
