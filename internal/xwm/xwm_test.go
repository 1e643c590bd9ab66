package xwm

import (
	"testing"

	"github.com/ItsNotGoodName/wlbar/internal/toplevel"
	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"
)

func TestParseWindows(t *testing.T) {
	b := []byte{
		0x01, 0x00, 0x60, 0x00,
		0x02, 0x00, 0x80, 0x01,
		0xff, // trailing partial value
	}

	assert.Equal(t, []xproto.Window{0x600001, 0x1800002}, ParseWindows(b))
	assert.Empty(t, ParseWindows(nil))
}

func TestParseWMClass(t *testing.T) {
	assert.Equal(t, "firefox", ParseWMClass([]byte("Navigator\x00firefox\x00")))
	assert.Equal(t, "xterm", ParseWMClass([]byte("xterm\x00")))
	assert.Equal(t, "xterm", ParseWMClass([]byte("xterm\x00\x00")))
	assert.Equal(t, "", ParseWMClass(nil))
}

func TestWMState(t *testing.T) {
	a := &atoms{cache: map[string]xproto.Atom{
		atomNetWMStateMaxVert:    10,
		atomNetWMStateMaxHorz:    11,
		atomNetWMStateHidden:     12,
		atomNetWMStateFullscreen: 13,
		atomNetWMStateSkipTask:   14,
	}}

	state, skip := a.wmState(ParseAtoms([]byte{10, 0, 0, 0, 12, 0, 0, 0}))
	assert.Equal(t, toplevel.StateMaximized|toplevel.StateMinimized, state)
	assert.False(t, skip)

	state, skip = a.wmState([]xproto.Atom{13, 14, 99})
	assert.Equal(t, toplevel.StateFullscreen, state)
	assert.True(t, skip)

	state, skip = a.wmState(nil)
	assert.Zero(t, state)
	assert.False(t, skip)
}

func TestNextVisibility(t *testing.T) {
	assert.Equal(t, visibilityShow, nextVisibility(false, false), "skip taskbar cleared")
	assert.Equal(t, visibilityNone, nextVisibility(false, true))
	assert.Equal(t, visibilityHide, nextVisibility(true, true), "skip taskbar set")
	assert.Equal(t, visibilityRefresh, nextVisibility(true, false))
}
