//go:build windows

package desktop

import (
	"errors"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
)

const vkV = 0x56

// keyGap separates synthetic key events so slow targets see each one.
const keyGap = 50 * time.Millisecond

type winPaster struct{}

// NewPaster returns the clipboard writer and Ctrl+V simulator.
func NewPaster() (Paster, error) { return &winPaster{}, nil }

func (p *winPaster) SetText(text string) error {
	u16, err := syscall.UTF16FromString(text)
	if err != nil {
		return err
	}
	size := uintptr(len(u16)) * unsafe.Sizeof(u16[0])

	if !win.OpenClipboard(0) {
		return errors.New("desktop: open clipboard failed")
	}
	defer win.CloseClipboard()

	if !win.EmptyClipboard() {
		return errors.New("desktop: empty clipboard failed")
	}

	h := win.GlobalAlloc(win.GMEM_MOVEABLE, size)
	if h == 0 {
		return errors.New("desktop: allocate clipboard memory failed")
	}
	dst := win.GlobalLock(h)
	if dst == nil {
		win.GlobalFree(h)
		return errors.New("desktop: lock clipboard memory failed")
	}
	copy(unsafe.Slice((*uint16)(dst), len(u16)), u16)
	win.GlobalUnlock(h)

	if win.SetClipboardData(win.CF_UNICODETEXT, win.HANDLE(h)) == 0 {
		win.GlobalFree(h)
		return errors.New("desktop: set clipboard data failed")
	}
	// the system owns h from here
	return nil
}

func (p *winPaster) SendPaste() error {
	// release Alt first, the hotkey may still be held
	if err := sendKey(win.VK_MENU, true); err != nil {
		return err
	}
	steps := []struct {
		vk uint16
		up bool
	}{
		{win.VK_CONTROL, false},
		{vkV, false},
		{vkV, true},
		{win.VK_CONTROL, true},
	}
	for _, s := range steps {
		time.Sleep(keyGap)
		if err := sendKey(s.vk, s.up); err != nil {
			return err
		}
	}
	return nil
}

func sendKey(vk uint16, up bool) error {
	in := win.KEYBD_INPUT{Type: win.INPUT_KEYBOARD}
	in.Ki.WVk = vk
	if up {
		in.Ki.DwFlags = win.KEYEVENTF_KEYUP
	}
	if win.SendInput(1, unsafe.Pointer(&in), int32(unsafe.Sizeof(in))) != 1 {
		return errors.New("desktop: SendInput was blocked")
	}
	return nil
}
