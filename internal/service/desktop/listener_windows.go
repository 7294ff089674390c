//go:build windows

package desktop

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
)

// Missing from lxn/win.
var (
	kernel32       = syscall.NewLazyDLL("kernel32.dll")
	procGlobalSize = kernel32.NewProc("GlobalSize")

	user32                          = syscall.NewLazyDLL("user32.dll")
	procAddClipboardFormatListener  = user32.NewProc("AddClipboardFormatListener")
	procRemoveClipboardFormatListen = user32.NewProc("RemoveClipboardFormatListener")
	procRegisterHotKey              = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey            = user32.NewProc("UnregisterHotKey")
)

const (
	hotkeyID = 1
	modAlt   = 0x0001
	modNoRep = 0x4000
	vkT      = 0x54
)

type winListener struct{}

// NewListener returns the hidden-window listener for Alt+T and clipboard updates.
func NewListener() (Listener, error) { return &winListener{}, nil }

func (w *winListener) Run(ctx context.Context, clipOut, hotkeyOut chan<- Event) error {
	// the window and its message loop must stay on one OS thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	className := syscall.StringToUTF16Ptr("QuickTranslateHiddenWindow")

	var wc win.WNDCLASSEX
	wc.CbSize = uint32(unsafe.Sizeof(wc))
	wc.LpfnWndProc = syscall.NewCallback(func(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
		switch msg {
		case win.WM_HOTKEY:
			if wParam == hotkeyID {
				select {
				case hotkeyOut <- Event{Type: EventHotkey, At: time.Now()}:
				default:
				}
			}
			return 0
		case win.WM_CLIPBOARDUPDATE:
			if txt, err := readClipboardText(); err == nil {
				select {
				case clipOut <- Event{Type: EventClipboardChanged, Text: txt, At: time.Now()}:
				default:
				}
			}
			return 0
		case win.WM_CLOSE:
			win.DestroyWindow(hwnd)
			return 0
		case win.WM_DESTROY:
			win.PostQuitMessage(0)
			return 0
		}
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	})
	wc.HInstance = win.GetModuleHandle(nil)
	wc.LpszClassName = className
	// a failed registration usually means the class already exists
	_ = win.RegisterClassEx(&wc)

	hwnd := win.CreateWindowEx(0, className, syscall.StringToUTF16Ptr("QuickTranslate"), 0,
		0, 0, 0, 0, 0, 0, wc.HInstance, nil)
	if hwnd == 0 {
		return errors.New("desktop: create hidden window failed")
	}

	if !addClipboardFormatListener(hwnd) {
		win.DestroyWindow(hwnd)
		return errors.New("desktop: clipboard listener registration failed")
	}
	defer removeClipboardFormatListener(hwnd)

	if !registerHotKey(hwnd, hotkeyID, modAlt|modNoRep, vkT) {
		win.DestroyWindow(hwnd)
		return errors.New("desktop: Alt+T is already taken by another program")
	}
	defer unregisterHotKey(hwnd, hotkeyID)

	stop := context.AfterFunc(ctx, func() { win.PostMessage(hwnd, win.WM_CLOSE, 0, 0) })
	defer stop()

	msg := new(win.MSG)
	for {
		r := win.GetMessage(msg, 0, 0, 0)
		if r == 0 || r == -1 {
			break
		}
		win.TranslateMessage(msg)
		win.DispatchMessage(msg)
	}
	return context.Cause(ctx)
}

func (w *winListener) ReadText() (string, error) { return readClipboardText() }

func addClipboardFormatListener(hwnd win.HWND) bool {
	if procAddClipboardFormatListener.Find() != nil {
		return false
	}
	r, _, _ := procAddClipboardFormatListener.Call(uintptr(hwnd))
	return r != 0
}

func removeClipboardFormatListener(hwnd win.HWND) bool {
	if procRemoveClipboardFormatListen.Find() != nil {
		return false
	}
	r, _, _ := procRemoveClipboardFormatListen.Call(uintptr(hwnd))
	return r != 0
}

func registerHotKey(hwnd win.HWND, id int32, modifiers uint32, vk uint32) bool {
	if procRegisterHotKey.Find() != nil {
		return false
	}
	r, _, _ := procRegisterHotKey.Call(uintptr(hwnd), uintptr(id), uintptr(modifiers), uintptr(vk))
	return r != 0
}

func unregisterHotKey(hwnd win.HWND, id int32) bool {
	if procUnregisterHotKey.Find() != nil {
		return false
	}
	r, _, _ := procUnregisterHotKey.Call(uintptr(hwnd), uintptr(id))
	return r != 0
}

func readClipboardText() (string, error) {
	if !win.IsClipboardFormatAvailable(win.CF_UNICODETEXT) {
		return "", nil
	}
	if !win.OpenClipboard(0) {
		return "", errors.New("desktop: open clipboard failed")
	}
	defer win.CloseClipboard()

	h := win.HGLOBAL(win.GetClipboardData(win.CF_UNICODETEXT))
	if h == 0 {
		return "", errors.New("desktop: clipboard has no text handle")
	}
	p := win.GlobalLock(h)
	if p == nil {
		return "", errors.New("desktop: lock clipboard memory failed")
	}
	defer win.GlobalUnlock(h)

	size, err := globalSize(h)
	if err != nil {
		return "", err
	}
	return utf16Text(unsafe.Slice((*uint16)(p), size/2)), nil
}

func globalSize(h win.HGLOBAL) (uintptr, error) {
	if err := procGlobalSize.Find(); err != nil {
		return 0, err
	}
	r, _, callErr := procGlobalSize.Call(uintptr(h))
	if r == 0 {
		return 0, fmt.Errorf("desktop: clipboard memory size: %w", callErr)
	}
	return r, nil
}
