//go:build !windows

package desktop

func NewListener() (Listener, error) { return nil, ErrUnsupportedPlatform }

func NewPaster() (Paster, error) { return nil, ErrUnsupportedPlatform }
