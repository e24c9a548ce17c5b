package vdom

import "github.com/vango-dev/rangeui/internal/errors"

// Sentinel errors for errors.Is. Errors returned by the runtime carry more
// detail but match these by code.
var (
	ErrRenderNotImplemented = errors.New("E101")
	ErrNilRender            = errors.New("E102")
	ErrInvalidAnchor        = errors.New("E104")
	ErrNotMounted           = errors.New("E105")
	ErrUpdateLoop           = errors.New("E106")
)
