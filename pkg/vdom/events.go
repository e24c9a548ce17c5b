package vdom

import "strings"

// event creates the prop for an event handler. The prop name is "on" followed
// by the capitalized event, e.g. "click" becomes "onClick"; at mount time the
// host listener is registered under the lowercased name.
func event(name string, handler any) Attr {
	if name == "" {
		return Attr{}
	}
	return Attr{Key: "on" + strings.ToUpper(name[:1]) + name[1:], Value: handler}
}

// OnClick handles click events.
func OnClick(handler any) Attr { return event("click", handler) }

// OnDblClick handles double-click events.
func OnDblClick(handler any) Attr { return event("dblclick", handler) }

// OnInput handles input events (fired when value changes).
func OnInput(handler any) Attr { return event("input", handler) }

// OnChange handles change events (fired when value is committed).
func OnChange(handler any) Attr { return event("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler any) Attr { return event("submit", handler) }

// OnKeyDown handles keydown events.
func OnKeyDown(handler any) Attr { return event("keydown", handler) }

// OnFocus handles focus events.
func OnFocus(handler any) Attr { return event("focus", handler) }

// OnBlur handles blur events.
func OnBlur(handler any) Attr { return event("blur", handler) }
