package vdom

import "strings"

// Attr is a single prop, for building Props with Attrs.
type Attr struct {
	Key   string
	Value any
}

// Attrs collects attributes into Props. Empty keys are skipped; later
// attributes win.
func Attrs(attrs ...Attr) Props {
	p := make(Props, len(attrs))
	for _, a := range attrs {
		if a.Key != "" {
			p[a.Key] = a.Value
		}
	}
	return p
}

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("className", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attr { return attr("title", title) }

// Value sets the value attribute.
func Value(v string) Attr { return attr("value", v) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }
