// Package errors provides structured, coded errors for rangeui.
//
// Every failure the library reports on purpose carries a stable code
// (e.g. "E101") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Error Categories
//
//   - runtime: component contract violations (render not implemented, nil render)
//   - host: failures reported by the host tree (bad range bounds, detached nodes)
//   - config: configuration loading and validation
//   - snapshot: publishing rendered output
//   - preview: the development preview server
//
// # Usage
//
//	err := errors.New("E101").
//	    WithComponent("Page > Counter").
//	    WithSuggestion("Define a Render method on your component type")
//
//	fmt.Println(err.Format())
//
// Errors compare by code, so errors.Is(err, errors.New("E101")) holds for any
// E101 regardless of the attached detail.
package errors
