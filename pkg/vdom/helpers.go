package vdom

import "fmt"

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Text {
	return NewText(fmt.Sprintf(format, args...))
}

// If returns the node if condition is true, nil otherwise. Build drops nil
// children, so If works inline in a child list.
func If(condition bool, node Node) Node {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse Node) Node {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() Node) Node {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to nodes. Nil results are skipped.
func Range[T any](items []T, fn func(item T, index int) Node) []Node {
	result := make([]Node, 0, len(items))
	for i, item := range items {
		node := fn(item, i)
		if !isNil(node) {
			result = append(result, node)
		}
	}
	return result
}

// Repeat creates n nodes using the given function.
func Repeat(n int, fn func(i int) Node) []Node {
	if n <= 0 {
		return nil
	}
	result := make([]Node, 0, n)
	for i := 0; i < n; i++ {
		node := fn(i)
		if !isNil(node) {
			result = append(result, node)
		}
	}
	return result
}
