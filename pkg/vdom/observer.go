package vdom

import "time"

// Observer receives notifications about render work. Implementations must be
// cheap; they run inline with the render pass.
type Observer interface {
	// NodeMounted is called after a node is inserted into the host tree.
	NodeMounted(kind Kind)

	// NodeReplaced is called when reconciliation rebuilds an incompatible node.
	NodeReplaced(kind Kind)

	// NodePatched is called when reconciliation keeps a node in place.
	NodePatched(kind Kind)

	// ChildAppended is called for each child mounted past the old child list.
	ChildAppended()

	// PassCompleted is called at the end of every render pass.
	PassCompleted(trigger string, d time.Duration, err error)

	// StateUpdated is called for every applied SetState on a mounted component.
	StateUpdated()

	// UpdateQueued is called when a SetState arrives during a pass.
	UpdateQueued()
}

type nopObserver struct{}

func (nopObserver) NodeMounted(Kind) {}
func (nopObserver) NodeReplaced(Kind) {}
func (nopObserver) NodePatched(Kind) {}
func (nopObserver) ChildAppended() {}
func (nopObserver) PassCompleted(string, time.Duration, error) {}
func (nopObserver) StateUpdated() {}
func (nopObserver) UpdateQueued() {}
