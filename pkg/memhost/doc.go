// Package memhost is an in-memory host tree for rangeui.
//
// A Document owns a tree of element and text nodes rooted at a body element,
// and implements host.Host. Ranges follow the DOM live-range rules: inserting
// or removing a child shifts every range boundary that sits after it in the
// same parent, and removing a subtree collapses ranges inside it to the
// removal point. This is what lets rangeui patch one anchor without knowing
// the absolute position of anything else.
//
// Every structural or attribute change is recorded as a Mutation. Tests use
// the journal to assert how many host edits a render pass caused; the preview
// server streams it to browsers.
package memhost
