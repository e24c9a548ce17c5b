// Package preview serves a live view of a rendered document over HTTP.
//
// The server owns one memhost.Document and the vdom.Runtime rendering into
// it. Browsers load the page, forward clicks and input as host events, and
// receive the resulting host mutations over a WebSocket:
//
//	GET  /                         page with the live client script
//	GET  /tree                     current body markup (?ids=1 adds data-rid)
//	POST /events/{node}/{event}    dispatch event to the node with that id
//	GET  /ws                       mutation stream
//	GET  /metrics                  Prometheus metrics, when a gatherer is set
//
// Render passes are single-threaded, so every request that touches the
// document holds the server lock.
package preview
