// Package metrics exports render work as Prometheus metrics.
//
// An Observer plugs into a vdom.Runtime and records every mount, replacement,
// patch and render pass:
//
//	reg := prometheus.NewRegistry()
//	obs := metrics.New(metrics.WithRegistry(reg))
//	rt := vdom.New(doc, vdom.WithObserver(obs))
//
// Metrics collected, with the default namespace:
//   - rangeui_nodes_mounted_total: Counter of host nodes created, by kind
//   - rangeui_nodes_replaced_total: Counter of incompatible nodes rebuilt, by kind
//   - rangeui_nodes_patched_total: Counter of nodes kept in place, by kind
//   - rangeui_children_appended_total: Counter of children mounted past the old list
//   - rangeui_passes_total: Counter of render passes by trigger and status
//   - rangeui_pass_duration_seconds: Histogram of render pass duration by trigger
//   - rangeui_state_updates_total: Counter of applied SetState calls
//   - rangeui_queued_updates_total: Counter of SetState calls deferred to the end of a pass
package metrics
