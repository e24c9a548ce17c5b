// Package config loads rangeui settings.
//
// Settings come from, in increasing priority: built-in defaults, a
// rangeui.yaml (or .json/.toml) file in the working directory or the path
// given with --config, and RANGEUI_* environment variables. Nested keys map
// to environment variables with dots replaced by underscores, so
// preview.port is RANGEUI_PREVIEW_PORT.
//
// # Configuration File Structure
//
//	log:
//	  level: debug
//	  format: json
//	preview:
//	  host: 0.0.0.0
//	  port: 8080
//	  metrics_path: /metrics
//	snapshot:
//	  bucket: my-bucket
//	  prefix: snapshots/
//	  region: eu-west-1
//	render:
//	  prune_stale_children: true
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Preview:", cfg.PreviewAddress())
package config
