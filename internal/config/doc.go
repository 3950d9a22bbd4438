// Package config provides configuration management for webfont-dl.
//
// This package handles:
//   - Run options (font, formats, styles, destinations) and their defaults
//   - Program settings from a YAML file layered over embedded defaults
//   - Logger construction
//
// # Run Options
//
//	opts := &config.Options{Font: "Open+Sans", Formats: []string{"woff2", "woff"}}
//	if err := opts.Normalize(); err != nil {
//	    // model.KindValidation error
//	}
//	// opts.Font == "Open Sans", opts.Prefix == "../fonts/Open Sans"
//
// # Settings
//
// Defaults live in config.yaml.tmpl, expanded with gencfg. A user file only
// needs the keys it changes:
//
//	settings, err := config.LoadSettings("/path/to/webfont-dl.yaml")
//
// Settings include:
//   - Stylesheet endpoint, timeout, proxy and per-format User-Agents
//   - Download concurrency and specimen preview options
//   - Console and file logging levels
package config
