// Package download orchestrates a webfont download.
//
// # Manager
//
// The Manager coordinates the whole process:
//
//  1. Validate the run options
//  2. Fetch the stylesheet once per format, concurrently
//  3. Parse and merge the faces in format order
//  4. Download the font files with bounded concurrency
//  5. Write the rewritten stylesheet
//  6. Render a specimen preview (optional)
//
// Any failure in steps 1-5 aborts the run and no stylesheet is written.
//
// # Basic Usage
//
//	manager := download.NewManager(settings, log, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	res, err := manager.Run(ctx, &config.Options{
//	    Font:    "Open Sans",
//	    Formats: []string{"woff2", "woff"},
//	    Out:     "open-sans.css",
//	})
//
// For library use without a stylesheet file, leave Out empty and read
// res.CSS, or call the package level Run.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// GetProgress reports received bytes and file counts for progress bars.
package download
