// Package http provides the HTTP client used to fetch provider stylesheets
// and download font files.
//
// The Client in this package handles:
//   - Per-format User-Agent headers (the provider picks the font format from it)
//   - Response charset decoding
//   - HTTP and SOCKS5 proxies
//   - Atomic file downloads with progress tracking
//
// # Basic Usage
//
//	client, err := http.NewClient(http.Options{Timeout: time.Minute}, log)
//
//	// Fetch a stylesheet
//	css, err := client.GetStylesheet(ctx, requestURL, userAgent)
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, fontURL, "/path/to/Open-Sans.woff2", func(written, total int64) {
//	    fmt.Printf("%d bytes\n", written)
//	})
//
// Non-200 responses are reported as *StatusError.
package http
