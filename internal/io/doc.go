// Package ioutils provides file system and image utilities.
//
// This package contains:
//   - Sink, the destination of the generated stylesheet (file, stdout or memory)
//   - Atomic file writes and directory creation
//   - File name checks for provider supplied names
//   - Specimen sheet rendering for downloaded TrueType fonts
//
// # File Operations
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/fonts")
//
//	// Keep a provider derived name inside the destination
//	path, err := ioutils.ResolveInDir(dest, task.Name)
//
// # Previews
//
//	svc := ioutils.NewPreviewService()
//	png, err := svc.RenderSpecimen(ctx, specimens)
package ioutils
