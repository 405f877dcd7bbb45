// Package files locates ratings sources on disk.
//
// A run may be pointed at a directory instead of a file; Discovery then picks
// the most recently modified csv, tsv, txt or xlsx file inside it.
//
// Example usage:
//
//	input, err := files.NewDiscovery(wd).ResolveInput("data")
package files
