// Package formats provides codecs for GTA chase and nodes .dat files.
package formats

// Note: chase variant detection and position decoding is in chase.go
// Note: nodes encoding and parse-back is in nodes.go
// Note: file-kind inspection is in inspect.go
