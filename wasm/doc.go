// Package wasm holds the module-level collaborators the validator
// consumes but does not itself implement: the binary module decoder, the
// value-type and signature vocabulary, and the per-function index
// resolver. None of it type-checks a function body; that is validate's
// job.
package wasm
