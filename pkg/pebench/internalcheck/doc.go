// Package internalcheck holds static-analysis tests that enforce package
// policies across the module:
//
//   - byte slices holding plaintexts or encodings are compared with
//     crypto/subtle, never with ==
//   - nothing is formatted with %x, so key material cannot leak into logs or
//     errors
//   - the harness packages never import a concrete scheme adapter
//
// The package has no exported API.
package internalcheck
