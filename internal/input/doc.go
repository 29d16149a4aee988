// Package input accumulates and validates the three secret factors before they
// are frozen into derivation inputs.
//
// Each Field owns a Buffer of runes that supports positional insert, remove
// and clear. Confirm finalises the buffers a field depends on and validates
// them: primary fields against a shape pattern, confirmation fields against
// their primary, and CurrentPassword against the live session through a
// checker callback.
package input
