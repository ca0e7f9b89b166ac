// Package cardcheck validates card numbers with the Luhn checksum and
// classifies them by network from their prefix and length.
//
// The package has no state. Sanitize, IsValid and Classify are pure
// functions; Checker adds the input policy and ordered batch processing.
package cardcheck
