// Package errors provides the structured error type shared by lazy sequences
// and the page sources that feed them.
//
// Every failure that leaves a sequence is an *AppError carrying a
// machine-readable code. Fetch failures, callback failures and misuse of a
// broken sequence are distinguishable with HasCode, while the original cause
// stays reachable through errors.Is / errors.As.
package errors
