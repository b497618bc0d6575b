// Package sanitizer normalizes user-supplied text before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. Invalid input produces an empty value rather than an error,
// leaving rejection to the validators.
package sanitizer
