// Package fingerprint computes stable content digests for duplicate
// detection. Digests are SHA-256 computed over bounded-size chunks; identical
// bytes always produce the identical digest regardless of file name or
// location.
package fingerprint
