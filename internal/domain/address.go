package domain

import "filippo.io/edwards25519"

// IsOnCurve reports whether a 32-byte account key is a valid ed25519 point.
// Wallet keys are on the curve; program-derived addresses are not.
func IsOnCurve(key [32]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(key[:])
	return err == nil
}
