package gateway

import "errors"

// maxInputLength bounds any path parameter before shape checks run.
const maxInputLength = 100

// base58Alphabet is the Bitcoin base58 set, excluding 0, O, I and l.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var (
	errEmptyInput = errors.New("Invalid input: Input cannot be empty")
	errTooLong    = errors.New("Invalid input: Input exceeds maximum length of 100")
	errBadAddress = errors.New("Invalid Solana address format")
)

// validateAddress checks that input looks like a base58 Solana address.
// Emptiness and length are checked before shape so the caller gets the most
// specific message.
func validateAddress(input string) error {
	if input == "" {
		return errEmptyInput
	}
	if len(input) > maxInputLength {
		return errTooLong
	}
	if len(input) < 32 || len(input) > 44 {
		return errBadAddress
	}
	for _, c := range input {
		if !isBase58Char(c) {
			return errBadAddress
		}
	}
	return nil
}

func isBase58Char(c rune) bool {
	for _, a := range base58Alphabet {
		if c == a {
			return true
		}
	}
	return false
}
