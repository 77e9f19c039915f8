package shortener

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

const (
	// Alphabet is the set of symbols short codes are drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// DefaultCodeLength is the length of generated short codes.
	DefaultCodeLength = 6
	// MinCodeLength and MaxCodeLength bound the accepted code lengths.
	MinCodeLength = 2
	MaxCodeLength = 64
)

// ErrCodeLength is returned for a code length outside MinCodeLength..MaxCodeLength.
var ErrCodeLength = fmt.Errorf("code length must be within %d-%d", MinCodeLength, MaxCodeLength)

// CodeGenerator generates short codes.
type CodeGenerator func() string

// NewCodeGenerator returns a generator of codes of the given length, each
// symbol picked uniformly from Alphabet.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	if length < MinCodeLength || length > MaxCodeLength {
		return nil, fmt.Errorf("code generator of length %d: %w", length, ErrCodeLength)
	}

	gen, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, fmt.Errorf("code generator of length %d: %w", length, err)
	}

	return CodeGenerator(gen), nil
}
