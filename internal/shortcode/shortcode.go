// Package shortcode draws random alphanumeric codes for shortened URLs.
// The codes are not unique by themselves; callers check them against their store.
package shortcode

import "math/rand/v2"

// DefaultLength is the length of the codes the shortener issues.
const DefaultLength = 6

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator picks characters uniformly from the 62-symbol alphabet.
// A Generator is not safe for concurrent use unless built on a safe source.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator drawing from src. A nil src falls back to the
// global math/rand/v2 source, which is safe for concurrent use.
func New(src rand.Source) *Generator {
	if src == nil {
		return &Generator{}
	}
	return &Generator{rnd: rand.New(src)}
}

// Generate returns a code of the given length using the global source.
func Generate(length int) string {
	return New(nil).Generate(length)
}

// Generate returns a code of the given length. Non-positive lengths yield "".
func (g *Generator) Generate(length int) string {
	if length <= 0 {
		return ""
	}

	code := make([]byte, length)
	for i := range code {
		code[i] = alphabet[g.intN(len(alphabet))]
	}

	return string(code)
}

func (g *Generator) intN(n int) int {
	if g.rnd == nil {
		return rand.IntN(n)
	}
	return g.rnd.IntN(n)
}
