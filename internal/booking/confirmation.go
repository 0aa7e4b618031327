package booking

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const confirmationPrefix = "RES"

// Generator produces confirmation numbers of the form RES-YYMMDD-NNNN where
// YYMMDD is the creation date in UTC and NNNN a random four digit suffix.
// Codes are not unique by construction; with ten thousand suffixes per day a
// busy property will eventually draw the same code twice, which the store's
// unique index reports as ErrDuplicateConfirmation.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a Generator reading from r, or from crypto/rand when r
// is nil.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

var suffixSpace = big.NewInt(10000)

// Generate builds a confirmation number for a reservation created at
// createdAt.
func (g *Generator) Generate(createdAt time.Time) (string, error) {
	n, err := rand.Int(g.rand, suffixSpace)
	if err != nil {
		return "", fmt.Errorf("confirmation suffix: %w", err)
	}
	return fmt.Sprintf("%s-%s-%04d", confirmationPrefix, createdAt.UTC().Format("060102"), n.Int64()), nil
}
