// Package txn generates the human readable identifiers attached to payments.
package txn

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	// Prefix starts every transaction identifier.
	Prefix = "TXN-"

	suffixLen = 9
)

var suffixSpace = new(big.Int).Exp(big.NewInt(36), big.NewInt(suffixLen), nil)

// Generator builds identifiers of the form TXN-<unix millis>-<base36 random>, uppercased.
// Uniqueness is probabilistic.
type Generator struct {
	now    func() time.Time
	random io.Reader
}

// NewGenerator returns a Generator backed by the wall clock and crypto/rand.
func NewGenerator() *Generator {
	return &Generator{now: time.Now, random: rand.Reader}
}

// New returns a fresh identifier.
func (g *Generator) New() (string, error) {
	const op = "txn.New"
	n, err := rand.Int(g.random, suffixSpace)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	suffix := strconv.FormatInt(n.Int64(), 36)
	id := Prefix + strconv.FormatInt(g.now().UnixMilli(), 10) + "-" + suffix
	return strings.ToUpper(id), nil
}

// Valid reports whether s looks like an identifier produced by Generator.
func Valid(s string) bool {
	rest, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return false
	}
	millis, suffix, ok := strings.Cut(rest, "-")
	if !ok || millis == "" || suffix == "" || len(suffix) > suffixLen {
		return false
	}
	if _, err := strconv.ParseInt(millis, 10, 64); err != nil {
		return false
	}
	for _, r := range suffix {
		if !(r >= '0' && r <= '9') && !(r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
