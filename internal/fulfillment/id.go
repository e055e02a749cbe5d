package fulfillment

import (
	"fmt"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid"
)

// idAlphabet leaves out 0, O, 1 and I so an id can be read back over the phone.
const (
	idAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	idSuffix   = 4
)

// IDGenerator mints "<PREFIX>-<seq>-<suffix>" identifiers such as "ORD-12-K7QX".
// The sequence keeps ids unique within a process and the random suffix keeps
// them apart across restarts.
type IDGenerator struct {
	seq    atomic.Uint64
	suffix func() (string, error)
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{suffix: func() (string, error) {
		return gonanoid.Generate(idAlphabet, idSuffix)
	}}
}

func (g *IDGenerator) Next(prefix string) string {
	n := g.seq.Add(1)
	suffix, err := g.suffix()
	if err != nil {
		return fmt.Sprintf("%s-%d", prefix, n)
	}
	return fmt.Sprintf("%s-%d-%s", prefix, n, suffix)
}
