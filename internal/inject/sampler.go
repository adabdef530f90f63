package inject

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"strings"
)

// cellKeySep separates the hash key components. ASCII Unit Separator keeps
// (seed=1, row=23, col="x") distinct from (seed=12, row=3, col="x").
const cellKeySep = "\x1f"

// Sampler draws a deterministic per-cell boolean at a fixed probability.
//
// There is no shared generator state: each draw hashes (seed, rowIndex,
// columnName) with SHA-256 and maps the first 8 bytes onto [0, 1). The
// result depends only on the key, so rows can be processed in any order, on
// any number of workers, and the decisions do not change.
type Sampler struct {
	seed        int64
	probability float64
}

// NewSampler returns a sampler for the given seed and probability.
// Probability is assumed to be validated to [0, 1] by the caller.
func NewSampler(seed int64, probability float64) *Sampler {
	return &Sampler{seed: seed, probability: probability}
}

// Draw reports whether the cell at (rowIndex, column) should be replaced.
//
// Edge cases:
//   - probability 0 always returns false, probability 1 always true; both
//     skip hashing entirely.
func (s *Sampler) Draw(rowIndex int, column string) bool {
	if s.probability <= 0 {
		return false
	}
	if s.probability >= 1 {
		return true
	}
	return cellUnit(s.seed, rowIndex, column) < s.probability
}

// cellUnit derives the deterministic pseudo-random value in [0, 1) for one
// cell key.
func cellUnit(seed int64, rowIndex int, column string) float64 {
	var b strings.Builder
	b.Grow(len(column) + 24)
	b.WriteString(strconv.FormatInt(seed, 10))
	b.WriteString(cellKeySep)
	b.WriteString(strconv.Itoa(rowIndex))
	b.WriteString(cellKeySep)
	b.WriteString(column)

	sum := sha256.Sum256([]byte(b.String()))
	u := binary.BigEndian.Uint64(sum[:8])

	// Top 53 bits give a uniform dyadic rational in [0, 1), the same
	// construction math/rand uses for Float64.
	return float64(u>>11) / (1 << 53)
}
