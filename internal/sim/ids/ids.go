// Package ids mints the opaque identifiers of guild entities.
//
// IDs are UUIDs drawn from a stream keyed on (seed, counter), so a world
// that is rebuilt from a snapshot hands out the same IDs it would have
// handed out without the save/load.
package ids

import (
	"encoding/binary"
	"strings"

	"github.com/google/uuid"

	"guildsim.dev/internal/sim/dice"
)

const (
	PrefixAgent   = "agt"
	PrefixMission = "msn"
	PrefixItem    = "itm"
	PrefixLoan    = "loan"
	PrefixStaff   = "stf"
	PrefixGuild   = "gld"
	PrefixTx      = "tx"
)

type Allocator struct {
	Seed int64  `json:"seed"`
	Next uint64 `json:"next"`
}

func NewAllocator(seed int64) *Allocator { return &Allocator{Seed: seed} }

// New returns prefix_<uuid> and advances the counter.
func (a *Allocator) New(prefix string) string {
	n := a.Next
	a.Next++
	u, err := uuid.NewRandomFromReader(&hashReader{seed: a.Seed, n: n})
	if err != nil {
		// hashReader never fails; keep the ID unique anyway.
		return prefix + "_" + uuid.NewSHA1(uuid.NameSpaceOID, binary.BigEndian.AppendUint64(nil, n)).String()
	}
	return prefix + "_" + u.String()
}

// Prefix returns the entity prefix of an ID, or "" if it has none.
func Prefix(id string) string {
	i := strings.IndexByte(id, '_')
	if i <= 0 {
		return ""
	}
	return id[:i]
}

// Valid reports whether id is prefix_<uuid>.
func Valid(prefix, id string) bool {
	if Prefix(id) != prefix {
		return false
	}
	_, err := uuid.Parse(id[len(prefix)+1:])
	return err == nil
}

type hashReader struct {
	seed int64
	n    uint64
	blk  int
	buf  []byte
}

func (r *hashReader) Read(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if len(r.buf) == 0 {
			v := dice.Hash2(r.seed^int64(r.n), int(r.n>>32), int(uint32(r.n))^(r.blk<<20))
			r.buf = binary.LittleEndian.AppendUint64(nil, v)
			r.blk++
		}
		c := copy(p, r.buf)
		r.buf = r.buf[c:]
		p = p[c:]
		total += c
	}
	return total, nil
}
