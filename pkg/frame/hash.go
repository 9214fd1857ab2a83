package frame

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/ChrisMcGann/TAGKey/pkg/core"
)

// Hasher writes a canonical byte stream of frame contents into an xxhash digest.
type Hasher struct {
	digest *xxhash.Digest
	buf    [8]byte
}

// NewHasher returns an empty hasher.
func NewHasher() *Hasher {
	return &Hasher{digest: xxhash.New()}
}

// Digest exposes the underlying digest for callers that hash their own records.
func (h *Hasher) Digest() *xxhash.Digest {
	return h.digest
}

// Sum64 returns the hash of everything written so far.
func (h *Hasher) Sum64() uint64 {
	return h.digest.Sum64()
}

// Uint writes v in little endian.
func (h *Hasher) Uint(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	_, _ = h.digest.Write(h.buf[:])
}

// Int writes a signed integer.
func (h *Hasher) Int(v int) {
	h.Uint(uint64(int64(v)))
}

// Bool writes 0 or 1.
func (h *Hasher) Bool(v bool) {
	if v {
		h.Uint(1)
	} else {
		h.Uint(0)
	}
}

// OptionalBool writes 0 for nil, 1 for false, 2 for true.
func (h *Hasher) OptionalBool(v *bool) {
	switch {
	case v == nil:
		h.Uint(0)
	case !*v:
		h.Uint(1)
	default:
		h.Uint(2)
	}
}

// Float writes the IEEE-754 bits of v.
func (h *Hasher) Float(v float64) {
	h.Uint(math.Float64bits(v))
}

// Nullable writes a validity tag followed by the value.
func (h *Hasher) Nullable(v Float) {
	h.Bool(v.Valid)
	if v.Valid {
		h.Float(v.Float64)
	}
}

// String writes a length-prefixed string.
func (h *Hasher) String(s string) {
	h.Int(len(s))
	_, _ = h.digest.WriteString(s)
}

// Strings writes a length-prefixed string list.
func (h *Hasher) Strings(ss []string) {
	h.Int(len(ss))
	for _, s := range ss {
		h.String(s)
	}
}

// Key writes the labels and numbers of a composition key.
func (h *Hasher) Key(k Key) {
	h.Strings(k.Labels)
	h.Int(len(k.Numbers))
	for _, n := range k.Numbers {
		h.Float(n)
	}
}

// FattyAcid writes carbon and bonds.
func (h *Hasher) FattyAcid(fa core.FattyAcid) {
	h.Int(fa.Carbon)
	h.Int(len(fa.Bonds))
	for _, bond := range fa.Bonds {
		h.Int(bond.Position)
		h.Int(int(bond.Isomerism))
		h.Int(int(bond.Conjugation))
	}
}

// Cell writes mean, deviation and sample.
func (h *Hasher) Cell(c Cell) {
	h.Nullable(c.Mean)
	h.Nullable(c.StandardDeviation)
	h.Int(len(c.Sample))
	for _, v := range c.Sample {
		h.Nullable(v)
	}
}

// Schema writes column order and data types.
func (h *Hasher) Schema(s Schema) {
	h.Int(len(s))
	for _, f := range s {
		h.String(f.Name)
		h.String(f.Type.String())
	}
}

// FactorTable writes every code and factor in code order. A nil table
// writes a marker of its own.
func (h *Hasher) FactorTable(t *core.FactorTable) {
	if t == nil {
		h.Int(-1)
		return
	}
	codes := t.Codes()
	h.Int(len(codes))
	for _, code := range codes {
		factor, _ := t.Lookup(code)
		h.String(code)
		h.Float(factor)
	}
}

// Combine hashes a sequence of 64-bit values in order.
func Combine(values ...uint64) uint64 {
	h := NewHasher()
	for _, v := range values {
		h.Uint(v)
	}
	return h.Sum64()
}
