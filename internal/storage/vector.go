package storage

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Embeddings are persisted as raw little-endian float32 buffers, the same
// layout a float32 numpy array serializes to. The byte width is fixed, so
// buffer length must always be a multiple of 4; a dimensionality change
// requires re-embedding the whole corpus.

// EncodeEmbedding serializes a float32 vector to its stored byte form.
func EncodeEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// DecodeEmbedding deserializes a stored byte buffer back to a float32 vector.
func DecodeEmbedding(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("corrupt embedding: %d bytes is not a multiple of 4", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, nil
}
