package world

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrGridEncoding is returned when a packed grid cannot be decoded
var ErrGridEncoding = errors.New("malformed grid encoding")

const gridHeaderLen = 8

// MarshalBinary packs the grid as a big-endian uint32 width and height
// followed by the cells row-major, one bit per cell, low bit first.
func (g *Grid) MarshalBinary() ([]byte, error) {
	out := make([]byte, gridHeaderLen+(len(g.cells)+7)/8)
	binary.BigEndian.PutUint32(out[0:4], uint32(g.width))
	binary.BigEndian.PutUint32(out[4:8], uint32(g.height))
	for i, v := range g.cells {
		if v {
			out[gridHeaderLen+i/8] |= 1 << (i % 8)
		}
	}
	return out, nil
}

// UnmarshalBinary replaces g with the grid packed in data
func (g *Grid) UnmarshalBinary(data []byte) error {
	if len(data) < gridHeaderLen {
		return fmt.Errorf("%w: %d bytes", ErrGridEncoding, len(data))
	}
	w := int(binary.BigEndian.Uint32(data[0:4]))
	h := int(binary.BigEndian.Uint32(data[4:8]))
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrGridEncoding, w, h)
	}
	body := data[gridHeaderLen:]
	if len(body) != (w*h+7)/8 {
		return fmt.Errorf("%w: %d payload bytes for %dx%d", ErrGridEncoding, len(body), w, h)
	}

	cells := make([]bool, w*h)
	for i := range cells {
		cells[i] = body[i/8]&(1<<(i%8)) != 0
	}
	g.width, g.height, g.cells = w, h, cells
	return nil
}

// DecodeGrid is UnmarshalBinary into a fresh grid
func DecodeGrid(data []byte) (*Grid, error) {
	g := &Grid{}
	if err := g.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return g, nil
}
