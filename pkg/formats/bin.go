package formats

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// BinWriter appends typed arrays to a glTF binary buffer and records the
// matching buffer views and accessors in a document. Arrays are written in
// little-endian order, each starting at a multiple of its component size;
// zero bytes fill the gap when a 16-bit index array leaves the offset
// unaligned.
type BinWriter struct {
	w      io.Writer
	doc    *Document
	buffer int
	offset int
}

// NewBinWriter returns a writer for buffer 0 of doc that streams bytes to w.
func NewBinWriter(w io.Writer, doc *Document) *BinWriter {
	return &BinWriter{w: w, doc: doc}
}

// Len returns the number of bytes written so far.
func (b *BinWriter) Len() int {
	return b.offset
}

// WriteVec3 writes xyz triples. With bounds set the accessor carries the
// component-wise min and max of the data.
func (b *BinWriter) WriteVec3(data []float32, bounds bool) (int, error) {
	if len(data)%3 != 0 {
		return 0, fmt.Errorf("%w: VEC3 data of length %d", ErrInvalidGLTF, len(data))
	}
	acc := Accessor{ComponentType: ComponentFloat, Count: len(data) / 3, Type: TypeVec3}
	if bounds && len(data) > 0 {
		acc.Min, acc.Max = Vec3Bounds(data)
	}
	return b.write(data, 4, 4*len(data), TargetArrayBuffer, acc)
}

// WriteVec2 writes uv pairs.
func (b *BinWriter) WriteVec2(data []float32) (int, error) {
	if len(data)%2 != 0 {
		return 0, fmt.Errorf("%w: VEC2 data of length %d", ErrInvalidGLTF, len(data))
	}
	acc := Accessor{ComponentType: ComponentFloat, Count: len(data) / 2, Type: TypeVec2}
	return b.write(data, 4, 4*len(data), TargetArrayBuffer, acc)
}

// WriteIndices writes an index array as uint32 when wide is set and as
// uint16 otherwise.
func (b *BinWriter) WriteIndices(idx []uint32, wide bool) (int, error) {
	acc := Accessor{Count: len(idx), Type: TypeScalar}
	if wide {
		acc.ComponentType = ComponentUint32
		return b.write(idx, 4, 4*len(idx), TargetElementArrayBuffer, acc)
	}
	short := make([]uint16, len(idx))
	for i, v := range idx {
		if v > math.MaxUint16 {
			return 0, fmt.Errorf("%w: index %d does not fit 16 bits", ErrInvalidGLTF, v)
		}
		short[i] = uint16(v)
	}
	acc.ComponentType = ComponentUint16
	return b.write(short, 2, 2*len(short), TargetElementArrayBuffer, acc)
}

func (b *BinWriter) write(data any, align, byteLength, target int, acc Accessor) (int, error) {
	if pad := (align - b.offset%align) % align; pad > 0 {
		if _, err := b.w.Write(make([]byte, pad)); err != nil {
			return 0, fmt.Errorf("write buffer: %w", err)
		}
		b.offset += pad
	}
	if err := binary.Write(b.w, binary.LittleEndian, data); err != nil {
		return 0, fmt.Errorf("write buffer: %w", err)
	}
	b.doc.BufferViews = append(b.doc.BufferViews, BufferView{
		Buffer:     b.buffer,
		ByteOffset: b.offset,
		ByteLength: byteLength,
		Target:     target,
	})
	b.offset += byteLength

	acc.BufferView = len(b.doc.BufferViews) - 1
	b.doc.Accessors = append(b.doc.Accessors, acc)
	return len(b.doc.Accessors) - 1, nil
}

// Vec3Bounds returns the component-wise min and max of xyz triples.
func Vec3Bounds(data []float32) (lo, hi []float32) {
	lo = []float32{data[0], data[1], data[2]}
	hi = []float32{data[0], data[1], data[2]}
	for i := 3; i+2 < len(data); i += 3 {
		for c := 0; c < 3; c++ {
			v := data[i+c]
			if v < lo[c] {
				lo[c] = v
			}
			if v > hi[c] {
				hi[c] = v
			}
		}
	}
	return lo, hi
}
