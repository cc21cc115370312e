package codec

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

var errShortPayload = errors.New("payload truncated")

// writer appends big-endian fields to a growing buffer.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) u8(v uint8) { w.buf.WriteByte(v) }

func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) i16(v int16) { w.u16(uint16(v)) }
func (w *writer) i32(v int32) { w.u32(uint32(v)) }

func (w *writer) bytes(b []byte) { w.buf.Write(b) }

// str16 writes a uint16 length followed by the string bytes.
func (w *writer) str16(s string) error {
	if len(s) > math.MaxUint16 {
		return errors.Errorf("string of %d bytes exceeds field size", len(s))
	}
	w.u16(uint16(len(s)))
	w.buf.WriteString(s)
	return nil
}

// pack appends a fixed-layout struct.
func (w *writer) pack(v interface{}) error {
	return struc.Pack(&w.buf, v)
}

func (w *writer) Bytes() []byte { return w.buf.Bytes() }
func (w *writer) Len() int      { return w.buf.Len() }

// reader consumes big-endian fields from a payload. The first short read sets
// err; subsequent reads return zero values.
type reader struct {
	buf []byte
	pos int
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.buf) {
		r.err = errShortPayload
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) u16() uint16 {
	if b := r.take(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (r *reader) i16() int16 { return int16(r.u16()) }
func (r *reader) i32() int32 { return int32(r.u32()) }

func (r *reader) str16() string {
	n := int(r.u16())
	return string(r.take(n))
}

// unpack fills a fixed-layout struct.
func (r *reader) unpack(v interface{}, size int) {
	b := r.take(size)
	if b == nil {
		return
	}
	if err := struc.Unpack(bytes.NewReader(b), v); err != nil {
		r.err = err
	}
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

// Scaling helpers for fixed-point scalar fields.

func scaleI32(v, mult float64) (int32, error) {
	q := math.Round(v * mult)
	if q < math.MinInt32 || q > math.MaxInt32 {
		return 0, errors.Errorf("value %g out of range", v)
	}
	return int32(q), nil
}

func scaleI16(v, mult float64) (int16, error) {
	q := math.Round(v * mult)
	if q < math.MinInt16 || q > math.MaxInt16 {
		return 0, errors.Errorf("value %g out of range", v)
	}
	return int16(q), nil
}

func scaleU16(v, mult float64) (uint16, error) {
	q := math.Round(v * mult)
	if q < 0 || q > math.MaxUint16 {
		return 0, errors.Errorf("value %g out of range", v)
	}
	return uint16(q), nil
}

func scaleU32(v, mult float64) (uint32, error) {
	q := math.Round(v * mult)
	if q < 0 || q > math.MaxUint32 {
		return 0, errors.Errorf("value %g out of range", v)
	}
	return uint32(q), nil
}
