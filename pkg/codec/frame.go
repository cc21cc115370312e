package codec

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/ssargent/gsf/pkg/gsferr"
	"github.com/ssargent/gsf/pkg/record"
)

const (
	// FrameHeaderSize is the size of the length and ID words.
	FrameHeaderSize = 8
	// ChecksumSize is the size of the optional checksum word.
	ChecksumSize = 4
	// MaxPayloadSize bounds the payload of a single record.
	MaxPayloadSize = 8 << 20

	checksumBit  = 0x80000000
	reservedMask = 0x0FC00000
	reservedBits = 22
	typeMask     = 0x003FFFFF
)

// PackID packs the checksum flag, reserved bits and record type into the ID
// word.
func PackID(checksum bool, reserved uint8, t record.Type) uint32 {
	id := (uint32(reserved) << reservedBits) & reservedMask
	id |= uint32(t) & typeMask
	if checksum {
		id |= checksumBit
	}
	return id
}

// UnpackID is the inverse of PackID.
func UnpackID(id uint32) (checksum bool, reserved uint8, t record.Type) {
	checksum = id&checksumBit != 0
	reserved = uint8((id & reservedMask) >> reservedBits)
	t = record.Type(id & typeMask)
	return
}

// Frame is a decoded record framing header.
type Frame struct {
	// Length is the padded payload length.
	Length   uint32
	Checksum bool
	Reserved uint8
	Type     record.Type
}

// HeaderSize returns the framing overhead: the header words plus the checksum
// word when present.
func (f Frame) HeaderSize() int {
	if f.Checksum {
		return FrameHeaderSize + ChecksumSize
	}
	return FrameHeaderSize
}

// Size returns the total size of the framed record.
func (f Frame) Size() int { return f.HeaderSize() + int(f.Length) }

// BodySize returns the bytes following the header words: the checksum word if
// any, then the payload.
func (f Frame) BodySize() int { return f.Size() - FrameHeaderSize }

// DataID returns the framing fields as a record.DataID.
func (f Frame) DataID() record.DataID {
	return record.DataID{Checksum: f.Checksum, Reserved: f.Reserved, Type: f.Type}
}

// PutFrame writes the header words of f to buf, which must hold at least
// FrameHeaderSize bytes.
func PutFrame(buf []byte, f Frame) {
	binary.BigEndian.PutUint32(buf[0:], f.Length)
	binary.BigEndian.PutUint32(buf[4:], PackID(f.Checksum, f.Reserved, f.Type))
}

// DecodeFrame decodes the header words at the start of buf.
func DecodeFrame(buf []byte) (Frame, error) {
	if len(buf) < FrameHeaderSize {
		return Frame{}, errors.Wrapf(gsferr.ErrReadError, "short frame header: %d bytes", len(buf))
	}

	f := Frame{Length: binary.BigEndian.Uint32(buf[0:])}
	f.Checksum, f.Reserved, f.Type = UnpackID(binary.BigEndian.Uint32(buf[4:]))
	if f.Length > MaxPayloadSize {
		return f, errors.Wrapf(gsferr.ErrRecordSizeError, "payload of %d bytes", f.Length)
	}
	return f, nil
}

// Checksum returns the byte sum of data modulo 2^32.
func Checksum(data []byte) uint32 {
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return sum
}

// VerifyChecksum checks a framed body (checksum word followed by payload).
func VerifyChecksum(body []byte) error {
	if len(body) < ChecksumSize {
		return errors.Wrap(gsferr.ErrReadError, "missing checksum word")
	}

	stored := binary.BigEndian.Uint32(body)
	if computed := Checksum(body[ChecksumSize:]); computed != stored {
		return errors.Wrapf(gsferr.ErrChecksumFailure, "stored %#08x, computed %#08x", stored, computed)
	}
	return nil
}

// PadLength returns how many zero bytes follow a payload of n bytes for a
// stream of version v.
func PadLength(v Version, n int) int {
	if v.legacyPadding() {
		return n % 4
	}
	if r := n % 4; r != 0 {
		return 4 - r
	}
	return 0
}
