//go:build fuzz
// +build fuzz

package codec

import (
	"testing"

	"github.com/ssargent/gsf/pkg/record"
)

// FuzzRecordCodec_CommentRoundTrip tests encode/decode round-trip with random inputs
func FuzzRecordCodec_CommentRoundTrip(f *testing.F) {
	codec := NewRecordCodec()

	f.Add("", int32(0), int32(0), false)
	f.Add("survey line 12 started", int32(1718000000), int32(250000000), true)
	f.Add("\x00\x01\x02", int32(-1), int32(999999999), true)

	f.Fuzz(func(t *testing.T, comment string, sec, nsec int32, checksum bool) {
		if len(comment) > 100000 {
			t.Skip("Input too large for fuzz test")
		}

		in := &record.Records{Comment: record.Comment{
			Time:    record.Timespec{Sec: sec, Nsec: nsec},
			Comment: comment,
		}}
		encoded, err := codec.Encode(NewContext(LibraryVersion()), record.DataID{Type: record.TypeComment, Checksum: checksum}, in)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}

		frame, err := DecodeFrame(encoded)
		if err != nil {
			t.Fatalf("DecodeFrame failed: %v", err)
		}
		if frame.Size() != len(encoded) {
			t.Fatalf("frame declares %d bytes, encoded %d", frame.Size(), len(encoded))
		}

		var out record.Records
		if err := codec.Decode(NewContext(LibraryVersion()), frame, encoded[FrameHeaderSize:], &out); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if out.Comment != in.Comment {
			t.Errorf("Comment mismatch: got %+v, want %+v", out.Comment, in.Comment)
		}
	})
}

// FuzzRecordCodec_CorruptionDetection tests that a flipped payload byte fails the checksum
func FuzzRecordCodec_CorruptionDetection(f *testing.F) {
	codec := NewRecordCodec()

	f.Add("value", uint(0))
	f.Add("john@example.com", uint(5))
	f.Add("data", uint(10))

	f.Fuzz(func(t *testing.T, comment string, corruptPos uint) {
		if len(comment) > 10000 {
			t.Skip("Input too large for fuzz test")
		}

		in := &record.Records{Comment: record.Comment{Comment: comment}}
		encoded, err := codec.Encode(NewContext(LibraryVersion()), record.DataID{Type: record.TypeComment, Checksum: true}, in)
		if err != nil {
			t.Skip("Encode failed, skipping")
		}

		payloadStart := FrameHeaderSize + ChecksumSize
		pos := payloadStart + int(corruptPos%uint(len(encoded)-payloadStart))

		corrupted := make([]byte, len(encoded))
		copy(corrupted, encoded)
		corrupted[pos] ^= 0xFF

		frame, err := DecodeFrame(corrupted)
		if err != nil {
			t.Fatalf("DecodeFrame failed: %v", err)
		}
		if err := codec.Decode(NewContext(LibraryVersion()), frame, corrupted[FrameHeaderSize:], &record.Records{}); err == nil {
			t.Errorf("Corruption not detected at position %d", pos)
		}
	})
}

// FuzzRecordCodec_MalformedData tests handling of malformed input
func FuzzRecordCodec_MalformedData(f *testing.F) {
	codec := NewRecordCodec()

	f.Add([]byte{})
	f.Add([]byte{0x01})
	f.Add([]byte{0, 0, 0, 4, 0, 0, 0, 2, 1, 2, 3, 4})
	f.Add(make([]byte, 7))
	f.Add(make([]byte, 64))

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > 100000 {
			t.Skip("Input too large for fuzz test")
		}

		frame, err := DecodeFrame(data)
		if err != nil || frame.Size() > len(data) {
			return
		}

		// The important thing is that it doesn't panic.
		var recs record.Records
		_ = codec.Decode(NewContext(LibraryVersion()), frame, data[FrameHeaderSize:frame.Size()], &recs)
	})
}
