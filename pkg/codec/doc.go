// Package codec provides record framing and payload serialization for GSF
// streams.
//
// A GSF stream is a sequence of variable-length tagged records. The codec
// package implements the framing shared by every record and the payload
// layouts of each record type. The stream engine in package store drives it.
//
// # Record Format
//
// Every record is framed as follows, all integers big-endian:
//
//	[Length(4)][ID(4)][Checksum(4), optional][Payload(Length)]
//
// Fields:
//   - Length: payload length in bytes, padding included, framing excluded
//   - ID: packed record identifier (see below)
//   - Checksum: present iff the checksum flag of ID is set
//   - Payload: the type-specific body, zero padded
//
// The ID word packs three fields:
//
//	bit 31      checksum flag
//	bits 22-27  reserved
//	bits 0-21   record type
//
// # Checksum
//
// The checksum is the sum of all payload bytes, padding included, truncated to
// 32 bits. It is a plain byte sum rather than a CRC: it catches single byte
// corruption but not transposition.
//
// # Padding
//
// Payloads are zero padded to a 4-byte boundary. Streams written by format
// versions up to 1.2 padded with (length mod 4) bytes instead of the remaining
// distance to the boundary. Files of those versions keep that rule so that
// records rewritten in place stay byte compatible.
//
// # Payload Codecs
//
// Each record type has a PayloadCodec registered by type. Ping codecs read and
// update the per-stream scale factor table carried by Context, because beam
// arrays are stored quantized and the factors only appear in the stream when
// they change.
//
// Basic encoding and decoding of a framed record:
//
//	rc := codec.NewRecordCodec()
//	ctx := codec.NewContext(codec.LibraryVersion())
//
//	data, err := rc.Encode(ctx, record.DataID{Type: record.TypeComment, Checksum: true}, &recs)
//	if err != nil {
//	    return err
//	}
//
//	frame, err := codec.DecodeFrame(data)
//	if err != nil {
//	    return err
//	}
//	if err := rc.Decode(ctx, frame, data[frame.HeaderSize():], &out); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// RecordCodec holds no state and is safe for concurrent use. A Context belongs
// to one stream and must not be shared.
package codec
