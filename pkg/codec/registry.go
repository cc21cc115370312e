package codec

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/ssargent/gsf/pkg/gsferr"
	"github.com/ssargent/gsf/pkg/record"
)

// Context is the per-stream state a payload codec may read or update.
type Context struct {
	// Scale is the stream's active scale factor table.
	Scale *record.ScaleFactors
	// Version is the stream's format version.
	Version Version
	// ScaleFactorsChanged is set when the last ping decoded carried scale
	// factors or the last ping encoded emitted them.
	ScaleFactorsChanged bool
	// ForceScaleFactors makes the ping encoder emit the scale factor
	// subrecord even when the factors match Scale.
	ForceScaleFactors bool
}

// NewContext returns a Context with an empty scale factor table.
func NewContext(v Version) *Context {
	return &Context{Scale: &record.ScaleFactors{}, Version: v}
}

// PayloadCodec serializes one record type's payload.
type PayloadCodec interface {
	// Encode returns the unpadded payload for the record's slot in recs.
	Encode(ctx *Context, recs *record.Records) ([]byte, error)
	// Decode fills the record's slot in recs from payload, which may carry
	// trailing zero padding.
	Decode(ctx *Context, payload []byte, recs *record.Records) error
}

var registry = map[record.Type]PayloadCodec{
	record.TypeHeader:               headerCodec{},
	record.TypeSwathBathySummary:    summaryCodec{},
	record.TypeComment:              commentCodec{},
	record.TypeHistory:              historyCodec{},
	record.TypeProcessingParameters: paramsCodec{slot: processingSlot},
	record.TypeSensorParameters:     paramsCodec{slot: sensorSlot},
	record.TypeNavigationError:      navigationErrorCodec{},
	record.TypeSoundVelocityProfile: svpCodec{},
	record.TypeSingleBeamPing:       singleBeamCodec{},
	record.TypeSwathBathymetryPing:  pingCodec{},
}

// Lookup returns the payload codec registered for t.
func Lookup(t record.Type) (PayloadCodec, error) {
	pc, ok := registry[t]
	if !ok {
		return nil, errors.Wrapf(gsferr.ErrUnrecognizedRecordID, "record type %d", uint32(t))
	}
	return pc, nil
}

// RecordCodec frames and unframes whole records, dispatching payloads by type.
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance.
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Encode serializes the record of type id.Type held in recs, framed and padded
// per ctx.Version, with a checksum when id.Checksum is set.
func (c *RecordCodec) Encode(ctx *Context, id record.DataID, recs *record.Records) ([]byte, error) {
	pc, err := Lookup(id.Type)
	if err != nil {
		return nil, err
	}

	payload, err := pc.Encode(ctx, recs)
	if err != nil {
		return nil, gsferr.EncodeFailed(id.Type, err)
	}

	padded := len(payload) + PadLength(ctx.Version, len(payload))
	if padded > MaxPayloadSize {
		return nil, errors.Wrapf(gsferr.ErrRecordSizeError, "%s payload of %d bytes", id.Type, padded)
	}

	f := Frame{
		Length:   uint32(padded),
		Checksum: id.Checksum,
		Reserved: id.Reserved,
		Type:     id.Type,
	}

	// Padding bytes stay zero from make.
	buf := make([]byte, f.Size())
	PutFrame(buf, f)
	copy(buf[f.HeaderSize():], payload)
	if f.Checksum {
		sum := Checksum(buf[f.HeaderSize():])
		binary.BigEndian.PutUint32(buf[FrameHeaderSize:], sum)
	}
	return buf, nil
}

// Decode verifies and decodes a framed body (everything after the header
// words) into recs.
func (c *RecordCodec) Decode(ctx *Context, f Frame, body []byte, recs *record.Records) error {
	if len(body) != f.BodySize() {
		return errors.Wrapf(gsferr.ErrReadError, "body of %d bytes, frame declares %d", len(body), f.BodySize())
	}

	payload := body
	if f.Checksum {
		if err := VerifyChecksum(body); err != nil {
			return err
		}
		payload = body[ChecksumSize:]
	}

	pc, err := Lookup(f.Type)
	if err != nil {
		return err
	}
	if err := pc.Decode(ctx, payload, recs); err != nil {
		return gsferr.DecodeFailed(f.Type, err)
	}
	return nil
}
