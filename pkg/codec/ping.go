package codec

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/ssargent/gsf/pkg/record"
)

const (
	scaleFactorSubrecord = 100
	maxSubrecordSize     = 1<<24 - 1
	mmScale              = 1000.0
)

type pingBlock struct {
	Sec, Nsec           int32
	Longitude, Latitude int32
	NumberBeams         uint16
	CenterBeam          uint16
	PingFlags, Reserved uint16
	TideCorrector       int16
	DepthCorrector      int32
	Heading             uint16
	Pitch, Roll, Heave  int16
	Course, Speed       uint16
	Height, Separation  int32
	GPSTideCorrector    int32
}

const pingBlockSize = 54

// beamArray describes how one quantized beam array is stored.
type beamArray struct {
	id     int
	width  int
	signed bool
	field  func(*record.SwathBathyPing) *[]float64
}

var beamArrays = []beamArray{
	{record.DepthArray, 4, false, func(p *record.SwathBathyPing) *[]float64 { return &p.Depth }},
	{record.AcrossTrackArray, 4, true, func(p *record.SwathBathyPing) *[]float64 { return &p.AcrossTrack }},
	{record.AlongTrackArray, 4, true, func(p *record.SwathBathyPing) *[]float64 { return &p.AlongTrack }},
	{record.TravelTimeArray, 4, false, func(p *record.SwathBathyPing) *[]float64 { return &p.TravelTime }},
	{record.BeamAngleArray, 2, true, func(p *record.SwathBathyPing) *[]float64 { return &p.BeamAngle }},
	{record.MeanCalAmplitudeArray, 1, true, func(p *record.SwathBathyPing) *[]float64 { return &p.MeanCalAmplitude }},
	{record.MeanRelAmplitudeArray, 2, false, func(p *record.SwathBathyPing) *[]float64 { return &p.MeanRelAmplitude }},
	{record.EchoWidthArray, 2, false, func(p *record.SwathBathyPing) *[]float64 { return &p.EchoWidth }},
	{record.QualityFactorArray, 1, false, func(p *record.SwathBathyPing) *[]float64 { return &p.QualityFactor }},
	{record.BeamAngleForwardArray, 2, false, func(p *record.SwathBathyPing) *[]float64 { return &p.BeamAngleForward }},
	{record.VerticalErrorArray, 2, false, func(p *record.SwathBathyPing) *[]float64 { return &p.VerticalError }},
	{record.HorizontalErrorArray, 2, false, func(p *record.SwathBathyPing) *[]float64 { return &p.HorizontalError }},
}

func findBeamArray(id int) (beamArray, bool) {
	for _, ba := range beamArrays {
		if ba.id == id {
			return ba, true
		}
	}
	return beamArray{}, false
}

// bounds returns the quantized range the array's element width can hold.
func (ba beamArray) bounds() (lo, hi float64) {
	bits := uint(ba.width * 8)
	if ba.signed {
		return -math.Ldexp(1, int(bits-1)), math.Ldexp(1, int(bits-1)) - 1
	}
	return 0, math.Ldexp(1, int(bits)) - 1
}

func (ba beamArray) encode(w *writer, values []float64, si record.ScaleInfo) error {
	lo, hi := ba.bounds()
	for _, v := range values {
		q := math.Round((v + si.Offset) * si.Multiplier)
		if q < lo || q > hi || math.IsNaN(q) {
			return errors.Errorf("subrecord %d value %g does not fit %d bytes", ba.id, v, ba.width)
		}

		switch ba.width {
		case 1:
			w.u8(uint8(int64(q)))
		case 2:
			w.u16(uint16(int64(q)))
		default:
			w.u32(uint32(int64(q)))
		}
	}
	return nil
}

func (ba beamArray) decode(body []byte, dst []float64, si record.ScaleInfo) {
	for i := range dst {
		var q int64
		switch ba.width {
		case 1:
			if ba.signed {
				q = int64(int8(body[i]))
			} else {
				q = int64(body[i])
			}
		case 2:
			u := binary.BigEndian.Uint16(body[i*2:])
			if ba.signed {
				q = int64(int16(u))
			} else {
				q = int64(u)
			}
		default:
			u := binary.BigEndian.Uint32(body[i*4:])
			if ba.signed {
				q = int64(int32(u))
			} else {
				q = int64(u)
			}
		}
		dst[i] = float64(q)/si.Multiplier - si.Offset
	}
}

func subrecordWord(id, size int) uint32 {
	return uint32(id)<<24 | uint32(size)&maxSubrecordSize
}

// pingCodec encodes swath bathymetry pings. Scale factors are emitted only
// when the ping's table differs from the last one written to the stream.
type pingCodec struct{}

func (pingCodec) Encode(ctx *Context, recs *record.Records) ([]byte, error) {
	p := &recs.Ping
	n := p.NumberBeams
	if n < 0 || n > math.MaxUint16 {
		return nil, errors.Errorf("number of beams %d out of range", n)
	}
	if p.CenterBeam < 0 || p.CenterBeam > math.MaxUint16 {
		return nil, errors.Errorf("center beam %d out of range", p.CenterBeam)
	}

	b := pingBlock{
		Sec:         p.PingTime.Sec,
		Nsec:        p.PingTime.Nsec,
		NumberBeams: uint16(n),
		CenterBeam:  uint16(p.CenterBeam),
		PingFlags:   p.PingFlags,
		Reserved:    p.Reserved,
	}
	if err := fillPingBlock(&b, p); err != nil {
		return nil, err
	}

	var w writer
	if err := w.pack(&b); err != nil {
		return nil, err
	}

	emitScale := ctx.ForceScaleFactors || p.ScaleFactors != *ctx.Scale
	if emitScale {
		if err := encodeScaleFactors(&w, &p.ScaleFactors); err != nil {
			return nil, err
		}
	}

	for _, ba := range beamArrays {
		values := *ba.field(p)
		if len(values) == 0 {
			continue
		}
		if len(values) != n {
			return nil, errors.Errorf("subrecord %d holds %d values for %d beams", ba.id, len(values), n)
		}

		si, err := p.ScaleFactors.Get(ba.id)
		if err != nil {
			return nil, err
		}
		w.u32(subrecordWord(ba.id, n*ba.width))
		if err := ba.encode(&w, values, si); err != nil {
			return nil, err
		}
	}

	if len(p.BeamFlags) > 0 {
		if len(p.BeamFlags) != n {
			return nil, errors.Errorf("beam flags hold %d values for %d beams", len(p.BeamFlags), n)
		}
		w.u32(subrecordWord(record.BeamFlagsArray, n))
		w.bytes(p.BeamFlags)
	}

	ctx.ScaleFactorsChanged = emitScale
	if emitScale {
		*ctx.Scale = p.ScaleFactors
	}
	return w.Bytes(), nil
}

func fillPingBlock(b *pingBlock, p *record.SwathBathyPing) error {
	var err error
	if b.Longitude, err = scaleI32(p.Longitude, degreeScale); err != nil {
		return err
	}
	if b.Latitude, err = scaleI32(p.Latitude, degreeScale); err != nil {
		return err
	}
	if b.TideCorrector, err = scaleI16(p.TideCorrector, cmScale); err != nil {
		return err
	}
	if b.DepthCorrector, err = scaleI32(p.DepthCorrector, cmScale); err != nil {
		return err
	}
	if b.Heading, err = scaleU16(p.Heading, hundredths); err != nil {
		return err
	}
	if b.Pitch, err = scaleI16(p.Pitch, hundredths); err != nil {
		return err
	}
	if b.Roll, err = scaleI16(p.Roll, hundredths); err != nil {
		return err
	}
	if b.Heave, err = scaleI16(p.Heave, cmScale); err != nil {
		return err
	}
	if b.Course, err = scaleU16(p.Course, hundredths); err != nil {
		return err
	}
	if b.Speed, err = scaleU16(p.Speed, hundredths); err != nil {
		return err
	}
	if b.Height, err = scaleI32(p.Height, mmScale); err != nil {
		return err
	}
	if b.Separation, err = scaleI32(p.Separation, mmScale); err != nil {
		return err
	}
	b.GPSTideCorrector, err = scaleI32(p.GPSTideCorrector, mmScale)
	return err
}

func encodeScaleFactors(w *writer, sf *record.ScaleFactors) error {
	var body writer
	body.i32(int32(sf.NumArraySubrecords))

	var err error
	sf.Each(func(id int, si record.ScaleInfo) {
		if err != nil {
			return
		}
		if si.Offset != math.Trunc(si.Offset) || math.Abs(si.Offset) > math.MaxInt32 {
			err = errors.Errorf("subrecord %d offset %g is not a whole number", id, si.Offset)
			return
		}
		body.u32(uint32(id)<<24 | uint32(si.CompressionFlag)<<16)
		body.u32(uint32(si.Multiplier))
		body.i32(int32(si.Offset))
	})
	if err != nil {
		return err
	}

	w.u32(subrecordWord(scaleFactorSubrecord, body.Len()))
	w.bytes(body.Bytes())
	return nil
}

func decodeScaleFactors(body []byte, sf *record.ScaleFactors) error {
	r := reader{buf: body}
	n := int(r.i32())
	if n < 0 || n > record.MaxArraySubrecords {
		return errors.Errorf("%d scale factors", n)
	}

	sf.Reset()
	for i := 0; i < n; i++ {
		word := r.u32()
		mult := r.u32()
		offset := r.i32()
		if r.err != nil {
			return r.err
		}

		si := record.ScaleInfo{
			CompressionFlag: uint8(word >> 16),
			Multiplier:      float64(mult),
			Offset:          float64(offset),
		}
		if err := sf.Put(int(word>>24), si); err != nil {
			return err
		}
	}
	return nil
}

func (pingCodec) Decode(ctx *Context, payload []byte, recs *record.Records) error {
	var b pingBlock
	r := reader{buf: payload}
	r.unpack(&b, pingBlockSize)
	if r.err != nil {
		return r.err
	}

	p := &recs.Ping
	n := int(b.NumberBeams)
	p.PingTime = record.Timespec{Sec: b.Sec, Nsec: b.Nsec}
	p.Longitude = float64(b.Longitude) / degreeScale
	p.Latitude = float64(b.Latitude) / degreeScale
	p.NumberBeams = n
	p.CenterBeam = int(b.CenterBeam)
	p.PingFlags = b.PingFlags
	p.Reserved = b.Reserved
	p.TideCorrector = float64(b.TideCorrector) / cmScale
	p.DepthCorrector = float64(b.DepthCorrector) / cmScale
	p.Heading = float64(b.Heading) / hundredths
	p.Pitch = float64(b.Pitch) / hundredths
	p.Roll = float64(b.Roll) / hundredths
	p.Heave = float64(b.Heave) / cmScale
	p.Course = float64(b.Course) / hundredths
	p.Speed = float64(b.Speed) / hundredths
	p.Height = float64(b.Height) / mmScale
	p.Separation = float64(b.Separation) / mmScale
	p.GPSTideCorrector = float64(b.GPSTideCorrector) / mmScale

	// Arrays absent from this ping keep their storage but hold no beams.
	for _, ba := range beamArrays {
		arr := ba.field(p)
		*arr = (*arr)[:0]
	}
	p.BeamFlags = p.BeamFlags[:0]

	ctx.ScaleFactorsChanged = false
	for r.remaining() >= 4 {
		word := r.u32()
		if word == 0 {
			// Zero padding.
			break
		}
		id, size := int(word>>24), int(word&maxSubrecordSize)
		body := r.take(size)
		if r.err != nil {
			return r.err
		}

		switch id {
		case scaleFactorSubrecord:
			if err := decodeScaleFactors(body, ctx.Scale); err != nil {
				return err
			}
			ctx.ScaleFactorsChanged = true

		case record.BeamFlagsArray:
			if size != n {
				return errors.Errorf("beam flags hold %d bytes for %d beams", size, n)
			}
			p.BeamFlags = resizeBytes(p.BeamFlags, n)
			copy(p.BeamFlags, body)

		default:
			ba, ok := findBeamArray(id)
			if !ok {
				// Unknown subrecords are skipped.
				continue
			}
			if size != n*ba.width {
				return errors.Errorf("subrecord %d holds %d bytes for %d beams", id, size, n)
			}
			si, err := ctx.Scale.Get(id)
			if err != nil {
				return err
			}
			arr := ba.field(p)
			*arr = resizeFloats(*arr, n)
			ba.decode(body, *arr, si)
		}
	}

	p.ScaleFactors = *ctx.Scale
	return nil
}
