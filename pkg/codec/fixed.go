package codec

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ssargent/gsf/pkg/record"
)

// Fixed-point multipliers shared by the payload layouts.
const (
	degreeScale = 1.0e7
	cmScale     = 100.0
	hundredths  = 100.0
)

type summaryBlock struct {
	StartSec, StartNsec int32
	EndSec, EndNsec     int32
	MinLat, MinLon      int32
	MaxLat, MaxLon      int32
	MinDepth, MaxDepth  int32
}

const summaryBlockSize = 40

type summaryCodec struct{}

func (summaryCodec) Encode(_ *Context, recs *record.Records) ([]byte, error) {
	s := &recs.Summary
	b := summaryBlock{
		StartSec:  s.StartTime.Sec,
		StartNsec: s.StartTime.Nsec,
		EndSec:    s.EndTime.Sec,
		EndNsec:   s.EndTime.Nsec,
	}

	var err error
	for _, f := range []struct {
		dst  *int32
		v    float64
		mult float64
	}{
		{&b.MinLat, s.MinLat, degreeScale},
		{&b.MinLon, s.MinLon, degreeScale},
		{&b.MaxLat, s.MaxLat, degreeScale},
		{&b.MaxLon, s.MaxLon, degreeScale},
		{&b.MinDepth, s.MinDepth, cmScale},
		{&b.MaxDepth, s.MaxDepth, cmScale},
	} {
		if *f.dst, err = scaleI32(f.v, f.mult); err != nil {
			return nil, err
		}
	}

	var w writer
	if err := w.pack(&b); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (summaryCodec) Decode(_ *Context, payload []byte, recs *record.Records) error {
	var b summaryBlock
	r := reader{buf: payload}
	r.unpack(&b, summaryBlockSize)
	if r.err != nil {
		return r.err
	}

	recs.Summary = record.SwathBathySummary{
		StartTime: record.Timespec{Sec: b.StartSec, Nsec: b.StartNsec},
		EndTime:   record.Timespec{Sec: b.EndSec, Nsec: b.EndNsec},
		MinLat:    float64(b.MinLat) / degreeScale,
		MinLon:    float64(b.MinLon) / degreeScale,
		MaxLat:    float64(b.MaxLat) / degreeScale,
		MaxLon:    float64(b.MaxLon) / degreeScale,
		MinDepth:  float64(b.MinDepth) / cmScale,
		MaxDepth:  float64(b.MaxDepth) / cmScale,
	}
	return nil
}

type navigationErrorBlock struct {
	Sec, Nsec      int32
	RecordID       int32
	LatitudeError  int32
	LongitudeError int32
}

const navigationErrorBlockSize = 20

type navigationErrorCodec struct{}

func (navigationErrorCodec) Encode(_ *Context, recs *record.Records) ([]byte, error) {
	ne := &recs.NavigationError
	latErr, err := scaleI32(ne.LatitudeError, cmScale)
	if err != nil {
		return nil, err
	}
	lonErr, err := scaleI32(ne.LongitudeError, cmScale)
	if err != nil {
		return nil, err
	}

	var w writer
	if err := w.pack(&navigationErrorBlock{
		Sec:            ne.Time.Sec,
		Nsec:           ne.Time.Nsec,
		RecordID:       ne.RecordID,
		LatitudeError:  latErr,
		LongitudeError: lonErr,
	}); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (navigationErrorCodec) Decode(_ *Context, payload []byte, recs *record.Records) error {
	var b navigationErrorBlock
	r := reader{buf: payload}
	r.unpack(&b, navigationErrorBlockSize)
	if r.err != nil {
		return r.err
	}

	recs.NavigationError = record.NavigationError{
		Time:           record.Timespec{Sec: b.Sec, Nsec: b.Nsec},
		RecordID:       b.RecordID,
		LatitudeError:  float64(b.LatitudeError) / cmScale,
		LongitudeError: float64(b.LongitudeError) / cmScale,
	}
	return nil
}

type svpBlock struct {
	ObservationSec, ObservationNsec int32
	ApplicationSec, ApplicationNsec int32
	Longitude, Latitude             int32
	NumberPoints                    int32
}

const svpBlockSize = 28

type svpCodec struct{}

func (svpCodec) Encode(_ *Context, recs *record.Records) ([]byte, error) {
	svp := &recs.SVP
	n := svp.NumberPoints
	if n < 0 || len(svp.Depth) != n || len(svp.SoundSpeed) != n {
		return nil, errors.Errorf("%d points with %d depths and %d speeds", n, len(svp.Depth), len(svp.SoundSpeed))
	}

	lon, err := scaleI32(svp.Longitude, degreeScale)
	if err != nil {
		return nil, err
	}
	lat, err := scaleI32(svp.Latitude, degreeScale)
	if err != nil {
		return nil, err
	}

	var w writer
	if err := w.pack(&svpBlock{
		ObservationSec:  svp.ObservationTime.Sec,
		ObservationNsec: svp.ObservationTime.Nsec,
		ApplicationSec:  svp.ApplicationTime.Sec,
		ApplicationNsec: svp.ApplicationTime.Nsec,
		Longitude:       lon,
		Latitude:        lat,
		NumberPoints:    int32(n),
	}); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		depth, err := scaleU32(svp.Depth[i], cmScale)
		if err != nil {
			return nil, err
		}
		speed, err := scaleU32(svp.SoundSpeed[i], cmScale)
		if err != nil {
			return nil, err
		}
		w.u32(depth)
		w.u32(speed)
	}
	return w.Bytes(), nil
}

func (svpCodec) Decode(_ *Context, payload []byte, recs *record.Records) error {
	var b svpBlock
	r := reader{buf: payload}
	r.unpack(&b, svpBlockSize)
	if r.err != nil {
		return r.err
	}

	n := int(b.NumberPoints)
	if n < 0 || n*8 > r.remaining() {
		return errors.Errorf("%d points do not fit the payload", n)
	}

	svp := &recs.SVP
	svp.ObservationTime = record.Timespec{Sec: b.ObservationSec, Nsec: b.ObservationNsec}
	svp.ApplicationTime = record.Timespec{Sec: b.ApplicationSec, Nsec: b.ApplicationNsec}
	svp.Longitude = float64(b.Longitude) / degreeScale
	svp.Latitude = float64(b.Latitude) / degreeScale
	svp.NumberPoints = n
	svp.Depth = resizeFloats(svp.Depth, n)
	svp.SoundSpeed = resizeFloats(svp.SoundSpeed, n)
	for i := 0; i < n; i++ {
		svp.Depth[i] = float64(r.u32()) / cmScale
		svp.SoundSpeed[i] = float64(r.u32()) / cmScale
	}
	return r.err
}

type singleBeamBlock struct {
	Sec, Nsec             int32
	Latitude, Longitude   int32
	TideCorrector         int16
	DepthCorrector        int32
	Heading               uint16
	Pitch, Roll           int16
	Heave                 int32
	Depth                 int32
	SoundSpeedCorrection  int32
	PositioningSystemType uint16
}

const singleBeamBlockSize = 42

type singleBeamCodec struct{}

func (singleBeamCodec) Encode(_ *Context, recs *record.Records) ([]byte, error) {
	sb := &recs.SingleBeamPing
	if uint64(len(sb.SensorData)) > math.MaxUint32 {
		return nil, errors.New("sensor data too long")
	}

	b := singleBeamBlock{
		Sec:                   sb.PingTime.Sec,
		Nsec:                  sb.PingTime.Nsec,
		PositioningSystemType: sb.PositioningSystemType,
	}

	var err error
	if b.Latitude, err = scaleI32(sb.Latitude, degreeScale); err != nil {
		return nil, err
	}
	if b.Longitude, err = scaleI32(sb.Longitude, degreeScale); err != nil {
		return nil, err
	}
	if b.TideCorrector, err = scaleI16(sb.TideCorrector, cmScale); err != nil {
		return nil, err
	}
	if b.DepthCorrector, err = scaleI32(sb.DepthCorrector, cmScale); err != nil {
		return nil, err
	}
	if b.Heading, err = scaleU16(sb.Heading, hundredths); err != nil {
		return nil, err
	}
	if b.Pitch, err = scaleI16(sb.Pitch, hundredths); err != nil {
		return nil, err
	}
	if b.Roll, err = scaleI16(sb.Roll, hundredths); err != nil {
		return nil, err
	}
	if b.Heave, err = scaleI32(sb.Heave, cmScale); err != nil {
		return nil, err
	}
	if b.Depth, err = scaleI32(sb.Depth, cmScale); err != nil {
		return nil, err
	}
	if b.SoundSpeedCorrection, err = scaleI32(sb.SoundSpeedCorrection, cmScale); err != nil {
		return nil, err
	}

	var w writer
	if err := w.pack(&b); err != nil {
		return nil, err
	}
	w.u32(uint32(len(sb.SensorData)))
	w.bytes(sb.SensorData)
	return w.Bytes(), nil
}

func (singleBeamCodec) Decode(_ *Context, payload []byte, recs *record.Records) error {
	var b singleBeamBlock
	r := reader{buf: payload}
	r.unpack(&b, singleBeamBlockSize)
	n := int(r.u32())
	data := r.take(n)
	if r.err != nil {
		return r.err
	}

	sb := &recs.SingleBeamPing
	sb.PingTime = record.Timespec{Sec: b.Sec, Nsec: b.Nsec}
	sb.Latitude = float64(b.Latitude) / degreeScale
	sb.Longitude = float64(b.Longitude) / degreeScale
	sb.TideCorrector = float64(b.TideCorrector) / cmScale
	sb.DepthCorrector = float64(b.DepthCorrector) / cmScale
	sb.Heading = float64(b.Heading) / hundredths
	sb.Pitch = float64(b.Pitch) / hundredths
	sb.Roll = float64(b.Roll) / hundredths
	sb.Heave = float64(b.Heave) / cmScale
	sb.Depth = float64(b.Depth) / cmScale
	sb.SoundSpeedCorrection = float64(b.SoundSpeedCorrection) / cmScale
	sb.PositioningSystemType = b.PositioningSystemType
	sb.SensorData = resizeBytes(sb.SensorData, n)
	copy(sb.SensorData, data)
	return nil
}

// resizeFloats returns s with length n, reallocating only when it must grow.
func resizeFloats(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}

func resizeBytes(s []byte, n int) []byte {
	if cap(s) < n {
		return make([]byte, n)
	}
	return s[:n]
}
