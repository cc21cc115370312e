package codec

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/ssargent/gsf/pkg/record"
)

// headerCodec carries the version string verbatim.
type headerCodec struct{}

func (headerCodec) Encode(_ *Context, recs *record.Records) ([]byte, error) {
	if !strings.HasPrefix(recs.Header.Version, VersionPrefix) {
		return nil, errors.Errorf("version %q lacks prefix %q", recs.Header.Version, VersionPrefix)
	}
	return []byte(recs.Header.Version), nil
}

func (headerCodec) Decode(_ *Context, payload []byte, recs *record.Records) error {
	recs.Header.Version = strings.TrimRight(string(payload), "\x00")
	return nil
}

type commentCodec struct{}

func (commentCodec) Encode(_ *Context, recs *record.Records) ([]byte, error) {
	c := &recs.Comment
	if len(c.Comment) > math.MaxInt32 {
		return nil, errors.New("comment too long")
	}

	var w writer
	w.i32(c.Time.Sec)
	w.i32(c.Time.Nsec)
	w.i32(int32(len(c.Comment)))
	w.bytes([]byte(c.Comment))
	return w.Bytes(), nil
}

func (commentCodec) Decode(_ *Context, payload []byte, recs *record.Records) error {
	r := reader{buf: payload}
	c := &recs.Comment
	c.Time.Sec = r.i32()
	c.Time.Nsec = r.i32()
	c.Comment = string(r.take(int(r.i32())))
	return r.err
}

type historyCodec struct{}

func (historyCodec) Encode(_ *Context, recs *record.Records) ([]byte, error) {
	h := &recs.History

	var w writer
	w.i32(h.Time.Sec)
	w.i32(h.Time.Nsec)
	for _, s := range []string{h.HostName, h.OperatorName, h.CommandLine, h.Comment} {
		if err := w.str16(s); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func (historyCodec) Decode(_ *Context, payload []byte, recs *record.Records) error {
	r := reader{buf: payload}
	h := &recs.History
	h.Time.Sec = r.i32()
	h.Time.Nsec = r.i32()
	h.HostName = r.str16()
	h.OperatorName = r.str16()
	h.CommandLine = r.str16()
	h.Comment = r.str16()
	return r.err
}

type paramsSlot func(*record.Records) *record.Parameters

func processingSlot(recs *record.Records) *record.Parameters { return &recs.ProcessingParameters }
func sensorSlot(recs *record.Records) *record.Parameters     { return &recs.SensorParameters }

// paramsCodec serves both parameter record types, which share a layout.
type paramsCodec struct {
	slot paramsSlot
}

func (c paramsCodec) Encode(_ *Context, recs *record.Records) ([]byte, error) {
	p := c.slot(recs)
	if len(p.Params) > math.MaxInt16 {
		return nil, errors.Errorf("%d parameters exceed field size", len(p.Params))
	}

	var w writer
	w.i32(p.Time.Sec)
	w.i32(p.Time.Nsec)
	w.i16(int16(len(p.Params)))
	for _, s := range p.Params {
		if err := w.str16(s); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func (c paramsCodec) Decode(_ *Context, payload []byte, recs *record.Records) error {
	r := reader{buf: payload}
	p := c.slot(recs)
	p.Time.Sec = r.i32()
	p.Time.Nsec = r.i32()

	n := int(r.i16())
	if n < 0 {
		return errors.Errorf("negative parameter count %d", n)
	}
	p.Params = p.Params[:0]
	for i := 0; i < n && r.err == nil; i++ {
		p.Params = append(p.Params, r.str16())
	}
	return r.err
}
