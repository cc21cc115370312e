package codec

import (
	"encoding/binary"

	"github.com/ssargent/gsf/pkg/record"
)

// PayloadTime returns the time stamp carried at the start of a payload. Every
// record type except the header leads with seconds and nanoseconds.
func PayloadTime(t record.Type, payload []byte) (record.Timespec, bool) {
	if t == record.TypeHeader || len(payload) < 8 {
		return record.Timespec{}, false
	}
	return record.Timespec{
		Sec:  int32(binary.BigEndian.Uint32(payload[0:])),
		Nsec: int32(binary.BigEndian.Uint32(payload[4:])),
	}, true
}

// CarriesScaleFactors reports whether a swath bathymetry ping payload holds a
// scale factor subrecord.
func CarriesScaleFactors(payload []byte) bool {
	if len(payload) < pingBlockSize {
		return false
	}

	r := reader{buf: payload, pos: pingBlockSize}
	for r.remaining() >= 4 {
		word := r.u32()
		if word == 0 {
			return false
		}
		id, size := int(word>>24), int(word&maxSubrecordSize)
		if id == scaleFactorSubrecord {
			return true
		}
		if r.take(size); r.err != nil {
			return false
		}
	}
	return false
}
