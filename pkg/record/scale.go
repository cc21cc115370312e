package record

import (
	"math"

	"github.com/pkg/errors"

	"github.com/ssargent/gsf/pkg/gsferr"
)

const (
	// MaxSubrecordID is the largest beam array subrecord id a table can hold.
	MaxSubrecordID = 32

	// MaxArraySubrecords bounds how many distinct subrecords may carry scale
	// factors at once.
	MaxArraySubrecords = 30
)

// ScaleInfo is the quantization of one beam array: stored integers are
// round((value + Offset) * Multiplier).
type ScaleInfo struct {
	CompressionFlag uint8
	Multiplier      float64
	Offset          float64
}

// IsSet reports whether the entry has been populated. A zero multiplier means
// unset.
func (si ScaleInfo) IsSet() bool { return si.Multiplier != 0 }

// ScaleFactors is a table of ScaleInfo indexed by beam array subrecord id.
type ScaleFactors struct {
	NumArraySubrecords int
	Table              [MaxSubrecordID]ScaleInfo
}

// Load sets the scale factor for a subrecord from a precision, the smallest
// value step to be represented. The multiplier becomes 1/precision truncated to
// an integer.
func (sf *ScaleFactors) Load(id int, compressionFlag uint8, precision, offset float64) error {
	if precision <= 0 || math.IsNaN(precision) {
		return errors.Wrapf(gsferr.ErrCannotRepresentPrecision, "precision %g", precision)
	}

	mult := 1.0 / precision
	if mult < 1 || mult > math.MaxUint32 {
		return errors.Wrapf(gsferr.ErrCannotRepresentPrecision, "precision %g", precision)
	}

	return sf.Put(id, ScaleInfo{
		CompressionFlag: compressionFlag,
		Multiplier:      math.Trunc(mult),
		Offset:          offset,
	})
}

// Put stores si for a subrecord, counting the subrecord the first time it is
// populated.
func (sf *ScaleFactors) Put(id int, si ScaleInfo) error {
	if id < 1 || id > MaxSubrecordID {
		return errors.Wrapf(gsferr.ErrUnrecognizedSubrecordID, "subrecord %d", id)
	}
	if si.Multiplier <= 0 || si.Multiplier > math.MaxUint32 {
		return errors.Wrapf(gsferr.ErrIllegalScaleFactorMultiplier, "subrecord %d multiplier %g", id, si.Multiplier)
	}

	entry := &sf.Table[id-1]
	if !entry.IsSet() {
		if sf.NumArraySubrecords >= MaxArraySubrecords {
			return errors.Wrapf(gsferr.ErrTooManyArraySubrecords, "subrecord %d", id)
		}
		sf.NumArraySubrecords++
	}
	*entry = si
	return nil
}

// Get returns the scale factor of a subrecord. It fails if none was loaded.
func (sf *ScaleFactors) Get(id int) (ScaleInfo, error) {
	if id < 1 || id > MaxSubrecordID {
		return ScaleInfo{}, errors.Wrapf(gsferr.ErrUnrecognizedSubrecordID, "subrecord %d", id)
	}

	si := sf.Table[id-1]
	if !si.IsSet() {
		return ScaleInfo{}, errors.Wrapf(gsferr.ErrIllegalScaleFactorMultiplier, "subrecord %d", id)
	}
	return si, nil
}

// Each calls fn for every populated entry in id order.
func (sf *ScaleFactors) Each(fn func(id int, si ScaleInfo)) {
	for i, si := range sf.Table {
		if si.IsSet() {
			fn(i+1, si)
		}
	}
}

// Reset clears the table.
func (sf *ScaleFactors) Reset() { *sf = ScaleFactors{} }

// Beam array subrecord ids. These index ScaleFactors.
const (
	DepthArray            = 1
	AcrossTrackArray      = 2
	AlongTrackArray       = 3
	TravelTimeArray       = 4
	BeamAngleArray        = 5
	MeanCalAmplitudeArray = 6
	MeanRelAmplitudeArray = 7
	EchoWidthArray        = 8
	QualityFactorArray    = 9
	BeamFlagsArray        = 16
	BeamAngleForwardArray = 18
	VerticalErrorArray    = 19
	HorizontalErrorArray  = 20
)
