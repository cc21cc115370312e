package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsCopyFromIsDeep(t *testing.T) {
	src := &Records{
		Header:  Header{Version: "GSF-v03.10"},
		Comment: Comment{Time: Timespec{Sec: 1}, Comment: "c"},
		Ping: SwathBathyPing{
			NumberBeams: 2,
			Depth:       []float64{10, 11},
			BeamFlags:   []byte{1, 0},
		},
		SVP: SoundVelocityProfile{
			NumberPoints: 1,
			Depth:        []float64{0},
			SoundSpeed:   []float64{1500},
		},
		SingleBeamPing:       SingleBeamPing{SensorData: []byte("raw")},
		ProcessingParameters: Parameters{Params: []string{"A=1"}},
	}
	src.Ping.ScaleFactors.Table[DepthArray-1] = ScaleInfo{Multiplier: 100}

	var dst Records
	dst.CopyFrom(src)
	assert.Equal(t, *src, dst)

	dst.Ping.Depth[0] = 99
	dst.Ping.BeamFlags[0] = 9
	dst.SVP.SoundSpeed[0] = 1
	dst.SingleBeamPing.SensorData[0] = 'X'
	dst.ProcessingParameters.Params[0] = "B=2"

	assert.Equal(t, 10.0, src.Ping.Depth[0])
	assert.Equal(t, byte(1), src.Ping.BeamFlags[0])
	assert.Equal(t, 1500.0, src.SVP.SoundSpeed[0])
	assert.Equal(t, []byte("raw"), src.SingleBeamPing.SensorData)
	assert.Equal(t, "A=1", src.ProcessingParameters.Params[0])
}

func TestRecordsCopyFromReusesStorage(t *testing.T) {
	var dst Records
	dst.Ping.Depth = make([]float64, 8)
	backing := &dst.Ping.Depth[0]

	dst.CopyFrom(&Records{Ping: SwathBathyPing{NumberBeams: 3, Depth: []float64{1, 2, 3}}})
	assert.Equal(t, []float64{1, 2, 3}, dst.Ping.Depth)
	assert.Equal(t, 8, cap(dst.Ping.Depth))
	assert.Same(t, backing, &dst.Ping.Depth[0])

	// A source without the array leaves an empty one behind.
	dst.CopyFrom(&Records{})
	assert.Empty(t, dst.Ping.Depth)
	assert.Zero(t, dst.Ping.NumberBeams)
}

func TestRecordsFree(t *testing.T) {
	r := &Records{
		Ping:    SwathBathyPing{Depth: []float64{1}},
		Comment: Comment{Comment: "x"},
	}

	r.Free()
	assert.Equal(t, Records{}, *r)

	// A second free is harmless.
	r.Free()
	assert.Equal(t, Records{}, *r)
}

func TestTimespec(t *testing.T) {
	ts := Timespec{Sec: 1718000000, Nsec: 250000000}
	assert.Equal(t, ts, TimespecOf(ts.Time()))
	assert.False(t, ts.IsZero())
	assert.True(t, Timespec{}.IsZero())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "swath bathymetry ping", TypeSwathBathymetryPing.String())
	assert.Equal(t, "unknown(99)", Type(99).String())
	assert.True(t, TypeSingleBeamPing.Valid())
	assert.False(t, Next.Valid())
	assert.False(t, Type(NumTypes).Valid())
	assert.Len(t, Types, int(NumTypes)-1)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"comment", TypeComment, false},
		{"swath-bathymetry-ping", TypeSwathBathymetryPing, false},
		{"Sound_Velocity_Profile", TypeSoundVelocityProfile, false},
		{"9", TypeSwathBathySummary, false},
		{"0", Next, true},
		{"42", Next, true},
		{"sonar", Next, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
