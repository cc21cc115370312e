package record

// Header is the format header record. It is always the first record of a
// stream.
type Header struct {
	Version string
}

// SwathBathySummary bounds the time, position and depth of a survey file.
type SwathBathySummary struct {
	StartTime Timespec
	EndTime   Timespec
	MinLat    float64
	MinLon    float64
	MaxLat    float64
	MaxLon    float64
	MinDepth  float64
	MaxDepth  float64
}

// Comment is free text attached to the stream.
type Comment struct {
	Time    Timespec
	Comment string
}

// History records a processing step applied to the file.
type History struct {
	Time         Timespec
	HostName     string
	OperatorName string
	CommandLine  string
	Comment      string
}

// Parameters is the shared layout of the processing and sensor parameter
// records: a timestamp and a list of KEY=VALUE strings.
type Parameters struct {
	Time   Timespec
	Params []string
}

// NavigationError carries the positioning uncertainty for a time.
type NavigationError struct {
	Time           Timespec
	RecordID       int32
	LatitudeError  float64
	LongitudeError float64
}

// SoundVelocityProfile is a depth/sound-speed cast.
type SoundVelocityProfile struct {
	ObservationTime Timespec
	ApplicationTime Timespec
	Longitude       float64
	Latitude        float64
	NumberPoints    int
	Depth           []float64
	SoundSpeed      []float64
}

// SingleBeamPing is one single-beam echo sounder sounding.
type SingleBeamPing struct {
	PingTime              Timespec
	Latitude              float64
	Longitude             float64
	TideCorrector         float64
	DepthCorrector        float64
	Heading               float64
	Pitch                 float64
	Roll                  float64
	Heave                 float64
	Depth                 float64
	SoundSpeedCorrection  float64
	PositioningSystemType uint16
	SensorData            []byte
}

// SwathBathyPing is one multibeam transmit/receive cycle. The beam arrays hold
// NumberBeams elements when present and are empty when absent.
type SwathBathyPing struct {
	PingTime         Timespec
	Latitude         float64
	Longitude        float64
	NumberBeams      int
	CenterBeam       int
	PingFlags        uint16
	Reserved         uint16
	TideCorrector    float64
	DepthCorrector   float64
	Heading          float64
	Pitch            float64
	Roll             float64
	Heave            float64
	Course           float64
	Speed            float64
	Height           float64
	Separation       float64
	GPSTideCorrector float64

	Depth            []float64
	AcrossTrack      []float64
	AlongTrack       []float64
	TravelTime       []float64
	BeamAngle        []float64
	MeanCalAmplitude []float64
	MeanRelAmplitude []float64
	EchoWidth        []float64
	QualityFactor    []float64
	BeamAngleForward []float64
	VerticalError    []float64
	HorizontalError  []float64
	BeamFlags        []byte

	// ScaleFactors are the factors the beam arrays are quantized with.
	ScaleFactors ScaleFactors
}

// Records holds one decoded record of each type. A read fills the slot of the
// type it decoded and leaves the others untouched.
type Records struct {
	Header               Header
	Summary              SwathBathySummary
	Ping                 SwathBathyPing
	SVP                  SoundVelocityProfile
	ProcessingParameters Parameters
	SensorParameters     Parameters
	Comment              Comment
	History              History
	NavigationError      NavigationError
	SingleBeamPing       SingleBeamPing
}
