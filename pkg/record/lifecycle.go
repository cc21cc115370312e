package record

// CopyFrom deep copies src into r. Arrays in r are grown when they are
// smaller than the source and reused otherwise; they never shrink in capacity.
// Arrays absent from src are truncated to zero length in r.
func (r *Records) CopyFrom(src *Records) {
	r.Header = src.Header
	r.Summary = src.Summary
	r.Comment = src.Comment
	r.History = src.History
	r.NavigationError = src.NavigationError

	r.Ping.CopyFrom(&src.Ping)
	r.SVP.CopyFrom(&src.SVP)
	r.SingleBeamPing.CopyFrom(&src.SingleBeamPing)
	r.ProcessingParameters.CopyFrom(&src.ProcessingParameters)
	r.SensorParameters.CopyFrom(&src.SensorParameters)
}

// Free releases every array held by r and zeroes its fields. Calling it again
// is a no-op.
func (r *Records) Free() {
	*r = Records{}
}

// CopyFrom deep copies src into p.
func (p *SwathBathyPing) CopyFrom(src *SwathBathyPing) {
	depth := growFloats(p.Depth, src.Depth)
	across := growFloats(p.AcrossTrack, src.AcrossTrack)
	along := growFloats(p.AlongTrack, src.AlongTrack)
	travel := growFloats(p.TravelTime, src.TravelTime)
	angle := growFloats(p.BeamAngle, src.BeamAngle)
	calAmp := growFloats(p.MeanCalAmplitude, src.MeanCalAmplitude)
	relAmp := growFloats(p.MeanRelAmplitude, src.MeanRelAmplitude)
	echo := growFloats(p.EchoWidth, src.EchoWidth)
	quality := growFloats(p.QualityFactor, src.QualityFactor)
	forward := growFloats(p.BeamAngleForward, src.BeamAngleForward)
	vertErr := growFloats(p.VerticalError, src.VerticalError)
	horzErr := growFloats(p.HorizontalError, src.HorizontalError)
	flags := growBytes(p.BeamFlags, src.BeamFlags)

	// Scalars and the scale table are copied by value once the arrays are sized.
	*p = *src

	p.Depth = depth
	p.AcrossTrack = across
	p.AlongTrack = along
	p.TravelTime = travel
	p.BeamAngle = angle
	p.MeanCalAmplitude = calAmp
	p.MeanRelAmplitude = relAmp
	p.EchoWidth = echo
	p.QualityFactor = quality
	p.BeamAngleForward = forward
	p.VerticalError = vertErr
	p.HorizontalError = horzErr
	p.BeamFlags = flags
}

// CopyFrom deep copies src into svp.
func (svp *SoundVelocityProfile) CopyFrom(src *SoundVelocityProfile) {
	depth := growFloats(svp.Depth, src.Depth)
	speed := growFloats(svp.SoundSpeed, src.SoundSpeed)

	*svp = *src
	svp.Depth = depth
	svp.SoundSpeed = speed
}

// CopyFrom deep copies src into sb.
func (sb *SingleBeamPing) CopyFrom(src *SingleBeamPing) {
	data := growBytes(sb.SensorData, src.SensorData)

	*sb = *src
	sb.SensorData = data
}

// CopyFrom deep copies src into p.
func (p *Parameters) CopyFrom(src *Parameters) {
	params := p.Params[:0]
	if cap(params) < len(src.Params) {
		params = make([]string, 0, len(src.Params))
	}
	params = append(params, src.Params...)

	p.Time = src.Time
	p.Params = params
}

func growFloats(dst, src []float64) []float64 {
	if cap(dst) < len(src) {
		dst = make([]float64, len(src))
	}
	dst = dst[:len(src)]
	copy(dst, src)
	return dst
}

func growBytes(dst, src []byte) []byte {
	if cap(dst) < len(src) {
		dst = make([]byte, len(src))
	}
	dst = dst[:len(src)]
	copy(dst, src)
	return dst
}
