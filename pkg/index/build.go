package index

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/gsf/pkg/codec"
	"github.com/ssargent/gsf/pkg/gsferr"
	"github.com/ssargent/gsf/pkg/record"
)

const scanBufferSize = 64 * 1024

// timeStampSize is how much of a payload the scan needs for anything but a
// ping.
const timeStampSize = 8

// build scans the data file at dataPath frame by frame. A record cut short
// by the end of the file ends the scan; the index then covers the complete
// records only.
func build(dataPath string, log zerolog.Logger) (*contents, error) {
	f, err := os.Open(dataPath)
	if err != nil {
		return nil, errors.Wrap(gsferr.ErrIndexFileReadError, err.Error())
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(gsferr.ErrIndexFileReadError, err.Error())
	}

	c := &contents{fileSize: fi.Size(), buildID: ksuid.New()}
	r := bufio.NewReaderSize(f, scanBufferSize)

	var (
		addr   int64
		header [codec.FrameHeaderSize]byte
		body   []byte
	)
	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if err == io.EOF {
				break
			}
			if err == io.ErrUnexpectedEOF {
				log.Warn().Int64("addr", addr).Msg("truncated record header at end of file")
				break
			}
			return nil, errors.Wrap(gsferr.ErrIndexFileReadError, err.Error())
		}

		frame, err := codec.DecodeFrame(header[:])
		if err != nil {
			return nil, errors.Wrapf(err, "record at %d", addr)
		}

		// Pings are read whole to find scale factors; other records only up
		// to their time stamp.
		bodySize := frame.BodySize()
		need := frame.HeaderSize() - codec.FrameHeaderSize + timeStampSize
		if frame.Type == record.TypeSwathBathymetryPing || need > bodySize {
			need = bodySize
		}
		if cap(body) < need {
			body = make([]byte, need)
		}
		body = body[:need]

		if _, err := io.ReadFull(r, body); err != nil {
			log.Warn().Int64("addr", addr).Str("type", frame.Type.String()).Msg("truncated record at end of file")
			break
		}
		if skipped, err := r.Discard(bodySize - need); err != nil {
			log.Warn().Int64("addr", addr).Int("skipped", skipped).Str("type", frame.Type.String()).Msg("truncated record at end of file")
			break
		}

		payload := body[frame.HeaderSize()-codec.FrameHeaderSize:]
		if frame.Type.Valid() {
			ts, _ := codec.PayloadTime(frame.Type, payload)
			c.entries[frame.Type] = append(c.entries[frame.Type], Entry{Addr: addr, Time: ts})

			if frame.Type == record.TypeSwathBathymetryPing && codec.CarriesScaleFactors(payload) {
				c.scale = append(c.scale, ScaleFactorEntry{
					Addr:    addr,
					Ordinal: len(c.entries[frame.Type]),
				})
			}
		} else {
			log.Debug().Int64("addr", addr).Uint32("type", uint32(frame.Type)).Msg("skipping unknown record type")
		}

		addr += int64(frame.Size())
	}

	return c, nil
}
