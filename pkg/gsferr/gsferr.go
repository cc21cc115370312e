// Package gsferr defines the failure kinds reported by the gsf packages.
//
// Every failure is a Code, which itself implements error. Packages wrap codes
// with github.com/pkg/errors to add context, so callers should test kinds with
// errors.Is or CodeOf rather than comparing error values directly.
package gsferr

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Code identifies a failure kind.
type Code int

// Failure kinds.
const (
	OK Code = iota

	// Handles and resources.
	ErrBadFileHandle
	ErrTooManyOpenFiles
	ErrFileOpenError
	ErrFileCloseError
	ErrBufferConfig

	// Format recognition.
	ErrUnrecognizedFile

	// I/O.
	ErrReadError
	ErrWriteError
	ErrFileSeekError
	ErrFlushError
	ErrReadToEndOfFile

	// Data integrity.
	ErrChecksumFailure

	// Size and capacity.
	ErrRecordSizeError
	ErrBufferTooSmall
	ErrTooManyArraySubrecords
	ErrUnrecognizedSubrecordID
	ErrCannotRepresentPrecision
	ErrIllegalScaleFactorMultiplier

	// Codec.
	ErrUnrecognizedRecordID
	ErrRecordDecodeFailed
	ErrRecordEncodeFailed

	// Index.
	ErrIndexFileOpenError
	ErrCorruptIndexFile
	ErrIndexFileReadError

	// Logical usage.
	ErrBadAccessMode
	ErrBadSeekOption
	ErrInvalidRecordNumber
	ErrRecordTypeNotAvailable
	ErrParamSizeFixed
)

var messages = map[Code]string{
	OK:                              "no error",
	ErrBadFileHandle:                "invalid file handle",
	ErrTooManyOpenFiles:             "too many open files",
	ErrFileOpenError:                "unable to open file",
	ErrFileCloseError:               "unable to close file",
	ErrBufferConfig:                 "unable to configure stream buffering",
	ErrUnrecognizedFile:             "unrecognized file, missing or malformed format header",
	ErrReadError:                    "error reading data",
	ErrWriteError:                   "error writing data",
	ErrFileSeekError:                "error seeking in file",
	ErrFlushError:                   "error flushing data to file",
	ErrReadToEndOfFile:              "end of file encountered",
	ErrChecksumFailure:              "record checksum does not match",
	ErrRecordSizeError:              "record size exceeds the maximum frame size",
	ErrBufferTooSmall:               "caller buffer is too small for the record",
	ErrTooManyArraySubrecords:       "too many array subrecords",
	ErrUnrecognizedSubrecordID:      "unrecognized array subrecord id",
	ErrCannotRepresentPrecision:     "precision cannot be represented by an integer multiplier",
	ErrIllegalScaleFactorMultiplier: "scale factor multiplier is not set",
	ErrUnrecognizedRecordID:         "unrecognized record id",
	ErrRecordDecodeFailed:           "record decode failed",
	ErrRecordEncodeFailed:           "record encode failed",
	ErrIndexFileOpenError:           "unable to open index file",
	ErrCorruptIndexFile:             "index file is corrupt",
	ErrIndexFileReadError:           "error reading index file",
	ErrBadAccessMode:                "operation not supported by the file access mode",
	ErrBadSeekOption:                "unrecognized seek option",
	ErrInvalidRecordNumber:          "invalid record number",
	ErrRecordTypeNotAvailable:       "requested record type is not present in the file",
	ErrParamSizeFixed:               "record size cannot change when rewriting in place",
}

// Error translates the code to a message.
func (c Code) Error() string {
	if msg, ok := messages[c]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error code %d", int(c))
}

// CodeOf returns the Code at the root of err's chain, OK for a nil error, and
// ErrReadError when err carries no Code at all.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}

	var re *RecordError
	if errors.As(err, &re) {
		return re.Code()
	}

	var c Code
	if errors.As(err, &c) {
		return c
	}
	return ErrReadError
}

// RecordError reports a payload codec failure for one record type.
type RecordError struct {
	// Type is the record type, usually a record.Type.
	Type fmt.Stringer
	// Op is "encode" or "decode".
	Op  string
	Err error
}

// DecodeFailed builds a RecordError for a failed payload decode.
func DecodeFailed(t fmt.Stringer, err error) error {
	return &RecordError{Type: t, Op: "decode", Err: err}
}

// EncodeFailed builds a RecordError for a failed payload encode.
func EncodeFailed(t fmt.Stringer, err error) error {
	return &RecordError{Type: t, Op: "encode", Err: err}
}

func (e *RecordError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s record %s failed", e.Type, e.Op)
	}
	return fmt.Sprintf("%s record %s failed: %v", e.Type, e.Op, e.Err)
}

// Code returns the kind of the failure.
func (e *RecordError) Code() Code {
	if e.Op == "encode" {
		return ErrRecordEncodeFailed
	}
	return ErrRecordDecodeFailed
}

// Is matches the codec failure kind of the operation.
func (e *RecordError) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.Code()
}

func (e *RecordError) Unwrap() error { return e.Err }

// IsEndOfFile reports whether err is the expected end-of-stream condition.
func IsEndOfFile(err error) bool {
	return errors.Is(err, ErrReadToEndOfFile)
}

// Print writes err to w. End of file is an expected condition during sequential
// scans, so it prints nothing.
func Print(w io.Writer, err error) {
	if err == nil || IsEndOfFile(err) {
		return
	}
	fmt.Fprintf(w, "gsf error: %v\n", err)
}
