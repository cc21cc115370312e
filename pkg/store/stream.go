package store

import (
	"bufio"
	"io"
	"os"
)

// stream is a buffered file that supports interleaved reads, writes and
// seeks. It tracks the logical position itself because read-ahead leaves the
// file offset past it.
type stream struct {
	file   *os.File
	reader *bufio.Reader
	writer *bufio.Writer
	offset int64
}

func newStream(file *os.File, bufferSize int) *stream {
	return &stream{
		file:   file,
		reader: bufio.NewReaderSize(file, bufferSize),
		writer: bufio.NewWriterSize(file, bufferSize),
	}
}

func (s *stream) Read(p []byte) (int, error) {
	if err := s.Flush(); err != nil {
		return 0, err
	}
	n, err := s.reader.Read(p)
	s.offset += int64(n)
	return n, err
}

// Discard skips n bytes, reporting how many were actually skipped.
func (s *stream) Discard(n int) (int, error) {
	if err := s.Flush(); err != nil {
		return 0, err
	}
	skipped, err := s.reader.Discard(n)
	s.offset += int64(skipped)
	return skipped, err
}

func (s *stream) Write(p []byte) (int, error) {
	// Drop read-ahead so the write lands at the logical position.
	if s.reader.Buffered() > 0 {
		if _, err := s.file.Seek(s.offset, io.SeekStart); err != nil {
			return 0, err
		}
		s.reader.Reset(s.file)
	}
	n, err := s.writer.Write(p)
	s.offset += int64(n)
	return n, err
}

func (s *stream) Flush() error {
	if s.writer.Buffered() == 0 {
		return nil
	}
	return s.writer.Flush()
}

// Buffered returns the bytes written but not yet flushed.
func (s *stream) Buffered() int { return s.writer.Buffered() }

func (s *stream) Seek(offset int64, whence int) (int64, error) {
	if err := s.Flush(); err != nil {
		return s.offset, err
	}
	pos, err := s.file.Seek(offset, whence)
	if err != nil {
		return s.offset, err
	}
	s.reader.Reset(s.file)
	s.offset = pos
	return pos, nil
}

// Offset returns the logical position.
func (s *stream) Offset() int64 { return s.offset }

func (s *stream) Close() error {
	flushErr := s.Flush()
	if err := s.file.Close(); err != nil {
		return err
	}
	return flushErr
}
