package fbxbin

import (
	"errors"
	"io"
)

// countingReader tracks the absolute offset of everything read through it.
type countingReader struct {
	r   io.Reader
	off int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.off += int64(n)
	return n, err
}

// skipTo discards input up to the absolute offset end.
func (c *countingReader) skipTo(end int64) error {
	if end <= c.off {
		return nil
	}
	_, err := io.CopyN(io.Discard, c, end-c.off)
	return truncated(err)
}

// truncated maps premature end of input to ErrTruncated.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
