package provider

import (
	"bufio"
	"bytes"
	"io"
)

var doneMarker = []byte("[DONE]")

// EventScanner reads data payloads from a server-sent-event stream. The
// sequence is finite and non-restartable; Next returns io.EOF once the
// stream ends or a [DONE] marker arrives.
type EventScanner struct {
	body io.ReadCloser
	r    *bufio.Reader

	done bool
}

func NewEventScanner(body io.ReadCloser) *EventScanner {
	return &EventScanner{
		body: body,
		r:    bufio.NewReaderSize(body, 64*1024),
	}
}

// Next returns the next event's concatenated data payload. Multiple `data:`
// lines of one event are joined with `\n` per the SSE spec; comment lines
// and other fields (event:, id:, keepalives) are skipped.
func (s *EventScanner) Next() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}

	var data [][]byte

	for {
		line, err := s.r.ReadBytes('\n')

		if err != nil {
			line = bytes.TrimRight(line, "\r\n")

			if len(line) > 0 {
				data = appendDataLine(data, line)
			}

			if len(data) > 0 {
				return s.payload(data)
			}

			if err == io.EOF {
				s.done = true
			}

			return nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		if len(line) == 0 {
			if len(data) == 0 {
				continue
			}

			return s.payload(data)
		}

		if line[0] == ':' {
			continue
		}

		data = appendDataLine(data, line)
	}
}

func (s *EventScanner) payload(data [][]byte) ([]byte, error) {
	payload := bytes.Join(data, []byte("\n"))

	if bytes.Equal(bytes.TrimSpace(payload), doneMarker) {
		s.done = true
		return nil, io.EOF
	}

	return payload, nil
}

func appendDataLine(dst [][]byte, line []byte) [][]byte {
	value, ok := bytes.CutPrefix(line, []byte("data:"))

	if !ok {
		return dst
	}

	if len(value) > 0 && value[0] == ' ' {
		value = value[1:]
	}

	return append(dst, append([]byte(nil), value...))
}

// Close releases the underlying HTTP body. Abandoning iteration and closing
// the scanner releases the connection.
func (s *EventScanner) Close() error {
	return s.body.Close()
}
