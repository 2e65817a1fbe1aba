package media

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultRange is assumed when a request carries no Range header, so every
// audio response is partial content.
const DefaultRange = "bytes=0-"

const rangePrefix = "bytes="

var (
	ErrMalformedRange     = errors.New("malformed range")
	ErrUnsatisfiableRange = errors.New("range not satisfiable")
)

// Window is a resolved inclusive byte range [Start, End] of a resource of Total bytes.
type Window struct {
	Start int64
	End   int64
	Total int64
}

// Length is the number of bytes covered by the window.
func (w Window) Length() int64 {
	return w.End - w.Start + 1
}

// ContentRange formats the Content-Range header value for the window.
func (w Window) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", w.Start, w.End, w.Total)
}

// ParseRange resolves a single "bytes=" range against a resource of size bytes.
//
// Supported forms are "N-", "N-M" and the suffix form "-N", which starts at
// size-1-N. The end is clamped to size-1. Anything that does not parse is
// ErrMalformedRange; a window with Start > End (or a negative Start) is
// ErrUnsatisfiableRange.
func ParseRange(header string, size int64) (Window, error) {
	value := strings.TrimSpace(header)
	if !strings.HasPrefix(value, rangePrefix) {
		return Window{}, fmt.Errorf("%w: missing %q prefix in %q", ErrMalformedRange, rangePrefix, header)
	}
	value = strings.TrimPrefix(value, rangePrefix)

	w := Window{Total: size}
	if strings.HasPrefix(value, "-") {
		n, err := parseOffset(strings.TrimPrefix(value, "-"))
		if err != nil {
			return Window{}, fmt.Errorf("%w: %q", ErrMalformedRange, header)
		}
		w.End = size - 1
		w.Start = size - 1 - n
	} else {
		startStr, endStr, hasDash := strings.Cut(value, "-")
		if !hasDash {
			return Window{}, fmt.Errorf("%w: %q", ErrMalformedRange, header)
		}
		start, err := parseOffset(startStr)
		if err != nil {
			return Window{}, fmt.Errorf("%w: %q", ErrMalformedRange, header)
		}
		w.Start = start
		w.End = size - 1
		if endStr != "" {
			end, err := parseOffset(endStr)
			if err != nil {
				return Window{}, fmt.Errorf("%w: %q", ErrMalformedRange, header)
			}
			w.End = end
		}
	}

	if w.End > size-1 {
		w.End = size - 1
	}
	if w.Start < 0 || w.Start > w.End {
		return Window{}, fmt.Errorf("%w: %q against %d bytes", ErrUnsatisfiableRange, header, size)
	}
	return w, nil
}

func parseOffset(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative offset %d", n)
	}
	return n, nil
}
