package artwork

import (
	"errors"
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// ErrNoEmbeddedArtwork means the file carries tags but no picture.
var ErrNoEmbeddedArtwork = errors.New("no embedded artwork")

// Picture is artwork pulled out of an audio file's tags.
type Picture struct {
	Data     []byte
	MIMEType string
}

// FromTags reads the picture embedded in the audio file at path.
func FromTags(path string) (*Picture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoEmbeddedArtwork, path)
	}

	contentType := pic.MIMEType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return &Picture{Data: pic.Data, MIMEType: contentType}, nil
}
