package media

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrStreamOpen wraps failures to open or position the audio file.
var ErrStreamOpen = errors.New("open audio stream")

// ErrAudioReplaced means the audio file changed while a stream on the old
// one was being opened.
var ErrAudioReplaced = errors.New("audio resource replaced")

// imageName is used to resolve the image stream's content type.
const imageName = "image.png"

// Registry holds the two served resources and the single live stream of each
// kind. The mutex guards state swaps only; file reads happen outside it.
type Registry struct {
	mu        sync.Mutex
	audioPath string
	image     []byte

	audio    *Stream
	imageOut *Stream
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// SetAudio replaces the served audio file. An empty path is ignored. A stream
// open on the previous file is closed.
func (r *Registry) SetAudio(path string) {
	if path == "" {
		return
	}
	r.mu.Lock()
	prev := r.audio
	r.audioPath = path
	r.audio = nil
	r.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

// SetImage replaces the served image. A nil buffer is ignored; the bytes are
// copied. A stream open on the previous buffer is closed.
func (r *Registry) SetImage(data []byte) {
	if data == nil {
		return
	}
	owned := make([]byte, len(data))
	copy(owned, data)

	r.mu.Lock()
	prev := r.imageOut
	r.image = owned
	r.imageOut = nil
	r.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

// HasAudio reports whether an audio file has been set.
func (r *Registry) HasAudio() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.audioPath != ""
}

// HasImage reports whether an image has been set.
func (r *Registry) HasImage() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.image != nil
}

// AudioPath returns the current audio file path.
func (r *Registry) AudioPath() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.audioPath, r.audioPath != ""
}

// OpenAudio opens path positioned at offset and makes it the live audio
// stream, closing whichever stream was live before. path must still be the
// registered audio file when the stream is installed, otherwise the new
// handle is closed and ErrAudioReplaced is returned.
func (r *Registry) OpenAudio(path string, offset int64) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStreamOpen, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat %s: %w", ErrStreamOpen, path, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrStreamOpen, path)
	}
	if err := skipFully(f, offset); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: skip %d bytes of %s: %w", ErrStreamOpen, offset, path, err)
	}
	s := newFileStream(f, info.Size())

	r.mu.Lock()
	if r.audioPath != path {
		current := r.audioPath
		r.mu.Unlock()
		s.Close()
		return nil, fmt.Errorf("%w: %w: %s is now %s", ErrStreamOpen, ErrAudioReplaced, path, current)
	}
	prev := r.audio
	r.audio = s
	r.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return s, nil
}

// OpenImage wraps the current image as the live image stream, closing the
// previous one. It reports false when no image is set.
func (r *Registry) OpenImage() (*Stream, bool) {
	r.mu.Lock()
	if r.image == nil {
		r.mu.Unlock()
		return nil, false
	}
	s := newBytesStream(imageName, r.image)
	prev := r.imageOut
	r.imageOut = s
	r.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return s, true
}

// Release closes s and forgets it if it is still the live stream of its kind.
func (r *Registry) Release(s *Stream) {
	if s == nil {
		return
	}
	r.mu.Lock()
	if r.audio == s {
		r.audio = nil
	}
	if r.imageOut == s {
		r.imageOut = nil
	}
	r.mu.Unlock()
	s.Close()
}

// CloseStreams closes both live streams. The resources themselves stay set.
func (r *Registry) CloseStreams() {
	r.mu.Lock()
	audio, image := r.audio, r.imageOut
	r.audio, r.imageOut = nil, nil
	r.mu.Unlock()

	if audio != nil {
		audio.Close()
	}
	if image != nil {
		image.Close()
	}
}

// Active reports which kinds of stream are currently open.
func (r *Registry) Active() (audio, image bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.audio != nil, r.imageOut != nil
}
