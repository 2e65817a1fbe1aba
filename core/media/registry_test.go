package media

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySettersIgnoreAbsentValues(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.HasAudio())
	assert.False(t, r.HasImage())

	r.SetAudio("/music/a.mp3")
	r.SetAudio("")
	path, ok := r.AudioPath()
	assert.True(t, ok)
	assert.Equal(t, "/music/a.mp3", path)

	r.SetImage([]byte{1, 2, 3})
	r.SetImage(nil)
	assert.True(t, r.HasImage())

	s, ok := r.OpenImage()
	require.True(t, ok)
	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestRegistryEmptyImageIsStillSet(t *testing.T) {
	r := NewRegistry()
	r.SetImage([]byte{})
	assert.True(t, r.HasImage())

	s, ok := r.OpenImage()
	require.True(t, ok)
	assert.Equal(t, int64(0), s.Size)
}

func TestRegistrySetImageCopiesBuffer(t *testing.T) {
	r := NewRegistry()
	buf := []byte("png!")
	r.SetImage(buf)
	buf[0] = 'X'

	s, ok := r.OpenImage()
	require.True(t, ok)
	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "png!", string(got))
}

func TestOpenAudioAtOffset(t *testing.T) {
	path, data := writeSample(t, "a.mp3", 1000)
	r := NewRegistry()
	r.SetAudio(path)

	s, err := r.OpenAudio(path, 100)
	require.NoError(t, err)
	defer r.Release(s)

	assert.Equal(t, int64(1000), s.Size)
	buf := make([]byte, 100)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	assert.Equal(t, data[100:200], buf)
}

func TestOpenAudioMissingFile(t *testing.T) {
	r := NewRegistry()
	_, err := r.OpenAudio(filepath.Join(t.TempDir(), "gone.mp3"), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStreamOpen)
	assert.ErrorIs(t, err, os.ErrNotExist)

	audio, _ := r.Active()
	assert.False(t, audio)
}

func TestOpenAudioClosesPreviousStream(t *testing.T) {
	path, _ := writeSample(t, "a.mp3", 64)
	r := NewRegistry()
	r.SetAudio(path)

	first, err := r.OpenAudio(path, 0)
	require.NoError(t, err)
	second, err := r.OpenAudio(path, 10)
	require.NoError(t, err)

	assert.True(t, first.Closed())
	assert.False(t, second.Closed())
	_, err = first.Read(make([]byte, 1))
	assert.ErrorIs(t, err, os.ErrClosed)

	r.Release(second)
	audio, _ := r.Active()
	assert.False(t, audio)
}

func TestSetAudioClosesOpenStreamAcrossSwaps(t *testing.T) {
	a, _ := writeSample(t, "a.mp3", 32)
	b, _ := writeSample(t, "b.mp3", 32)
	r := NewRegistry()

	var opened []*Stream
	for i := 0; i < 20; i++ {
		path := a
		if i%2 == 1 {
			path = b
		}
		r.SetAudio(path)
		s, err := r.OpenAudio(path, int64(i))
		require.NoError(t, err)
		opened = append(opened, s)
	}
	r.SetAudio(a)

	for i, s := range opened {
		assert.True(t, s.Closed(), "stream %d leaked", i)
	}
	audio, _ := r.Active()
	assert.False(t, audio)
}

func TestOpenAudioAfterReplacement(t *testing.T) {
	one, _ := writeSample(t, "one.mp3", 32)
	two, _ := writeSample(t, "two.mp3", 32)
	r := NewRegistry()
	r.SetAudio(one)

	// A request picked up the path, then the track changed before it opened.
	path, ok := r.AudioPath()
	require.True(t, ok)
	r.SetAudio(two)

	s, err := r.OpenAudio(path, 0)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrStreamOpen)
	assert.ErrorIs(t, err, ErrAudioReplaced)

	audio, _ := r.Active()
	assert.False(t, audio, "no live stream may remain on the replaced file")

	current, _ := r.AudioPath()
	assert.Equal(t, two, current)
	s, err = r.OpenAudio(current, 0)
	require.NoError(t, err)
	r.Release(s)
}

func TestSetImageClosesOpenImageStream(t *testing.T) {
	r := NewRegistry()
	r.SetImage([]byte("one"))
	s, ok := r.OpenImage()
	require.True(t, ok)

	r.SetImage([]byte("two"))
	assert.True(t, s.Closed())
	_, err := s.Read(make([]byte, 1))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestReleaseKeepsNewerStream(t *testing.T) {
	path, _ := writeSample(t, "a.mp3", 16)
	r := NewRegistry()
	r.SetAudio(path)

	old, err := r.OpenAudio(path, 0)
	require.NoError(t, err)
	current, err := r.OpenAudio(path, 0)
	require.NoError(t, err)

	r.Release(old)
	audio, _ := r.Active()
	assert.True(t, audio, "releasing a superseded stream must not drop the live one")

	r.Release(current)
	r.Release(nil)
	audio, _ = r.Active()
	assert.False(t, audio)
}

func TestCloseStreams(t *testing.T) {
	path, _ := writeSample(t, "a.mp3", 16)
	r := NewRegistry()
	r.SetAudio(path)
	r.SetImage([]byte("img"))

	a, err := r.OpenAudio(path, 0)
	require.NoError(t, err)
	i, ok := r.OpenImage()
	require.True(t, ok)

	r.CloseStreams()
	assert.True(t, a.Closed())
	assert.True(t, i.Closed())
	assert.True(t, r.HasAudio(), "resources survive stream teardown")
	assert.True(t, r.HasImage())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	path, _ := writeSample(t, "a.mp3", 256)
	r := NewRegistry()
	r.SetAudio(path)
	r.SetImage([]byte("img"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				switch (i + j) % 4 {
				case 0:
					if s, err := r.OpenAudio(path, int64(j)); err == nil {
						_, _ = io.Copy(io.Discard, s)
						r.Release(s)
					}
				case 1:
					r.SetAudio(path)
				case 2:
					if s, ok := r.OpenImage(); ok {
						_, _ = io.Copy(io.Discard, s)
						r.Release(s)
					}
				case 3:
					r.SetImage([]byte("img"))
				}
			}
		}(i)
	}
	wg.Wait()

	r.CloseStreams()
	audio, image := r.Active()
	assert.False(t, audio)
	assert.False(t, image)
}
