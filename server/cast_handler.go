package server

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"

	"shuttlecast/core/media"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	notFoundBody = "File not found"
	// Image buffers are always announced as PNG whatever their real encoding.
	imageContentType = "image/png"
	textContentType  = "text/html"

	maxAudioAttempts = 3
)

// castHandler serves the two resources held by the registry.
type castHandler struct {
	registry *media.Registry
	mime     *media.MimeResolver
	log      Logger
}

func newCastHandler(registry *media.Registry, mime *media.MimeResolver, log Logger) *castHandler {
	return &castHandler{registry: registry, mime: mime, log: log}
}

// pathContains matches requests whose path contains fragment anywhere.
func pathContains(fragment string) mux.MatcherFunc {
	return func(r *http.Request, _ *mux.RouteMatch) bool {
		return strings.Contains(r.URL.Path, fragment)
	}
}

// routes builds the router. Audio wins when a path names both resources.
func (h *castHandler) routes() *mux.Router {
	router := mux.NewRouter()
	router.SkipClean(true)

	router.MatcherFunc(pathContains("audio")).
		Methods(http.MethodGet, http.MethodHead).
		HandlerFunc(h.serveAudio)
	router.MatcherFunc(pathContains("image")).
		Methods(http.MethodGet, http.MethodHead).
		HandlerFunc(h.serveImage)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.log.Debug("no resource for path", zap.String("request_id", requestIDFrom(r.Context())), zap.String("path", r.URL.Path))
		writeText(w, http.StatusNotFound, notFoundBody)
	})
	return router
}

// serveAudio answers every audio request with partial content. A request
// without a Range header is treated as "bytes=0-" and the header is written
// back onto the request. If the audio file is replaced while the request is
// opening it, the request starts over on the new file.
func (h *castHandler) serveAudio(w http.ResponseWriter, r *http.Request) {
	reqID := zap.String("request_id", requestIDFrom(r.Context()))

	var (
		path   string
		window media.Window
		stream *media.Stream
	)
	for attempt := 1; ; attempt++ {
		var ok bool
		path, ok = h.registry.AudioPath()
		if !ok {
			h.log.Warn("audio requested but none is set", reqID)
			writeText(w, http.StatusNotFound, notFoundBody)
			return
		}

		rangeHeader := r.Header.Get("Range")
		if rangeHeader == "" {
			rangeHeader = media.DefaultRange
			r.Header.Set("Range", rangeHeader)
		}

		info, err := os.Stat(path)
		if err == nil && !info.Mode().IsRegular() {
			err = fmt.Errorf("%w: %s is not a regular file", media.ErrStreamOpen, path)
		}
		if err != nil {
			h.writeStreamError(w, r, path, err)
			return
		}

		window, err = media.ParseRange(rangeHeader, info.Size())
		if err != nil {
			h.log.Info("rejecting range", reqID, zap.String("range", rangeHeader), zap.Error(err))
			writeText(w, http.StatusRequestedRangeNotSatisfiable, rangeHeader)
			return
		}

		stream, err = h.registry.OpenAudio(path, window.Start)
		if errors.Is(err, media.ErrAudioReplaced) && attempt < maxAudioAttempts {
			h.log.Debug("audio replaced while opening, retrying", reqID, zap.String("path", path), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			h.writeStreamError(w, r, path, err)
			return
		}
		break
	}
	defer h.registry.Release(stream)

	header := w.Header()
	header.Set("Content-Type", h.mime.Resolve(path))
	header.Set("Content-Length", strconv.FormatInt(window.Length(), 10))
	header.Set("Content-Range", window.ContentRange())
	header.Set("Accept-Ranges", "bytes")
	w.WriteHeader(http.StatusPartialContent)

	if r.Method == http.MethodHead {
		return
	}
	if n, err := io.CopyN(w, stream, window.Length()); err != nil {
		// Client went away, the stream was superseded, or the server stopped.
		h.log.Debug("audio transfer ended early", reqID,
			zap.String("path", path),
			zap.Int64("written", n),
			zap.Int64("want", window.Length()),
			zap.Error(err))
	}
}

func (h *castHandler) serveImage(w http.ResponseWriter, r *http.Request) {
	stream, ok := h.registry.OpenImage()
	if !ok {
		h.log.Warn("image requested but none is set", zap.String("request_id", requestIDFrom(r.Context())))
		writeText(w, http.StatusNotFound, notFoundBody)
		return
	}
	defer h.registry.Release(stream)

	header := w.Header()
	header.Set("Content-Type", imageContentType)
	header.Set("Content-Length", strconv.FormatInt(stream.Size, 10))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, stream); err != nil {
		h.log.Debug("image transfer ended early", zap.String("request_id", requestIDFrom(r.Context())), zap.Error(err))
	}
}

// writeStreamError maps a failure to reach the audio file onto a response:
// a vanished file is 404, anything else 500.
func (h *castHandler) writeStreamError(w http.ResponseWriter, r *http.Request, path string, err error) {
	h.log.Error("cannot open audio stream",
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.String("path", path),
		zap.Error(err))

	if errors.Is(err, fs.ErrNotExist) {
		writeText(w, http.StatusNotFound, notFoundBody)
		return
	}
	writeText(w, http.StatusInternalServerError, "Internal server error")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", textContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
