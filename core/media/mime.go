package media

import "strings"

// DefaultContentType is returned for extensions missing from the table.
const DefaultContentType = "application/octet-stream"

// MimeTable maps a lowercase file extension (without the dot) to a content type.
type MimeTable map[string]string

// DefaultMimeTypes returns a fresh copy of the built-in extension table.
func DefaultMimeTypes() MimeTable {
	return MimeTable{
		"css":   "text/css",
		"htm":   "text/html",
		"html":  "text/html",
		"xml":   "text/xml",
		"java":  "text/x-java-source, text/java",
		"md":    "text/plain",
		"txt":   "text/plain",
		"asc":   "text/plain",
		"gif":   "image/gif",
		"jpg":   "image/jpeg",
		"jpeg":  "image/jpeg",
		"png":   "image/png",
		"mp3":   "audio/mpeg",
		"m3u":   "audio/mpeg-url",
		"mp4":   "video/mp4",
		"ogv":   "video/ogg",
		"flv":   "video/x-flv",
		"mov":   "video/quicktime",
		"swf":   "application/x-shockwave-flash",
		"js":    "application/javascript",
		"pdf":   "application/pdf",
		"doc":   "application/msword",
		"ogg":   "application/x-ogg",
		"zip":   "application/octet-stream",
		"exe":   "application/octet-stream",
		"class": "application/octet-stream",
	}
}

// MimeResolver resolves content types from file names. It never mutates its table.
type MimeResolver struct {
	table MimeTable
}

// NewMimeResolver copies table so later changes by the caller are not observed.
// A nil table falls back to DefaultMimeTypes.
func NewMimeResolver(table MimeTable) *MimeResolver {
	if table == nil {
		table = DefaultMimeTypes()
	}
	owned := make(MimeTable, len(table))
	for ext, contentType := range table {
		owned[ext] = contentType
	}
	return &MimeResolver{table: owned}
}

// Lookup returns the content type registered for the extension of name.
// The extension is compared as given, so "SONG.MP3" does not match "mp3".
func (m *MimeResolver) Lookup(name string) (string, bool) {
	ext := name[strings.LastIndex(name, ".")+1:]
	contentType, ok := m.table[ext]
	return contentType, ok
}

// Resolve is Lookup with DefaultContentType for unknown extensions.
func (m *MimeResolver) Resolve(name string) string {
	if contentType, ok := m.Lookup(name); ok {
		return contentType
	}
	return DefaultContentType
}
