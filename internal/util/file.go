package util

import (
	"io"
	"julekalender_backend/internal/model"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// mediaKinds maps sniffed MIME types to the media kinds a task may carry.
var mediaKinds = map[string]string{
	"image/png":     model.MediaPNG,
	"image/jpeg":    model.MediaJPEG,
	"audio/mpeg":    model.MediaMP3,
	"video/mp4":     model.MediaMP4,
	"text/markdown": model.MediaMarkdown,
}

// DetectMediaType sniffs the leading bytes of r. Plain text with a .md or
// .markdown file name counts as markdown since markdown has no signature.
func DetectMediaType(r io.Reader, fileName string) (kind, mimeType string, err error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", "", err
	}
	mimeType = mt.String()

	for m := mt; m != nil; m = m.Parent() {
		if k, ok := mediaKinds[baseMime(m.String())]; ok {
			return k, mimeType, nil
		}
	}

	name := strings.ToLower(fileName)
	if mt.Is("text/plain") && (strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown")) {
		return model.MediaMarkdown, "text/markdown", nil
	}
	return "", mimeType, ErrInvalidMediaType
}

func baseMime(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		return s[:i]
	}
	return s
}
