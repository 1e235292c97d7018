// Package upload holds the screenshots chosen for an analysis session and
// the boundary that turns paths on disk into them.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Media types accepted by the picker boundary
const (
	MediaTypePNG  = "image/png"
	MediaTypeJPEG = "image/jpeg"
)

var (
	// ErrUnsupportedType is returned for a path whose extension is not an accepted image type
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrNoImages is returned when discovery yields nothing to select
	ErrNoImages = errors.New("no screenshots found")
)

// File is one selected screenshot. Content is opaque to the client; only
// the name and declared media type travel with it.
type File struct {
	Path      string
	Name      string
	MediaType string
	Size      int64
	ModTime   time.Time

	open func() (io.ReadCloser, error)
}

// FromPath stats a path on disk and describes it as a File.
func FromPath(path string) (*File, error) {
	mediaType, err := MediaTypeFor(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &File{
		Path:      abs,
		Name:      filepath.Base(abs),
		MediaType: mediaType,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		open: func() (io.ReadCloser, error) {
			// #nosec G304 - path comes from the user's own selection
			return os.Open(abs)
		},
	}, nil
}

// FromBytes wraps in-memory content, used for pasted images and tests.
func FromBytes(name, mediaType string, data []byte) *File {
	content := append([]byte(nil), data...)
	return &File{
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(content)),
		ModTime:   time.Now(),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// Open returns a reader over the file content
func (f *File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %s has no content", f.Name)
	}
	return f.open()
}

// Key identifies the file within a selection
func (f *File) Key() string {
	if f.Path != "" {
		return f.Path
	}
	return "mem:" + f.Name
}

var mediaTypes = map[string]string{
	".png":  MediaTypePNG,
	".jpg":  MediaTypeJPEG,
	".jpeg": MediaTypeJPEG,
}

// MediaTypeFor maps a file name to its declared media type by extension.
func MediaTypeFor(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if mt, ok := mediaTypes[ext]; ok {
		return mt, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, name)
}
