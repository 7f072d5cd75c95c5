package logo

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/jobadverts/board/internal/job"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

const (
	// URLPrefix is prepended to the stored filename to build a logo reference.
	URLPrefix = "uploads/"

	// logo references live in a VARCHAR(255) column
	maxFilenameLength  = 255 - len(URLPrefix)
	maxExtensionLength = 16
	sniffLen           = 512
)

var allowedMediaTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// InvalidError is returned when the uploaded file itself is unacceptable.
// Nothing is written in that case.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string {
	return "invalid logo: " + e.Reason
}

// Store persists uploaded company logos into a single directory.
type Store struct {
	dir     string
	maxSize int64
}

func NewStore(dir string, maxSize int64) *Store {
	return &Store{dir: dir, maxSize: maxSize}
}

// Init creates the upload directory and a placeholder default logo when
// either is missing.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "unable to create upload dir %s", s.dir)
	}
	defaultPath := filepath.Join(s.dir, strings.TrimPrefix(job.DefaultLogoURL, URLPrefix))
	if _, err := os.Stat(defaultPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "unable to stat %s", defaultPath)
	}
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff})
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return errors.Wrap(err, "unable to encode default logo")
	}
	return s.write(path.Base(job.DefaultLogoURL), buf)
}

// Store saves the uploaded file and returns its logo reference. A missing
// file or an empty filename yields the default reference without touching
// the upload directory. A file with the same sanitized name is overwritten.
func (s *Store) Store(fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Filename == "" {
		return job.DefaultLogoURL, nil
	}
	name := SanitizeFilename(fh.Filename)
	if name == "" {
		return "", &InvalidError{Reason: "file name has no usable characters"}
	}
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", &InvalidError{Reason: "file is too large"}
	}
	f, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "unable to open uploaded logo")
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", errors.Wrap(err, "unable to read uploaded logo")
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	contentTypeInvalid := true
	for _, allowedMedia := range allowedMediaTypes {
		if allowedMedia == contentType {
			contentTypeInvalid = false
		}
	}
	if contentTypeInvalid {
		return "", &InvalidError{Reason: "file must be a png, jpeg, gif or webp image"}
	}

	if err := s.write(name, io.MultiReader(bytes.NewReader(head), f)); err != nil {
		return "", err
	}
	return URLPrefix + name, nil
}

// write streams src into a temp file next to the destination and renames it
// into place, so a failed upload never leaves a truncated logo behind.
func (s *Store) write(name string, src io.Reader) error {
	dst := filepath.Join(s.dir, name)
	if !withinDir(s.dir, dst) {
		return &InvalidError{Reason: "file name escapes the upload directory"}
	}
	tmp, err := os.CreateTemp(s.dir, "."+ksuid.New().String()+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, "unable to create temp logo file")
	}
	tmpName := tmp.Name()
	written, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil && s.maxSize > 0 && written > s.maxSize {
		os.Remove(tmpName)
		return &InvalidError{Reason: "file is too large"}
	}
	if err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "unable to write logo %s", name)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "unable to move logo %s into place", name)
	}
	return nil
}

// SanitizeFilename reduces a client supplied filename to a flat, lower case
// name made of [a-z0-9_-] plus an optional extension. Directory components
// are dropped. The result plus URLPrefix never exceeds 255 bytes. It returns
// "" when nothing usable is left.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = ext, ""
	}
	stem = slug.Make(stem)
	if stem == "" {
		return ""
	}
	ext = truncate(slug.Make(strings.TrimPrefix(ext, ".")), maxExtensionLength)
	limit := maxFilenameLength
	if ext != "" {
		limit -= len(ext) + 1
	}
	if stem = truncate(stem, limit); stem == "" {
		return ""
	}
	if ext != "" {
		return stem + "." + ext
	}
	return stem
}

// truncate cuts a slug to at most n bytes without leaving a dangling separator.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.Trim(s[:n], "-_")
}

func withinDir(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !strings.ContainsRune(rel, filepath.Separator)
}
