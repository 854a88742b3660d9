package storage

import (
	"errors"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob not found")

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}

// LessonAssetKey builds a fresh key for a file uploaded to a lesson. Only
// the extension of the client's filename is kept.
func LessonAssetKey(lessonID int64, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 10 || strings.ContainsAny(ext, " /?#%") {
		ext = ""
	}
	return "lessons/" + strconv.FormatInt(lessonID, 10) + "/" + uuid.NewString() + ext
}

// CleanKey normalises a key to a slash-separated relative path that cannot
// climb out of the store root.
func CleanKey(key string) (string, error) {
	k := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(key, "\\", "/")), "/")
	if k == "" || k == "." {
		return "", errors.New("empty key")
	}
	return k, nil
}
