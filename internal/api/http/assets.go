package http

import (
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mind-engage/learnpath/internal/learning"
	"github.com/mind-engage/learnpath/internal/storage"
)

const maxAssetBytes = 64 << 20

// POST /lessons/{lessonID}/assets (multipart, field "file")
// Stores the file and points the lesson's content_url at it.
func UploadLessonAssetHandler(svc *learning.Service, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "lessonID")
		if !ok {
			return
		}
		if _, err := svc.AuthorizeLesson(r.Context(), currentUser(r).ID, id); err != nil {
			writeError(w, r, err)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxAssetBytes)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "file required")
			return
		}
		defer f.Close()

		key, err := bs.Put(storage.LessonAssetKey(id, hdr.Filename), f)
		if err != nil {
			log.Printf("[%s] asset put: %v", middleware.GetReqID(r.Context()), err)
			writeDetail(w, http.StatusInternalServerError, "store error")
			return
		}
		url := "/assets/" + key
		l, err := svc.UpdateLesson(r.Context(), currentUser(r).ID, id, learning.LessonPatch{ContentURL: &url})
		if err != nil {
			_ = bs.Delete(key)
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"key": key, "lesson": l})
	}
}

// MountAssets serves GET /assets/* from the blob store.
func MountAssets(r chi.Router, bs storage.BlobStore) {
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		rc, err := bs.Get(key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeDetail(w, http.StatusNotFound, "asset not found")
				return
			}
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		defer rc.Close()
		ct := mime.TypeByExtension(path.Ext(key))
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		_, _ = io.Copy(w, rc)
	})
}
