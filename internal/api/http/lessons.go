package http

import (
	"net/http"

	"github.com/mind-engage/learnpath/internal/learning"
)

type lessonRequest struct {
	CourseID    int64   `json:"course_id" validate:"required,gt=0"`
	Title       string  `json:"title" validate:"required,min=3,max=255"`
	ContentType string  `json:"content_type" validate:"required,oneof=text video quiz link"`
	ContentURL  *string `json:"content_url" validate:"omitempty,url"`
	TextContent *string `json:"text_content"`
	Order       int     `json:"order" validate:"gte=0"`
}

type lessonUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	ContentType *string `json:"content_type" validate:"omitempty,oneof=text video quiz link"`
	ContentURL  *string `json:"content_url" validate:"omitempty,url"`
	TextContent *string `json:"text_content"`
	Order       *int    `json:"order" validate:"omitempty,gte=0"`
}

// POST /lessons
func CreateLessonHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lessonRequest
		if !decode(w, r, &req) {
			return
		}
		l := learning.Lesson{
			CourseID:    req.CourseID,
			Title:       req.Title,
			ContentType: learning.ContentType(req.ContentType),
			Position:    req.Order,
		}
		if req.ContentURL != nil {
			l.ContentURL = *req.ContentURL
		}
		if req.TextContent != nil {
			l.TextContent = *req.TextContent
		}
		out, err := svc.CreateLesson(r.Context(), currentUser(r).ID, l)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// GET /lessons/by-course/{courseID}
func ListLessonsHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "courseID")
		if !ok {
			return
		}
		out, err := svc.ListLessons(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /lessons/{lessonID}
func GetLessonHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "lessonID")
		if !ok {
			return
		}
		out, err := svc.GetLesson(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// PUT /lessons/{lessonID}
func UpdateLessonHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "lessonID")
		if !ok {
			return
		}
		var req lessonUpdateRequest
		if !decode(w, r, &req) {
			return
		}
		p := learning.LessonPatch{
			Title:       req.Title,
			ContentURL:  req.ContentURL,
			TextContent: req.TextContent,
			Position:    req.Order,
		}
		if req.ContentType != nil {
			ct := learning.ContentType(*req.ContentType)
			p.ContentType = &ct
		}
		out, err := svc.UpdateLesson(r.Context(), currentUser(r).ID, id, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// DELETE /lessons/{lessonID}
func DeleteLessonHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "lessonID")
		if !ok {
			return
		}
		if err := svc.DeleteLesson(r.Context(), currentUser(r).ID, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
