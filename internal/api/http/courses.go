package http

import (
	"net/http"

	"github.com/mind-engage/learnpath/internal/learning"
)

type courseRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=255"`
	Description *string `json:"description"`
}

type courseUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description"`
}

// POST /courses
func CreateCourseHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req courseRequest
		if !decode(w, r, &req) {
			return
		}
		c := learning.Course{Title: req.Title}
		if req.Description != nil {
			c.Description = *req.Description
		}
		out, err := svc.CreateCourse(r.Context(), currentUser(r).ID, c)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// GET /courses?skip=&limit=
func ListCoursesHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.ListCourses(r.Context(), pageFromQuery(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /courses/{courseID}
func GetCourseHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "courseID")
		if !ok {
			return
		}
		out, err := svc.GetCourse(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// PUT /courses/{courseID}
func UpdateCourseHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "courseID")
		if !ok {
			return
		}
		var req courseUpdateRequest
		if !decode(w, r, &req) {
			return
		}
		out, err := svc.UpdateCourse(r.Context(), currentUser(r).ID, id, learning.CoursePatch{
			Title:       req.Title,
			Description: req.Description,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// DELETE /courses/{courseID}
func DeleteCourseHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "courseID")
		if !ok {
			return
		}
		if err := svc.DeleteCourse(r.Context(), currentUser(r).ID, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
