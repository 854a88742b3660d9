package http

import (
	"net/http"

	"github.com/mind-engage/learnpath/internal/learning"
)

type answerRequest struct {
	QuestionID       int64   `json:"question_id" validate:"required,gt=0"`
	SelectedOptionID *int64  `json:"selected_option_id" validate:"omitempty,gt=0"`
	UserAnswerText   *string `json:"user_answer_text"`
}

// POST /progress/answers
// A selected_option_id that is not an option of the question comes back as
// null and the answer stays ungraded (is_correct null).
func SubmitAnswerHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		if !decode(w, r, &req) {
			return
		}
		sel := learning.Selection{OptionID: req.SelectedOptionID, Text: req.UserAnswerText}
		out, err := svc.SubmitAnswer(r.Context(), currentUser(r).ID, req.QuestionID, sel)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// GET /progress/answers/me
func MyAnswersHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.AnswersForUser(r.Context(), currentUser(r).ID, pageFromQuery(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /progress/me
func MyProgressHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.ProgressForUser(r.Context(), currentUser(r).ID, pageFromQuery(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /progress/lessons/{lessonID}/gate
func LessonGateHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "lessonID")
		if !ok {
			return
		}
		d, err := svc.CanCompleteLesson(r.Context(), currentUser(r).ID, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

type progressFunc func(svc *learning.Service, r *http.Request, userID, lessonID int64) (learning.UserProgress, error)

// lessonProgressHandler adapts the three progress transitions to one handler shape.
func lessonProgressHandler(svc *learning.Service, fn progressFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "lessonID")
		if !ok {
			return
		}
		out, err := fn(svc, r, currentUser(r).ID, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /progress/lessons/{lessonID}/complete
func CompleteLessonHandler(svc *learning.Service) http.HandlerFunc {
	return lessonProgressHandler(svc, func(svc *learning.Service, r *http.Request, userID, lessonID int64) (learning.UserProgress, error) {
		return svc.MarkLessonComplete(r.Context(), userID, lessonID)
	})
}

// POST /progress/lessons/{lessonID}/incomplete
func IncompleteLessonHandler(svc *learning.Service) http.HandlerFunc {
	return lessonProgressHandler(svc, func(svc *learning.Service, r *http.Request, userID, lessonID int64) (learning.UserProgress, error) {
		return svc.MarkLessonIncomplete(r.Context(), userID, lessonID)
	})
}

// POST /progress/lessons/{lessonID}/visit
func VisitLessonHandler(svc *learning.Service) http.HandlerFunc {
	return lessonProgressHandler(svc, func(svc *learning.Service, r *http.Request, userID, lessonID int64) (learning.UserProgress, error) {
		return svc.TouchLesson(r.Context(), userID, lessonID)
	})
}
