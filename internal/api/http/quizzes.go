package http

import (
	"net/http"

	"github.com/mind-engage/learnpath/internal/learning"
)

type quizRequest struct {
	LessonID    int64   `json:"lesson_id" validate:"required,gt=0"`
	Title       string  `json:"title" validate:"required,min=3,max=255"`
	Description *string `json:"description"`
}

type quizUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description"`
}

type optionRequest struct {
	OptionText string `json:"option_text" validate:"required,min=1"`
	IsCorrect  bool   `json:"is_correct"`
}

type optionUpdateRequest struct {
	OptionText *string `json:"option_text" validate:"omitempty,min=1"`
	IsCorrect  *bool   `json:"is_correct"`
}

type questionRequest struct {
	QuestionText string          `json:"question_text" validate:"required,min=5"`
	QuestionType string          `json:"question_type" validate:"omitempty,oneof=MCQ TrueFalse ShortAnswer"`
	Options      []optionRequest `json:"options" validate:"dive"`
}

type questionUpdateRequest struct {
	QuestionText *string `json:"question_text" validate:"omitempty,min=5"`
	QuestionType *string `json:"question_type" validate:"omitempty,oneof=MCQ TrueFalse ShortAnswer"`
}

// POST /quizzes
func CreateQuizHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quizRequest
		if !decode(w, r, &req) {
			return
		}
		q := learning.Quiz{LessonID: req.LessonID, Title: req.Title}
		if req.Description != nil {
			q.Description = *req.Description
		}
		out, err := svc.CreateQuiz(r.Context(), currentUser(r).ID, q)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// GET /quizzes/{quizID}: student view, no answer keys.
func GetQuizHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "quizID")
		if !ok {
			return
		}
		q, err := svc.GetQuiz(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, q.Public())
	}
}

// GET /quizzes/{quizID}/with-answers: owning educator only.
func GetQuizWithAnswersHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "quizID")
		if !ok {
			return
		}
		q, err := svc.QuizWithAnswers(r.Context(), currentUser(r).ID, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// PUT /quizzes/{quizID}
func UpdateQuizHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "quizID")
		if !ok {
			return
		}
		var req quizUpdateRequest
		if !decode(w, r, &req) {
			return
		}
		q, err := svc.UpdateQuiz(r.Context(), currentUser(r).ID, id, learning.QuizPatch{Title: req.Title, Description: req.Description})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// DELETE /quizzes/{quizID}
func DeleteQuizHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "quizID")
		if !ok {
			return
		}
		if err := svc.DeleteQuiz(r.Context(), currentUser(r).ID, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /quizzes/{quizID}/questions
func CreateQuestionHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID, ok := idParam(w, r, "quizID")
		if !ok {
			return
		}
		var req questionRequest
		if !decode(w, r, &req) {
			return
		}
		q := learning.Question{Text: req.QuestionText, Type: learning.QuestionType(req.QuestionType)}
		for _, o := range req.Options {
			q.Options = append(q.Options, learning.Option{Text: o.OptionText, IsCorrect: o.IsCorrect})
		}
		out, err := svc.CreateQuestion(r.Context(), currentUser(r).ID, quizID, q)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// PUT /quizzes/questions/{questionID}
func UpdateQuestionHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "questionID")
		if !ok {
			return
		}
		var req questionUpdateRequest
		if !decode(w, r, &req) {
			return
		}
		p := learning.QuestionPatch{Text: req.QuestionText}
		if req.QuestionType != nil {
			t := learning.QuestionType(*req.QuestionType)
			p.Type = &t
		}
		out, err := svc.UpdateQuestion(r.Context(), currentUser(r).ID, id, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// DELETE /quizzes/questions/{questionID}
func DeleteQuestionHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "questionID")
		if !ok {
			return
		}
		if err := svc.DeleteQuestion(r.Context(), currentUser(r).ID, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /quizzes/questions/{questionID}/options
func CreateOptionHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID, ok := idParam(w, r, "questionID")
		if !ok {
			return
		}
		var req optionRequest
		if !decode(w, r, &req) {
			return
		}
		out, err := svc.CreateOption(r.Context(), currentUser(r).ID, questionID, learning.Option{Text: req.OptionText, IsCorrect: req.IsCorrect})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// PUT /quizzes/options/{optionID}
func UpdateOptionHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "optionID")
		if !ok {
			return
		}
		var req optionUpdateRequest
		if !decode(w, r, &req) {
			return
		}
		out, err := svc.UpdateOption(r.Context(), currentUser(r).ID, id, learning.OptionPatch{Text: req.OptionText, IsCorrect: req.IsCorrect})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// DELETE /quizzes/options/{optionID}
func DeleteOptionHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "optionID")
		if !ok {
			return
		}
		if err := svc.DeleteOption(r.Context(), currentUser(r).ID, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
