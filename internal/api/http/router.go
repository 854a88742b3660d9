package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/learnpath/internal/auth/middleware"
	"github.com/mind-engage/learnpath/internal/learning"
	"github.com/mind-engage/learnpath/internal/rbac"
	"github.com/mind-engage/learnpath/internal/storage"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Service *learning.Service
	Auth    *authmw.AuthService
	Blobs   storage.BlobStore
	DB      Pinger
}

// GET /health
func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Mount registers the public API under /api/v1 and blob downloads under
// /assets.
func Mount(r chi.Router, d Deps) {
	svc := d.Service

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/health", HealthHandler(d.DB))
		api.Post("/token", authmw.TokenHandler(d.Auth, svc))
		api.Post("/users", RegisterHandler(svc))

		// Protected API (JWT → user record → role in context → RBAC)
		api.Group(func(pr chi.Router) {
			pr.Use(authmw.JWTMiddleware(d.Auth), authmw.AttachUser(svc))

			pr.With(rbac.Require("user:self")).Get("/users/me", MeHandler())
			pr.With(rbac.Require("user:self")).Put("/users/me", UpdateMeHandler(svc))
			pr.With(rbac.Require("users:list")).Get("/users", ListUsersHandler(svc))
			pr.With(rbac.Require("users:list")).Get("/users/{userID}", GetUserHandler(svc))

			pr.With(rbac.Require("course:view")).Get("/courses", ListCoursesHandler(svc))
			pr.With(rbac.Require("course:view")).Get("/courses/{courseID}", GetCourseHandler(svc))
			pr.With(rbac.Require("course:write")).Post("/courses", CreateCourseHandler(svc))
			pr.With(rbac.Require("course:write")).Put("/courses/{courseID}", UpdateCourseHandler(svc))
			pr.With(rbac.Require("course:write")).Delete("/courses/{courseID}", DeleteCourseHandler(svc))

			pr.With(rbac.Require("lesson:view")).Get("/lessons/by-course/{courseID}", ListLessonsHandler(svc))
			pr.With(rbac.Require("lesson:view")).Get("/lessons/{lessonID}", GetLessonHandler(svc))
			pr.With(rbac.Require("lesson:write")).Post("/lessons", CreateLessonHandler(svc))
			pr.With(rbac.Require("lesson:write")).Put("/lessons/{lessonID}", UpdateLessonHandler(svc))
			pr.With(rbac.Require("lesson:write")).Delete("/lessons/{lessonID}", DeleteLessonHandler(svc))
			pr.With(rbac.Require("asset:upload")).Post("/lessons/{lessonID}/assets", UploadLessonAssetHandler(svc, d.Blobs))

			pr.With(rbac.Require("quiz:view")).Get("/quizzes/{quizID}", GetQuizHandler(svc))
			pr.With(rbac.Require("quiz:view-answers")).Get("/quizzes/{quizID}/with-answers", GetQuizWithAnswersHandler(svc))
			pr.With(rbac.Require("quiz:write")).Post("/quizzes", CreateQuizHandler(svc))
			pr.With(rbac.Require("quiz:write")).Put("/quizzes/{quizID}", UpdateQuizHandler(svc))
			pr.With(rbac.Require("quiz:write")).Delete("/quizzes/{quizID}", DeleteQuizHandler(svc))
			pr.With(rbac.Require("quiz:write")).Post("/quizzes/{quizID}/questions", CreateQuestionHandler(svc))
			pr.With(rbac.Require("quiz:write")).Put("/quizzes/questions/{questionID}", UpdateQuestionHandler(svc))
			pr.With(rbac.Require("quiz:write")).Delete("/quizzes/questions/{questionID}", DeleteQuestionHandler(svc))
			pr.With(rbac.Require("quiz:write")).Post("/quizzes/questions/{questionID}/options", CreateOptionHandler(svc))
			pr.With(rbac.Require("quiz:write")).Put("/quizzes/options/{optionID}", UpdateOptionHandler(svc))
			pr.With(rbac.Require("quiz:write")).Delete("/quizzes/options/{optionID}", DeleteOptionHandler(svc))

			pr.With(rbac.Require("answer:submit")).Post("/progress/answers", SubmitAnswerHandler(svc))
			pr.With(rbac.Require("progress:view")).Get("/progress/answers/me", MyAnswersHandler(svc))
			pr.With(rbac.Require("progress:view")).Get("/progress/me", MyProgressHandler(svc))
			pr.With(rbac.Require("progress:view")).Get("/progress/lessons/{lessonID}/gate", LessonGateHandler(svc))
			pr.With(rbac.Require("progress:update")).Post("/progress/lessons/{lessonID}/complete", CompleteLessonHandler(svc))
			pr.With(rbac.Require("progress:update")).Post("/progress/lessons/{lessonID}/incomplete", IncompleteLessonHandler(svc))
			pr.With(rbac.Require("progress:update")).Post("/progress/lessons/{lessonID}/visit", VisitLessonHandler(svc))
		})
	})

	// assets routes (protected)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth), authmw.AttachUser(svc))
		pr.Use(rbac.Require("asset:view"))
		pr.Route("/assets", func(ar chi.Router) {
			MountAssets(ar, d.Blobs)
		})
	})
}
