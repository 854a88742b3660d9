package learning_test

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/learnpath/internal/db"
	"github.com/mind-engage/learnpath/internal/learning"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type env struct {
	ctx   context.Context
	svc   *learning.Service
	store *learning.SQLStore
	clock *fakeClock

	educator learning.User
	student  learning.User
}

// newEnv opens a private in-memory SQLite database for the test.
func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"

	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })

	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := learning.NewSQLStore(dbh)
	e := &env{ctx: ctx, store: store, clock: clock}
	e.svc = e.service(store)
	e.educator = e.register(t, "educator", true)
	e.student = e.register(t, "student", false)
	return e
}

// service builds a Service over st sharing the env clock.
func (e *env) service(st learning.Store) *learning.Service {
	return learning.NewService(st,
		learning.WithClock(e.clock.Now),
		learning.WithBcryptCost(bcrypt.MinCost),
	)
}

func (e *env) register(t *testing.T, username string, educator bool) learning.User {
	t.Helper()
	u, err := e.svc.Register(e.ctx, learning.NewUser{
		Username:   username,
		Email:      username + "@example.test",
		Password:   "s3cret-pass",
		IsEducator: educator,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return u
}

func (e *env) course(t *testing.T) learning.Course {
	t.Helper()
	c, err := e.svc.CreateCourse(e.ctx, e.educator.ID, learning.Course{Title: "Biology 101"})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	return c
}

func (e *env) lesson(t *testing.T, courseID int64, title string, pos int) learning.Lesson {
	t.Helper()
	l, err := e.svc.CreateLesson(e.ctx, e.educator.ID, learning.Lesson{
		CourseID:    courseID,
		Title:       title,
		ContentType: learning.ContentText,
		Position:    pos,
	})
	if err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	return l
}

func (e *env) quiz(t *testing.T, lessonID int64) learning.Quiz {
	t.Helper()
	q, err := e.svc.CreateQuiz(e.ctx, e.educator.ID, learning.Quiz{LessonID: lessonID, Title: "Check your understanding"})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return q
}

// mcq adds a multiple choice question whose options are the given texts;
// the option at index correct is the right one.
func (e *env) mcq(t *testing.T, quizID int64, text string, correct int, opts ...string) learning.Question {
	t.Helper()
	q := learning.Question{Text: text, Type: learning.QuestionMCQ}
	for i, o := range opts {
		q.Options = append(q.Options, learning.Option{Text: o, IsCorrect: i == correct})
	}
	created, err := e.svc.CreateQuestion(e.ctx, e.educator.ID, quizID, q)
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return created
}

func (e *env) question(t *testing.T, quizID int64, text string, typ learning.QuestionType) learning.Question {
	t.Helper()
	created, err := e.svc.CreateQuestion(e.ctx, e.educator.ID, quizID, learning.Question{Text: text, Type: typ})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return created
}

func optionID(q learning.Question, text string) *int64 {
	for _, o := range q.Options {
		if o.Text == text {
			id := o.ID
			return &id
		}
	}
	panic("no option " + text)
}

func str(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
