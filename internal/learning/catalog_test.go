package learning_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mind-engage/learnpath/internal/learning"
)

func TestCatalog_OwnershipIsEnforced(t *testing.T) {
	e := newEnv(t)
	c := e.course(t)
	l := e.lesson(t, c.ID, "Intro", 0)
	qz := e.quiz(t, l.ID)
	q := e.mcq(t, qz.ID, "Pick the first one", 0, "first", "second")
	other := e.register(t, "othereducator", true)

	title := "Hijacked"
	checks := map[string]error{}
	_, checks["update course"] = e.svc.UpdateCourse(e.ctx, other.ID, c.ID, learning.CoursePatch{Title: &title})
	checks["delete course"] = e.svc.DeleteCourse(e.ctx, other.ID, c.ID)
	_, checks["create lesson"] = e.svc.CreateLesson(e.ctx, other.ID, learning.Lesson{CourseID: c.ID, Title: "Extra", ContentType: learning.ContentText})
	_, checks["update lesson"] = e.svc.UpdateLesson(e.ctx, other.ID, l.ID, learning.LessonPatch{Title: &title})
	_, checks["view answers"] = e.svc.QuizWithAnswers(e.ctx, other.ID, qz.ID)
	_, checks["add question"] = e.svc.CreateQuestion(e.ctx, other.ID, qz.ID, learning.Question{Text: "Sneaky question", Type: learning.QuestionShortAnswer})
	_, checks["add option"] = e.svc.CreateOption(e.ctx, other.ID, q.ID, learning.Option{Text: "third"})
	checks["delete option"] = e.svc.DeleteOption(e.ctx, other.ID, q.Options[0].ID)
	checks["delete quiz"] = e.svc.DeleteQuiz(e.ctx, other.ID, qz.ID)

	for name, err := range checks {
		if !errors.Is(err, learning.ErrForbidden) {
			t.Errorf("%s: err = %v, want ErrForbidden", name, err)
		}
	}

	got, err := e.svc.GetCourse(e.ctx, c.ID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if got.Title != c.Title {
		t.Fatalf("course title changed to %q", got.Title)
	}
}

func TestCatalog_CourseLessonsInOrder(t *testing.T) {
	e := newEnv(t)
	c := e.course(t)
	third := e.lesson(t, c.ID, "Third", 2)
	first := e.lesson(t, c.ID, "First", 0)
	second := e.lesson(t, c.ID, "Second", 1)

	got, err := e.svc.GetCourse(e.ctx, c.ID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	var ids []int64
	for _, l := range got.Lessons {
		ids = append(ids, l.ID)
	}
	want := []int64{first.ID, second.ID, third.ID}
	if len(ids) != 3 || ids[0] != want[0] || ids[1] != want[1] || ids[2] != want[2] {
		t.Fatalf("lesson order = %v, want %v", ids, want)
	}

	pos := 5
	if _, err := e.svc.UpdateLesson(e.ctx, e.educator.ID, first.ID, learning.LessonPatch{Position: &pos}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	lessons, err := e.svc.ListLessons(e.ctx, c.ID)
	if err != nil {
		t.Fatalf("list lessons: %v", err)
	}
	if lessons[2].ID != first.ID {
		t.Fatalf("moved lesson should be last, got %+v", lessons)
	}
}

func TestCatalog_LessonValidation(t *testing.T) {
	e := newEnv(t)
	c := e.course(t)

	bad := []learning.Lesson{
		{CourseID: c.ID, Title: "", ContentType: learning.ContentText},
		{CourseID: c.ID, Title: "Podcast", ContentType: "podcast"},
		{CourseID: c.ID, Title: "Negative", ContentType: learning.ContentVideo, Position: -1},
	}
	for _, l := range bad {
		if _, err := e.svc.CreateLesson(e.ctx, e.educator.ID, l); !errors.Is(err, learning.ErrInvalid) {
			t.Errorf("CreateLesson(%+v) err = %v, want ErrInvalid", l, err)
		}
	}
	if _, err := e.svc.CreateLesson(e.ctx, e.educator.ID, learning.Lesson{CourseID: 777, Title: "Orphan", ContentType: learning.ContentText}); !errors.Is(err, learning.ErrNotFound) {
		t.Errorf("orphan lesson err = %v, want ErrNotFound", err)
	}
}

func TestCatalog_OneQuizPerLesson(t *testing.T) {
	e := newEnv(t)
	c := e.course(t)
	l := e.lesson(t, c.ID, "Intro", 0)
	qz := e.quiz(t, l.ID)

	_, err := e.svc.CreateQuiz(e.ctx, e.educator.ID, learning.Quiz{LessonID: l.ID, Title: "Another quiz"})
	if !errors.Is(err, learning.ErrConflict) {
		t.Fatalf("second quiz err = %v, want ErrConflict", err)
	}

	got, err := e.svc.GetLesson(e.ctx, l.ID)
	if err != nil {
		t.Fatalf("get lesson: %v", err)
	}
	if got.Quiz == nil || got.Quiz.ID != qz.ID {
		t.Fatalf("lesson quiz summary = %+v, want quiz %d", got.Quiz, qz.ID)
	}
}

func TestCatalog_MCQNeedsExactlyOneCorrectOption(t *testing.T) {
	e := newEnv(t)
	c := e.course(t)
	l := e.lesson(t, c.ID, "Intro", 0)
	qz := e.quiz(t, l.ID)

	for _, opts := range [][]learning.Option{
		{{Text: "a"}, {Text: "b"}},
		{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}},
	} {
		_, err := e.svc.CreateQuestion(e.ctx, e.educator.ID, qz.ID, learning.Question{Text: "Which letter?", Type: learning.QuestionMCQ, Options: opts})
		if !errors.Is(err, learning.ErrInvalid) {
			t.Fatalf("options %+v: err = %v, want ErrInvalid", opts, err)
		}
	}

	q := e.mcq(t, qz.ID, "Which letter?", 0, "a", "b")
	if _, err := e.svc.CreateOption(e.ctx, e.educator.ID, q.ID, learning.Option{Text: "c", IsCorrect: true}); !errors.Is(err, learning.ErrInvalid) {
		t.Fatalf("second correct option err = %v, want ErrInvalid", err)
	}
	yes := true
	b := q.Options[1]
	if _, err := e.svc.UpdateOption(e.ctx, e.educator.ID, b.ID, learning.OptionPatch{IsCorrect: &yes}); !errors.Is(err, learning.ErrInvalid) {
		t.Fatalf("flip second option err = %v, want ErrInvalid", err)
	}

	// moving the correct flag works once the old one is cleared
	no := false
	if _, err := e.svc.UpdateOption(e.ctx, e.educator.ID, q.Options[0].ID, learning.OptionPatch{IsCorrect: &no}); err != nil {
		t.Fatalf("clear a: %v", err)
	}
	if _, err := e.svc.UpdateOption(e.ctx, e.educator.ID, b.ID, learning.OptionPatch{IsCorrect: &yes}); err != nil {
		t.Fatalf("set b: %v", err)
	}
	a, err := e.svc.SubmitAnswer(e.ctx, e.student.ID, q.ID, learning.Selection{OptionID: &b.ID})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if a.IsCorrect == nil || !*a.IsCorrect {
		t.Fatalf("answer b should now be correct, got %v", deref(a.IsCorrect))
	}
}

func TestCatalog_NonMCQDropsOptions(t *testing.T) {
	e := newEnv(t)
	c := e.course(t)
	l := e.lesson(t, c.ID, "Intro", 0)
	qz := e.quiz(t, l.ID)

	q, err := e.svc.CreateQuestion(e.ctx, e.educator.ID, qz.ID, learning.Question{
		Text:    "The sky is blue.",
		Type:    learning.QuestionTrueFalse,
		Options: []learning.Option{{Text: "true", IsCorrect: true}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(q.Options) != 0 {
		t.Fatalf("options kept for %s: %+v", q.Type, q.Options)
	}
}

func TestCatalog_QuestionTypeIsFixed(t *testing.T) {
	e := newEnv(t)
	c := e.course(t)
	l := e.lesson(t, c.ID, "Intro", 0)
	qz := e.quiz(t, l.ID)
	sa := e.question(t, qz.ID, "Explain recursion.", learning.QuestionShortAnswer)
	mc := e.mcq(t, qz.ID, "Pick one of these", 0, "a", "b")

	for _, o := range []learning.Option{{Text: "x", IsCorrect: true}, {Text: "y"}} {
		if _, err := e.svc.CreateOption(e.ctx, e.educator.ID, sa.ID, o); !errors.Is(err, learning.ErrInvalid) {
			t.Fatalf("option on short answer question: err = %v, want ErrInvalid", err)
		}
	}

	toMCQ, toShort := learning.QuestionMCQ, learning.QuestionShortAnswer
	if _, err := e.svc.UpdateQuestion(e.ctx, e.educator.ID, sa.ID, learning.QuestionPatch{Type: &toMCQ}); !errors.Is(err, learning.ErrInvalid) {
		t.Fatalf("short answer -> MCQ: err = %v, want ErrInvalid", err)
	}
	if _, err := e.svc.UpdateQuestion(e.ctx, e.educator.ID, mc.ID, learning.QuestionPatch{Type: &toShort}); !errors.Is(err, learning.ErrInvalid) {
		t.Fatalf("MCQ -> short answer: err = %v, want ErrInvalid", err)
	}

	// restating the current type together with a text edit is fine
	text := "Explain recursion briefly."
	got, err := e.svc.UpdateQuestion(e.ctx, e.educator.ID, sa.ID, learning.QuestionPatch{Text: &text, Type: &toShort})
	if err != nil {
		t.Fatalf("update text: %v", err)
	}
	if got.Type != learning.QuestionShortAnswer || got.Text != text || len(got.Options) != 0 {
		t.Fatalf("updated question = %+v", got)
	}

	full, err := e.svc.QuizWithAnswers(e.ctx, e.educator.ID, qz.ID)
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	for _, q := range full.Questions {
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if q.Type == learning.QuestionMCQ && correct != 1 {
			t.Fatalf("MCQ question %d has %d correct options", q.ID, correct)
		}
		if q.Type != learning.QuestionMCQ && len(q.Options) != 0 {
			t.Fatalf("%s question %d has options", q.Type, q.ID)
		}
	}
}

func TestCatalog_StudentQuizViewHidesAnswerKey(t *testing.T) {
	e := newEnv(t)
	c := e.course(t)
	l := e.lesson(t, c.ID, "Intro", 0)
	qz := e.quiz(t, l.ID)
	e.mcq(t, qz.ID, "Pick the first one", 0, "first", "second")

	full, err := e.svc.GetQuiz(e.ctx, qz.ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if len(full.Questions) != 1 || len(full.Questions[0].Options) != 2 {
		t.Fatalf("quiz not fully loaded: %+v", full)
	}
	b, err := json.Marshal(full.Public())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "is_correct") {
		t.Fatalf("student view leaks answer key: %s", b)
	}

	owner, err := e.svc.QuizWithAnswers(e.ctx, e.educator.ID, qz.ID)
	if err != nil {
		t.Fatalf("educator view: %v", err)
	}
	if !owner.Questions[0].Options[0].IsCorrect {
		t.Fatal("educator view should carry is_correct")
	}
}

func TestCatalog_DeleteOptionKeepsAnswer(t *testing.T) {
	e := newEnv(t)
	c := e.course(t)
	l := e.lesson(t, c.ID, "Intro", 0)
	qz := e.quiz(t, l.ID)
	q := e.mcq(t, qz.ID, "Pick the first one", 0, "first", "second")

	if _, err := e.svc.SubmitAnswer(e.ctx, e.student.ID, q.ID, learning.Selection{OptionID: optionID(q, "first")}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := e.svc.DeleteOption(e.ctx, e.educator.ID, q.Options[0].ID); err != nil {
		t.Fatalf("delete option: %v", err)
	}
	answers, err := e.svc.AnswersForUser(e.ctx, e.student.ID, learning.Page{})
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if len(answers) != 1 || answers[0].SelectedOptionID != nil || answers[0].IsCorrect == nil {
		t.Fatalf("answer after option delete = %+v", answers)
	}
}

func TestUsers_RegisterAndAuthenticate(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Register(e.ctx, learning.NewUser{Username: "student", Email: "new@example.test", Password: "whatever1"})
	if !errors.Is(err, learning.ErrConflict) {
		t.Fatalf("duplicate username err = %v, want ErrConflict", err)
	}
	_, err = e.svc.Register(e.ctx, learning.NewUser{Username: "fresh", Email: "student@example.test", Password: "whatever1"})
	if !errors.Is(err, learning.ErrConflict) {
		t.Fatalf("duplicate email err = %v, want ErrConflict", err)
	}

	u, err := e.svc.Authenticate(e.ctx, "student", "s3cret-pass")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.ID != e.student.ID || u.IsEducator {
		t.Fatalf("authenticated as %+v", u)
	}
	if _, err := e.svc.Authenticate(e.ctx, "student", "wrong"); !errors.Is(err, learning.ErrBadCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := e.svc.Authenticate(e.ctx, "nobody", "s3cret-pass"); !errors.Is(err, learning.ErrBadCredentials) {
		t.Fatalf("unknown user err = %v", err)
	}

	off := false
	if _, err := e.svc.UpdateUser(e.ctx, e.student.ID, learning.UserPatch{IsActive: &off}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := e.svc.Authenticate(e.ctx, "student", "s3cret-pass"); !errors.Is(err, learning.ErrInactiveUser) {
		t.Fatalf("inactive err = %v, want ErrInactiveUser", err)
	}
}

func TestUsers_UpdatePasswordRehashes(t *testing.T) {
	e := newEnv(t)
	pw := "brand-new-pass"
	u, err := e.svc.UpdateUser(e.ctx, e.student.ID, learning.UserPatch{Password: &pw})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.PasswordHash == e.student.PasswordHash {
		t.Fatal("password hash unchanged")
	}
	if _, err := e.svc.Authenticate(e.ctx, "student", pw); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := e.svc.Authenticate(e.ctx, "student", "s3cret-pass"); !errors.Is(err, learning.ErrBadCredentials) {
		t.Fatalf("old password err = %v", err)
	}
}
