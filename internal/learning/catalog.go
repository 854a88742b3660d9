package learning

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Catalog operations: courses, lessons, quizzes, questions and options.
// Mutations take the acting educator's ID and fail with ErrForbidden unless
// that educator owns the course the entity hangs off.

func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalid)...)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func validContentType(t ContentType) bool {
	switch t {
	case ContentText, ContentVideo, ContentQuiz, ContentLink:
		return true
	}
	return false
}

func validQuestionType(t QuestionType) bool {
	switch t {
	case QuestionMCQ, QuestionTrueFalse, QuestionShortAnswer:
		return true
	}
	return false
}

// ---------- ownership ----------

func ownCourse(ctx context.Context, st Store, actorID, courseID int64) (Course, error) {
	c, err := st.GetCourse(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	if c.EducatorID != actorID {
		return Course{}, fmt.Errorf("course %d: %w", courseID, ErrForbidden)
	}
	return c, nil
}

func ownLesson(ctx context.Context, st Store, actorID, lessonID int64) (Lesson, error) {
	l, err := st.FindLessonByID(ctx, lessonID)
	if err != nil {
		return Lesson{}, err
	}
	if _, err := ownCourse(ctx, st, actorID, l.CourseID); err != nil {
		return Lesson{}, err
	}
	return l, nil
}

func ownQuiz(ctx context.Context, st Store, actorID, quizID int64) (Quiz, error) {
	q, err := st.FindQuizByID(ctx, quizID)
	if err != nil {
		return Quiz{}, err
	}
	if _, err := ownLesson(ctx, st, actorID, q.LessonID); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func ownQuestion(ctx context.Context, st Store, actorID, questionID int64) (Question, error) {
	q, err := st.FindQuestionByID(ctx, questionID)
	if err != nil {
		return Question{}, err
	}
	if _, err := ownQuiz(ctx, st, actorID, q.QuizID); err != nil {
		return Question{}, err
	}
	return q, nil
}

// ---------- courses ----------

func (s *Service) CreateCourse(ctx context.Context, educatorID int64, c Course) (Course, error) {
	if blank(c.Title) {
		return Course{}, invalid("course title is required")
	}
	now := s.clock()
	c.ID = 0
	c.EducatorID = educatorID
	c.CreatedAt, c.UpdatedAt = now, now
	c.Lessons = nil
	return s.store.CreateCourse(ctx, c)
}

func (s *Service) ListCourses(ctx context.Context, p Page) ([]Course, error) {
	return s.store.ListCourses(ctx, p)
}

// GetCourse returns the course with its lessons in order.
func (s *Service) GetCourse(ctx context.Context, id int64) (Course, error) {
	var out Course
	err := s.store.WithinTx(ctx, func(st Store) error {
		c, err := st.GetCourse(ctx, id)
		if err != nil {
			return err
		}
		if c.Lessons, err = st.ListLessonsByCourse(ctx, id); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

func (s *Service) UpdateCourse(ctx context.Context, actorID, id int64, p CoursePatch) (Course, error) {
	if p.Title != nil && blank(*p.Title) {
		return Course{}, invalid("course title is required")
	}
	var out Course
	err := s.store.WithinTx(ctx, func(st Store) error {
		c, err := ownCourse(ctx, st, actorID, id)
		if err != nil {
			return err
		}
		p.Apply(&c)
		c.UpdatedAt = s.clock()
		out, err = st.UpdateCourse(ctx, c)
		return err
	})
	return out, err
}

// DeleteCourse removes the course; lessons, quizzes, answers and progress
// under it go with it through the schema's cascades.
func (s *Service) DeleteCourse(ctx context.Context, actorID, id int64) error {
	return s.store.WithinTx(ctx, func(st Store) error {
		if _, err := ownCourse(ctx, st, actorID, id); err != nil {
			return err
		}
		return st.DeleteCourse(ctx, id)
	})
}

// ---------- lessons ----------

func validateLesson(l Lesson) error {
	switch {
	case blank(l.Title):
		return invalid("lesson title is required")
	case !validContentType(l.ContentType):
		return invalid("unknown content type %q", l.ContentType)
	case l.Position < 0:
		return invalid("lesson order must be >= 0")
	}
	return nil
}

func (s *Service) CreateLesson(ctx context.Context, actorID int64, l Lesson) (Lesson, error) {
	if err := validateLesson(l); err != nil {
		return Lesson{}, err
	}
	var out Lesson
	err := s.store.WithinTx(ctx, func(st Store) error {
		if _, err := ownCourse(ctx, st, actorID, l.CourseID); err != nil {
			return err
		}
		now := s.clock()
		l.ID = 0
		l.CreatedAt, l.UpdatedAt = now, now
		l.Quiz = nil
		var err error
		out, err = st.CreateLesson(ctx, l)
		return err
	})
	return out, err
}

func (s *Service) ListLessons(ctx context.Context, courseID int64) ([]Lesson, error) {
	var out []Lesson
	err := s.store.WithinTx(ctx, func(st Store) error {
		if _, err := st.GetCourse(ctx, courseID); err != nil {
			return err
		}
		var err error
		out, err = st.ListLessonsByCourse(ctx, courseID)
		return err
	})
	return out, err
}

// GetLesson returns the lesson with a summary of its quiz, if any.
func (s *Service) GetLesson(ctx context.Context, id int64) (Lesson, error) {
	var out Lesson
	err := s.store.WithinTx(ctx, func(st Store) error {
		l, err := st.FindLessonByID(ctx, id)
		if err != nil {
			return err
		}
		q, err := st.FindQuizByLesson(ctx, id)
		switch {
		case err == nil:
			sum := q.Summary()
			l.Quiz = &sum
		case !errors.Is(err, ErrNotFound):
			return err
		}
		out = l
		return nil
	})
	return out, err
}

// AuthorizeLesson checks that actorID may modify the lesson.
func (s *Service) AuthorizeLesson(ctx context.Context, actorID, lessonID int64) (Lesson, error) {
	return ownLesson(ctx, s.store, actorID, lessonID)
}

func (s *Service) UpdateLesson(ctx context.Context, actorID, id int64, p LessonPatch) (Lesson, error) {
	var out Lesson
	err := s.store.WithinTx(ctx, func(st Store) error {
		l, err := ownLesson(ctx, st, actorID, id)
		if err != nil {
			return err
		}
		p.Apply(&l)
		if err := validateLesson(l); err != nil {
			return err
		}
		l.UpdatedAt = s.clock()
		out, err = st.UpdateLesson(ctx, l)
		return err
	})
	return out, err
}

func (s *Service) DeleteLesson(ctx context.Context, actorID, id int64) error {
	return s.store.WithinTx(ctx, func(st Store) error {
		if _, err := ownLesson(ctx, st, actorID, id); err != nil {
			return err
		}
		return st.DeleteLesson(ctx, id)
	})
}

// ---------- quizzes ----------

// CreateQuiz attaches a quiz to a lesson. A lesson holds at most one quiz.
func (s *Service) CreateQuiz(ctx context.Context, actorID int64, q Quiz) (Quiz, error) {
	if blank(q.Title) {
		return Quiz{}, invalid("quiz title is required")
	}
	var out Quiz
	err := s.store.WithinTx(ctx, func(st Store) error {
		if _, err := ownLesson(ctx, st, actorID, q.LessonID); err != nil {
			return err
		}
		if _, err := st.FindQuizByLesson(ctx, q.LessonID); err == nil {
			return fmt.Errorf("lesson %d already has a quiz: %w", q.LessonID, ErrConflict)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		now := s.clock()
		q.ID = 0
		q.CreatedAt, q.UpdatedAt = now, now
		var err error
		out, err = st.CreateQuiz(ctx, q)
		out.Questions = []Question{}
		return err
	})
	return out, err
}

func loadQuiz(ctx context.Context, st Store, q Quiz) (Quiz, error) {
	questions, err := st.FindQuestionsByQuiz(ctx, q.ID)
	if err != nil {
		return Quiz{}, err
	}
	for i := range questions {
		if questions[i].Options, err = st.FindOptionsByQuestion(ctx, questions[i].ID); err != nil {
			return Quiz{}, err
		}
	}
	q.Questions = questions
	return q, nil
}

// GetQuiz returns the full quiz including answer keys. Callers serving
// students should send Quiz.Public().
func (s *Service) GetQuiz(ctx context.Context, id int64) (Quiz, error) {
	var out Quiz
	err := s.store.WithinTx(ctx, func(st Store) error {
		q, err := st.FindQuizByID(ctx, id)
		if err != nil {
			return err
		}
		out, err = loadQuiz(ctx, st, q)
		return err
	})
	return out, err
}

// QuizWithAnswers is GetQuiz restricted to the owning educator.
func (s *Service) QuizWithAnswers(ctx context.Context, actorID, id int64) (Quiz, error) {
	var out Quiz
	err := s.store.WithinTx(ctx, func(st Store) error {
		q, err := ownQuiz(ctx, st, actorID, id)
		if err != nil {
			return err
		}
		out, err = loadQuiz(ctx, st, q)
		return err
	})
	return out, err
}

func (s *Service) UpdateQuiz(ctx context.Context, actorID, id int64, p QuizPatch) (Quiz, error) {
	if p.Title != nil && blank(*p.Title) {
		return Quiz{}, invalid("quiz title is required")
	}
	var out Quiz
	err := s.store.WithinTx(ctx, func(st Store) error {
		q, err := ownQuiz(ctx, st, actorID, id)
		if err != nil {
			return err
		}
		p.Apply(&q)
		q.UpdatedAt = s.clock()
		if _, err = st.UpdateQuiz(ctx, q); err != nil {
			return err
		}
		out, err = loadQuiz(ctx, st, q)
		return err
	})
	return out, err
}

func (s *Service) DeleteQuiz(ctx context.Context, actorID, id int64) error {
	return s.store.WithinTx(ctx, func(st Store) error {
		if _, err := ownQuiz(ctx, st, actorID, id); err != nil {
			return err
		}
		return st.DeleteQuiz(ctx, id)
	})
}

// ---------- questions ----------

func countCorrect(opts []Option) int {
	n := 0
	for _, o := range opts {
		if o.IsCorrect {
			n++
		}
	}
	return n
}

// CreateQuestion adds a question to a quiz. Options are only kept for MCQ
// questions, and an MCQ question created with options needs exactly one
// correct option.
func (s *Service) CreateQuestion(ctx context.Context, actorID, quizID int64, q Question) (Question, error) {
	if blank(q.Text) {
		return Question{}, invalid("question text is required")
	}
	if q.Type == "" {
		q.Type = QuestionMCQ
	}
	if !validQuestionType(q.Type) {
		return Question{}, invalid("unknown question type %q", q.Type)
	}
	opts := q.Options
	if q.Type != QuestionMCQ {
		opts = nil
	}
	for _, o := range opts {
		if blank(o.Text) {
			return Question{}, invalid("option text is required")
		}
	}
	if len(opts) > 0 && countCorrect(opts) != 1 {
		return Question{}, invalid("multiple choice question needs exactly one correct option")
	}

	var out Question
	err := s.store.WithinTx(ctx, func(st Store) error {
		if _, err := ownQuiz(ctx, st, actorID, quizID); err != nil {
			return err
		}
		now := s.clock()
		q.ID = 0
		q.QuizID = quizID
		q.CreatedAt, q.UpdatedAt = now, now
		created, err := st.CreateQuestion(ctx, q)
		if err != nil {
			return err
		}
		created.Options = make([]Option, 0, len(opts))
		for _, o := range opts {
			o.ID = 0
			o.QuestionID = created.ID
			o.CreatedAt, o.UpdatedAt = now, now
			saved, err := st.CreateOption(ctx, o)
			if err != nil {
				return err
			}
			created.Options = append(created.Options, saved)
		}
		out = created
		return nil
	})
	return out, err
}

func (s *Service) UpdateQuestion(ctx context.Context, actorID, id int64, p QuestionPatch) (Question, error) {
	if p.Text != nil && blank(*p.Text) {
		return Question{}, invalid("question text is required")
	}
	if p.Type != nil && !validQuestionType(*p.Type) {
		return Question{}, invalid("unknown question type %q", *p.Type)
	}
	var out Question
	err := s.store.WithinTx(ctx, func(st Store) error {
		q, err := ownQuestion(ctx, st, actorID, id)
		if err != nil {
			return err
		}
		// grading and the option rules depend on the type
		if p.Type != nil && *p.Type != q.Type {
			return invalid("question %d: type cannot change from %s to %s", id, q.Type, *p.Type)
		}
		p.Apply(&q)
		q.UpdatedAt = s.clock()
		if out, err = st.UpdateQuestion(ctx, q); err != nil {
			return err
		}
		out.Options, err = st.FindOptionsByQuestion(ctx, id)
		return err
	})
	return out, err
}

func (s *Service) DeleteQuestion(ctx context.Context, actorID, id int64) error {
	return s.store.WithinTx(ctx, func(st Store) error {
		if _, err := ownQuestion(ctx, st, actorID, id); err != nil {
			return err
		}
		return st.DeleteQuestion(ctx, id)
	})
}

// ---------- options ----------

// secondCorrect reports whether another option than exceptID is already
// marked correct.
func secondCorrect(opts []Option, exceptID int64) bool {
	for _, o := range opts {
		if o.ID != exceptID && o.IsCorrect {
			return true
		}
	}
	return false
}

func (s *Service) CreateOption(ctx context.Context, actorID, questionID int64, o Option) (Option, error) {
	if blank(o.Text) {
		return Option{}, invalid("option text is required")
	}
	var out Option
	err := s.store.WithinTx(ctx, func(st Store) error {
		q, err := ownQuestion(ctx, st, actorID, questionID)
		if err != nil {
			return err
		}
		if q.Type != QuestionMCQ {
			return invalid("question %d is %s; only MCQ questions have options", questionID, q.Type)
		}
		if o.IsCorrect {
			existing, err := st.FindOptionsByQuestion(ctx, questionID)
			if err != nil {
				return err
			}
			if secondCorrect(existing, 0) {
				return invalid("question %d already has a correct option", questionID)
			}
		}
		now := s.clock()
		o.ID = 0
		o.QuestionID = questionID
		o.CreatedAt, o.UpdatedAt = now, now
		out, err = st.CreateOption(ctx, o)
		return err
	})
	return out, err
}

func (s *Service) UpdateOption(ctx context.Context, actorID, id int64, p OptionPatch) (Option, error) {
	if p.Text != nil && blank(*p.Text) {
		return Option{}, invalid("option text is required")
	}
	var out Option
	err := s.store.WithinTx(ctx, func(st Store) error {
		o, err := st.FindOptionByID(ctx, id)
		if err != nil {
			return err
		}
		q, err := ownQuestion(ctx, st, actorID, o.QuestionID)
		if err != nil {
			return err
		}
		p.Apply(&o)
		if q.Type == QuestionMCQ && o.IsCorrect {
			existing, err := st.FindOptionsByQuestion(ctx, q.ID)
			if err != nil {
				return err
			}
			if secondCorrect(existing, o.ID) {
				return invalid("question %d already has a correct option", q.ID)
			}
		}
		o.UpdatedAt = s.clock()
		out, err = st.UpdateOption(ctx, o)
		return err
	})
	return out, err
}

func (s *Service) DeleteOption(ctx context.Context, actorID, id int64) error {
	return s.store.WithinTx(ctx, func(st Store) error {
		o, err := st.FindOptionByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := ownQuestion(ctx, st, actorID, o.QuestionID); err != nil {
			return err
		}
		return st.DeleteOption(ctx, id)
	})
}
