package learning

import "context"

// Store is the entity store consumed by Service. Lookups of a missing row
// return an error wrapping ErrNotFound; inserts that would break a UNIQUE
// rule return an error wrapping ErrConflict.
type Store interface {
	// WithinTx runs fn against a Store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(Store) error) error

	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	FindUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context, p Page) ([]User, error)
	UpdateUser(ctx context.Context, u User) (User, error)

	CreateCourse(ctx context.Context, c Course) (Course, error)
	GetCourse(ctx context.Context, id int64) (Course, error)
	ListCourses(ctx context.Context, p Page) ([]Course, error)
	UpdateCourse(ctx context.Context, c Course) (Course, error)
	DeleteCourse(ctx context.Context, id int64) error

	CreateLesson(ctx context.Context, l Lesson) (Lesson, error)
	FindLessonByID(ctx context.Context, id int64) (Lesson, error)
	ListLessonsByCourse(ctx context.Context, courseID int64) ([]Lesson, error)
	UpdateLesson(ctx context.Context, l Lesson) (Lesson, error)
	DeleteLesson(ctx context.Context, id int64) error

	CreateQuiz(ctx context.Context, q Quiz) (Quiz, error)
	FindQuizByID(ctx context.Context, id int64) (Quiz, error)
	// FindQuizByLesson returns ErrNotFound when the lesson carries no quiz.
	FindQuizByLesson(ctx context.Context, lessonID int64) (Quiz, error)
	UpdateQuiz(ctx context.Context, q Quiz) (Quiz, error)
	DeleteQuiz(ctx context.Context, id int64) error

	CreateQuestion(ctx context.Context, q Question) (Question, error)
	FindQuestionByID(ctx context.Context, id int64) (Question, error)
	FindQuestionsByQuiz(ctx context.Context, quizID int64) ([]Question, error)
	UpdateQuestion(ctx context.Context, q Question) (Question, error)
	DeleteQuestion(ctx context.Context, id int64) error

	CreateOption(ctx context.Context, o Option) (Option, error)
	FindOptionByID(ctx context.Context, id int64) (Option, error)
	FindOptionsByQuestion(ctx context.Context, questionID int64) ([]Option, error)
	UpdateOption(ctx context.Context, o Option) (Option, error)
	DeleteOption(ctx context.Context, id int64) error

	FindUserAnswer(ctx context.Context, userID, questionID int64) (UserAnswer, error)
	InsertUserAnswer(ctx context.Context, a UserAnswer) (UserAnswer, error)
	ListUserAnswers(ctx context.Context, userID int64, p Page) ([]UserAnswer, error)

	FindUserProgress(ctx context.Context, userID, lessonID int64) (UserProgress, error)
	// InsertUserProgress reports inserted=false, without error, when a row
	// for (user, lesson) already exists.
	InsertUserProgress(ctx context.Context, p UserProgress) (rec UserProgress, inserted bool, err error)
	UpdateUserProgress(ctx context.Context, p UserProgress) (UserProgress, error)
	ListUserProgress(ctx context.Context, userID int64, p Page) ([]UserProgress, error)
}
