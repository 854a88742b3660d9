package learning

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/learnpath/internal/db"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore implements Store over database/sql. Queries use $N placeholders,
// which both SQLite and PostgreSQL accept.
type SQLStore struct {
	dbh  *sql.DB
	q    queryer
	inTx bool
}

func NewSQLStore(dbh *sql.DB) *SQLStore {
	return &SQLStore{dbh: dbh, q: dbh}
}

func (s *SQLStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return db.WithTx(ctx, s.dbh, nil, func(tx *sql.Tx) error {
		return fn(&SQLStore{dbh: s.dbh, q: tx, inTx: true})
	})
}

func unix(t time.Time) int64 { return t.Unix() }

func fromUnix(v int64) time.Time { return time.Unix(v, 0).UTC() }

func notFound(what string, id any) error {
	return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
}

// scanOne maps sql.ErrNoRows to ErrNotFound.
func scanOne(err error, what string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(what, id)
	}
	return err
}

func (s *SQLStore) execAffecting(ctx context.Context, what string, id int64, query string, args ...any) error {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(what, id)
	}
	return nil
}

func uniqueOr(err error, msg string) error {
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", msg, ErrConflict)
	}
	return err
}

func offsetClause(p Page) (int, int) {
	p = p.normalize()
	return p.Limit, p.Offset
}

// ---------- users ----------

const userCols = `id,username,email,password_hash,is_active,is_educator,created_at,updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(r rowScanner) (User, error) {
	var u User
	var created, updated int64
	if err := r.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.IsEducator, &created, &updated); err != nil {
		return User{}, err
	}
	u.CreatedAt, u.UpdatedAt = fromUnix(created), fromUnix(updated)
	return u, nil
}

func (s *SQLStore) CreateUser(ctx context.Context, u User) (User, error) {
	err := s.q.QueryRowContext(ctx, `INSERT INTO users (username,email,password_hash,is_active,is_educator,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.IsActive, u.IsEducator, unix(u.CreatedAt), unix(u.UpdatedAt)).Scan(&u.ID)
	if err != nil {
		return User{}, uniqueOr(err, "username or email already registered")
	}
	return u, nil
}

func (s *SQLStore) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(s.q.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
	if err != nil {
		return User{}, scanOne(err, "user", id)
	}
	return u, nil
}

func (s *SQLStore) FindUserByUsername(ctx context.Context, username string) (User, error) {
	u, err := scanUser(s.q.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE username=$1`, username))
	if err != nil {
		return User{}, scanOne(err, "user", username)
	}
	return u, nil
}

func (s *SQLStore) ListUsers(ctx context.Context, p Page) ([]User, error) {
	limit, offset := offsetClause(p)
	rows, err := s.q.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateUser(ctx context.Context, u User) (User, error) {
	err := s.execAffecting(ctx, "user", u.ID, `UPDATE users SET username=$1,email=$2,password_hash=$3,is_active=$4,is_educator=$5,updated_at=$6 WHERE id=$7`,
		u.Username, u.Email, u.PasswordHash, u.IsActive, u.IsEducator, unix(u.UpdatedAt), u.ID)
	if err != nil {
		return User{}, uniqueOr(err, "username or email already registered")
	}
	return u, nil
}

// ---------- courses ----------

const courseCols = `id,title,description,educator_id,created_at,updated_at`

func scanCourse(r rowScanner) (Course, error) {
	var c Course
	var created, updated int64
	if err := r.Scan(&c.ID, &c.Title, &c.Description, &c.EducatorID, &created, &updated); err != nil {
		return Course{}, err
	}
	c.CreatedAt, c.UpdatedAt = fromUnix(created), fromUnix(updated)
	return c, nil
}

func (s *SQLStore) CreateCourse(ctx context.Context, c Course) (Course, error) {
	err := s.q.QueryRowContext(ctx, `INSERT INTO courses (title,description,educator_id,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		c.Title, c.Description, c.EducatorID, unix(c.CreatedAt), unix(c.UpdatedAt)).Scan(&c.ID)
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

func (s *SQLStore) GetCourse(ctx context.Context, id int64) (Course, error) {
	c, err := scanCourse(s.q.QueryRowContext(ctx, `SELECT `+courseCols+` FROM courses WHERE id=$1`, id))
	if err != nil {
		return Course{}, scanOne(err, "course", id)
	}
	return c, nil
}

func (s *SQLStore) ListCourses(ctx context.Context, p Page) ([]Course, error) {
	limit, offset := offsetClause(p)
	rows, err := s.q.QueryContext(ctx, `SELECT `+courseCols+` FROM courses ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateCourse(ctx context.Context, c Course) (Course, error) {
	err := s.execAffecting(ctx, "course", c.ID, `UPDATE courses SET title=$1,description=$2,updated_at=$3 WHERE id=$4`,
		c.Title, c.Description, unix(c.UpdatedAt), c.ID)
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

func (s *SQLStore) DeleteCourse(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, "course", id, `DELETE FROM courses WHERE id=$1`, id)
}

// ---------- lessons ----------

const lessonCols = `id,course_id,title,content_type,content_url,text_content,position,created_at,updated_at`

func scanLesson(r rowScanner) (Lesson, error) {
	var l Lesson
	var ct string
	var created, updated int64
	if err := r.Scan(&l.ID, &l.CourseID, &l.Title, &ct, &l.ContentURL, &l.TextContent, &l.Position, &created, &updated); err != nil {
		return Lesson{}, err
	}
	l.ContentType = ContentType(ct)
	l.CreatedAt, l.UpdatedAt = fromUnix(created), fromUnix(updated)
	return l, nil
}

func (s *SQLStore) CreateLesson(ctx context.Context, l Lesson) (Lesson, error) {
	err := s.q.QueryRowContext(ctx, `INSERT INTO lessons (course_id,title,content_type,content_url,text_content,position,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		l.CourseID, l.Title, string(l.ContentType), l.ContentURL, l.TextContent, l.Position, unix(l.CreatedAt), unix(l.UpdatedAt)).Scan(&l.ID)
	if err != nil {
		return Lesson{}, err
	}
	return l, nil
}

func (s *SQLStore) FindLessonByID(ctx context.Context, id int64) (Lesson, error) {
	l, err := scanLesson(s.q.QueryRowContext(ctx, `SELECT `+lessonCols+` FROM lessons WHERE id=$1`, id))
	if err != nil {
		return Lesson{}, scanOne(err, "lesson", id)
	}
	return l, nil
}

func (s *SQLStore) ListLessonsByCourse(ctx context.Context, courseID int64) ([]Lesson, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+lessonCols+` FROM lessons WHERE course_id=$1 ORDER BY position, id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Lesson{}
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateLesson(ctx context.Context, l Lesson) (Lesson, error) {
	err := s.execAffecting(ctx, "lesson", l.ID, `UPDATE lessons SET title=$1,content_type=$2,content_url=$3,text_content=$4,position=$5,updated_at=$6 WHERE id=$7`,
		l.Title, string(l.ContentType), l.ContentURL, l.TextContent, l.Position, unix(l.UpdatedAt), l.ID)
	if err != nil {
		return Lesson{}, err
	}
	return l, nil
}

func (s *SQLStore) DeleteLesson(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, "lesson", id, `DELETE FROM lessons WHERE id=$1`, id)
}

// ---------- quizzes ----------

const quizCols = `id,lesson_id,title,description,created_at,updated_at`

func scanQuiz(r rowScanner) (Quiz, error) {
	var q Quiz
	var created, updated int64
	if err := r.Scan(&q.ID, &q.LessonID, &q.Title, &q.Description, &created, &updated); err != nil {
		return Quiz{}, err
	}
	q.CreatedAt, q.UpdatedAt = fromUnix(created), fromUnix(updated)
	return q, nil
}

func (s *SQLStore) CreateQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	err := s.q.QueryRowContext(ctx, `INSERT INTO quizzes (lesson_id,title,description,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		q.LessonID, q.Title, q.Description, unix(q.CreatedAt), unix(q.UpdatedAt)).Scan(&q.ID)
	if err != nil {
		return Quiz{}, uniqueOr(err, "lesson already has a quiz")
	}
	return q, nil
}

func (s *SQLStore) FindQuizByID(ctx context.Context, id int64) (Quiz, error) {
	q, err := scanQuiz(s.q.QueryRowContext(ctx, `SELECT `+quizCols+` FROM quizzes WHERE id=$1`, id))
	if err != nil {
		return Quiz{}, scanOne(err, "quiz", id)
	}
	return q, nil
}

func (s *SQLStore) FindQuizByLesson(ctx context.Context, lessonID int64) (Quiz, error) {
	q, err := scanQuiz(s.q.QueryRowContext(ctx, `SELECT `+quizCols+` FROM quizzes WHERE lesson_id=$1`, lessonID))
	if err != nil {
		return Quiz{}, scanOne(err, "quiz for lesson", lessonID)
	}
	return q, nil
}

func (s *SQLStore) UpdateQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	err := s.execAffecting(ctx, "quiz", q.ID, `UPDATE quizzes SET title=$1,description=$2,updated_at=$3 WHERE id=$4`,
		q.Title, q.Description, unix(q.UpdatedAt), q.ID)
	if err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, "quiz", id, `DELETE FROM quizzes WHERE id=$1`, id)
}

// ---------- questions ----------

const questionCols = `id,quiz_id,question_text,question_type,created_at,updated_at`

func scanQuestion(r rowScanner) (Question, error) {
	var q Question
	var typ string
	var created, updated int64
	if err := r.Scan(&q.ID, &q.QuizID, &q.Text, &typ, &created, &updated); err != nil {
		return Question{}, err
	}
	q.Type = QuestionType(typ)
	q.CreatedAt, q.UpdatedAt = fromUnix(created), fromUnix(updated)
	return q, nil
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	err := s.q.QueryRowContext(ctx, `INSERT INTO questions (quiz_id,question_text,question_type,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		q.QuizID, q.Text, string(q.Type), unix(q.CreatedAt), unix(q.UpdatedAt)).Scan(&q.ID)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) FindQuestionByID(ctx context.Context, id int64) (Question, error) {
	q, err := scanQuestion(s.q.QueryRowContext(ctx, `SELECT `+questionCols+` FROM questions WHERE id=$1`, id))
	if err != nil {
		return Question{}, scanOne(err, "question", id)
	}
	return q, nil
}

func (s *SQLStore) FindQuestionsByQuiz(ctx context.Context, quizID int64) ([]Question, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+questionCols+` FROM questions WHERE quiz_id=$1 ORDER BY id`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, q Question) (Question, error) {
	err := s.execAffecting(ctx, "question", q.ID, `UPDATE questions SET question_text=$1,question_type=$2,updated_at=$3 WHERE id=$4`,
		q.Text, string(q.Type), unix(q.UpdatedAt), q.ID)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, "question", id, `DELETE FROM questions WHERE id=$1`, id)
}

// ---------- options ----------

const optionCols = `id,question_id,option_text,is_correct,created_at,updated_at`

func scanOption(r rowScanner) (Option, error) {
	var o Option
	var created, updated int64
	if err := r.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect, &created, &updated); err != nil {
		return Option{}, err
	}
	o.CreatedAt, o.UpdatedAt = fromUnix(created), fromUnix(updated)
	return o, nil
}

func (s *SQLStore) CreateOption(ctx context.Context, o Option) (Option, error) {
	err := s.q.QueryRowContext(ctx, `INSERT INTO options (question_id,option_text,is_correct,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		o.QuestionID, o.Text, o.IsCorrect, unix(o.CreatedAt), unix(o.UpdatedAt)).Scan(&o.ID)
	if err != nil {
		return Option{}, err
	}
	return o, nil
}

func (s *SQLStore) FindOptionByID(ctx context.Context, id int64) (Option, error) {
	o, err := scanOption(s.q.QueryRowContext(ctx, `SELECT `+optionCols+` FROM options WHERE id=$1`, id))
	if err != nil {
		return Option{}, scanOne(err, "option", id)
	}
	return o, nil
}

func (s *SQLStore) FindOptionsByQuestion(ctx context.Context, questionID int64) ([]Option, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+optionCols+` FROM options WHERE question_id=$1 ORDER BY id`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Option{}
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateOption(ctx context.Context, o Option) (Option, error) {
	err := s.execAffecting(ctx, "option", o.ID, `UPDATE options SET option_text=$1,is_correct=$2,updated_at=$3 WHERE id=$4`,
		o.Text, o.IsCorrect, unix(o.UpdatedAt), o.ID)
	if err != nil {
		return Option{}, err
	}
	return o, nil
}

func (s *SQLStore) DeleteOption(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, "option", id, `DELETE FROM options WHERE id=$1`, id)
}

// ---------- answers ----------

const answerCols = `id,user_id,question_id,selected_option_id,answer_text,is_correct,answered_at`

func scanAnswer(r rowScanner) (UserAnswer, error) {
	var a UserAnswer
	var opt sql.NullInt64
	var text sql.NullString
	var correct sql.NullBool
	var answered int64
	if err := r.Scan(&a.ID, &a.UserID, &a.QuestionID, &opt, &text, &correct, &answered); err != nil {
		return UserAnswer{}, err
	}
	if opt.Valid {
		v := opt.Int64
		a.SelectedOptionID = &v
	}
	if text.Valid {
		v := text.String
		a.AnswerText = &v
	}
	if correct.Valid {
		v := correct.Bool
		a.IsCorrect = &v
	}
	a.AnsweredAt = fromUnix(answered)
	return a, nil
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullBool(p *bool) sql.NullBool {
	if p == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *p, Valid: true}
}

func nullTime(p *time.Time) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: p.Unix(), Valid: true}
}

func (s *SQLStore) FindUserAnswer(ctx context.Context, userID, questionID int64) (UserAnswer, error) {
	a, err := scanAnswer(s.q.QueryRowContext(ctx, `SELECT `+answerCols+` FROM user_answers WHERE user_id=$1 AND question_id=$2`, userID, questionID))
	if err != nil {
		return UserAnswer{}, scanOne(err, "answer for question", questionID)
	}
	return a, nil
}

func (s *SQLStore) InsertUserAnswer(ctx context.Context, a UserAnswer) (UserAnswer, error) {
	err := s.q.QueryRowContext(ctx, `INSERT INTO user_answers (user_id,question_id,selected_option_id,answer_text,is_correct,answered_at)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		a.UserID, a.QuestionID, nullInt(a.SelectedOptionID), nullString(a.AnswerText), nullBool(a.IsCorrect), unix(a.AnsweredAt)).Scan(&a.ID)
	if err != nil {
		return UserAnswer{}, uniqueOr(err, "question already answered")
	}
	return a, nil
}

func (s *SQLStore) ListUserAnswers(ctx context.Context, userID int64, p Page) ([]UserAnswer, error) {
	limit, offset := offsetClause(p)
	rows, err := s.q.QueryContext(ctx, `SELECT `+answerCols+` FROM user_answers WHERE user_id=$1 ORDER BY answered_at DESC, id DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []UserAnswer{}
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ---------- progress ----------

const progressCols = `id,user_id,lesson_id,is_completed,completed_at,last_accessed_at`

func scanProgress(r rowScanner) (UserProgress, error) {
	var p UserProgress
	var completed sql.NullInt64
	var accessed int64
	if err := r.Scan(&p.ID, &p.UserID, &p.LessonID, &p.IsCompleted, &completed, &accessed); err != nil {
		return UserProgress{}, err
	}
	if completed.Valid {
		t := fromUnix(completed.Int64)
		p.CompletedAt = &t
	}
	p.LastAccessedAt = fromUnix(accessed)
	return p, nil
}

func (s *SQLStore) FindUserProgress(ctx context.Context, userID, lessonID int64) (UserProgress, error) {
	p, err := scanProgress(s.q.QueryRowContext(ctx, `SELECT `+progressCols+` FROM user_progress WHERE user_id=$1 AND lesson_id=$2`, userID, lessonID))
	if err != nil {
		return UserProgress{}, scanOne(err, "progress for lesson", lessonID)
	}
	return p, nil
}

// InsertUserProgress uses ON CONFLICT DO NOTHING: on PostgreSQL a failed
// unique insert would abort the surrounding transaction.
func (s *SQLStore) InsertUserProgress(ctx context.Context, p UserProgress) (UserProgress, bool, error) {
	err := s.q.QueryRowContext(ctx, `INSERT INTO user_progress (user_id,lesson_id,is_completed,completed_at,last_accessed_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id, lesson_id) DO NOTHING
		RETURNING id`,
		p.UserID, p.LessonID, p.IsCompleted, nullTime(p.CompletedAt), unix(p.LastAccessedAt)).Scan(&p.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return UserProgress{}, false, nil
	}
	if err != nil {
		return UserProgress{}, false, err
	}
	return p, true, nil
}

func (s *SQLStore) UpdateUserProgress(ctx context.Context, p UserProgress) (UserProgress, error) {
	err := s.execAffecting(ctx, "progress", p.ID, `UPDATE user_progress SET is_completed=$1,completed_at=$2,last_accessed_at=$3 WHERE id=$4`,
		p.IsCompleted, nullTime(p.CompletedAt), unix(p.LastAccessedAt), p.ID)
	if err != nil {
		return UserProgress{}, err
	}
	return p, nil
}

func (s *SQLStore) ListUserProgress(ctx context.Context, userID int64, p Page) ([]UserProgress, error) {
	limit, offset := offsetClause(p)
	rows, err := s.q.QueryContext(ctx, `SELECT `+progressCols+` FROM user_progress WHERE user_id=$1 ORDER BY lesson_id LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []UserProgress{}
	for rows.Next() {
		pr, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}
