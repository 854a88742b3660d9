package learning

import "time"

type QuestionType string

const (
	QuestionMCQ         QuestionType = "MCQ"
	QuestionTrueFalse   QuestionType = "TrueFalse"
	QuestionShortAnswer QuestionType = "ShortAnswer"
)

type ContentType string

const (
	ContentText  ContentType = "text"
	ContentVideo ContentType = "video"
	ContentQuiz  ContentType = "quiz"
	ContentLink  ContentType = "link"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsEducator   bool      `json:"is_educator"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Course struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EducatorID  int64     `json:"educator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Lessons []Lesson `json:"lessons,omitempty"` // filled by Service.GetCourse
}

type Lesson struct {
	ID          int64       `json:"id"`
	CourseID    int64       `json:"course_id"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"content_type"`
	ContentURL  string      `json:"content_url,omitempty"`
	TextContent string      `json:"text_content,omitempty"`
	Position    int         `json:"order"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	Quiz *QuizSummary `json:"quiz,omitempty"` // filled by Service.GetLesson
}

type QuizSummary struct {
	ID       int64  `json:"id"`
	LessonID int64  `json:"lesson_id"`
	Title    string `json:"title"`
}

type Quiz struct {
	ID          int64     `json:"id"`
	LessonID    int64     `json:"lesson_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Questions []Question `json:"questions"`
}

func (q Quiz) Summary() QuizSummary {
	return QuizSummary{ID: q.ID, LessonID: q.LessonID, Title: q.Title}
}

type Question struct {
	ID        int64        `json:"id"`
	QuizID    int64        `json:"quiz_id"`
	Text      string       `json:"question_text"`
	Type      QuestionType `json:"question_type"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	Options []Option `json:"options"`
}

type Option struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"question_id"`
	Text       string    `json:"option_text"`
	IsCorrect  bool      `json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Student-facing projections: same shape, correctness flags stripped.

type PublicOption struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"option_text"`
}

type PublicQuestion struct {
	ID      int64          `json:"id"`
	QuizID  int64          `json:"quiz_id"`
	Text    string         `json:"question_text"`
	Type    QuestionType   `json:"question_type"`
	Options []PublicOption `json:"options"`
}

type PublicQuiz struct {
	ID          int64            `json:"id"`
	LessonID    int64            `json:"lesson_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []PublicQuestion `json:"questions"`
}

// Public strips answer keys before serving the quiz to students.
func (q Quiz) Public() PublicQuiz {
	out := PublicQuiz{
		ID:          q.ID,
		LessonID:    q.LessonID,
		Title:       q.Title,
		Description: q.Description,
		Questions:   make([]PublicQuestion, 0, len(q.Questions)),
	}
	for _, qq := range q.Questions {
		pq := PublicQuestion{
			ID:      qq.ID,
			QuizID:  qq.QuizID,
			Text:    qq.Text,
			Type:    qq.Type,
			Options: make([]PublicOption, 0, len(qq.Options)),
		}
		for _, o := range qq.Options {
			pq.Options = append(pq.Options, PublicOption{ID: o.ID, QuestionID: o.QuestionID, Text: o.Text})
		}
		out.Questions = append(out.Questions, pq)
	}
	return out
}

// UserAnswer is created once per (user, question) and never updated.
// IsCorrect is nil while the answer is ungraded.
type UserAnswer struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	QuestionID       int64     `json:"question_id"`
	SelectedOptionID *int64    `json:"selected_option_id"`
	AnswerText       *string   `json:"user_answer_text"`
	IsCorrect        *bool     `json:"is_correct"`
	AnsweredAt       time.Time `json:"answered_at"`
}

// Graded reports whether grading produced a verdict (true or false).
func (a UserAnswer) Graded() bool { return a.IsCorrect != nil }

// UserProgress is the single completion record for a (user, lesson) pair.
// CompletedAt is nil whenever IsCompleted is false.
type UserProgress struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	LessonID       int64      `json:"lesson_id"`
	IsCompleted    bool       `json:"is_completed"`
	CompletedAt    *time.Time `json:"completed_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
}

// Selection is a learner's submission for one question.
type Selection struct {
	OptionID *int64
	Text     *string
}

// GateDecision is the outcome of the lesson completion check.
type GateDecision struct {
	Allowed bool    `json:"allowed"`
	Reason  string  `json:"reason,omitempty"`
	Pending []int64 `json:"pending_question_ids,omitempty"`
}

// Page bounds list queries.
type Page struct {
	Limit  int
	Offset int
}

const (
	defaultPageLimit = 100
	maxPageLimit     = 200
)

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
