package learning

// Patches carry only the fields present in an update request.
// A nil pointer means "leave unchanged".

type CoursePatch struct {
	Title       *string
	Description *string
}

func (p CoursePatch) Apply(c *Course) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
}

type LessonPatch struct {
	Title       *string
	ContentType *ContentType
	ContentURL  *string
	TextContent *string
	Position    *int
}

func (p LessonPatch) Apply(l *Lesson) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.ContentType != nil {
		l.ContentType = *p.ContentType
	}
	if p.ContentURL != nil {
		l.ContentURL = *p.ContentURL
	}
	if p.TextContent != nil {
		l.TextContent = *p.TextContent
	}
	if p.Position != nil {
		l.Position = *p.Position
	}
}

type QuizPatch struct {
	Title       *string
	Description *string
}

func (p QuizPatch) Apply(q *Quiz) {
	if p.Title != nil {
		q.Title = *p.Title
	}
	if p.Description != nil {
		q.Description = *p.Description
	}
}

type QuestionPatch struct {
	Text *string
	Type *QuestionType
}

func (p QuestionPatch) Apply(q *Question) {
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Type != nil {
		q.Type = *p.Type
	}
}

type OptionPatch struct {
	Text      *string
	IsCorrect *bool
}

func (p OptionPatch) Apply(o *Option) {
	if p.Text != nil {
		o.Text = *p.Text
	}
	if p.IsCorrect != nil {
		o.IsCorrect = *p.IsCorrect
	}
}

// UserPatch takes a plaintext Password; the service hashes it.
type UserPatch struct {
	Username   *string
	Email      *string
	Password   *string
	IsActive   *bool
	IsEducator *bool
}

func (p UserPatch) apply(u *User, hash string) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if hash != "" {
		u.PasswordHash = hash
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.IsEducator != nil {
		u.IsEducator = *p.IsEducator
	}
}
