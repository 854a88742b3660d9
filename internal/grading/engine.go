package grading

// Question types understood by the default grader.
const (
	TypeMCQ         = "MCQ"
	TypeTrueFalse   = "TrueFalse"
	TypeShortAnswer = "ShortAnswer"
)

// Verdict is the tri-state outcome of grading one response.
// Ungraded means "not automatically gradable"; it is not the same as Incorrect.
type Verdict int8

const (
	Ungraded Verdict = iota
	Correct
	Incorrect
)

func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "ungraded"
	}
}

// Bool maps the verdict onto a nullable boolean (nil for Ungraded).
func (v Verdict) Bool() *bool {
	switch v {
	case Correct:
		t := true
		return &t
	case Incorrect:
		f := false
		return &f
	default:
		return nil
	}
}

// FromBool is the inverse of Bool.
func FromBool(b bool) Verdict {
	if b {
		return Correct
	}
	return Incorrect
}

// Choice is one selectable option of a question.
type Choice struct {
	ID      int64
	Correct bool
}

// Q is a minimal view of a question needed for grading.
type Q struct {
	ID      int64
	Type    string
	Choices []Choice
}

// Response is what the learner submitted. Both fields are optional.
type Response struct {
	ChoiceID *int64
	Text     *string
}

// Strategy grades a single question type.
type Strategy interface {
	Grade(q Q, r Response) Verdict
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(q Q, r Response) Verdict

func (f StrategyFunc) Grade(q Q, r Response) Verdict { return f(q, r) }

// Grader routes by question type to the correct Strategy.
// Implementations must be pure: same input, same verdict, no side effects.
type Grader interface {
	Grade(q Q, r Response) Verdict
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(q Q, r Response) Verdict {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Ungraded
	}
	return s.Grade(q, r)
}

type Option func(*config)

type config struct {
	overrides map[string]Strategy
}

// WithStrategy installs (or replaces) the strategy for a question type.
func WithStrategy(questionType string, s Strategy) Option {
	return func(c *config) { c.overrides[questionType] = s }
}

// NewDefaultGrader installs built-in strategies. Only MCQ is auto-graded;
// TrueFalse has no reference answer on the question and ShortAnswer needs a human.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{overrides: map[string]Strategy{}}
	for _, o := range opts {
		o(cfg)
	}
	strategies := map[string]Strategy{
		TypeMCQ:         mcqStrategy{},
		TypeTrueFalse:   manualStrategy{},
		TypeShortAnswer: manualStrategy{},
	}
	for typ, s := range cfg.overrides {
		strategies[typ] = s
	}
	return &defaultGrader{strategies: strategies}
}

// --- Strategies ---

type mcqStrategy struct{}

func (mcqStrategy) Grade(q Q, r Response) Verdict {
	if r.ChoiceID == nil {
		return Ungraded
	}
	for _, c := range q.Choices {
		if c.ID == *r.ChoiceID {
			return FromBool(c.Correct)
		}
	}
	// option belongs to another question (or does not exist)
	return Ungraded
}

type manualStrategy struct{}

func (manualStrategy) Grade(Q, Response) Verdict { return Ungraded }
