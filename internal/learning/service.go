package learning

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/learnpath/internal/grading"
)

// Service holds the learning workflows. It is safe for concurrent use;
// all state lives in the Store.
type Service struct {
	store      Store
	grader     grading.Grader
	now        func() time.Time
	bcryptCost int
}

type ServiceOption func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func WithGrader(g grading.Grader) ServiceOption {
	return func(s *Service) { s.grader = g }
}

func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) { s.bcryptCost = cost }
}

func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:      store,
		grader:     grading.NewDefaultGrader(),
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// clock returns the current time at the precision the store keeps.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}
