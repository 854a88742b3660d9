package learning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/learnpath/internal/grading"
)

// SubmitAnswer grades and records the user's first and only answer to a
// question. A second submission for the same question fails with ErrConflict
// and leaves the stored answer untouched.
func (s *Service) SubmitAnswer(ctx context.Context, userID, questionID int64, sel Selection) (UserAnswer, error) {
	var out UserAnswer
	err := s.store.WithinTx(ctx, func(st Store) error {
		q, err := st.FindQuestionByID(ctx, questionID)
		if err != nil {
			return err
		}
		if _, err := st.FindUserAnswer(ctx, userID, questionID); err == nil {
			return fmt.Errorf("question %d already answered: %w", questionID, ErrConflict)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		opts, err := st.FindOptionsByQuestion(ctx, questionID)
		if err != nil {
			return err
		}

		verdict := s.grader.Grade(gradingQuestion(q, opts), grading.Response{ChoiceID: sel.OptionID, Text: sel.Text})

		out, err = st.InsertUserAnswer(ctx, UserAnswer{
			UserID:     userID,
			QuestionID: questionID,
			// an option of another question is kept out of the row; the
			// answer is simply ungraded
			SelectedOptionID: ownOption(opts, sel.OptionID),
			AnswerText:       sel.Text,
			IsCorrect:        verdict.Bool(),
			AnsweredAt:       s.clock(),
		})
		return err
	})
	if err != nil {
		return UserAnswer{}, err
	}
	return out, nil
}

func gradingQuestion(q Question, opts []Option) grading.Q {
	gq := grading.Q{ID: q.ID, Type: string(q.Type), Choices: make([]grading.Choice, 0, len(opts))}
	for _, o := range opts {
		gq.Choices = append(gq.Choices, grading.Choice{ID: o.ID, Correct: o.IsCorrect})
	}
	return gq
}

func ownOption(opts []Option, id *int64) *int64 {
	if id == nil {
		return nil
	}
	for _, o := range opts {
		if o.ID == *id {
			v := o.ID
			return &v
		}
	}
	return nil
}

// CanCompleteLesson evaluates the completion gate without changing anything.
func (s *Service) CanCompleteLesson(ctx context.Context, userID, lessonID int64) (GateDecision, error) {
	var d GateDecision
	err := s.store.WithinTx(ctx, func(st Store) error {
		var err error
		d, err = canComplete(ctx, st, userID, lessonID)
		return err
	})
	return d, err
}

// canComplete allows completion when the lesson has no quiz, the quiz has no
// questions, or every question has a graded answer from the user. A graded
// answer counts whether it was correct or not.
func canComplete(ctx context.Context, st Store, userID, lessonID int64) (GateDecision, error) {
	if _, err := st.FindLessonByID(ctx, lessonID); err != nil {
		return GateDecision{}, err
	}
	quiz, err := st.FindQuizByLesson(ctx, lessonID)
	if errors.Is(err, ErrNotFound) {
		return GateDecision{Allowed: true}, nil
	}
	if err != nil {
		return GateDecision{}, err
	}
	questions, err := st.FindQuestionsByQuiz(ctx, quiz.ID)
	if err != nil {
		return GateDecision{}, err
	}

	var pending []int64
	for _, q := range questions {
		a, err := st.FindUserAnswer(ctx, userID, q.ID)
		switch {
		case errors.Is(err, ErrNotFound):
			pending = append(pending, q.ID)
		case err != nil:
			return GateDecision{}, err
		case !a.Graded():
			pending = append(pending, q.ID)
		}
	}
	if len(pending) > 0 {
		return GateDecision{Allowed: false, Reason: ReasonQuizIncomplete, Pending: pending}, nil
	}
	return GateDecision{Allowed: true}, nil
}

// MarkLessonComplete runs the completion gate and, if it passes, records the
// lesson as completed. The gate and the write share one transaction.
func (s *Service) MarkLessonComplete(ctx context.Context, userID, lessonID int64) (UserProgress, error) {
	var out UserProgress
	err := s.store.WithinTx(ctx, func(st Store) error {
		d, err := canComplete(ctx, st, userID, lessonID)
		if err != nil {
			return err
		}
		if !d.Allowed {
			return fmt.Errorf("lesson %d: %s: %w", lessonID, d.Reason, ErrPolicyViolation)
		}
		done := true
		out, err = s.upsert(ctx, st, userID, lessonID, &done)
		return err
	})
	return out, err
}

// MarkLessonIncomplete clears completion for the lesson. It is not gated.
func (s *Service) MarkLessonIncomplete(ctx context.Context, userID, lessonID int64) (UserProgress, error) {
	done := false
	return s.upsertChecked(ctx, userID, lessonID, &done)
}

// TouchLesson records a visit: last_accessed_at moves, completion does not.
func (s *Service) TouchLesson(ctx context.Context, userID, lessonID int64) (UserProgress, error) {
	return s.upsertChecked(ctx, userID, lessonID, nil)
}

// UpsertProgress sets the completion flag for (user, lesson) without
// consulting the gate.
func (s *Service) UpsertProgress(ctx context.Context, userID, lessonID int64, isCompleted bool) (UserProgress, error) {
	return s.upsertChecked(ctx, userID, lessonID, &isCompleted)
}

func (s *Service) upsertChecked(ctx context.Context, userID, lessonID int64, completed *bool) (UserProgress, error) {
	var out UserProgress
	err := s.store.WithinTx(ctx, func(st Store) error {
		if _, err := st.FindLessonByID(ctx, lessonID); err != nil {
			return err
		}
		var err error
		out, err = s.upsert(ctx, st, userID, lessonID, completed)
		return err
	})
	return out, err
}

// upsert creates or updates the single progress row for (user, lesson).
// A nil completed keeps the current completion state.
func (s *Service) upsert(ctx context.Context, st Store, userID, lessonID int64, completed *bool) (UserProgress, error) {
	now := s.clock()
	cur, err := st.FindUserProgress(ctx, userID, lessonID)
	if err == nil {
		return st.UpdateUserProgress(ctx, nextProgress(cur, completed, now))
	}
	if !errors.Is(err, ErrNotFound) {
		return UserProgress{}, err
	}

	rec, inserted, err := st.InsertUserProgress(ctx, nextProgress(UserProgress{UserID: userID, LessonID: lessonID}, completed, now))
	if err != nil {
		return UserProgress{}, err
	}
	if inserted {
		return rec, nil
	}
	// a concurrent request created the row first
	cur, err = st.FindUserProgress(ctx, userID, lessonID)
	if err != nil {
		return UserProgress{}, err
	}
	return st.UpdateUserProgress(ctx, nextProgress(cur, completed, now))
}

// nextProgress applies one ledger transition. completed_at is set on the
// first transition to completed, kept while completed, and cleared when the
// lesson is marked incomplete. last_accessed_at always moves to now.
func nextProgress(cur UserProgress, completed *bool, now time.Time) UserProgress {
	next := cur
	next.LastAccessedAt = now
	if completed == nil {
		return next
	}
	next.IsCompleted = *completed
	switch {
	case !*completed:
		next.CompletedAt = nil
	case cur.CompletedAt == nil:
		t := now
		next.CompletedAt = &t
	}
	return next
}

func (s *Service) ProgressForUser(ctx context.Context, userID int64, p Page) ([]UserProgress, error) {
	return s.store.ListUserProgress(ctx, userID, p)
}

func (s *Service) AnswersForUser(ctx context.Context, userID int64, p Page) ([]UserAnswer, error) {
	return s.store.ListUserAnswers(ctx, userID, p)
}
