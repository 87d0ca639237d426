package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"answerhub-service/internal/domain"
	"answerhub-service/internal/similarity"
	"github.com/google/uuid"
)

// Store abstracts durable storage for the engine (in-memory, Postgres, etc).
// Implementations must make the commit operations atomic: either every
// mutation in the commit lands or none of them do.
type Store interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
	CreateUser(ctx context.Context, user domain.User) error
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetAdmin(ctx context.Context, userID string, admin bool) error

	GetPrompt(ctx context.Context, id string) (domain.Prompt, error)
	CreatePrompt(ctx context.Context, prompt domain.Prompt) error
	FirstOpenPrompt(ctx context.Context) (domain.Prompt, error)

	GetAnswer(ctx context.Context, id string) (domain.SubmittedAnswer, error)
	ListAnswers(ctx context.Context) ([]domain.SubmittedAnswer, error)
	AnswerTexts(ctx context.Context, promptID string) ([]string, error)
	DatasetEntries(ctx context.Context) ([]domain.DatasetEntry, error)

	PointTransactions(ctx context.Context, userID string) ([]domain.PointTransaction, error)

	// CommitSubmission persists the answer, applies the quota side effect to
	// the user, appends the ledger entry (incrementing the cached points
	// total) and closes the prompt, all in one unit of work. The caller's
	// quota and duplicate checks are only a fast path: implementations
	// re-evaluate both from current state inside the same unit of work and
	// return ErrQuotaExceeded or ErrDuplicateAnswer when a concurrent commit
	// got there first.
	CommitSubmission(ctx context.Context, record SubmissionRecord) error

	// MarkGoodAnswer flips the answer's validated flag and appends the award
	// atomically. It reports false without awarding when the answer was
	// already validated, so concurrent validations award at most once.
	MarkGoodAnswer(ctx context.Context, answerID string, award domain.PointTransaction) (bool, error)
}

// SubmissionRecord carries every mutation of one accepted submission. The
// daily count is not precomputed: stores derive it with EvaluateQuota while
// holding the user, and run Guard against the prompt's answers while holding
// the prompt, so same-entity commits serialize on current state.
type SubmissionRecord struct {
	Answer     domain.SubmittedAnswer
	DailyCap   int
	AnswerDate time.Time
	Guard      DuplicateGuard
	Award      domain.PointTransaction
}

// OpenPromptSource serves the next open prompt, possibly through a cache.
type OpenPromptSource interface {
	FirstOpenPrompt(ctx context.Context) (domain.Prompt, error)
	// Forget drops any cached prompt so the next lookup hits the store.
	Forget(ctx context.Context)
}

// Options tune the engine. Zero values fall back to the defaults from the
// original system: cap 5, threshold 0.8, 10 points per award.
type Options struct {
	DailyCap            int
	SimilarityThreshold float64
	SubmissionPoints    int
	ValidationPoints    int
	RejectClosedPrompts bool
	SeedTopic           string
	Clock               func() time.Time
}

// Service coordinates answer submission, admin validation and the
// supporting read operations.
type Service struct {
	store        Store
	prompts      OpenPromptSource
	generator    PromptGenerator
	guard        DuplicateGuard
	feed         *Feed
	now          func() time.Time
	dailyCap     int
	submitPts    int
	goodPts      int
	rejectClosed bool
	seedTopic    string
}

func NewService(store Store, generator PromptGenerator, opts Options) *Service {
	if opts.DailyCap <= 0 {
		opts.DailyCap = DefaultDailyCap
	}
	if opts.SubmissionPoints <= 0 {
		opts.SubmissionPoints = 10
	}
	if opts.ValidationPoints <= 0 {
		opts.ValidationPoints = 10
	}
	if opts.SeedTopic == "" {
		opts.SeedTopic = DefaultSeedTopic
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{
		store:        store,
		prompts:      storePromptSource{store},
		generator:    generator,
		guard:        NewDuplicateGuard(similarity.Score, opts.SimilarityThreshold),
		feed:         NewFeed(),
		now:          opts.Clock,
		dailyCap:     opts.DailyCap,
		submitPts:    opts.SubmissionPoints,
		goodPts:      opts.ValidationPoints,
		rejectClosed: opts.RejectClosedPrompts,
		seedTopic:    opts.SeedTopic,
	}
}

// UseOpenPromptCache routes NextOpenPrompt lookups through the given cache.
func (s *Service) UseOpenPromptCache(source OpenPromptSource) {
	s.prompts = source
}

// Feed exposes the engine's event feed for transports to subscribe to.
func (s *Service) Feed() *Feed {
	return s.feed
}

// SubmitAnswer runs the full submission pipeline for one candidate answer.
// The first failing check wins; nothing is persisted on rejection. The
// quota and duplicate checks here reject early without opening a store
// transaction; the store repeats them inside CommitSubmission, so a
// concurrent submission racing past these reads still cannot overshoot the
// cap or land a near-duplicate.
func (s *Service) SubmitAnswer(ctx context.Context, userID, promptID, text string) (domain.SubmittedAnswer, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return domain.SubmittedAnswer{}, err
	}

	if strings.TrimSpace(text) == "" {
		return domain.SubmittedAnswer{}, domain.ErrInvalidInput
	}

	now := s.now()
	quota := EvaluateQuota(user.LastAnswerDate, user.DailyAnswerCount, s.dailyCap, now)
	if !quota.Allowed {
		return domain.SubmittedAnswer{}, domain.ErrQuotaExceeded
	}

	prompt, err := s.store.GetPrompt(ctx, promptID)
	if err != nil {
		return domain.SubmittedAnswer{}, err
	}
	if s.rejectClosed && prompt.IsAnswered {
		return domain.SubmittedAnswer{}, domain.ErrPromptClosed
	}

	existing, err := s.store.AnswerTexts(ctx, promptID)
	if err != nil {
		return domain.SubmittedAnswer{}, err
	}
	if !s.guard.Check(text, existing) {
		return domain.SubmittedAnswer{}, domain.ErrDuplicateAnswer
	}

	answer := domain.SubmittedAnswer{
		ID:        uuid.NewString(),
		Text:      text,
		PromptID:  prompt.ID,
		UserID:    user.ID,
		CreatedAt: now,
	}
	record := SubmissionRecord{
		Answer:     answer,
		DailyCap:   s.dailyCap,
		AnswerDate: now,
		Guard:      s.guard,
		Award: domain.PointTransaction{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Amount:    s.submitPts,
			Reason:    domain.ReasonAnswerSubmission,
			Timestamp: now,
		},
	}
	if err := s.store.CommitSubmission(ctx, record); err != nil {
		return domain.SubmittedAnswer{}, err
	}

	// The prompt just closed; a cached copy would serve a dead prompt.
	s.prompts.Forget(ctx)

	s.feed.Publish(Event{
		Kind:     EventAnswerSubmitted,
		AnswerID: answer.ID,
		PromptID: prompt.ID,
		UserID:   user.ID,
		Awarded:  s.submitPts,
		At:       now,
	})
	return answer, nil
}

// ValidateAnswer promotes an answer to validated and awards the bonus.
// Re-validating an already validated answer is a no-op success.
func (s *Service) ValidateAnswer(ctx context.Context, answerID string) error {
	answer, err := s.store.GetAnswer(ctx, answerID)
	if err != nil {
		return err
	}
	if answer.IsGoodAnswer {
		return nil
	}

	now := s.now()
	award := domain.PointTransaction{
		ID:        uuid.NewString(),
		UserID:    answer.UserID,
		Amount:    s.goodPts,
		Reason:    domain.ReasonGoodAnswer,
		Timestamp: now,
	}
	flipped, err := s.store.MarkGoodAnswer(ctx, answerID, award)
	if err != nil {
		return err
	}
	if flipped {
		s.feed.Publish(Event{
			Kind:     EventAnswerValidated,
			AnswerID: answer.ID,
			PromptID: answer.PromptID,
			UserID:   answer.UserID,
			Awarded:  s.goodPts,
			At:       now,
		})
	}
	return nil
}

// NextOpenPrompt returns an open prompt, seeding one from the generator when
// the pool has none. An empty pool is not an error.
func (s *Service) NextOpenPrompt(ctx context.Context) (domain.Prompt, error) {
	prompt, err := s.prompts.FirstOpenPrompt(ctx)
	if err == nil {
		return prompt, nil
	}
	if !errors.Is(err, domain.ErrPromptNotFound) {
		return domain.Prompt{}, err
	}

	text, err := s.generator.Generate(ctx, s.seedTopic)
	if err != nil {
		return domain.Prompt{}, err
	}
	prompt = domain.Prompt{
		ID:    uuid.NewString(),
		Text:  text,
		Topic: s.seedTopic,
	}
	if err := s.store.CreatePrompt(ctx, prompt); err != nil {
		return domain.Prompt{}, err
	}
	return prompt, nil
}

// UserStanding reports a user's points and effective daily count. A count
// recorded on a previous day reads as zero.
func (s *Service) UserStanding(ctx context.Context, userID string) (domain.UserStanding, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return domain.UserStanding{}, err
	}

	count := user.DailyAnswerCount
	quota := EvaluateQuota(user.LastAnswerDate, user.DailyAnswerCount, s.dailyCap, s.now())
	if quota.NextCount == 1 {
		count = 0
	}
	return domain.UserStanding{
		UserID:           user.ID,
		Email:            user.Email,
		Points:           user.Points,
		DailyAnswerCount: count,
		LastAnswerDate:   user.LastAnswerDate,
		IsAdmin:          user.IsAdmin,
	}, nil
}

// ListAnswers returns every answer for admin review.
func (s *Service) ListAnswers(ctx context.Context) ([]domain.SubmittedAnswer, error) {
	return s.store.ListAnswers(ctx)
}

// ListUsers returns every user for admin review.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

// DemoteUser clears a user's admin flag.
func (s *Service) DemoteUser(ctx context.Context, userID string) error {
	return s.store.SetAdmin(ctx, userID, false)
}

// ExportDataset projects validated answers into instruction/output pairs.
func (s *Service) ExportDataset(ctx context.Context) ([]domain.DatasetEntry, error) {
	return s.store.DatasetEntries(ctx)
}

// storePromptSource serves open prompts straight from the store.
type storePromptSource struct {
	store Store
}

func (s storePromptSource) FirstOpenPrompt(ctx context.Context) (domain.Prompt, error) {
	return s.store.FirstOpenPrompt(ctx)
}

func (s storePromptSource) Forget(context.Context) {}
