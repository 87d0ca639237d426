// Package memory implements app.Store with mutex-guarded maps. It is the
// in-process backend used when no Postgres URL is configured, and the
// workhorse for tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"answerhub-service/internal/app"
	"answerhub-service/internal/domain"
)

// Store keeps all engine state in process. Commit operations apply every
// mutation under a single lock, so the transactional contract holds.
type Store struct {
	mu           sync.RWMutex
	users        map[string]domain.User
	prompts      map[string]domain.Prompt
	promptOrder  []string
	answers      map[string]domain.SubmittedAnswer
	answerOrder  []string
	transactions []domain.PointTransaction
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]domain.User),
		prompts: make(map[string]domain.Prompt),
		answers: make(map[string]domain.SubmittedAnswer),
	}
}

func (s *Store) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (s *Store) SetAdmin(_ context.Context, userID string, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.IsAdmin = admin
	s.users[userID] = user
	return nil
}

func (s *Store) GetPrompt(_ context.Context, id string) (domain.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prompt, ok := s.prompts[id]
	if !ok {
		return domain.Prompt{}, domain.ErrPromptNotFound
	}
	return prompt, nil
}

func (s *Store) CreatePrompt(_ context.Context, prompt domain.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prompts[prompt.ID]; !ok {
		s.promptOrder = append(s.promptOrder, prompt.ID)
	}
	s.prompts[prompt.ID] = prompt
	return nil
}

func (s *Store) FirstOpenPrompt(_ context.Context) (domain.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.promptOrder {
		if prompt := s.prompts[id]; !prompt.IsAnswered {
			return prompt, nil
		}
	}
	return domain.Prompt{}, domain.ErrPromptNotFound
}

func (s *Store) GetAnswer(_ context.Context, id string) (domain.SubmittedAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answer, ok := s.answers[id]
	if !ok {
		return domain.SubmittedAnswer{}, domain.ErrAnswerNotFound
	}
	return answer, nil
}

func (s *Store) ListAnswers(_ context.Context) ([]domain.SubmittedAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answers := make([]domain.SubmittedAnswer, 0, len(s.answerOrder))
	for _, id := range s.answerOrder {
		answers = append(answers, s.answers[id])
	}
	return answers, nil
}

func (s *Store) AnswerTexts(_ context.Context, promptID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var texts []string
	for _, id := range s.answerOrder {
		if answer := s.answers[id]; answer.PromptID == promptID {
			texts = append(texts, answer.Text)
		}
	}
	return texts, nil
}

func (s *Store) DatasetEntries(_ context.Context) ([]domain.DatasetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []domain.DatasetEntry
	for _, id := range s.answerOrder {
		answer := s.answers[id]
		if !answer.IsGoodAnswer {
			continue
		}
		entries = append(entries, domain.DatasetEntry{
			Instruction: s.prompts[answer.PromptID].Text,
			Output:      answer.Text,
		})
	}
	return entries, nil
}

func (s *Store) PointTransactions(_ context.Context, userID string) ([]domain.PointTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var transactions []domain.PointTransaction
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			transactions = append(transactions, tx)
		}
	}
	return transactions, nil
}

func (s *Store) CommitSubmission(_ context.Context, record app.SubmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[record.Answer.UserID]
	if !ok {
		return domain.ErrUserNotFound
	}
	prompt, ok := s.prompts[record.Answer.PromptID]
	if !ok {
		return domain.ErrPromptNotFound
	}

	// Concurrent submissions can race past the caller's reads; the
	// decisions under this lock are the authoritative ones.
	quota := app.EvaluateQuota(user.LastAnswerDate, user.DailyAnswerCount, record.DailyCap, record.AnswerDate)
	if !quota.Allowed {
		return domain.ErrQuotaExceeded
	}
	var texts []string
	for _, id := range s.answerOrder {
		if answer := s.answers[id]; answer.PromptID == record.Answer.PromptID {
			texts = append(texts, answer.Text)
		}
	}
	if !record.Guard.Check(record.Answer.Text, texts) {
		return domain.ErrDuplicateAnswer
	}

	s.answers[record.Answer.ID] = record.Answer
	s.answerOrder = append(s.answerOrder, record.Answer.ID)

	answerDate := record.AnswerDate
	user.DailyAnswerCount = quota.NextCount
	user.LastAnswerDate = &answerDate
	user.Points += record.Award.Amount
	s.users[user.ID] = user

	s.transactions = append(s.transactions, record.Award)

	prompt.IsAnswered = true
	s.prompts[prompt.ID] = prompt
	return nil
}

func (s *Store) MarkGoodAnswer(_ context.Context, answerID string, award domain.PointTransaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer, ok := s.answers[answerID]
	if !ok {
		return false, domain.ErrAnswerNotFound
	}
	if answer.IsGoodAnswer {
		return false, nil
	}
	user, ok := s.users[answer.UserID]
	if !ok {
		return false, domain.ErrUserNotFound
	}

	answer.IsGoodAnswer = true
	s.answers[answerID] = answer

	user.Points += award.Amount
	s.users[user.ID] = user
	s.transactions = append(s.transactions, award)
	return true, nil
}
