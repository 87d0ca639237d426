// Package postgres implements app.Store on a pgx connection pool.
// Read-modify-write sequences run inside transactions with the touched user
// row locked, so concurrent operations on the same entity serialize in the
// database rather than in process.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"answerhub-service/internal/app"
	"answerhub-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// DefaultTimeout bounds every store call; exceeding it surfaces as
// domain.ErrStoreUnavailable so callers can retry.
const DefaultTimeout = 5 * time.Second

type Store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewStore(pool *pgxpool.Pool, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{pool: pool, timeout: timeout}
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var user domain.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, points, daily_answer_count, last_answer_date, is_admin FROM users WHERE id=$1`, id,
	).Scan(&user.ID, &user.Email, &user.Points, &user.DailyAnswerCount, &user.LastAnswerDate, &user.IsAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, s.wrap("get user", err)
	}
	return user, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, points, daily_answer_count, last_answer_date, is_admin)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		user.ID, user.Email, user.Points, user.DailyAnswerCount, user.LastAnswerDate, user.IsAdmin)
	if err != nil {
		return s.wrap("create user", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, email, points, daily_answer_count, last_answer_date, is_admin FROM users ORDER BY email`)
	if err != nil {
		return nil, s.wrap("list users", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Points, &user.DailyAnswerCount, &user.LastAnswerDate, &user.IsAdmin); err != nil {
			return nil, s.wrap("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("list users", err)
	}
	return users, nil
}

func (s *Store) SetAdmin(ctx context.Context, userID string, admin bool) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `UPDATE users SET is_admin=$2 WHERE id=$1`, userID, admin)
	if err != nil {
		return s.wrap("set admin", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) GetPrompt(ctx context.Context, id string) (domain.Prompt, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var prompt domain.Prompt
	err := s.pool.QueryRow(ctx,
		`SELECT id, text, topic, is_answered FROM prompts WHERE id=$1`, id,
	).Scan(&prompt.ID, &prompt.Text, &prompt.Topic, &prompt.IsAnswered)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Prompt{}, domain.ErrPromptNotFound
	}
	if err != nil {
		return domain.Prompt{}, s.wrap("get prompt", err)
	}
	return prompt, nil
}

func (s *Store) CreatePrompt(ctx context.Context, prompt domain.Prompt) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO prompts (id, text, topic, is_answered) VALUES ($1, $2, $3, $4)`,
		prompt.ID, prompt.Text, prompt.Topic, prompt.IsAnswered)
	if err != nil {
		return s.wrap("create prompt", err)
	}
	return nil
}

func (s *Store) FirstOpenPrompt(ctx context.Context) (domain.Prompt, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var prompt domain.Prompt
	err := s.pool.QueryRow(ctx,
		`SELECT id, text, topic, is_answered FROM prompts WHERE is_answered=FALSE LIMIT 1`,
	).Scan(&prompt.ID, &prompt.Text, &prompt.Topic, &prompt.IsAnswered)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Prompt{}, domain.ErrPromptNotFound
	}
	if err != nil {
		return domain.Prompt{}, s.wrap("first open prompt", err)
	}
	return prompt, nil
}

func (s *Store) GetAnswer(ctx context.Context, id string) (domain.SubmittedAnswer, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var answer domain.SubmittedAnswer
	err := s.pool.QueryRow(ctx,
		`SELECT id, text, prompt_id, user_id, is_good_answer, created_at FROM answers WHERE id=$1`, id,
	).Scan(&answer.ID, &answer.Text, &answer.PromptID, &answer.UserID, &answer.IsGoodAnswer, &answer.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SubmittedAnswer{}, domain.ErrAnswerNotFound
	}
	if err != nil {
		return domain.SubmittedAnswer{}, s.wrap("get answer", err)
	}
	return answer, nil
}

func (s *Store) ListAnswers(ctx context.Context) ([]domain.SubmittedAnswer, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, text, prompt_id, user_id, is_good_answer, created_at FROM answers ORDER BY created_at`)
	if err != nil {
		return nil, s.wrap("list answers", err)
	}
	defer rows.Close()

	var answers []domain.SubmittedAnswer
	for rows.Next() {
		var answer domain.SubmittedAnswer
		if err := rows.Scan(&answer.ID, &answer.Text, &answer.PromptID, &answer.UserID, &answer.IsGoodAnswer, &answer.CreatedAt); err != nil {
			return nil, s.wrap("scan answer", err)
		}
		answers = append(answers, answer)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("list answers", err)
	}
	return answers, nil
}

func (s *Store) AnswerTexts(ctx context.Context, promptID string) ([]string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT text FROM answers WHERE prompt_id=$1`, promptID)
	if err != nil {
		return nil, s.wrap("answer texts", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, s.wrap("scan answer text", err)
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("answer texts", err)
	}
	return texts, nil
}

func (s *Store) DatasetEntries(ctx context.Context) ([]domain.DatasetEntry, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT p.text, a.text
		 FROM answers a JOIN prompts p ON p.id = a.prompt_id
		 WHERE a.is_good_answer=TRUE
		 ORDER BY a.created_at`)
	if err != nil {
		return nil, s.wrap("dataset entries", err)
	}
	defer rows.Close()

	var entries []domain.DatasetEntry
	for rows.Next() {
		var entry domain.DatasetEntry
		if err := rows.Scan(&entry.Instruction, &entry.Output); err != nil {
			return nil, s.wrap("scan dataset entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("dataset entries", err)
	}
	return entries, nil
}

func (s *Store) PointTransactions(ctx context.Context, userID string) ([]domain.PointTransaction, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, amount, reason, created_at FROM point_transactions WHERE user_id=$1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, s.wrap("point transactions", err)
	}
	defer rows.Close()

	var transactions []domain.PointTransaction
	for rows.Next() {
		var tx domain.PointTransaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Reason, &tx.Timestamp); err != nil {
			return nil, s.wrap("scan point transaction", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("point transactions", err)
	}
	return transactions, nil
}

// CommitSubmission applies every mutation of an accepted submission in one
// database transaction. The user row is locked first so a concurrent
// submission by the same user serializes behind this one, and the quota and
// duplicate decisions are re-taken from the locked state: a caller whose
// earlier reads went stale gets ErrQuotaExceeded or ErrDuplicateAnswer here
// instead of overshooting the cap.
func (s *Store) CommitSubmission(ctx context.Context, record app.SubmissionRecord) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return s.wrap("begin", err)
	}
	defer tx.Rollback(ctx)

	var (
		dailyCount int
		lastAnswer *time.Time
	)
	err = tx.QueryRow(ctx,
		`SELECT daily_answer_count, last_answer_date FROM users WHERE id=$1 FOR UPDATE`,
		record.Answer.UserID).Scan(&dailyCount, &lastAnswer)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return s.wrap("lock user", err)
	}

	quota := app.EvaluateQuota(lastAnswer, dailyCount, record.DailyCap, record.AnswerDate)
	if !quota.Allowed {
		return domain.ErrQuotaExceeded
	}

	var promptID string
	err = tx.QueryRow(ctx, `SELECT id FROM prompts WHERE id=$1 FOR UPDATE`, record.Answer.PromptID).Scan(&promptID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrPromptNotFound
	}
	if err != nil {
		return s.wrap("lock prompt", err)
	}

	rows, err := tx.Query(ctx, `SELECT text FROM answers WHERE prompt_id=$1`, record.Answer.PromptID)
	if err != nil {
		return s.wrap("answer texts", err)
	}
	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			rows.Close()
			return s.wrap("scan answer text", err)
		}
		texts = append(texts, text)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return s.wrap("answer texts", err)
	}
	if !record.Guard.Check(record.Answer.Text, texts) {
		return domain.ErrDuplicateAnswer
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO answers (id, text, prompt_id, user_id, is_good_answer, created_at)
		 VALUES ($1, $2, $3, $4, FALSE, $5)`,
		record.Answer.ID, record.Answer.Text, record.Answer.PromptID, record.Answer.UserID, record.Answer.CreatedAt); err != nil {
		return s.wrap("insert answer", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET daily_answer_count=$2, last_answer_date=$3, points=points+$4 WHERE id=$1`,
		record.Answer.UserID, quota.NextCount, record.AnswerDate, record.Award.Amount); err != nil {
		return s.wrap("update user", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO point_transactions (id, user_id, amount, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		record.Award.ID, record.Award.UserID, record.Award.Amount, string(record.Award.Reason), record.Award.Timestamp); err != nil {
		return s.wrap("insert point transaction", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE prompts SET is_answered=TRUE WHERE id=$1`, record.Answer.PromptID); err != nil {
		return s.wrap("close prompt", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return s.wrap("commit submission", err)
	}
	return nil
}

// MarkGoodAnswer flips the validated flag and appends the award in one
// transaction. The guarded UPDATE makes concurrent validations award at
// most once.
func (s *Store) MarkGoodAnswer(ctx context.Context, answerID string, award domain.PointTransaction) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, s.wrap("begin", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE answers SET is_good_answer=TRUE WHERE id=$1 AND is_good_answer=FALSE`, answerID)
	if err != nil {
		return false, s.wrap("flip answer", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM answers WHERE id=$1)`, answerID).Scan(&exists); err != nil {
			return false, s.wrap("check answer", err)
		}
		if !exists {
			return false, domain.ErrAnswerNotFound
		}
		return false, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET points=points+$2 WHERE id=$1`, award.UserID, award.Amount); err != nil {
		return false, s.wrap("award points", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO point_transactions (id, user_id, amount, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		award.ID, award.UserID, award.Amount, string(award.Reason), award.Timestamp); err != nil {
		return false, s.wrap("insert point transaction", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, s.wrap("commit validation", err)
	}
	return true, nil
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) wrap(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
