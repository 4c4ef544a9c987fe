package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Статус пользователя в конкретном чате.
type UserStatus string

const (
	StatusNew         UserStatus = "new"
	StatusNotVerified UserStatus = "not_verified"
	StatusVerified    UserStatus = "verified"
)

// Статусы прохождения капчи, попадают в activity_log как captcha_<status>.
const (
	CaptchaCompleted = "completed"
	CaptchaFailed    = "failed"
)

type User struct {
	UserID        int64          `db:"user_id"`
	ChatID        int64          `db:"chat_id"`
	Username      sql.NullString `db:"username"`
	JoinDate      time.Time      `db:"join_date"`
	LastActivity  time.Time      `db:"last_activity"`
	CaptchaPassed int            `db:"captcha_passed"`
	MessageCount  int            `db:"message_count"`
}

// UserStatus возвращает статус пользователя в чате: новый, не прошёл
// капчу или уже верифицирован.
func (repo *Repository) UserStatus(userID, chatID int64) (UserStatus, error) {
	var passed int
	err := repo.dbConn.Get(&passed,
		`SELECT captcha_passed FROM users WHERE user_id = ? AND chat_id = ?`,
		userID, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return StatusNew, nil
	}
	if err != nil {
		return "", fmt.Errorf("checking user %d status: %w", userID, err)
	}
	if passed == 0 {
		return StatusNotVerified, nil
	}
	return StatusVerified, nil
}

// AddUser регистрирует вступившего пользователя. Повторное вступление
// перезаписывает запись и сбрасывает флаг капчи.
func (repo *Repository) AddUser(userID, chatID int64, username string) error {
	now := time.Now().UTC()
	return repo.inTx(func(tx txExecer) error {
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO users
			(user_id, chat_id, username, join_date, last_activity, captcha_passed, message_count)
			VALUES (?, ?, ?, ?, ?, 0, 0)`,
			userID, chatID, username, now, now); err != nil {
			return fmt.Errorf("adding user %d: %w", userID, err)
		}
		return logActivity(tx, userID, chatID, "user_joined", now)
	})
}

// TrackActivity фиксирует сообщение пользователя: last_activity и счётчик.
func (repo *Repository) TrackActivity(userID, chatID int64) error {
	now := time.Now().UTC()
	return repo.inTx(func(tx txExecer) error {
		if _, err := tx.Exec(`
			UPDATE users
			SET last_activity = ?, message_count = message_count + 1
			WHERE user_id = ? AND chat_id = ?`,
			now, userID, chatID); err != nil {
			return fmt.Errorf("tracking activity of %d: %w", userID, err)
		}
		return logActivity(tx, userID, chatID, "message_sent", now)
	})
}

// SetCaptchaStatus выставляет флаг капчи: completed => прошёл, всё
// остальное => не прошёл.
func (repo *Repository) SetCaptchaStatus(userID, chatID int64, status string) error {
	passed := 0
	if status == CaptchaCompleted {
		passed = 1
	}
	now := time.Now().UTC()
	return repo.inTx(func(tx txExecer) error {
		if _, err := tx.Exec(`
			UPDATE users SET captcha_passed = ?
			WHERE user_id = ? AND chat_id = ?`,
			passed, userID, chatID); err != nil {
			return fmt.Errorf("updating captcha status of %d: %w", userID, err)
		}
		return logActivity(tx, userID, chatID, "captcha_"+status, now)
	})
}

// GetUser — запись пользователя как есть (nil, если нет).
func (repo *Repository) GetUser(userID, chatID int64) (*User, error) {
	var u User
	err := repo.dbConn.Get(&u,
		`SELECT * FROM users WHERE user_id = ? AND chat_id = ?`, userID, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", userID, err)
	}
	return &u, nil
}

type txExecer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func logActivity(tx txExecer, userID, chatID int64, action string, at time.Time) error {
	if _, err := tx.Exec(`
		INSERT INTO activity_log (user_id, chat_id, action, timestamp)
		VALUES (?, ?, ?, ?)`,
		userID, chatID, action, at); err != nil {
		return fmt.Errorf("logging activity %q: %w", action, err)
	}
	return nil
}

// запись пользователя и строка журнала идут одной транзакцией
func (repo *Repository) inTx(fn func(tx txExecer) error) error {
	tx, err := repo.dbConn.Begin()
	if err != nil {
		return fmt.Errorf("starting tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
