package store

import (
	"fmt"
	"time"
)

// Activity — строка журнала действий (вступление, сообщение, капча).
type Activity struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ChatID    int64     `db:"chat_id" json:"chat_id"`
	Action    string    `db:"action" json:"action"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// ChatStats — сводка по чату для /stats и ops-сервера.
type ChatStats struct {
	ChatID   int64 `db:"chat_id" json:"chat_id"`
	Users    int   `db:"users" json:"users"`
	Verified int   `db:"verified" json:"verified"`
	Messages int   `db:"messages" json:"messages"`
}

func (repo *Repository) ChatStats(chatID int64) (*ChatStats, error) {
	var s ChatStats
	err := repo.dbConn.Get(&s, `
		SELECT ? AS chat_id,
		       COUNT(*) AS users,
		       COALESCE(SUM(captcha_passed), 0) AS verified,
		       COALESCE(SUM(message_count), 0) AS messages
		FROM users WHERE chat_id = ?`, chatID, chatID)
	if err != nil {
		return nil, fmt.Errorf("chat %d stats: %w", chatID, err)
	}
	return &s, nil
}

// RecentActivity — последние limit записей журнала, свежие первыми.
func (repo *Repository) RecentActivity(limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows := []Activity{}
	err := repo.dbConn.Select(&rows, `
		SELECT id, user_id, chat_id, action, timestamp
		FROM activity_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	return rows, nil
}
