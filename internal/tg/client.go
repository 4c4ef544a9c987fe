package tg

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	pollTimeout = 30 * time.Second
	maxBackoff  = 60 * time.Second
)

type Client struct {
	api *tgbotapi.BotAPI
	log *slog.Logger

	// "События" — назначаются до Start
	OnMessage    func(*tgbotapi.Message)
	OnNewMembers func(*tgbotapi.Message)
	OnCallback   func(*tgbotapi.CallbackQuery)
	OnError      func(error)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(token string, log *slog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{api: api, log: log}, nil
}

// Self — ID самого бота (чтобы не капчить себя при добавлении в группу).
func (c *Client) Self() int64 {
	return c.api.Self.ID
}

func (c *Client) SelfName() string {
	return c.api.Self.UserName
}

// Start запускает цикл long polling. Контекст можно отменить для мягкого
// выхода; Stop делает то же самое.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return errors.New("уже запущен")
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.readLoop(ctx)

	c.log.Info("telegram polling started", "bot", c.api.Self.UserName)
	return nil
}

func (c *Client) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		c.wg.Wait()
	}
}

// readLoop — собственный цикл getUpdates вместо встроенного канала
// библиотеки: так реконнект и backoff под нашим контролем.
func (c *Client) readLoop(ctx context.Context) {
	defer c.wg.Done()

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(pollTimeout / time.Second)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := c.api.GetUpdates(cfg)
		if err != nil {
			if c.OnError != nil {
				c.OnError(err)
			}
			// ошибка сети/АПИ — ждём и пробуем снова
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			}
			continue
		}
		backoff = time.Second

		for i := range updates {
			u := &updates[i]
			if u.UpdateID >= cfg.Offset {
				cfg.Offset = u.UpdateID + 1
			}
			c.dispatch(u)
		}
	}
}

func (c *Client) dispatch(u *tgbotapi.Update) {
	switch {
	case u.CallbackQuery != nil:
		if c.OnCallback != nil {
			c.OnCallback(u.CallbackQuery)
		}
	case u.Message != nil && len(u.Message.NewChatMembers) > 0:
		if c.OnNewMembers != nil {
			c.OnNewMembers(u.Message)
		}
	case u.Message != nil:
		if c.OnMessage != nil {
			c.OnMessage(u.Message)
		}
	}
}
