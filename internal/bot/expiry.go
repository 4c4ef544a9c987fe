package bot

import (
	"context"
	"time"

	"example.com/capbot/internal/store"
)

// StartExpiryWatch запускает фоновую проверку просроченных капч.
func (bot *CaptchaBot) StartExpiryWatch(every time.Duration) error {
	bot.ewMu.Lock()
	defer bot.ewMu.Unlock()

	if bot.ewRunning {
		// можно обновить интервал на лету
		bot.ewEvery = every
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	bot.ewCancel = cancel
	bot.ewEvery = every
	bot.ewRunning = true

	go bot.expiryLoop(ctx)
	return nil
}

func (bot *CaptchaBot) StopExpiryWatch() {
	bot.ewMu.Lock()
	defer bot.ewMu.Unlock()
	if !bot.ewRunning {
		return
	}
	bot.ewRunning = false
	if bot.ewCancel != nil {
		bot.ewCancel()
		bot.ewCancel = nil
	}
}

// expiryLoop — живёт, пока не вызовут StopExpiryWatch().
func (bot *CaptchaBot) expiryLoop(ctx context.Context) {
	t := time.NewTicker(bot.ewEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			bot.sweepExpired(time.Now())
		}
	}
}

// takeExpired снимает с учёта все капчи старше maxAge и возвращает их.
func (bot *CaptchaBot) takeExpired(now time.Time) []*challenge {
	bot.mu.Lock()
	defer bot.mu.Unlock()

	var out []*challenge
	for key, ch := range bot.challenges {
		if now.Sub(ch.issuedAt) > bot.maxAge {
			delete(bot.challenges, key)
			out = append(out, ch)
		}
	}
	return out
}

func (bot *CaptchaBot) sweepExpired(now time.Time) {
	for _, ch := range bot.takeExpired(now) {
		if err := bot.api.DeleteMessage(ch.chatID, ch.messageID); err != nil {
			bot.log.Error("удаление просроченной капчи", "user", ch.userID, "err", err)
		}
		if err := bot.api.BanMember(ch.chatID, ch.userID); err != nil {
			bot.log.Error("бан по таймауту капчи", "user", ch.userID, "err", err)
		}
		if err := bot.repo.SetCaptchaStatus(ch.userID, ch.chatID, store.CaptchaFailed); err != nil {
			bot.log.Error("статус капчи", "user", ch.userID, "err", err)
		}
		bot.publish(ch.userID, ch.chatID, "captcha_failed")
		bot.log.Info("капча просрочена, пользователь удалён", "user", ch.userID, "chat", ch.chatID)
	}
}
