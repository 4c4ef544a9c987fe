package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"example.com/capbot/internal/store"
)

func (bot *CaptchaBot) HandleCommand(msg *tgbotapi.Message) error {
	switch strings.ToLower(msg.Command()) {

	case "help":
		return bot.api.Reply(msg, strings.Join([]string{
			"/help",
			"/stats",
			"/remove_captcha — реплаем или /remove_captcha <id> (только админы)",
		}, "\n"))

	case "stats":
		s, err := bot.repo.ChatStats(msg.Chat.ID)
		if err != nil {
			return err
		}
		return bot.api.Reply(msg, fmt.Sprintf(
			"Пользователей: %d | Верифицировано: %d | Сообщений: %d",
			s.Users, s.Verified, s.Messages))

	// ---------- принудительное снятие капчи ----------
	case "remove_captcha":
		admin, err := bot.api.IsAdmin(msg.Chat.ID, msg.From.ID)
		if err != nil {
			return err
		}
		if !admin {
			return bot.api.Reply(msg, "У вас недостаточно прав для этой команды")
		}

		userID, err := targetUser(msg)
		if err != nil {
			return bot.api.Reply(msg, err.Error())
		}

		bot.removeCaptcha(msg.Chat.ID, userID)
		return bot.api.Reply(msg, fmt.Sprintf(
			"Капча для пользователя %d принудительно снята администратором.", userID))

	default:
		// неизвестные команды считаем обычной активностью
		bot.trackActivity(msg)
		return nil
	}
}

// targetUser — кому снимаем капчу: реплай либо числовой ID аргументом.
func targetUser(msg *tgbotapi.Message) (int64, error) {
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		return msg.ReplyToMessage.From.ID, nil
	}
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		return 0, errors.New("Используйте реплай или укажите ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, errors.New("Некорректный ID пользователя")
	}
	return id, nil
}

func (bot *CaptchaBot) removeCaptcha(chatID, userID int64) {
	key := challengeKey{chatID: chatID, userID: userID}

	bot.mu.Lock()
	ch := bot.challenges[key]
	delete(bot.challenges, key)
	bot.mu.Unlock()

	if ch != nil {
		if err := bot.api.DeleteMessage(ch.chatID, ch.messageID); err != nil {
			bot.log.Debug("удаление капчи", "err", err)
		}
	}
	if err := bot.repo.SetCaptchaStatus(userID, chatID, store.CaptchaCompleted); err != nil {
		bot.log.Error("статус капчи", "user", userID, "err", err)
	}
	bot.publish(userID, chatID, "captcha_completed")
}
