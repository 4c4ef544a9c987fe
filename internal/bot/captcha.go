package bot

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"example.com/capbot/internal/store"
)

const callbackPrefix = "captcha:"

type challengeKey struct {
	chatID int64
	userID int64
}

type challenge struct {
	id        string // uuid, попадает в callback data
	object    string
	correct   string
	chatID    int64
	userID    int64
	messageID int
	issuedAt  time.Time
}

func (bot *CaptchaBot) handleNewMember(chatID int64, user *tgbotapi.User) {
	if user.ID == bot.api.Self() {
		bot.log.Info("бот добавлен в чат", "chat", chatID)
		return
	}

	status, err := bot.repo.UserStatus(user.ID, chatID)
	if err != nil {
		bot.log.Error("проверка статуса", "user", user.ID, "err", err)
		_ = bot.api.Say(chatID, fmt.Sprintf("❌ Ошибка при проверке пользователя %s", user.FirstName))
		return
	}
	bot.log.Info("новый участник", "user", user.ID, "chat", chatID, "status", status)

	if status == store.StatusVerified {
		_ = bot.api.Say(chatID, fmt.Sprintf("👋 %s, добро пожаловать обратно!", user.FirstName))
		return
	}

	username := user.UserName
	if username == "" {
		username = fmt.Sprintf("%d", user.ID)
	}
	if err := bot.repo.AddUser(user.ID, chatID, username); err != nil {
		bot.log.Error("добавление пользователя", "user", user.ID, "err", err)
		return
	}
	bot.publish(user.ID, chatID, "user_joined")

	bot.issueChallenge(chatID, user)
}

func (bot *CaptchaBot) issueChallenge(chatID int64, user *tgbotapi.User) {
	ch, options := bot.newChallenge(chatID, user.ID)

	text := fmt.Sprintf("%s, для входа в группу выберите %s!", user.FirstName, ch.object)
	msgID, err := bot.api.SayMarkup(chatID, text, captchaKeyboard(ch.id, options))
	if err != nil {
		bot.log.Error("отправка капчи", "user", user.ID, "err", err)
		return
	}
	ch.messageID = msgID
	ch.issuedAt = time.Now()

	key := challengeKey{chatID: chatID, userID: user.ID}
	bot.mu.Lock()
	old := bot.challenges[key]
	bot.challenges[key] = ch
	bot.mu.Unlock()

	// повторное вступление: старую капчу убираем, действует новая
	if old != nil {
		if err := bot.api.DeleteMessage(old.chatID, old.messageID); err != nil {
			bot.log.Debug("удаление старой капчи", "err", err)
		}
	}
}

// newChallenge выбирает объект и собирает варианты: свои эмодзи набора
// плюс обманки из чужих, всего по таблице сложности.
func (bot *CaptchaBot) newChallenge(chatID, userID int64) (*challenge, []string) {
	set, diff := bot.cfg.pick(bot.difficulty)

	correct := set.Emojis[0]
	seen := map[string]bool{correct: true}
	options := []string{correct}

	for _, e := range set.Emojis[1:] {
		if len(options) >= diff.Options {
			break
		}
		if !seen[e] {
			seen[e] = true
			options = append(options, e)
		}
	}
	if len(options) < diff.Options {
		decoys := bot.cfg.decoys(set.Object)
		rand.Shuffle(len(decoys), func(i, j int) { decoys[i], decoys[j] = decoys[j], decoys[i] })
		for _, e := range decoys {
			if len(options) >= diff.Options {
				break
			}
			if !seen[e] {
				seen[e] = true
				options = append(options, e)
			}
		}
	}
	rand.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	return &challenge{
		id:      uuid.NewString(),
		object:  set.Object,
		correct: correct,
		chatID:  chatID,
		userID:  userID,
	}, options
}

// клавиатура по три кнопки в ряд
func captchaKeyboard(id string, options []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, e := range options {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(e, callbackPrefix+id+":"+e))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func parseCaptchaCallback(data string) (id, emoji string, ok bool) {
	rest, found := strings.CutPrefix(data, callbackPrefix)
	if !found {
		return "", "", false
	}
	id, emoji, found = strings.Cut(rest, ":")
	if !found || id == "" || emoji == "" {
		return "", "", false
	}
	return id, emoji, true
}

func (bot *CaptchaBot) handleCallback(cq *tgbotapi.CallbackQuery) {
	id, emoji, ok := parseCaptchaCallback(cq.Data)
	if !ok || cq.Message == nil || cq.From == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	key := challengeKey{chatID: chatID, userID: cq.From.ID}

	bot.mu.Lock()
	ch := bot.challenges[key]
	foreign := false
	if ch == nil || ch.id != id {
		ch = nil
		for _, other := range bot.challenges {
			if other.id == id {
				foreign = true
				break
			}
		}
	}
	bot.mu.Unlock()

	if ch == nil {
		if foreign {
			// чужую капчу за владельца нажать нельзя
			_ = bot.api.AnswerCallback(cq.ID, "Это не ваша капча")
		} else {
			_ = bot.api.AnswerCallback(cq.ID, "")
		}
		return
	}

	if emoji != ch.correct {
		_ = bot.api.AnswerCallback(cq.ID, fmt.Sprintf("Это не %s!", ch.object))
		return
	}

	bot.mu.Lock()
	delete(bot.challenges, key)
	bot.mu.Unlock()

	if err := bot.api.DeleteMessage(ch.chatID, ch.messageID); err != nil {
		bot.log.Debug("удаление капчи", "err", err)
	}
	if err := bot.repo.SetCaptchaStatus(ch.userID, ch.chatID, store.CaptchaCompleted); err != nil {
		bot.log.Error("статус капчи", "user", ch.userID, "err", err)
	}
	_ = bot.api.AnswerCallback(cq.ID, "")
	_ = bot.api.Say(chatID, fmt.Sprintf("✅ %s прошел проверку!", cq.From.FirstName))
	bot.publish(ch.userID, chatID, "captcha_completed")
	bot.log.Info("капча пройдена", "user", ch.userID, "chat", chatID)
}
