package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"example.com/capbot/internal/store"
	"example.com/capbot/internal/tg"
)

// sender — поверхность отправки Telegram-клиента, которой пользуются
// обработчики.
type sender interface {
	Self() int64
	Say(chatID int64, text string) error
	SayMarkup(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error)
	Reply(to *tgbotapi.Message, text string) error
	AnswerCallback(callbackID, text string) error
	DeleteMessage(chatID int64, messageID int) error
	BanMember(chatID, userID int64) error
	IsAdmin(chatID, userID int64) (bool, error)
}

type CaptchaBot struct {
	tgc  *tg.Client // жизненный цикл polling-а
	api  sender     // отправка
	repo *store.Repository
	cfg  *configStore
	log  *slog.Logger

	// необязательный приёмник событий активности (ops-фид)
	feed func(store.Activity)

	difficulty string
	maxAge     time.Duration

	mu         sync.Mutex
	challenges map[challengeKey]*challenge

	stopCh chan struct{}
	wg     sync.WaitGroup
	muLife sync.Mutex

	// expiry-watch
	ewMu      sync.Mutex
	ewRunning bool
	ewCancel  context.CancelFunc
	ewEvery   time.Duration
}

func New() *CaptchaBot {
	return &CaptchaBot{
		log:        slog.Default(),
		difficulty: "medium",
		maxAge:     5 * time.Minute,
		challenges: make(map[challengeKey]*challenge),
	}
}

func (bot *CaptchaBot) SetTelegram(c *tg.Client) {
	bot.tgc = c
	bot.api = c
}

func (bot *CaptchaBot) SetStore(repo *store.Repository) { bot.repo = repo }

func (bot *CaptchaBot) SetLogger(log *slog.Logger) { bot.log = log }

// SetDifficulty — уровень сложности капчи (easy/medium/hard по умолчанию,
// набор расширяем через конфиг).
func (bot *CaptchaBot) SetDifficulty(level string) { bot.difficulty = level }

// SetMaxCaptchaAge — сколько ждём прохождения капчи до бана.
func (bot *CaptchaBot) SetMaxCaptchaAge(d time.Duration) {
	if d > 0 {
		bot.maxAge = d
	}
}

// SetActivityFeed — колбэк для живой трансляции журнала (ops-сервер).
func (bot *CaptchaBot) SetActivityFeed(fn func(store.Activity)) { bot.feed = fn }

func (bot *CaptchaBot) Start() error {
	bot.muLife.Lock()
	defer bot.muLife.Unlock()

	if bot.tgc == nil {
		return errors.New("telegram-клиент не инициализирован")
	}
	if bot.repo == nil {
		return errors.New("хранилище не инициализировано")
	}
	if bot.stopCh != nil {
		return errors.New("уже запущен")
	}
	if bot.cfg == nil {
		// без файла — наборы по умолчанию в памяти
		bot.cfg = newConfigStore("")
	}
	bot.stopCh = make(chan struct{})

	bot.tgc.OnNewMembers = func(m *tgbotapi.Message) {
		for i := range m.NewChatMembers {
			bot.handleNewMember(m.Chat.ID, &m.NewChatMembers[i])
		}
	}
	bot.tgc.OnMessage = func(m *tgbotapi.Message) {
		if m.From == nil || m.Chat == nil {
			return
		}
		if m.IsCommand() {
			if err := bot.HandleCommand(m); err != nil {
				bot.log.Error("команда", "cmd", m.Command(), "err", err)
				_ = bot.api.Reply(m, "err: "+err.Error())
			}
			return
		}
		bot.trackActivity(m)
	}
	bot.tgc.OnCallback = bot.handleCallback
	bot.tgc.OnError = func(err error) {
		bot.log.Error("polling", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := bot.tgc.Start(ctx); err != nil {
		cancel()
		bot.stopCh = nil
		return err
	}

	_ = bot.StartExpiryWatch(time.Minute)

	// сторож для остановки
	stopCh := bot.stopCh
	bot.wg.Add(1)
	go func() {
		defer bot.wg.Done()
		<-stopCh
		bot.StopExpiryWatch()
		cancel()
		bot.tgc.Stop()
	}()

	bot.log.Info("бот запущен", "difficulty", bot.difficulty, "max_captcha_age", bot.maxAge)
	return nil
}

func (bot *CaptchaBot) Stop() {
	bot.muLife.Lock()
	ch := bot.stopCh
	bot.stopCh = nil
	bot.muLife.Unlock()

	if ch != nil {
		close(ch) // повторный Stop() ничего не делает
		bot.wg.Wait()
	}
}

func (bot *CaptchaBot) trackActivity(m *tgbotapi.Message) {
	if err := bot.repo.TrackActivity(m.From.ID, m.Chat.ID); err != nil {
		bot.log.Error("трекинг активности", "user", m.From.ID, "err", err)
		return
	}
	bot.publish(m.From.ID, m.Chat.ID, "message_sent")
}

func (bot *CaptchaBot) publish(userID, chatID int64, action string) {
	if bot.feed == nil {
		return
	}
	bot.feed(store.Activity{
		UserID:    userID,
		ChatID:    chatID,
		Action:    action,
		Timestamp: time.Now().UTC(),
	})
}
