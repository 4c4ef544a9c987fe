package bot

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
)

// CaptchaSet — один «объект» капчи и эмодзи к нему; первый эмодзи в
// списке — подходящий, остальные — обманки.
type CaptchaSet struct {
	Object string   `json:"object"`
	Emojis []string `json:"emojis"`
}

// Difficulty задаёт количество вариантов на клавиатуре и лимит времени
// в секундах.
type Difficulty struct {
	Options   int `json:"options"`
	TimeLimit int `json:"time_limit"`
}

type CaptchaConfig struct {
	Sets         []CaptchaSet          `json:"sets"`
	Difficulties map[string]Difficulty `json:"difficulties"`
}

type configStore struct {
	mu   sync.Mutex
	path string
	data CaptchaConfig
}

// UseConfig подключает JSON-конфиг наборов капчи: читает файл либо
// создаёт его с наборами по умолчанию.
func (bot *CaptchaBot) UseConfig(path string) error {
	bot.cfg = newConfigStore(path)
	return bot.cfg.Load()
}

func newConfigStore(path string) *configStore {
	return &configStore{path: path, data: defaultCaptchaConfig()}
}

func (cs *configStore) Load() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.path == "" {
		return nil
	}
	_ = os.MkdirAll(filepath.Dir(cs.path), 0o755)
	b, err := os.ReadFile(cs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cs.save() // создаём с дефолтами
		}
		return err
	}
	var data CaptchaConfig
	if err := json.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("конфиг капчи %s: %w", cs.path, err)
	}
	if len(data.Sets) == 0 {
		return fmt.Errorf("конфиг капчи %s: пустой список наборов", cs.path)
	}
	if len(data.Difficulties) == 0 {
		data.Difficulties = defaultCaptchaConfig().Difficulties
	}
	cs.data = data
	return nil
}

func (cs *configStore) Save() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.save()
}

func (cs *configStore) save() error {
	if cs.path == "" {
		return nil
	}
	b, err := json.MarshalIndent(&cs.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cs.path, b, 0o644)
}

// pick — случайный набор и параметры сложности (снимок под мьютексом).
func (cs *configStore) pick(difficulty string) (CaptchaSet, Difficulty) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	set := cs.data.Sets[rand.IntN(len(cs.data.Sets))]
	cp := CaptchaSet{Object: set.Object, Emojis: append([]string(nil), set.Emojis...)}

	diff, ok := cs.data.Difficulties[difficulty]
	if !ok {
		diff = cs.data.Difficulties["medium"]
	}
	if diff.Options <= 0 {
		diff = Difficulty{Options: 10, TimeLimit: 45}
	}
	return cp, diff
}

// decoys — эмодзи всех наборов, кроме указанного объекта.
func (cs *configStore) decoys(object string) []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var out []string
	for _, s := range cs.data.Sets {
		if s.Object == object {
			continue
		}
		out = append(out, s.Emojis...)
	}
	return out
}

func defaultCaptchaConfig() CaptchaConfig {
	return CaptchaConfig{
		Sets: []CaptchaSet{
			{Object: "стол", Emojis: []string{"🪑", "🍽️", "🏠", "🧊", "🚪"}},
			{Object: "стул", Emojis: []string{"🪑", "🛋️", "🏠", "🧊", "📚"}},
			{Object: "ложка", Emojis: []string{"🥄", "🍲", "🥣", "🍽️", "🍵"}},
			{Object: "вилка", Emojis: []string{"🍴", "🥘", "🍽️", "🥣", "🍲"}},
			{Object: "нож", Emojis: []string{"🔪", "🍽️", "🥩", "🥒", "🥕"}},
			{Object: "чашка", Emojis: []string{"☕", "🍵", "🥤", "🍺", "🥛"}},
		},
		Difficulties: map[string]Difficulty{
			"easy":   {Options: 5, TimeLimit: 60},
			"medium": {Options: 10, TimeLimit: 45},
			"hard":   {Options: 15, TimeLimit: 30},
		},
	}
}
