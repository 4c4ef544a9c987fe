package bot

import (
	"testing"
	"time"
)

func testBot(difficulty string) *CaptchaBot {
	b := New()
	b.SetDifficulty(difficulty)
	b.cfg = newConfigStore("")
	return b
}

func TestNewChallenge(t *testing.T) {
	cases := []struct {
		difficulty  string
		wantOptions int
	}{
		{"easy", 5},
		{"medium", 10},
		{"hard", 15},
		{"неизвестная", 10}, // fallback на medium
	}

	for _, c := range cases {
		t.Run(c.difficulty, func(t *testing.T) {
			b := testBot(c.difficulty)
			ch, options := b.newChallenge(100, 1)

			if len(options) != c.wantOptions {
				t.Fatalf("\nwanted:\n%d options\ngot:\n%d", c.wantOptions, len(options))
			}
			if ch.id == "" || ch.object == "" || ch.correct == "" {
				t.Fatalf("incomplete challenge: %+v", ch)
			}

			found := false
			seen := map[string]bool{}
			for _, e := range options {
				if seen[e] {
					t.Fatalf("duplicate option %q", e)
				}
				seen[e] = true
				if e == ch.correct {
					found = true
				}
			}
			if !found {
				t.Fatalf("correct emoji %q not among options %v", ch.correct, options)
			}
		})
	}
}

func TestNewChallenge_CorrectIsCanonical(t *testing.T) {
	b := testBot("easy")

	// верный ответ — всегда первый эмодзи набора, а не случайный
	for i := 0; i < 20; i++ {
		ch, _ := b.newChallenge(100, 1)
		var set *CaptchaSet
		for j := range b.cfg.data.Sets {
			if b.cfg.data.Sets[j].Object == ch.object {
				set = &b.cfg.data.Sets[j]
				break
			}
		}
		if set == nil {
			t.Fatalf("challenge object %q not in config", ch.object)
		}
		if ch.correct != set.Emojis[0] {
			t.Fatalf("\nwanted:\n%q\ngot:\n%q", set.Emojis[0], ch.correct)
		}
	}
}

func TestCaptchaKeyboard(t *testing.T) {
	kb := captchaKeyboard("abc", []string{"🥄", "🍲", "🥣", "🍽️", "🍵"})

	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("\nwanted:\n2 rows\ngot:\n%d", len(kb.InlineKeyboard))
	}
	if len(kb.InlineKeyboard[0]) != 3 || len(kb.InlineKeyboard[1]) != 2 {
		t.Fatalf("bad row split: %d/%d", len(kb.InlineKeyboard[0]), len(kb.InlineKeyboard[1]))
	}
	first := kb.InlineKeyboard[0][0]
	if first.CallbackData == nil || *first.CallbackData != "captcha:abc:🥄" {
		t.Fatalf("bad callback data: %v", first.CallbackData)
	}
}

func TestParseCaptchaCallback(t *testing.T) {
	cases := []struct {
		in        string
		id, emoji string
		ok        bool
	}{
		{"captcha:abc:🥄", "abc", "🥄", true},
		{"captcha:abc:", "", "", false},
		{"captcha::🥄", "", "", false},
		{"captcha:abc", "", "", false},
		{"other:abc:🥄", "", "", false},
		{"", "", "", false},
	}
	for _, c := range cases {
		id, emoji, ok := parseCaptchaCallback(c.in)
		if ok != c.ok || id != c.id || emoji != c.emoji {
			t.Fatalf("parseCaptchaCallback(%q) = %q, %q, %t", c.in, id, emoji, ok)
		}
	}
}

func TestTakeExpired(t *testing.T) {
	b := testBot("medium")
	b.SetMaxCaptchaAge(5 * time.Minute)

	now := time.Now()
	b.challenges[challengeKey{chatID: 100, userID: 1}] = &challenge{
		id: "a", chatID: 100, userID: 1, issuedAt: now.Add(-10 * time.Minute),
	}
	b.challenges[challengeKey{chatID: 100, userID: 2}] = &challenge{
		id: "b", chatID: 100, userID: 2, issuedAt: now.Add(-time.Minute),
	}

	expired := b.takeExpired(now)
	if len(expired) != 1 || expired[0].id != "a" {
		t.Fatalf("\nwanted:\nonly challenge a\ngot:\n%+v", expired)
	}
	if len(b.challenges) != 1 {
		t.Fatalf("\nwanted:\n1 remaining challenge\ngot:\n%d", len(b.challenges))
	}

	// повторный проход ничего не находит
	if again := b.takeExpired(now); len(again) != 0 {
		t.Fatalf("second sweep returned %+v", again)
	}
}
