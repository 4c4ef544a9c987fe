package tg

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ========================= high-level API =========================

func (c *Client) Say(chatID int64, text string) error {
	c.log.Debug("say", "chat", chatID, "text", text)
	_, err := c.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		c.log.Error("say failed", "chat", chatID, "err", err)
	}
	return err
}

// SayMarkup отправляет сообщение с inline-клавиатурой и возвращает ID
// сообщения (он нужен, чтобы потом удалить капчу).
func (c *Client) SayMarkup(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error) {
	c.log.Debug("say markup", "chat", chatID, "text", text)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	sent, err := c.api.Send(msg)
	if err != nil {
		c.log.Error("say markup failed", "chat", chatID, "err", err)
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *Client) Reply(to *tgbotapi.Message, text string) error {
	c.log.Debug("reply", "chat", to.Chat.ID, "to", to.MessageID, "text", text)
	msg := tgbotapi.NewMessage(to.Chat.ID, text)
	msg.ReplyToMessageID = to.MessageID
	_, err := c.api.Send(msg)
	if err != nil {
		c.log.Error("reply failed", "chat", to.Chat.ID, "err", err)
	}
	return err
}

// AnswerCallback — всплывающий ответ на нажатие inline-кнопки.
func (c *Client) AnswerCallback(callbackID, text string) error {
	c.log.Debug("answer callback", "id", callbackID, "text", text)
	_, err := c.api.Request(tgbotapi.NewCallback(callbackID, text))
	if err != nil {
		c.log.Error("answer callback failed", "id", callbackID, "err", err)
	}
	return err
}

func (c *Client) DeleteMessage(chatID int64, messageID int) error {
	c.log.Debug("delete message", "chat", chatID, "msg", messageID)
	_, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	if err != nil {
		c.log.Error("delete message failed", "chat", chatID, "msg", messageID, "err", err)
	}
	return err
}

func (c *Client) BanMember(chatID, userID int64) error {
	c.log.Debug("ban member", "chat", chatID, "user", userID)
	_, err := c.api.Request(tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		c.log.Error("ban member failed", "chat", chatID, "user", userID, "err", err)
	}
	return err
}

// IsAdmin — является ли пользователь администратором/создателем чата.
func (c *Client) IsAdmin(chatID, userID int64) (bool, error) {
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return false, err
	}
	return member.IsAdministrator() || member.IsCreator(), nil
}
