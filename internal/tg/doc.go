// Package tg — тонкая обёртка над Telegram Bot API (long polling).
// Клиент получает апдейты собственным циклом getUpdates, раздаёт их
// по колбэкам и предоставляет высокоуровневые методы отправки:
//
//   - Say, SayMarkup, Reply, AnswerCallback, DeleteMessage, BanMember,
//     IsAdmin.
//
// События (колбэки поля структуры):
//   - OnMessage, OnNewMembers, OnCallback, OnError.
//
// Устойчивость:
//   - при ошибке getUpdates цикл не падает, а ждёт с экспоненциальным
//     backoff (до 60s) и пробует снова; успешный ответ сбрасывает backoff.
//
// Пример:
//
//	c, err := tg.New(token, logger)
//	if err != nil { log.Fatal(err) }
//	c.OnMessage = func(m *tgbotapi.Message) { fmt.Println(m.Text) }
//	ctx := context.Background()
//	if err := c.Start(ctx); err != nil { log.Fatal(err) }
//	defer c.Stop()
package tg
