// Package bot — “склейка” вокруг tg и store, реализующая капча-бота для
// Telegram-групп. Бот:
//   - встречает новых участников эмодзи-капчей (inline-клавиатура,
//     «выберите <объект>»), сложность задаёт количество вариантов;
//   - по верному нажатию снимает капчу и отмечает пользователя в базе;
//   - по таймауту удаляет сообщение с капчей и банит не прошедшего
//     (фоновый sweeper);
//   - ведёт учёт активности (вступления, сообщения, капчи) в SQLite;
//   - обрабатывает команды (/help, /stats, /remove_captcha — только для
//     администраторов);
//   - поддерживает конфиг наборов капчи (UseConfig/Save) в JSON.
//
// Жизненный цикл:
//   - Создать бота через New().
//   - Передать зависимости: SetTelegram(...), SetStore(...),
//     (опционально) SetLogger, SetDifficulty, SetMaxCaptchaAge,
//     SetActivityFeed.
//   - (Опционально) UseConfig("data/captcha.json") — применит наборы
//     эмодзи и таблицу сложностей.
//   - Запустить Start() и остановить Stop().
//
// Пример:
//
//	b := bot.New()
//	b.SetTelegram(tgc)
//	b.SetStore(repo)
//	_ = b.UseConfig("data/captcha.json")
//
//	if err := b.Start(); err != nil { log.Fatal(err) }
//	defer b.Stop()
//	select {} // держим процесс
package bot
