package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"example.com/capbot/internal/bot"
	"example.com/capbot/internal/logger"
	"example.com/capbot/internal/store"
	"example.com/capbot/internal/tg"
	"example.com/capbot/internal/web"
)

// setupConfig — дефолты, переменные окружения и config.yaml рядом с
// данными; при первом запуске файл создаётся с текущими значениями.
func setupConfig() error {
	viper.SetDefault("difficulty_level", "medium")
	viper.SetDefault("max_captcha_time", 300) // секунд
	viper.SetDefault("data_dir", "/app/data")
	viper.SetDefault("log_dir", "/app/logs")
	viper.SetDefault("http_addr", ":3000")
	viper.SetDefault("debug", false)
	viper.AutomaticEnv()

	dataDir := viper.GetString("data_dir")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(dataDir)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		return viper.SafeWriteConfig()
	}
	return nil
}

func main() {
	if err := setupConfig(); err != nil {
		log.Fatal(err)
	}

	slogger, closeLog, err := logger.Setup(viper.GetString("log_dir"), viper.GetBool("debug"))
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	token := viper.GetString("bot_token")
	if token == "" {
		slogger.Error("BOT_TOKEN не установлен!")
		os.Exit(1)
	}

	dataDir := viper.GetString("data_dir")

	db, err := store.New(filepath.Join(dataDir, "users_activity.db"))
	if err != nil {
		slogger.Error("база данных", "err", err)
		os.Exit(1)
	}
	repo := store.NewRepository(db)
	defer repo.Close()

	tgc, err := tg.New(token, slogger)
	if err != nil {
		slogger.Error("telegram", "err", err)
		os.Exit(1)
	}

	ops := web.New(viper.GetString("http_addr"), repo, slogger)

	b := bot.New()
	b.SetTelegram(tgc)
	b.SetStore(repo)
	b.SetLogger(slogger)
	b.SetDifficulty(viper.GetString("difficulty_level"))
	b.SetMaxCaptchaAge(time.Duration(viper.GetInt("max_captcha_time")) * time.Second)
	b.SetActivityFeed(ops.Publish)

	// наборы капчи: создаются с дефолтами при первом запуске
	if err := b.UseConfig(filepath.Join(dataDir, "captcha.json")); err != nil {
		slogger.Error("конфиг капчи", "err", err)
		os.Exit(1)
	}

	if err := b.Start(); err != nil {
		slogger.Error("запуск бота", "err", err)
		os.Exit(1)
	}
	defer b.Stop()

	ops.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slogger.Info("running… press Ctrl+C to stop")
	<-ctx.Done()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ops.Stop(shCtx); err != nil {
		slogger.Error("остановка ops-сервера", "err", err)
	}
}
