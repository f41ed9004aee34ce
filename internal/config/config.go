package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	DBDSN         string
	Environment   string

	// AdminChatID чат мастера: туда уходят заявки и служебные уведомления
	AdminChatID int64

	// Timezone зона салона, в ней считаются метки времени и вечернее напоминание
	Timezone string

	SchedulerTick       time.Duration
	PromotionThreshold  time.Duration // окно до начала слота, после которого условная заявка проверяется на продвижение
	ReserveWindow       time.Duration // упрощённое окно для reserved_later
	EveningReminderHour int           // локальный час напоминания накануне визита

	MigrationsPath string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		TelegramToken:       os.Getenv("TELEGRAM_TOKEN"),
		DBDSN:               os.Getenv("DB_DSN"),
		Environment:         os.Getenv("ENV"),
		Timezone:            os.Getenv("TIMEZONE"),
		MigrationsPath:      os.Getenv("MIGRATIONS_PATH"),
		SchedulerTick:       time.Duration(envInt("SCHEDULER_TICK_SECONDS", 60)) * time.Second,
		PromotionThreshold:  time.Duration(envInt("PROMOTION_THRESHOLD_HOURS", 12)) * time.Hour,
		ReserveWindow:       time.Duration(envInt("RESERVE_WINDOW_HOURS", 3)) * time.Hour,
		EveningReminderHour: envInt("EVENING_REMINDER_HOUR", 20),
	}

	// Дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Moscow"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "./migrations"
	}

	// Обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}

	adminChat := os.Getenv("ADMIN_CHAT_ID")
	if adminChat == "" {
		return nil, fmt.Errorf("ADMIN_CHAT_ID is required but not set")
	}
	id, err := strconv.ParseInt(adminChat, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_CHAT_ID must be a number: %w", err)
	}
	cfg.AdminChatID = id

	return cfg, nil
}

// Location возвращает часовой пояс салона
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️  %s is not a number, using default %d", key, def)
		return def
	}
	return v
}
