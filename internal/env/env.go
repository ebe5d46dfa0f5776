package env

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/nantokaworks/wheel-overlay/internal/shared/logger"
	"go.uber.org/zap"
)

// Env はプロセス全体の設定値を保持する。
type Env struct {
	ServerPort    int
	DBPath        string
	DebugMode     bool
	FrameInterval time.Duration
	HistoryLimit  int
}

// Value はLoadEnv後に参照できるグローバル設定。
var Value = &Env{}

// LoadEnv は.envと環境変数から設定を読み込む。
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables only")
	}

	Value = &Env{
		ServerPort:    getInt("SERVER_PORT", 8080),
		DBPath:        getString("DB_PATH", "./local.db"),
		DebugMode:     getBool("DEBUG_MODE", false),
		FrameInterval: getDuration("FRAME_INTERVAL_MS", 33*time.Millisecond),
		HistoryLimit:  getInt("HISTORY_LIMIT", 5),
	}

	logger.Debug("Environment loaded",
		zap.Int("server_port", Value.ServerPort),
		zap.String("db_path", Value.DBPath),
		zap.Bool("debug_mode", Value.DebugMode))
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("Invalid integer environment value, using default",
			zap.String("key", key), zap.String("value", raw))
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// getDuration はミリ秒指定の環境変数をtime.Durationへ変換する。
func getDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
