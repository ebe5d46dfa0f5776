package localdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nantokaworks/wheel-overlay/internal/shared/logger"
	"go.uber.org/zap"
)

// KVStore は文字列キー・文字列値のローカルストア。
// ledger.Storeインターフェースを満たす。
type KVStore struct {
	db *sql.DB
}

// NewKVStore は指定DB接続のKVStoreを返す。
func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

// SetupKVTable creates the kv_store table.
func SetupKVTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		logger.Error("Failed to create kv_store table", zap.Error(err))
		return fmt.Errorf("failed to create kv_store table: %w", err)
	}
	return nil
}

// GetItem はキーの値を返す。存在しない場合はok=falseを返す。
func (s *KVStore) GetItem(key string) (string, bool, error) {
	if s.db == nil {
		return "", false, fmt.Errorf("database not initialized")
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		logger.Error("Failed to get kv item", zap.Error(err), zap.String("key", key))
		return "", false, fmt.Errorf("failed to get kv item: %w", err)
	}

	return value, true, nil
}

// SetItem はキーに値を保存する（既存キーは上書き）。
func (s *KVStore) SetItem(key, value string) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	_, err := s.db.Exec(`
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now())
	if err != nil {
		logger.Error("Failed to set kv item", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to set kv item: %w", err)
	}

	return nil
}
