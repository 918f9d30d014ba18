package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	stdfs "io/fs"
	"regexp"
	"sort"
	"strings"

	"smoothie-order/internal/infrastructure/config"
	"smoothie-order/internal/pkg/common"

	"go.uber.org/zap"
)

// Querier 是 *sql.DB、*sql.Conn 與 *sql.Tx 共有的查詢方法
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Session 是可開啟交易的查詢介面，*sql.DB 與 *sql.Conn 皆滿足
type Session interface {
	Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Store 資料庫連線池
type Store struct {
	db *sql.DB
}

// Open 開啟（或建立）SQLite 資料庫並套用未執行的 migration。
// migration 檔案位於 migrations/，命名為 0001_name.up.sql。
func Open(cfg config.DatabaseConfig) (*Store, error) {
	dsn, err := buildDSN(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, err
	}
	d, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	// in-memory 資料庫不支援 WAL，忽略錯誤
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)

	if err := applyMigrations(d); err != nil {
		_ = d.Close()
		return nil, err
	}

	common.LogInfo("Database ready",
		zap.String("driver", cfg.Driver),
		zap.String("path", cfg.Path),
	)
	return &Store{db: d}, nil
}

// buildDSN 依驅動加入 busy_timeout 與 foreign_keys，使每條連線都生效
func buildDSN(driver, path string) (string, error) {
	if path == "" {
		return "", errors.New("database path is empty")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	switch driver {
	case "sqlite":
		return path + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil
	case "sqlite3":
		return path + sep + "_busy_timeout=5000&_foreign_keys=on", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// DB 返回底層連線池
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithSession 為一次互動取得專屬連線，fn 結束後一定釋放
func (s *Store) WithSession(ctx context.Context, fn func(ctx context.Context, sess Session) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			common.LogWarn("Failed to release connection", zap.Error(cerr))
		}
	}()
	return fn(ctx, conn)
}

// Ping 檢查資料庫連線
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 關閉連線池
func (s *Store) Close() error {
	return s.db.Close()
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version int
	name    string
	file    string
}

var migFileRe = regexp.MustCompile(`^([0-9]{4})_(.+)\.up\.sql$`)

func loadMigrations() ([]migration, error) {
	list, err := stdfs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	var migs []migration
	for _, de := range list {
		if de.IsDir() {
			continue
		}
		m := migFileRe.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		var ver int
		if _, err := fmt.Sscanf(m[1], "%04d", &ver); err != nil {
			continue
		}
		migs = append(migs, migration{version: ver, name: m[2], file: "migrations/" + de.Name()})
	}
	sort.Slice(migs, func(i, j int) bool { return migs[i].version < migs[j].version })
	return migs, nil
}

func ensureMigrationsTable(d *sql.DB) error {
	_, err := d.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
        version INTEGER PRIMARY KEY,
        applied_at TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
    )`)
	return err
}

func appliedVersions(d *sql.DB) (map[int]bool, error) {
	if err := ensureMigrationsTable(d); err != nil {
		return nil, err
	}
	rows, err := d.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	got := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		got[v] = true
	}
	return got, rows.Err()
}

func applyMigrations(d *sql.DB) error {
	migs, err := loadMigrations()
	if err != nil {
		return err
	}
	applied, err := appliedVersions(d)
	if err != nil {
		return err
	}
	for _, m := range migs {
		if applied[m.version] {
			continue
		}
		sqlText, err := migrationsFS.ReadFile(m.file)
		if err != nil {
			return err
		}
		tx, err := d.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlText)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %04d (%s) failed: %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES(?)`, m.version); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		common.LogDebug("Migration applied", zap.Int("version", m.version), zap.String("name", m.name))
	}
	return nil
}
