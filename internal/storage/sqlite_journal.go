package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// JournalEntry одна запись журнала событий блоков
type JournalEntry struct {
	ID        string
	Time      time.Time
	Kind      string // contact, reaction, removal
	SceneID   string
	BlockID   string
	BlockName string
	ActorTag  string
	TargetTag string
	Function  string
	Detail    string
}

// SQLiteJournal журнал событий блоков в SQLite для разбора сессий
type SQLiteJournal struct {
	db     *sql.DB
	insert *sql.Stmt
	once   sync.Once
}

// OpenSQLiteJournal открывает журнал. ":memory:" открывает журнал в памяти.
func OpenSQLiteJournal(path string) (*SQLiteJournal, error) {
	if path == "" {
		return nil, fmt.Errorf("пустой путь к журналу")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initJournal(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	insert, err := db.Prepare(`INSERT OR REPLACE INTO block_events
		(id, ts, kind, scene_id, block_id, block_name, actor_tag, target_tag, function, detail)
		VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("подготовка запроса журнала: %w", err)
	}

	return &SQLiteJournal{db: db, insert: insert}, nil
}

func initJournal(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS block_events (
			id TEXT PRIMARY KEY,
			ts INTEGER NOT NULL, -- UnixNano
			kind TEXT NOT NULL,
			scene_id TEXT NOT NULL,
			block_id TEXT NOT NULL,
			block_name TEXT NOT NULL,
			actor_tag TEXT NOT NULL,
			target_tag TEXT NOT NULL,
			function TEXT NOT NULL,
			detail TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS block_events_block ON block_events(block_id, ts);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("инициализация журнала: %w", err)
		}
	}
	return nil
}

// Append записывает событие
func (j *SQLiteJournal) Append(ctx context.Context, e JournalEntry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	_, err := j.insert.ExecContext(ctx,
		e.ID, e.Time.UnixNano(), e.Kind, e.SceneID, e.BlockID,
		e.BlockName, e.ActorTag, e.TargetTag, e.Function, e.Detail)
	if err != nil {
		return fmt.Errorf("запись в журнал: %w", err)
	}
	return nil
}

// History возвращает события блока в порядке записи
func (j *SQLiteJournal) History(ctx context.Context, blockID string) ([]JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT id, ts, kind, scene_id, block_id, block_name,
		actor_tag, target_tag, function, detail
		FROM block_events WHERE block_id = ? ORDER BY ts, rowid`, blockID)
	if err != nil {
		return nil, fmt.Errorf("чтение журнала: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var ts int64
		if err := rows.Scan(&e.ID, &ts, &e.Kind, &e.SceneID, &e.BlockID, &e.BlockName,
			&e.ActorTag, &e.TargetTag, &e.Function, &e.Detail); err != nil {
			return nil, err
		}
		e.Time = time.Unix(0, ts).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountByKind возвращает число событий каждого вида
func (j *SQLiteJournal) CountByKind(ctx context.Context) (map[string]int, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM block_events GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

// Close закрывает журнал
func (j *SQLiteJournal) Close() error {
	var err error
	j.once.Do(func() {
		_ = j.insert.Close()
		err = j.db.Close()
	})
	return err
}
