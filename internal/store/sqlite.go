package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avelichko/pyai-teacher/backend/internal/model/user"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// WAL mode for better concurrency between request handlers. The
	// driver does not honor DSN query parameters, so the pragmas are
	// issued as statements.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		email_verified INTEGER NOT NULL DEFAULT 0,
		tokens INTEGER NOT NULL DEFAULT 0,
		completed_lessons TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *user.User) error {
	lessons, err := marshalLessons(u.CompletedLessons)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO users (id, email, password_hash, email_verified, tokens, completed_lessons, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		u.ID, u.Email, u.PasswordHash, boolToInt(u.EmailVerified),
		u.Tokens, lessons, u.CreatedAt.Unix(), u.UpdatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*user.User, error) {
	return s.getUserWhere(ctx, "id = ?", userID)
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getUserWhere(ctx, "email = ?", email)
}

func (s *SQLiteStore) getUserWhere(ctx context.Context, where string, arg any) (*user.User, error) {
	query := `
		SELECT id, email, password_hash, email_verified, tokens, completed_lessons, created_at, updated_at
		FROM users WHERE ` + where

	row := s.db.QueryRowContext(ctx, query, arg)

	var u user.User
	var verified int
	var lessons string
	var createdAt, updatedAt int64

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &verified,
		&u.Tokens, &lessons, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	u.EmailVerified = verified != 0
	u.CreatedAt = time.Unix(createdAt, 0)
	u.UpdatedAt = time.Unix(updatedAt, 0)

	if err := json.Unmarshal([]byte(lessons), &u.CompletedLessons); err != nil {
		return nil, fmt.Errorf("decode completed lessons: %w", err)
	}

	return &u, nil
}

// GetTokens returns the current token balance.
func (s *SQLiteStore) GetTokens(ctx context.Context, userID string) (int, error) {
	var tokens int
	err := s.db.QueryRowContext(ctx,
		`SELECT tokens FROM users WHERE id = ?`, userID).Scan(&tokens)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query tokens: %w", err)
	}
	return tokens, nil
}

// AdjustTokens atomically applies a signed delta to the balance.
// The conditional UPDATE is the guard against concurrent lost updates:
// two sessions debiting at once each apply their own delta or fail,
// never overwrite each other.
func (s *SQLiteStore) AdjustTokens(ctx context.Context, userID string, delta int) error {
	query := `
	UPDATE users SET tokens = tokens + ?, updated_at = ?
	WHERE id = ? AND tokens + ? >= 0`

	res, err := s.db.ExecContext(ctx, query, delta, time.Now().Unix(), userID, delta)
	if err != nil {
		return fmt.Errorf("adjust tokens: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust tokens: %w", err)
	}
	if affected == 0 {
		exists, err := s.userExists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
		return ErrInsufficientTokens
	}
	return nil
}

// SetTokens overwrites the balance with an absolute value.
func (s *SQLiteStore) SetTokens(ctx context.Context, userID string, tokens int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET tokens = ?, updated_at = ? WHERE id = ?`,
		tokens, time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("set tokens: %w", err)
	}
	return requireAffected(res)
}

// GetProgress returns the completed-lesson list.
func (s *SQLiteStore) GetProgress(ctx context.Context, userID string) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT completed_lessons FROM users WHERE id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}

	var lessons []string
	if err := json.Unmarshal([]byte(raw), &lessons); err != nil {
		return nil, fmt.Errorf("decode completed lessons: %w", err)
	}
	if lessons == nil {
		lessons = []string{}
	}
	return lessons, nil
}

// AppendCompletedLesson adds a lesson ID to the progress list inside a
// transaction so concurrent completions cannot drop each other's entry.
func (s *SQLiteStore) AppendCompletedLesson(ctx context.Context, userID, lessonID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT completed_lessons FROM users WHERE id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, ErrUserNotFound
	}
	if err != nil {
		return false, fmt.Errorf("query progress: %w", err)
	}

	var lessons []string
	if err := json.Unmarshal([]byte(raw), &lessons); err != nil {
		return false, fmt.Errorf("decode completed lessons: %w", err)
	}

	for _, id := range lessons {
		if id == lessonID {
			return false, nil
		}
	}

	lessons = append(lessons, lessonID)
	encoded, err := marshalLessons(lessons)
	if err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET completed_lessons = ?, updated_at = ? WHERE id = ?`,
		encoded, time.Now().Unix(), userID)
	if err != nil {
		return false, fmt.Errorf("update progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit progress: %w", err)
	}
	return true, nil
}

// SetEmailVerified marks the user's email as confirmed.
func (s *SQLiteStore) SetEmailVerified(ctx context.Context, userID string, verified bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET email_verified = ?, updated_at = ? WHERE id = ?`,
		boolToInt(verified), time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("set email verified: %w", err)
	}
	return requireAffected(res)
}

// UpdatePassword replaces the stored password hash.
func (s *SQLiteStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireAffected(res)
}

// ListUsers returns every user record, newest first.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*user.User, error) {
	query := `
		SELECT id, email, password_hash, email_verified, tokens, completed_lessons, created_at, updated_at
		FROM users ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		var verified int
		var lessons string
		var createdAt, updatedAt int64

		err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &verified,
			&u.Tokens, &lessons, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}

		u.EmailVerified = verified != 0
		u.CreatedAt = time.Unix(createdAt, 0)
		u.UpdatedAt = time.Unix(updatedAt, 0)
		if err := json.Unmarshal([]byte(lessons), &u.CompletedLessons); err != nil {
			return nil, fmt.Errorf("decode completed lessons: %w", err)
		}

		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// DeleteUser removes the user record.
func (s *SQLiteStore) DeleteUser(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) userExists(ctx context.Context, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE id = ?`, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query user: %w", err)
	}
	return true, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func marshalLessons(lessons []string) (string, error) {
	if lessons == nil {
		lessons = []string{}
	}
	encoded, err := json.Marshal(lessons)
	if err != nil {
		return "", fmt.Errorf("encode completed lessons: %w", err)
	}
	return string(encoded), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
