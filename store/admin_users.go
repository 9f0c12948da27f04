package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

type AdminUser struct {
	ID                int64
	Username          string
	PasswordHash      string
	CreatedAt         time.Time
	PasswordChangedAt time.Time // zero until the first change
}

func (db *DB) CreateAdminUser(username, passwordHash string) error {
	_, err := db.Exec(db.Q(`INSERT INTO admin_users (username, password_hash) VALUES (?, ?)`), username, passwordHash)
	if err != nil {
		return fmt.Errorf("create user %s: %w", username, err)
	}
	return nil
}

func (db *DB) GetAdminUser(username string) (*AdminUser, error) {
	var (
		u                  AdminUser
		createdAt, changed any
	)
	err := db.QueryRow(db.Q(`SELECT id, username, password_hash, created_at, password_changed_at FROM admin_users WHERE username=?`), username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt, &changed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}
	u.CreatedAt = scanTime(createdAt)
	u.PasswordChangedAt = scanTime(changed)
	return &u, nil
}

func (db *DB) AdminUserExists() (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM admin_users`).Scan(&count)
	return count > 0, err
}

func (db *DB) UpdateAdminPassword(username, passwordHash string) error {
	res, err := db.Exec(db.Q(`UPDATE admin_users SET password_hash=?, password_changed_at=`+db.now()+` WHERE username=?`), passwordHash, username)
	if err != nil {
		return fmt.Errorf("update password %s: %w", username, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
