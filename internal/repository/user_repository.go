package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/agritrack/farm-records/internal/model"
	"github.com/agritrack/farm-records/internal/utils"
)

// UserRepo reads and writes rows of the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,first_name,last_name,password_hash,role,is_staff,is_superuser,created_at,updated_at"

// scanUser scans a single row into a model.User, mapping the nullable role
// column onto the pointer field.
func scanUser(row *sql.Row) (model.User, error) {
	var (
		u    model.User
		role sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &role, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	if role.Valid {
		u.Role = &role.String
	}
	return u, nil
}

// Create hashes the password and inserts the user, returning its ID. The
// cleartext password never reaches the database.
func (r *UserRepo) Create(ctx context.Context, u model.User, password string, cost int) (uint64, error) {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var role any
	if u.Role != nil {
		role = *u.Role
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, first_name, last_name, password_hash, role, is_staff, is_superuser) VALUES (?,?,?,?,?,?,?,?)",
		u.Username, u.Email, u.FirstName, u.LastName, hash, role, u.IsStaff, u.IsSuperuser)
	if err != nil {
		if isDuplicateErr(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1",
		strings.TrimSpace(username)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var (
			u    model.User
			role sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
			&u.PasswordHash, &role, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if role.Valid {
			u.Role = &role.String
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update rewrites the mutable identity fields of a user. The password hash
// is not touched here; use UpdatePassword for that.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	var role any
	if u.Role != nil {
		role = *u.Role
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?, email=?, first_name=?, last_name=?, role=?, is_staff=? WHERE id=?",
		strings.TrimSpace(u.Username), strings.ToLower(strings.TrimSpace(u.Email)),
		u.FirstName, u.LastName, role, u.IsStaff, u.ID)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return err
	}
	return checkAffected(res)
}

// UpdatePassword hashes the new password and rewrites the stored hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// Delete removes a user by id.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// checkAffected maps a zero-row update/delete onto ErrNotFound.
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
