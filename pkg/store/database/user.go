package database

import (
	"context"
	"strings"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
	"github.com/pathwayhq/pathway/pkg/store"
)

type userStore struct{}

var _ store.UserStore = (*userStore)(nil)

// CreateUser implements store.UserStore.
func (*userStore) CreateUser(ctx context.Context, tx db.Handler, email string, name string, role string, schoolID *int64) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	query := tx.Rebind(`INSERT INTO users (email, name, role, school_id, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;`)

	var id int64
	if err := tx.GetContext(ctx, &id, query, email, name, role, schoolID); err != nil {
		return 0, db.WrapError(err)
	}
	return id, nil
}

// DeleteUser implements store.UserStore.
func (*userStore) DeleteUser(ctx context.Context, tx db.Handler, id int64) error {
	query := tx.Rebind(`DELETE FROM users WHERE id = ?;`)
	_, err := tx.ExecContext(ctx, query, id)
	return db.WrapError(err)
}

// GetUserByID implements store.UserStore.
func (*userStore) GetUserByID(ctx context.Context, tx db.Handler, id int64) (models.User, error) {
	var m models.User
	query := tx.Rebind(`SELECT * FROM users WHERE id = ?;`)
	err := tx.GetContext(ctx, &m, query, id)
	return m, db.WrapError(err)
}

// FindUserByEmail implements store.UserStore.
func (*userStore) FindUserByEmail(ctx context.Context, tx db.Handler, email string) (models.User, error) {
	var m models.User
	email = strings.ToLower(strings.TrimSpace(email))
	query := tx.Rebind(`SELECT * FROM users WHERE email = ?;`)
	err := tx.GetContext(ctx, &m, query, email)
	return m, db.WrapError(err)
}

// GetAllUsers implements store.UserStore.
func (*userStore) GetAllUsers(ctx context.Context, tx db.Handler) ([]models.User, error) {
	var ms []models.User
	query := tx.Rebind(`SELECT * FROM users ORDER BY id;`)
	err := tx.SelectContext(ctx, &ms, query)
	return ms, db.WrapError(err)
}

// GetUsersByIDs implements store.UserStore.
func (*userStore) GetUsersByIDs(ctx context.Context, tx db.Handler, ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := db.In(tx, `SELECT * FROM users WHERE id IN (?) ORDER BY id;`, ids)
	if err != nil {
		return nil, err
	}
	var ms []models.User
	err = tx.SelectContext(ctx, &ms, query, args...)
	return ms, db.WrapError(err)
}

// GetUsersBySchool implements store.UserStore. An empty role matches every
// role.
func (*userStore) GetUsersBySchool(ctx context.Context, tx db.Handler, schoolID int64, role string) ([]models.User, error) {
	var ms []models.User
	query := tx.Rebind(`SELECT * FROM users WHERE school_id = ? AND (? = '' OR role = ?) ORDER BY id;`)
	err := tx.SelectContext(ctx, &ms, query, schoolID, role, role)
	return ms, db.WrapError(err)
}

// SetUserRole implements store.UserStore.
func (*userStore) SetUserRole(ctx context.Context, tx db.Handler, id int64, role string) error {
	query := tx.Rebind(`UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := tx.ExecContext(ctx, query, role, id)
	return db.WrapError(err)
}

// SetUserSchool implements store.UserStore.
func (*userStore) SetUserSchool(ctx context.Context, tx db.Handler, id int64, schoolID *int64) error {
	query := tx.Rebind(`UPDATE users SET school_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := tx.ExecContext(ctx, query, schoolID, id)
	return db.WrapError(err)
}

type schoolStore struct{}

var _ store.SchoolStore = (*schoolStore)(nil)

// CreateSchool implements store.SchoolStore.
func (*schoolStore) CreateSchool(ctx context.Context, tx db.Handler, name string) (int64, error) {
	query := tx.Rebind(`INSERT INTO schools (name, updated_at) VALUES (?, CURRENT_TIMESTAMP) RETURNING id;`)
	var id int64
	if err := tx.GetContext(ctx, &id, query, strings.TrimSpace(name)); err != nil {
		return 0, db.WrapError(err)
	}
	return id, nil
}

// GetSchoolByID implements store.SchoolStore.
func (*schoolStore) GetSchoolByID(ctx context.Context, tx db.Handler, id int64) (models.School, error) {
	var m models.School
	query := tx.Rebind(`SELECT * FROM schools WHERE id = ?;`)
	err := tx.GetContext(ctx, &m, query, id)
	return m, db.WrapError(err)
}

// GetAllSchools implements store.SchoolStore.
func (*schoolStore) GetAllSchools(ctx context.Context, tx db.Handler) ([]models.School, error) {
	var ms []models.School
	err := tx.SelectContext(ctx, &ms, `SELECT * FROM schools ORDER BY name;`)
	return ms, db.WrapError(err)
}
