package backend

import (
	"context"
	"errors"

	"github.com/pathwayhq/pathway/pkg/access"
	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
	"github.com/pathwayhq/pathway/pkg/proto"
	"github.com/pathwayhq/pathway/pkg/utils"
)

// UserByID finds a user by ID.
func (d *Backend) UserByID(ctx context.Context, id int64) (proto.User, error) {
	if u, ok := d.cache.Get(id); ok {
		return u, nil
	}

	var m models.User
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		m, err = d.store.GetUserByID(ctx, tx, id)
		return err
	}); err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrRecordNotFound) {
			return nil, proto.ErrUserNotFound
		}
		d.logger.Error("error finding user", "id", id, "error", err)
		return nil, err
	}

	u := &user{user: m}
	d.cache.Set(id, u)
	return u, nil
}

// UserByEmail finds a user by email.
func (d *Backend) UserByEmail(ctx context.Context, email string) (proto.User, error) {
	email = utils.NormalizeEmail(email)
	if err := utils.ValidateEmail(email); err != nil {
		return nil, invalid("email", err)
	}

	var m models.User
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		m, err = d.store.FindUserByEmail(ctx, tx, email)
		return err
	}); err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrRecordNotFound) {
			return nil, proto.ErrUserNotFound
		}
		d.logger.Error("error finding user", "email", email, "error", err)
		return nil, err
	}

	return &user{user: m}, nil
}

// Users returns all users.
func (d *Backend) Users(ctx context.Context) ([]proto.User, error) {
	var users []proto.User
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		ms, err := d.store.GetAllUsers(ctx, tx)
		if err != nil {
			return err
		}

		for _, m := range ms {
			users = append(users, &user{user: m})
		}

		return nil
	}); err != nil {
		return nil, db.WrapError(err)
	}

	return users, nil
}

// CreateUser creates a new user.
func (d *Backend) CreateUser(ctx context.Context, email string, opts proto.UserOptions) (proto.User, error) {
	email = utils.NormalizeEmail(email)
	if err := utils.ValidateEmail(email); err != nil {
		return nil, invalid("email", err)
	}
	if opts.Role <= access.Anonymous || opts.Role > access.Admin {
		return nil, proto.NewValidationError("role", "invalid role %q", opts.Role)
	}

	var schoolID *int64
	if opts.SchoolID > 0 {
		schoolID = &opts.SchoolID
	}

	var id int64
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		id, err = d.store.CreateUser(ctx, tx, email, opts.Name, opts.Role.String(), schoolID)
		return err
	}); err != nil {
		err = db.WrapError(err)
		switch {
		case errors.Is(err, db.ErrDuplicateKey):
			return nil, proto.ErrUserExists
		case errors.Is(err, db.ErrForeignKey):
			return nil, proto.ErrSchoolNotFound
		}
		return nil, err
	}

	return d.UserByID(ctx, id)
}

// SetUserRole changes the role of a user.
func (d *Backend) SetUserRole(ctx context.Context, id int64, role access.Role) error {
	if role <= access.Anonymous || role > access.Admin {
		return proto.NewValidationError("role", "invalid role %q", role)
	}

	defer d.cache.Delete(id)
	return d.withUser(ctx, id, func(tx *db.Tx) error {
		return d.store.SetUserRole(ctx, tx, id, role.String())
	})
}

// SetUserSchool moves a user to a school. A zero school clears it.
func (d *Backend) SetUserSchool(ctx context.Context, id int64, schoolID int64) error {
	var sid *int64
	if schoolID > 0 {
		sid = &schoolID
	}

	defer d.cache.Delete(id)
	err := d.withUser(ctx, id, func(tx *db.Tx) error {
		return d.store.SetUserSchool(ctx, tx, id, sid)
	})
	if errors.Is(err, db.ErrForeignKey) {
		return proto.ErrSchoolNotFound
	}
	return err
}

// DeleteUser deletes a user.
func (d *Backend) DeleteUser(ctx context.Context, id int64) error {
	defer d.cache.Delete(id)
	return d.withUser(ctx, id, func(tx *db.Tx) error {
		return d.store.DeleteUser(ctx, tx, id)
	})
}

// withUser runs fn in a transaction after checking the user exists.
func (d *Backend) withUser(ctx context.Context, id int64, fn func(tx *db.Tx) error) error {
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := d.store.GetUserByID(ctx, tx, id); err != nil {
			return err
		}
		return fn(tx)
	})
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) {
		return proto.ErrUserNotFound
	}
	return err
}

// School is a school students and advisors belong to.
type School struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateSchool creates a new school.
func (d *Backend) CreateSchool(ctx context.Context, name string) (School, error) {
	if name == "" {
		return School{}, proto.NewValidationError("name", "is required")
	}

	var id int64
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		id, err = d.store.CreateSchool(ctx, tx, name)
		return err
	}); err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrDuplicateKey) {
			return School{}, proto.NewValidationError("name", "school %q already exists", name)
		}
		return School{}, err
	}

	return School{ID: id, Name: name}, nil
}

// Schools returns all schools.
func (d *Backend) Schools(ctx context.Context) ([]School, error) {
	var schools []School
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		ms, err := d.store.GetAllSchools(ctx, tx)
		if err != nil {
			return err
		}
		for _, m := range ms {
			schools = append(schools, School{ID: m.ID, Name: m.Name})
		}
		return nil
	}); err != nil {
		return nil, db.WrapError(err)
	}

	return schools, nil
}

type user struct {
	user models.User
}

var _ proto.User = (*user)(nil)

// ID implements proto.User.
func (u *user) ID() int64 {
	return u.user.ID
}

// Email implements proto.User.
func (u *user) Email() string {
	return u.user.Email
}

// Name implements proto.User.
func (u *user) Name() string {
	return u.user.Name
}

// Role implements proto.User.
func (u *user) Role() access.Role {
	r := access.ParseRole(u.user.Role)
	if r < 0 {
		return access.Anonymous
	}
	return r
}

// SchoolID implements proto.User.
func (u *user) SchoolID() int64 {
	if u.user.SchoolID.Valid {
		return u.user.SchoolID.Int64
	}
	return 0
}
