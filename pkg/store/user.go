package store

import (
	"context"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
)

// UserStore is an interface for managing users.
type UserStore interface {
	GetUserByID(ctx context.Context, h db.Handler, id int64) (models.User, error)
	FindUserByEmail(ctx context.Context, h db.Handler, email string) (models.User, error)
	GetAllUsers(ctx context.Context, h db.Handler) ([]models.User, error)
	GetUsersByIDs(ctx context.Context, h db.Handler, ids []int64) ([]models.User, error)
	GetUsersBySchool(ctx context.Context, h db.Handler, schoolID int64, role string) ([]models.User, error)
	CreateUser(ctx context.Context, h db.Handler, email string, name string, role string, schoolID *int64) (int64, error)
	SetUserRole(ctx context.Context, h db.Handler, id int64, role string) error
	SetUserSchool(ctx context.Context, h db.Handler, id int64, schoolID *int64) error
	DeleteUser(ctx context.Context, h db.Handler, id int64) error
}

// SchoolStore is an interface for managing schools.
type SchoolStore interface {
	GetSchoolByID(ctx context.Context, h db.Handler, id int64) (models.School, error)
	GetAllSchools(ctx context.Context, h db.Handler) ([]models.School, error)
	CreateSchool(ctx context.Context, h db.Handler, name string) (int64, error)
}
