package repository

import (
	"context"

	"chattym/internal/cache"
	"chattym/internal/models"

	"gorm.io/gorm"
)

// UserRepository reads and writes accounts. Reads by id go through the
// user cache; writes invalidate it.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
	SetStaff(ctx context.Context, email string, staff bool) (*models.User, error)
	ListStaff(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	u := new(models.User)
	load := func() error {
		return wrapLookupError(readDB(r.db).WithContext(ctx).First(u, id).Error, "User", id)
	}
	if err := cache.Aside(ctx, cache.UserKey(id), u, cache.UserTTL, load); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]models.User, 0, len(ids))
	err := readDB(r.db).WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, wrapInternal(err)
}

// GetByEmail matches case-insensitively and returns nil, nil when no
// account uses the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var found []models.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).Limit(1).Find(&found).Error
	switch {
	case err != nil:
		return nil, models.NewInternalError(err)
	case len(found) == 0:
		return nil, nil
	}
	return &found[0], nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateProfile writes only the user-editable columns.
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Model(&models.User{ID: user.ID}).
		Select("username", "bio", "avatar", "birthday").
		Updates(user).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) SetStaff(ctx context.Context, email string, staff bool) (*models.User, error) {
	u, err := r.GetByEmail(ctx, email)
	switch {
	case err != nil:
		return nil, err
	case u == nil:
		return nil, models.NewNotFoundError("User", email)
	case u.IsStaff == staff:
		return u, nil
	}
	if err := r.db.WithContext(ctx).Model(u).UpdateColumn("is_staff", staff).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	u.IsStaff = staff
	cache.InvalidateUser(ctx, u.ID)
	return u, nil
}

func (r *userRepository) ListStaff(ctx context.Context) ([]models.User, error) {
	var staff []models.User
	err := readDB(r.db).WithContext(ctx).Where("is_staff = ?", true).Order("id").Find(&staff).Error
	return staff, wrapInternal(err)
}
