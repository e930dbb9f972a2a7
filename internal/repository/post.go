package repository

import (
	"context"
	"strings"

	"chattym/internal/cache"
	"chattym/internal/models"

	"gorm.io/gorm"
)

// PostQuery carries the REST list filters.
type PostQuery struct {
	Search        string
	Q             string
	UserID        uint
	Active        *bool
	Ordering      string
	ViewerID      uint
	ViewerIsStaff bool
	Page          Page
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetActiveByID(ctx context.Context, id uint) (*models.Post, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Deactivate(ctx context.Context, id uint) error
	Feed(ctx context.Context, viewerID uint, page Page) ([]models.Post, int64, error)
	ListByUser(ctx context.Context, userID, viewerID uint, includeInactive bool, page Page) ([]models.Post, int64, error)
	Query(ctx context.Context, q PostQuery) ([]models.Post, int64, error)
	CountActiveByUser(ctx context.Context, userID uint) (int64, error)
	SumLikesByUser(ctx context.Context, userID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return wrapInternal(r.db.WithContext(ctx).Create(post).Error)
}

// GetByID loads a post regardless of its active flag. Used for permission checks.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error
	if err != nil {
		return nil, wrapLookupError(err, "Post", id)
	}
	return &post, nil
}

// GetActiveByID loads an active post with its author and comment count.
// The result is viewer-independent, so it is served through the cache.
func (r *postRepository) GetActiveByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		err := applyPostDetails(readDB(r.db).WithContext(ctx), 0).
			Preload("User").
			Where("posts.is_active = ?", true).
			First(&post, id).Error
		return wrapLookupError(err, "Post", id)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) Deactivate(ctx context.Context, id uint) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"is_active": false})
}

func (r *postRepository) Feed(ctx context.Context, viewerID uint, page Page) ([]models.Post, int64, error) {
	active := func() *gorm.DB {
		return readDB(r.db).WithContext(ctx).Model(&models.Post{}).Where("posts.is_active = ?", true)
	}
	return r.list(active, viewerID, "-created_at", page)
}

func (r *postRepository) ListByUser(ctx context.Context, userID, viewerID uint, includeInactive bool, page Page) ([]models.Post, int64, error) {
	scope := func() *gorm.DB {
		db := readDB(r.db).WithContext(ctx).Model(&models.Post{}).Where("posts.user_id = ?", userID)
		if !includeInactive {
			db = db.Where("posts.is_active = ?", true)
		}
		return db
	}
	return r.list(scope, viewerID, "-created_at", page)
}

func (r *postRepository) Query(ctx context.Context, q PostQuery) ([]models.Post, int64, error) {
	scope := func() *gorm.DB {
		db := readDB(r.db).WithContext(ctx).Model(&models.Post{})
		if s := strings.TrimSpace(q.Search); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			db = db.Where(
				"LOWER(posts.title) LIKE ? OR LOWER(posts.text) LIKE ? OR posts.user_id IN (SELECT id FROM users WHERE LOWER(users.email) LIKE ? OR LOWER(users.username) LIKE ?)",
				like, like, like, like,
			)
		}
		if s := strings.TrimSpace(q.Q); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			db = db.Where("LOWER(posts.title) LIKE ? OR LOWER(posts.text) LIKE ?", like, like)
		}
		if q.UserID != 0 {
			db = db.Where("posts.user_id = ?", q.UserID)
		}
		return applyVisibility(db, q.Active, q.ViewerID, q.ViewerIsStaff)
	}
	return r.list(scope, q.ViewerID, q.Ordering, q.Page)
}

func (r *postRepository) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, wrapInternal(err)
}

func (r *postRepository) SumLikesByUser(ctx context.Context, userID uint) (int64, error) {
	var sum int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Post{}).
		Select("COALESCE(SUM(likes_count), 0)").
		Where("user_id = ? AND is_active = ?", userID, true).
		Row().Scan(&sum)
	return sum, wrapInternal(err)
}

func (r *postRepository) list(scope func() *gorm.DB, viewerID uint, ordering string, page Page) ([]models.Post, int64, error) {
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var posts []models.Post
	db := applyPostDetails(scope(), viewerID).Preload("User")
	for _, clause := range orderClauses(ordering) {
		db = db.Order(clause)
	}
	if err := page.apply(db).Find(&posts).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

// applyVisibility restricts inactive posts to their author and staff.
// Without an explicit filter only active posts are listed.
func applyVisibility(db *gorm.DB, active *bool, viewerID uint, staff bool) *gorm.DB {
	if active == nil || *active {
		return db.Where("posts.is_active = ?", true)
	}
	db = db.Where("posts.is_active = ?", false)
	if !staff {
		db = db.Where("posts.user_id = ?", viewerID)
	}
	return db
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.is_active = ?) AS comments_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked", true, viewerID)
	}
	return db.Select(selectQuery+", false AS liked", true)
}

var postOrderings = map[string]string{
	"created_at":   "posts.created_at ASC",
	"-created_at":  "posts.created_at DESC",
	"likes_count":  "posts.likes_count ASC",
	"-likes_count": "posts.likes_count DESC",
}

// orderClauses parses a comma-separated ordering, dropping unknown fields.
func orderClauses(ordering string) []string {
	var clauses []string
	for _, field := range strings.Split(ordering, ",") {
		if clause, ok := postOrderings[strings.TrimSpace(field)]; ok {
			clauses = append(clauses, clause)
		}
	}
	if len(clauses) == 0 {
		clauses = append(clauses, postOrderings["-created_at"])
	}
	return append(clauses, "posts.id DESC")
}
