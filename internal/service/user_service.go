package service

import (
	"context"
	"strings"
	"time"

	"chattym/internal/models"
	"chattym/internal/observability"
	"chattym/internal/repository"
	"chattym/internal/validation"

	"golang.org/x/sync/errgroup"
)

const (
	profileRecentPosts = 4
	maxBioLen          = 500
)

type UserService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	subRepo  repository.SubscriptionRepository
}

type UpdateProfileInput struct {
	UserID   uint
	Username *string
	Bio      *string
	Avatar   *string
	Birthday *time.Time
}

// Profile is the public profile page payload.
type Profile struct {
	User           *models.UserSummary `json:"user"`
	Bio            string              `json:"bio"`
	Birthday       *time.Time          `json:"birthday,omitempty"`
	JoinedAt       time.Time           `json:"joined_at"`
	PostsCount     int64               `json:"posts_count"`
	LikesSum       int64               `json:"likes_sum"`
	FollowersCount int64               `json:"followers_count"`
	FollowingCount int64               `json:"following_count"`
	IsSubscribed   bool                `json:"is_subscribed"`
	RecentPosts    []PostView          `json:"recent_posts"`
}

func NewUserService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	subRepo repository.SubscriptionRepository,
) *UserService {
	return &UserService{userRepo: userRepo, postRepo: postRepo, subRepo: subRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetActiveUser returns NOT_FOUND for deactivated accounts.
func (s *UserService) GetActiveUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}

// IsStaff is the StaffChecker backed by the user table.
func (s *UserService) IsStaff(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsStaff && user.IsActive, nil
}

// GetProfile gathers the profile counters concurrently.
func (s *UserService) GetProfile(ctx context.Context, id, viewerID uint) (*Profile, error) {
	span, ctx := observability.StartServiceSpan(ctx, "UserService", "GetProfile")
	defer span.End()

	user, err := s.GetActiveUser(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		User:     summarize(user),
		Bio:      user.Bio,
		Birthday: user.Birthday,
		JoinedAt: user.CreatedAt,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile.PostsCount, err = s.postRepo.CountActiveByUser(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		profile.LikesSum, err = s.postRepo.SumLikesByUser(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		profile.FollowersCount, err = s.subRepo.CountFollowers(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		profile.FollowingCount, err = s.subRepo.CountFollowing(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		if viewerID == 0 || viewerID == id {
			return nil
		}
		profile.IsSubscribed, err = s.subRepo.IsSubscribed(gctx, viewerID, id)
		return err
	})
	g.Go(func() error {
		posts, _, err := s.postRepo.ListByUser(gctx, id, viewerID, false, repository.Page{Limit: profileRecentPosts})
		if err != nil {
			return err
		}
		profile.RecentPosts = toPostViews(posts)
		return nil
	})
	if err := g.Wait(); err != nil {
		span.SetError(err)
		return nil, err
	}
	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, validation.FieldError("username", err.Error())
		}
		user.Username = username
	}
	if in.Bio != nil {
		if len([]rune(*in.Bio)) > maxBioLen {
			return nil, validation.FieldError("bio", "Ensure this field has no more than 500 characters.")
		}
		user.Bio = *in.Bio
	}
	if in.Avatar != nil {
		user.Avatar = strings.TrimSpace(*in.Avatar)
	}
	if in.Birthday != nil {
		if in.Birthday.After(time.Now()) {
			return nil, validation.FieldError("birthday", "Birthday cannot be in the future.")
		}
		user.Birthday = in.Birthday
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SetStaff(ctx context.Context, email string, staff bool) (*models.User, error) {
	return s.userRepo.SetStaff(ctx, validation.NormalizeEmail(email), staff)
}

func (s *UserService) ListStaff(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListStaff(ctx)
}
