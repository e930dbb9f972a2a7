// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"chattym/internal/middleware"
	"chattym/internal/models"
	"chattym/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DefaultPassword is assigned to every seeded account. It satisfies the
// signup password rules so seeded users can log in through the API.
const DefaultPassword = "Password123!"

// Options configures one seeding run.
type Options struct {
	Users                   int     `yaml:"users"`
	PostsPerUser            int     `yaml:"posts_per_user"`
	CommentsPerPost         int     `yaml:"comments_per_post"`
	LikeRatio               float64 `yaml:"like_ratio"`
	FollowRatio             float64 `yaml:"follow_ratio"`
	InactivePostRatio       float64 `yaml:"inactive_post_ratio"`
	Conversations           int     `yaml:"conversations"`
	MessagesPerConversation int     `yaml:"messages_per_conversation"`
	Password                string  `yaml:"password"`
	Seed                    int64   `yaml:"seed"`
	Workers                 int     `yaml:"workers"`
}

// Validate rejects negative counts and ratios outside [0, 1].
func (o Options) Validate() error {
	if o.Users < 0 || o.PostsPerUser < 0 || o.CommentsPerPost < 0 ||
		o.Conversations < 0 || o.MessagesPerConversation < 0 || o.Workers < 0 {
		return errors.New("counts must not be negative")
	}
	for _, r := range []float64{o.LikeRatio, o.FollowRatio, o.InactivePostRatio} {
		if r < 0 || r > 1 {
			return errors.New("ratios must be between 0 and 1")
		}
	}
	if o.Conversations > 0 && o.Users < 2 {
		return errors.New("conversations need at least 2 users")
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Password == "" {
		o.Password = DefaultPassword
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	return o
}

// Summary counts the rows a run created.
type Summary struct {
	Users         int
	Posts         int
	Comments      int
	Likes         int
	Subscriptions int
	Conversations int
	Messages      int
}

// Seeder writes generated data through gorm and the messaging repository.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	msgs    repository.MessagingRepository
	likes   repository.LikeRepository
}

// NewSeeder binds a Seeder to db. A zero seed picks a random one.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(gofakeit.New(seed)),
		msgs:    repository.NewMessagingRepository(db),
		likes:   repository.NewLikeRepository(db),
	}
}

// Run creates users, posts, comments, likes, subscriptions and direct
// conversations according to opts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	sum := &Summary{}

	users, err := s.seedUsers(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	sum.Users = len(users)

	posts, err := s.seedPosts(ctx, users, opts)
	if err != nil {
		return nil, fmt.Errorf("seed posts: %w", err)
	}
	sum.Posts = len(posts)

	if sum.Comments, err = s.seedComments(ctx, users, posts, opts); err != nil {
		return nil, fmt.Errorf("seed comments: %w", err)
	}
	if sum.Likes, err = s.seedLikes(ctx, users, posts, opts); err != nil {
		return nil, fmt.Errorf("seed likes: %w", err)
	}
	if sum.Subscriptions, err = s.seedSubscriptions(ctx, users, opts); err != nil {
		return nil, fmt.Errorf("seed subscriptions: %w", err)
	}
	if sum.Conversations, sum.Messages, err = s.seedConversations(ctx, users, opts); err != nil {
		return nil, fmt.Errorf("seed conversations: %w", err)
	}

	middleware.Logger.InfoContext(ctx, "seeding complete",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("likes", sum.Likes),
		slog.Int("subscriptions", sum.Subscriptions),
		slog.Int("conversations", sum.Conversations),
		slog.Int("messages", sum.Messages),
	)
	return sum, nil
}

func (s *Seeder) seedUsers(ctx context.Context, opts Options) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		users = append(users, s.factory.User(i, string(hash)))
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(users, 200).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// seedPosts fans out one worker per author, bounded by opts.Workers.
func (s *Seeder) seedPosts(ctx context.Context, users []*models.User, opts Options) ([]*models.Post, error) {
	if opts.PostsPerUser == 0 {
		return nil, nil
	}

	var (
		mu    sync.Mutex
		posts = make([]*models.Post, 0, len(users)*opts.PostsPerUser)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for _, u := range users {
		g.Go(func() error {
			batch := make([]*models.Post, 0, opts.PostsPerUser)
			for range opts.PostsPerUser {
				batch = append(batch, s.factory.Post(u, s.factory.chance(opts.InactivePostRatio)))
			}
			if err := s.db.WithContext(gctx).Create(&batch).Error; err != nil {
				return err
			}
			mu.Lock()
			posts = append(posts, batch...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Seeder) seedComments(ctx context.Context, users []*models.User, posts []*models.Post, opts Options) (int, error) {
	total := 0
	for _, p := range posts {
		if !p.IsActive {
			continue
		}
		var root *models.Comment
		for i := 0; i < opts.CommentsPerPost; i++ {
			c := s.factory.Comment(s.factory.pick(users), p, root)
			if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
				return total, err
			}
			if root == nil {
				root = c
			}
			total++
		}
	}
	return total, nil
}

// seedLikes inserts like edges then rebuilds every counter from them.
func (s *Seeder) seedLikes(ctx context.Context, users []*models.User, posts []*models.Post, opts Options) (int, error) {
	var likes []models.Like
	for _, p := range posts {
		for _, u := range users {
			if u.ID != p.UserID && s.factory.chance(opts.LikeRatio) {
				likes = append(likes, models.Like{UserID: u.ID, PostID: p.ID})
			}
		}
	}
	if len(likes) > 0 {
		if err := s.db.WithContext(ctx).CreateInBatches(likes, 500).Error; err != nil {
			return 0, err
		}
	}
	if _, err := s.likes.RecountAll(ctx, false, nil); err != nil {
		return 0, err
	}
	return len(likes), nil
}

func (s *Seeder) seedSubscriptions(ctx context.Context, users []*models.User, opts Options) (int, error) {
	var subs []models.Subscription
	for _, follower := range users {
		for _, following := range users {
			if follower.ID != following.ID && s.factory.chance(opts.FollowRatio) {
				subs = append(subs, models.Subscription{
					FollowerID:  follower.ID,
					FollowingID: following.ID,
					IsActive:    true,
				})
			}
		}
	}
	if len(subs) == 0 {
		return 0, nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(subs, 500).Error; err != nil {
		return 0, err
	}
	return len(subs), nil
}

// seedConversations opens direct conversations between random pairs. Pairs
// that already have one are reused, so the count may fall short of the target.
func (s *Seeder) seedConversations(ctx context.Context, users []*models.User, opts Options) (int, int, error) {
	created, messages := 0, 0
	for i := 0; i < opts.Conversations; i++ {
		a, b := s.factory.pair(users)
		conv, isNew, err := s.msgs.StartDirect(ctx, a.ID, b.ID)
		if err != nil {
			return created, messages, err
		}
		if !isNew {
			continue
		}
		created++

		for j := 0; j < opts.MessagesPerConversation; j++ {
			sender := a
			if j%2 == 1 {
				sender = b
			}
			if err := s.msgs.SendMessage(ctx, s.factory.Message(conv, sender)); err != nil {
				return created, messages, err
			}
			messages++
		}
	}
	return created, messages, nil
}

// clearOrder lists tables children first.
var clearOrder = []any{
	&models.Notification{},
	&models.Message{},
	&models.Participant{},
	&models.Conversation{},
	&models.Like{},
	&models.Comment{},
	&models.Subscription{},
	&models.Post{},
	&models.User{},
}

// Clear removes every row the seeder can create.
func Clear(ctx context.Context, db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		return db.WithContext(ctx).Exec(`TRUNCATE TABLE notifications, messages, participants, conversations, likes, comments, subscriptions, posts, users RESTART IDENTITY CASCADE`).Error
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range clearOrder {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
