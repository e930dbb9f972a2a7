package service

import (
	"context"
	"strings"

	"chattym/internal/models"
	"chattym/internal/observability"
	"chattym/internal/repository"
	"chattym/internal/validation"
)

const (
	FeedPageSize  = 9
	PostsPageSize = 10
)

type PostService struct {
	postRepo    repository.PostRepository
	likeRepo    repository.LikeRepository
	commentRepo repository.CommentRepository
	isStaff     StaffChecker
}

type CreatePostInput struct {
	UserID uint   `json:"-" form:"-"`
	Title  string `json:"title" form:"title" validate:"notblank,max=100"`
	Text   string `json:"text" form:"text" validate:"notblank,max=2500"`
	Image  string `json:"image" form:"image" validate:"max=255"`
}

// UpdatePostInput is a partial update; nil fields are left unchanged.
type UpdatePostInput struct {
	UserID   uint    `json:"-" form:"-"`
	PostID   uint    `json:"-" form:"-"`
	Title    *string `json:"title" form:"title" validate:"omitnil,notblank,max=100"`
	Text     *string `json:"text" form:"text" validate:"omitnil,notblank,max=2500"`
	Image    *string `json:"image" form:"image" validate:"omitnil,max=255"`
	IsActive *bool   `json:"is_active" form:"is_active"`
}

type ListPostsInput struct {
	ViewerID uint
	Search   string
	Q        string
	UserID   uint
	Active   *bool
	Ordering string
	Page     int
}

// FeedPage is a page of the home feed with the ids the viewer liked.
type FeedPage struct {
	*PageResult[PostView]
	LikedPostIDs []uint `json:"liked_post_ids"`
}

// PostDetail is the post page payload.
type PostDetail struct {
	Post      PostView      `json:"post"`
	UserLiked bool          `json:"user_liked"`
	Comments  []CommentView `json:"comments"`
}

func NewPostService(
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	commentRepo repository.CommentRepository,
	isStaff StaffChecker,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		likeRepo:    likeRepo,
		commentRepo: commentRepo,
		isStaff:     isStaff,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*PostView, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Text = strings.TrimSpace(in.Text)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:   in.UserID,
		Title:    in.Title,
		Text:     in.Text,
		Image:    strings.TrimSpace(in.Image),
		IsActive: true,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	view := toPostView(created)
	return &view, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*PostView, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrStaff(ctx, s.isStaff, in.UserID, post.UserID); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Text != nil {
		fields["text"] = strings.TrimSpace(*in.Text)
	}
	if in.Image != nil {
		fields["image"] = strings.TrimSpace(*in.Image)
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if err := s.postRepo.UpdateFields(ctx, post.ID, fields); err != nil {
		return nil, err
	}

	updated, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	view := toPostView(updated)
	return &view, nil
}

// DeletePost deactivates the post. Rows are never removed.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := requireOwnerOrStaff(ctx, s.isStaff, userID, post.UserID); err != nil {
		return err
	}
	return s.postRepo.Deactivate(ctx, postID)
}

func (s *PostService) Feed(ctx context.Context, viewerID uint, page int) (*FeedPage, error) {
	posts, total, err := s.postRepo.Feed(ctx, viewerID, repository.NewPage(page, FeedPageSize))
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	liked, err := s.likeRepo.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	return &FeedPage{
		PageResult:   newPageResult(toPostViews(posts), total, page, FeedPageSize),
		LikedPostIDs: liked,
	}, nil
}

// GetPost returns an active post with its comment tree.
func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*PostDetail, error) {
	span, ctx := observability.StartServiceSpan(ctx, "PostService", "GetPost")
	defer span.End()

	post, err := s.postRepo.GetActiveByID(ctx, postID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	liked, err := s.likeRepo.IsLiked(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListForPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	post.Liked = liked
	detail := &PostDetail{
		Post:      toPostView(post),
		UserLiked: liked,
		Comments:  make([]CommentView, 0, len(comments)),
	}
	for i := range comments {
		detail.Comments = append(detail.Comments, toCommentView(&comments[i]))
	}
	return detail, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*PageResult[PostView], error) {
	staff := false
	if in.ViewerID != 0 && in.Active != nil && !*in.Active && s.isStaff != nil {
		var err error
		if staff, err = s.isStaff(ctx, in.ViewerID); err != nil {
			return nil, err
		}
	}

	posts, total, err := s.postRepo.Query(ctx, repository.PostQuery{
		Search:        in.Search,
		Q:             in.Q,
		UserID:        in.UserID,
		Active:        in.Active,
		Ordering:      in.Ordering,
		ViewerID:      in.ViewerID,
		ViewerIsStaff: staff,
		Page:          repository.NewPage(in.Page, PostsPageSize),
	})
	if err != nil {
		return nil, err
	}
	return newPageResult(toPostViews(posts), total, in.Page, PostsPageSize), nil
}

// MyPosts lists every post of the user, active or not.
func (s *PostService) MyPosts(ctx context.Context, userID uint, page int) (*PageResult[PostView], error) {
	posts, total, err := s.postRepo.ListByUser(ctx, userID, userID, true, repository.NewPage(page, PostsPageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(toPostViews(posts), total, page, PostsPageSize), nil
}

func (s *PostService) UserPosts(ctx context.Context, userID, viewerID uint, page int) (*PageResult[PostView], error) {
	posts, total, err := s.postRepo.ListByUser(ctx, userID, viewerID, false, repository.NewPage(page, PostsPageSize))
	if err != nil {
		return nil, err
	}
	return newPageResult(toPostViews(posts), total, page, PostsPageSize), nil
}
