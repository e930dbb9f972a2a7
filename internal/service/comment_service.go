package service

import (
	"context"
	"strings"
	"time"

	"chattym/internal/models"
	"chattym/internal/repository"
	"chattym/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	notifier    Notifier
	isStaff     StaffChecker
	now         func() time.Time
}

type CreateCommentInput struct {
	UserID   uint   `json:"-" form:"-"`
	PostID   uint   `json:"-" form:"-"`
	ParentID *uint  `json:"parent_id" form:"parent_id"`
	Content  string `json:"content" form:"content" validate:"notblank,max=2000"`
}

type UpdateCommentInput struct {
	UserID    uint   `json:"-" form:"-"`
	CommentID uint   `json:"-" form:"-"`
	Content   string `json:"content" form:"content" validate:"notblank,max=2000"`
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	notifier Notifier,
	isStaff StaffChecker,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		notifier:    notifier,
		isStaff:     isStaff,
		now:         time.Now,
	}
}

// CreateComment adds a comment or a reply. Replies to replies attach to the
// root comment so threads stay one level deep.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !post.IsActive {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var parent *models.Comment
	if in.ParentID != nil {
		parent, err = s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil || !parent.IsActive || parent.PostID != post.ID {
			return nil, validation.FieldError("parent_id", "Invalid parent comment.")
		}
		if parent.ParentID != nil {
			root, err := s.commentRepo.GetByID(ctx, *parent.ParentID)
			if err != nil {
				return nil, err
			}
			parent = root
		}
	}

	comment := &models.Comment{
		UserID:   in.UserID,
		PostID:   post.ID,
		Content:  in.Content,
		IsActive: true,
	}
	if parent != nil {
		parentID := parent.ID
		comment.ParentID = &parentID
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	data := models.NotificationData{"post_id": post.ID, "comment_id": comment.ID}
	notify(ctx, s.notifier, NotifyInput{
		RecipientID: post.UserID,
		ActorID:     in.UserID,
		Verb:        models.VerbCommentedPost,
		Target:      models.CommentTarget(comment.ID),
		Data:        data,
	})
	if parent != nil && parent.UserID != post.UserID {
		notify(ctx, s.notifier, NotifyInput{
			RecipientID: parent.UserID,
			ActorID:     in.UserID,
			Verb:        models.VerbRepliedComment,
			Target:      models.CommentTarget(comment.ID),
			Data:        data,
		})
	}

	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]CommentView, error) {
	if _, err := s.postRepo.GetActiveByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListForPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, toCommentView(&comments[i]))
	}
	return views, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrStaff(ctx, s.isStaff, in.UserID, comment.UserID); err != nil {
		return nil, err
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	at := s.now()
	if err := s.commentRepo.UpdateContent(ctx, comment.ID, in.Content, in.UserID, at); err != nil {
		return nil, err
	}
	comment.Content = in.Content
	comment.MarkEdited(in.UserID, at)
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := requireOwnerOrStaff(ctx, s.isStaff, userID, comment.UserID); err != nil {
		return err
	}
	return s.commentRepo.Deactivate(ctx, commentID)
}
