package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chattym/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestCommentService_CreateComment_Validation(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(noopCommentRepo(), noopPostRepo(), nil, nil)
	ctx := context.Background()

	t.Run("blank content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 1, Content: "   "})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{
			UserID:  1,
			PostID:  1,
			Content: strings.Repeat("x", models.CommentContentMaxLen+1),
		})
		assertValidationError(t, err)
	})

	t.Run("inactive post is not found", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, IsActive: false}, nil
		}
		svc2 := NewCommentService(noopCommentRepo(), postRepo, nil, nil)
		_, err := svc2.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 99, Content: "hi"})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("parent on another post", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 2, IsActive: true}, nil
		}
		svc2 := NewCommentService(commentRepo, noopPostRepo(), nil, nil)
		_, err := svc2.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 1, ParentID: uintPtr(5), Content: "hi"})
		assertValidationError(t, err)
	})
}

func TestCommentService_CreateComment_NotifiesOwner(t *testing.T) {
	t.Parallel()

	spy := &notifierSpy{}
	var stored *models.Comment
	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 42
		stored = c
		return nil
	}

	svc := NewCommentService(commentRepo, noopPostRepo(), spy, nil)
	comment, err := svc.CreateComment(context.Background(), CreateCommentInput{UserID: 1, PostID: 1, Content: "  hello  "})
	require.NoError(t, err)
	assert.Equal(t, uint(42), comment.ID)
	assert.Equal(t, "hello", stored.Content)
	assert.True(t, stored.IsActive)

	require.Len(t, spy.calls, 1)
	assert.Equal(t, models.VerbCommentedPost, spy.calls[0].Verb)
	assert.Equal(t, uint(100), spy.calls[0].RecipientID)
	assert.Equal(t, uint(1), spy.calls[0].ActorID)
}

func TestCommentService_CreateComment_ReplyToReplyAttachesToRoot(t *testing.T) {
	t.Parallel()

	spy := &notifierSpy{}
	commentRepo := noopCommentRepo()
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		switch id {
		case 7:
			return &models.Comment{ID: 7, UserID: 3, PostID: 1, ParentID: uintPtr(6), IsActive: true}, nil
		case 6:
			return &models.Comment{ID: 6, UserID: 2, PostID: 1, IsActive: true}, nil
		}
		return nil, models.NewNotFoundError("Comment", id)
	}

	svc := NewCommentService(commentRepo, noopPostRepo(), spy, nil)
	comment, err := svc.CreateComment(context.Background(), CreateCommentInput{UserID: 1, PostID: 1, ParentID: uintPtr(7), Content: "deep"})
	require.NoError(t, err)
	require.NotNil(t, comment.ParentID)
	assert.Equal(t, uint(6), *comment.ParentID)

	assert.Equal(t, []string{models.VerbCommentedPost, models.VerbRepliedComment}, spy.verbs())
	assert.Equal(t, uint(2), spy.calls[1].RecipientID)
}

func TestCommentService_CreateComment_ReplyToOwnerNotifiesOnce(t *testing.T) {
	t.Parallel()

	spy := &notifierSpy{}
	commentRepo := noopCommentRepo()
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, UserID: 100, PostID: 1, IsActive: true}, nil
	}

	svc := NewCommentService(commentRepo, noopPostRepo(), spy, nil)
	_, err := svc.CreateComment(context.Background(), CreateCommentInput{UserID: 1, PostID: 1, ParentID: uintPtr(6), Content: "hey"})
	require.NoError(t, err)
	assert.Equal(t, []string{models.VerbCommentedPost}, spy.verbs())
}

func TestCommentService_UpdateComment_Ownership(t *testing.T) {
	t.Parallel()

	owned := func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, UserID: 10, PostID: 1, Content: "old", IsActive: true}, nil
	}

	t.Run("non-owner is forbidden", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = owned
		svc := NewCommentService(commentRepo, noopPostRepo(), nil, staffIs(false))
		_, err := svc.UpdateComment(context.Background(), UpdateCommentInput{UserID: 1, CommentID: 1, Content: "new"})
		assertForbiddenError(t, err)
	})

	t.Run("blank content is invalid", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = owned
		svc := NewCommentService(commentRepo, noopPostRepo(), nil, nil)
		_, err := svc.UpdateComment(context.Background(), UpdateCommentInput{UserID: 10, CommentID: 1, Content: ""})
		assertValidationError(t, err)
	})

	t.Run("staff edit is stamped with the editor", func(t *testing.T) {
		t.Parallel()
		var editor uint
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = owned
		commentRepo.updateContentFn = func(_ context.Context, _ uint, _ string, editorID uint, _ time.Time) error {
			editor = editorID
			return nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil, staffIs(true))
		comment, err := svc.UpdateComment(context.Background(), UpdateCommentInput{UserID: 5, CommentID: 1, Content: "moderated"})
		require.NoError(t, err)
		assert.Equal(t, "moderated", comment.Content)
		assert.True(t, comment.IsEdited())
		assert.Equal(t, uint(5), editor)
		assert.Equal(t, uint(5), *comment.EditedByID)
	})
}

func TestCommentService_DeleteComment_Ownership(t *testing.T) {
	t.Parallel()

	owned := func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, UserID: 10}, nil
	}

	t.Run("owner can delete", func(t *testing.T) {
		t.Parallel()
		deleted := false
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = owned
		commentRepo.deactivateFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil, nil)
		require.NoError(t, svc.DeleteComment(context.Background(), 10, 1))
		assert.True(t, deleted)
	})

	t.Run("non-owner without staff checker is forbidden", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = owned
		svc := NewCommentService(commentRepo, noopPostRepo(), nil, nil)
		assertForbiddenError(t, svc.DeleteComment(context.Background(), 1, 1))
	})

	t.Run("staff can delete another user's comment", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = owned
		svc := NewCommentService(commentRepo, noopPostRepo(), nil, staffIs(true))
		assert.NoError(t, svc.DeleteComment(context.Background(), 1, 1))
	})

	t.Run("staff check error propagates", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = owned
		staffErr := errors.New("staff check failed")
		svc := NewCommentService(commentRepo, noopPostRepo(), nil, func(context.Context, uint) (bool, error) {
			return false, staffErr
		})
		assert.ErrorIs(t, svc.DeleteComment(context.Background(), 1, 1), staffErr)
	})
}
