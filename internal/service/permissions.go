package service

import (
	"context"

	"chattym/internal/models"
)

// StaffChecker reports whether a user has staff rights.
type StaffChecker func(ctx context.Context, userID uint) (bool, error)

// requireOwnerOrStaff allows the owner of a resource or any staff member.
func requireOwnerOrStaff(ctx context.Context, isStaff StaffChecker, actorID, ownerID uint) error {
	if actorID != 0 && actorID == ownerID {
		return nil
	}
	if isStaff != nil && actorID != 0 {
		staff, err := isStaff(ctx, actorID)
		if err != nil {
			return err
		}
		if staff {
			return nil
		}
	}
	return models.NewForbiddenError(models.PermissionDeniedText)
}
