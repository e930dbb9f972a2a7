package database

import "chattym/internal/models"

// PersistentModels lists every table AutoMigrate manages, parents first.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Subscription{},
		&models.Conversation{},
		&models.Participant{},
		&models.Message{},
		&models.Notification{},
	}
}
