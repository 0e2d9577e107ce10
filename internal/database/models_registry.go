package database

import "github.com/AlbertoOrlando/travel-journal-app/internal/models"

// PersistentModels returns the schema-managed GORM models in dependency order.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Post{},
		&models.Tag{},
		&models.PostTag{},
	}
}
