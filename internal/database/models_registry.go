package database

import "inkwell/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models
// in dependency order.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.RevokedSession{},
	}
}
