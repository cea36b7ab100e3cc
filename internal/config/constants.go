package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultBackupDir is where scheduled snapshot exports are written
	DefaultBackupDir = "./backups"
)
