// Package settingsstore resolves runtime settings. A value saved in the
// database wins over the environment, which wins over the built-in default.
package settingsstore

import (
	"os"

	"github.com/mrlokans/bookshelf/internal/entities"
)

const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

// Repository is the persistence the store reads and writes through.
// database/settings.Repository implements it.
type Repository interface {
	GetSetting(key string) (*entities.Setting, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

// SettingsStore layers database overrides on top of the environment
// configuration.
type SettingsStore struct {
	repo Repository
	// lookupEnv reports whether an environment variable was set explicitly.
	lookupEnv func(string) (string, bool)
}

func New(repo Repository) *SettingsStore {
	return &SettingsStore{repo: repo, lookupEnv: os.LookupEnv}
}

// stored returns the database value for key, or "" when there is none.
func (s *SettingsStore) stored(key string) (string, bool) {
	setting, err := s.repo.GetSetting(key)
	if err != nil || setting.Value == "" {
		return "", false
	}
	return setting.Value, true
}

func (s *SettingsStore) source(key, envName string) string {
	if _, ok := s.stored(key); ok {
		return SourceDatabase
	}
	if v, ok := s.lookupEnv(envName); ok && v != "" {
		return SourceEnvironment
	}
	return SourceDefault
}
