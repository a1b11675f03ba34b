package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	profileDirName  = "wakeup"
	profileFileName = "profile.json"
)

// ProfileStore defines the interface for persisting the cached user profile
type ProfileStore interface {
	Save(user User) error
	Load() (User, bool, error)
	Delete() error
}

// FileProfileStore writes the profile as JSON under ~/.config/wakeup/profile.json
type FileProfileStore struct {
	// Path overrides the default location when set (used in tests)
	Path string
}

func (f FileProfileStore) path() (string, error) {
	if f.Path != "" {
		return f.Path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", profileDirName, profileFileName), nil
}

func (f FileProfileStore) Save(user User) error {
	profilePath, err := f.path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(profilePath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := os.WriteFile(profilePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}

	return nil
}

// Load returns the persisted profile. The second return value is false when
// no profile file exists. A file that exists but does not parse is reported
// as an error so the caller can discard the record.
func (f FileProfileStore) Load() (User, bool, error) {
	profilePath, err := f.path()
	if err != nil {
		return User{}, false, err
	}

	data, err := os.ReadFile(profilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return User{}, false, nil
		}
		return User{}, false, fmt.Errorf("failed to read profile file: %w", err)
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return User{}, false, fmt.Errorf("failed to parse profile file: %w", err)
	}

	if user.ID == "" {
		// A profile without an ID is a partial write, treat as corrupted
		return User{}, false, fmt.Errorf("profile file missing user id")
	}

	return user, true, nil
}

func (f FileProfileStore) Delete() error {
	profilePath, err := f.path()
	if err != nil {
		return err
	}

	if err := os.Remove(profilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete profile file: %w", err)
	}
	return nil
}
