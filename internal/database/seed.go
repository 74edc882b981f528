package database

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/mahora/task-tracker/internal/constants"
	"github.com/mahora/task-tracker/internal/models"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile is the YAML document used to create users out of band.
//
//	users:
//	  - name: Alice
//	    email: alice@example.com
//	    credential: secret
//	    role: admin
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

// SeedUser is one user entry in a SeedFile.
type SeedUser struct {
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Credential string `yaml:"credential"`
	Role       string `yaml:"role"`
}

// LoadSeedFile reads and validates a seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	for i, u := range seed.Users {
		if u.Name == "" || u.Email == "" || u.Credential == "" {
			return nil, fmt.Errorf("seed user %d: name, email and credential are required", i)
		}
		if err := checkSeedLengths(u); err != nil {
			return nil, fmt.Errorf("seed user %d: %w", i, err)
		}
	}

	return &seed, nil
}

// checkSeedLengths rejects values wider than their users column.
func checkSeedLengths(u SeedUser) error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"name", u.Name, constants.MaxNameLength},
		{"email", u.Email, constants.MaxEmailLength},
		{"credential", u.Credential, constants.MaxCredentialLength},
		{"role", u.Role, constants.MaxRoleLength},
	}
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > f.max {
			return fmt.Errorf("%s is longer than %d characters", f.name, f.max)
		}
	}
	return nil
}

// SeedUsers inserts every user whose email is not present yet and returns how
// many rows were created. Existing users are left untouched.
func SeedUsers(ctx context.Context, db *gorm.DB, seed *SeedFile) (int, error) {
	created := 0
	for _, u := range seed.Users {
		var count int64
		if err := db.WithContext(ctx).Model(&models.User{}).
			Where("email = ?", u.Email).
			Count(&count).Error; err != nil {
			return created, fmt.Errorf("failed to check seed user %s: %w", u.Email, err)
		}
		if count > 0 {
			continue
		}

		user := models.User{
			Name:       u.Name,
			Email:      u.Email,
			Credential: u.Credential,
			Role:       u.Role,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return created, fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
		created++
	}
	return created, nil
}
