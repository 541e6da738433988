package users

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/pr-admin-client/internal/errors"
)

const DefaultAdminName = "Administrator"

// SeedAdmin creates the admin account if no user with email exists. When password is empty a
// random one is generated and returned; an existing account yields an empty password.
func SeedAdmin(repo Repo, email, password string) (generatedPassword string, err error) {
	existing, err := repo.GetByEmail(email)
	if err == nil && existing != nil {
		return "", nil
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("[users SeedAdmin] failed to look up %s: %w", email, err)
	}

	if password == "" {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("[users SeedAdmin] failed to generate password: %w", err)
		}
		// satisfy the strength rules whatever the random part holds
		password = base64.URLEncoding.EncodeToString(passwordBytes) + "Aa1"
		generatedPassword = password
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return "", fmt.Errorf("[users SeedAdmin] admin password rejected: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("[users SeedAdmin] failed to hash password: %w", err)
	}

	admin := &User{
		Email:        strings.ToLower(email),
		Name:         DefaultAdminName,
		PasswordHash: hash,
		Role:         RoleAdmin,
	}
	if err := repo.Upsert(admin); err != nil {
		return "", fmt.Errorf("[users SeedAdmin] failed to store admin: %w", err)
	}
	return generatedPassword, nil
}
