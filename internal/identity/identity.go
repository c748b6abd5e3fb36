// Package identity resolves owner identities to display names used in
// watermark labels and notifications
package identity

import (
	"context"
	"log"
	"strings"

	"github.com/photoblog/photoflow/internal/repository"
)

// Resolver - контракт справочника пользователей
type Resolver interface {
	DisplayName(ctx context.Context, owner string) (string, error)
}

// RepoResolver резолвит имя из таблицы users; при промахе деградирует до
// локальной части почты - обработка не должна падать из-за справочника
type RepoResolver struct {
	users repository.UserRepo
}

func NewRepoResolver(users repository.UserRepo) *RepoResolver {
	return &RepoResolver{users: users}
}

func (r *RepoResolver) DisplayName(ctx context.Context, owner string) (string, error) {
	name, err := r.users.DisplayName(ctx, owner)
	if err != nil {
		log.Printf("Failed to resolve display name for %q, falling back to identity: %v", owner, err)
		return fallbackName(owner), nil
	}
	if name == "" {
		return fallbackName(owner), nil
	}
	return name, nil
}

func fallbackName(owner string) string {
	if at := strings.IndexByte(owner, '@'); at > 0 {
		return owner[:at]
	}
	return owner
}
