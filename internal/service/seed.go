package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/auth"
)

type superuserStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *user.User) (user.User, error)
}

// seedSuperuser creates the first superuser unless the e-mail is taken.
// An empty e-mail disables seeding.
func seedSuperuser(ctx context.Context, users superuserStore,
	email, password string, log *slog.Logger,
) error {
	if email == "" {
		return nil
	}

	exists, err := users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up first superuser: %w", err)
	}
	if exists {
		log.LogAttrs(ctx, slog.LevelDebug, "first superuser already exists")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err //nolint: wrapcheck // already wrapped
	}
	created, err := users.Create(ctx, &user.User{
		Email:          email,
		HashedPassword: hash,
		IsActive:       true,
		IsSuperuser:    true,
	})
	if errors.Is(err, serviceerrs.ErrAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create first superuser: %w", err)
	}

	log.LogAttrs(ctx, slog.LevelInfo, "first superuser created",
		slog.Int64("user_id", created.ID))
	return nil
}
