package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/store"
	"github.com/aussiebroadwan/docket/pkg/slogx"
)

// UserService keeps the user directory in step with the identities seen on
// authenticated requests.
type UserService struct {
	Store store.Store
	Now   func() time.Time
}

// Observe records userID's current username. Failures are logged and never
// fail the request that triggered them.
func (s *UserService) Observe(ctx context.Context, userID, username string) {
	if userID == "" || username == "" {
		return
	}
	err := s.Store.Users().UpsertUser(ctx, domain.User{
		ID:        userID,
		Username:  username,
		UpdatedAt: nowFrom(s.Now),
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to record user",
			slog.String("user_id", userID),
			slogx.Err(err),
		)
	}
}
