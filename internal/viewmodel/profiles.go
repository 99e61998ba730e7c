package viewmodel

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/repository"
	"github.com/google/uuid"
)

// UnknownAuthor labels an owner or creator whose profile is not available.
const UnknownAuthor = "Someone"

// ResolveProfiles fetches the profiles not yet cached in one batched select.
// Failures are ignored; labels fall back to UnknownAuthor.
func (m *Model) ResolveProfiles(ctx context.Context, ids []uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolveProfiles(m.scope(ctx), ids)
}

func (m *Model) resolveProfiles(ctx context.Context, ids []uuid.UUID) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	missing := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := m.profiles[id]; ok {
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return
	}

	profiles, err := m.repos.Profiles.Select(ctx, repository.ProfileFilter{IDs: missing})
	if err != nil {
		slog.Debug("profile lookup failed", "error", err, "count", len(missing))
		return
	}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
}

// ProfileLabel returns the display name for a user id.
func (m *Model) ProfileLabel(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[id]; ok && p.DisplayName != nil && strings.TrimSpace(*p.DisplayName) != "" {
		return *p.DisplayName
	}
	if id != uuid.Nil && id == m.user.ID {
		return "You"
	}
	return UnknownAuthor
}
