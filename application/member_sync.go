package application

import (
	"context"
	"fmt"

	"plushiebot/domain/entities"
	"plushiebot/domain/services"

	log "github.com/sirupsen/logrus"
)

// MemberSync keeps the eligibility filter in step with the guild roster
type MemberSync struct {
	platform ChatPlatform
	filter   *services.EligibilityFilter
}

// NewMemberSync creates a member sync
func NewMemberSync(platform ChatPlatform, filter *services.EligibilityFilter) *MemberSync {
	return &MemberSync{platform: platform, filter: filter}
}

// Rebuild reloads every guild member and replaces the eligible set
func (s *MemberSync) Rebuild(ctx context.Context) error {
	mark := s.filter.MarkRebuild()
	members, err := s.platform.ListGuildMembers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list guild members: %w", err)
	}

	s.filter.RebuildSince(members, mark)
	log.WithField("eligible", s.filter.Size()).Debug("Guild roster synced")
	return nil
}

// OnMemberChange applies a single join, role update or leave
func (s *MemberSync) OnMemberChange(member entities.Member) {
	s.filter.OnMemberRoleChange(member)
}
