package services

import (
	"strings"
	"sync"

	"plushiebot/domain/entities"

	log "github.com/sirupsen/logrus"
)

// EligibilityRoles is the fixed role conjunction for drop participation
type EligibilityRoles struct {
	// DonorRoleIDs are interchangeable; holding any one of them is enough
	DonorRoleIDs    []int64
	HuntRoleID      int64
	AbsentRoleID    int64
	NonWeeklyRoleID int64
}

// Allows reports whether a member's roles satisfy the predicate
func (r EligibilityRoles) Allows(m entities.Member) bool {
	if m.Removed {
		return false
	}
	donor := false
	for _, id := range r.DonorRoleIDs {
		if m.HasRole(id) {
			donor = true
			break
		}
	}
	if !donor || !m.HasRole(r.HuntRoleID) {
		return false
	}
	if r.AbsentRoleID != 0 && m.HasRole(r.AbsentRoleID) {
		return false
	}
	if r.NonWeeklyRoleID != 0 && m.HasRole(r.NonWeeklyRoleID) {
		return false
	}
	return true
}

type eligibleMember struct {
	username string
	roles    map[int64]struct{}
}

// RebuildMark is the change sequence a roster listing started from
type RebuildMark uint64

// EligibilityFilter owns the set of eligible members and the lowercase
// username index. Both maps change together under one lock.
type EligibilityFilter struct {
	roles EligibilityRoles

	mu        sync.RWMutex
	members   map[int64]eligibleMember
	usernames map[string]int64

	// seq counts single-member changes; changed holds the seq of each member's latest one
	seq     uint64
	changed map[int64]uint64
}

// NewEligibilityFilter creates an empty filter for the given predicate
func NewEligibilityFilter(roles EligibilityRoles) *EligibilityFilter {
	return &EligibilityFilter{
		roles:     roles,
		members:   make(map[int64]eligibleMember),
		usernames: make(map[string]int64),
		changed:   make(map[int64]uint64),
	}
}

// MarkRebuild returns the mark to pass to RebuildSince. Take it before the
// roster listing starts.
func (f *EligibilityFilter) MarkRebuild() RebuildMark {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return RebuildMark(f.seq)
}

// RebuildAll replaces the whole set from a full member listing
func (f *EligibilityFilter) RebuildAll(members []entities.Member) {
	f.RebuildSince(members, f.MarkRebuild())
}

// RebuildSince replaces the set from a listing that started at mark. Members
// changed by OnMemberRoleChange after mark keep their current state, since the
// listing may predate that change.
func (f *EligibilityFilter) RebuildSince(members []entities.Member, mark RebuildMark) {
	nextMembers := make(map[int64]eligibleMember, len(members))
	nextUsernames := make(map[string]int64, len(members))

	for _, m := range members {
		if !f.roles.Allows(m) {
			continue
		}
		entry := newEligibleMember(m)
		nextMembers[m.ID] = entry
		if entry.username != "" {
			nextUsernames[entry.username] = m.ID
		}
	}

	f.mu.Lock()
	kept := 0
	for id, stamp := range f.changed {
		if stamp <= uint64(mark) {
			delete(f.changed, id)
			continue
		}
		kept++
		if stale, ok := nextMembers[id]; ok {
			if nextUsernames[stale.username] == id {
				delete(nextUsernames, stale.username)
			}
			delete(nextMembers, id)
		}
		if cur, ok := f.members[id]; ok {
			nextMembers[id] = cur
			if cur.username != "" {
				nextUsernames[cur.username] = id
			}
		}
	}
	f.members = nextMembers
	f.usernames = nextUsernames
	eligible := len(nextMembers)
	f.mu.Unlock()

	log.WithFields(log.Fields{
		"scanned":  len(members),
		"eligible": eligible,
		"kept":     kept,
	}).Info("Rebuilt eligible member set")
}

// OnMemberRoleChange recomputes membership for a single member
func (f *EligibilityFilter) OnMemberRoleChange(m entities.Member) {
	allowed := f.roles.Allows(m)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	f.changed[m.ID] = f.seq

	prev, existed := f.members[m.ID]
	if existed && f.usernames[prev.username] == m.ID {
		delete(f.usernames, prev.username)
	}

	if !allowed {
		delete(f.members, m.ID)
		if existed {
			log.WithField("memberID", m.ID).Debug("Member left eligible set")
		}
		return
	}

	entry := newEligibleMember(m)
	f.members[m.ID] = entry
	if entry.username != "" {
		f.usernames[entry.username] = m.ID
	}
	if !existed {
		log.WithField("memberID", m.ID).Debug("Member joined eligible set")
	}
}

// IsEligible returns true if the member satisfies the role predicate
func (f *EligibilityFilter) IsEligible(memberID int64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.members[memberID]
	return ok
}

// IsEligibleFor also requires the promo role when one is configured
func (f *EligibilityFilter) IsEligibleFor(memberID int64, promoRoleID *int64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entry, ok := f.members[memberID]
	if !ok {
		return false
	}
	if promoRoleID == nil || *promoRoleID == 0 {
		return true
	}
	_, has := entry.roles[*promoRoleID]
	return has
}

// ResolveByUsername looks up an eligible member by case-insensitive username.
// Shared usernames resolve to whichever member was indexed last.
func (f *EligibilityFilter) ResolveByUsername(name string) (int64, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return 0, false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	id, ok := f.usernames[key]
	return id, ok
}

// Size returns the number of eligible members
func (f *EligibilityFilter) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.members)
}

func newEligibleMember(m entities.Member) eligibleMember {
	roles := make(map[int64]struct{}, len(m.RoleIDs))
	for _, r := range m.RoleIDs {
		roles[r] = struct{}{}
	}
	return eligibleMember{
		username: strings.ToLower(strings.TrimSpace(m.Username)),
		roles:    roles,
	}
}
