package application

import (
	"context"
	"errors"
	"testing"

	"plushiebot/domain/entities"
	"plushiebot/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMemberSync_Rebuild(t *testing.T) {
	roles := services.EligibilityRoles{DonorRoleIDs: []int64{1}, HuntRoleID: 2, AbsentRoleID: 3}
	filter := services.NewEligibilityFilter(roles)

	platform := new(mockPlatform)
	platform.On("ListGuildMembers", mock.Anything).Return([]entities.Member{
		{ID: 10, Username: "Ash", RoleIDs: []int64{1, 2}},
		{ID: 11, Username: "Gary", RoleIDs: []int64{1, 2, 3}},
		{ID: 12, Username: "Misty", RoleIDs: []int64{2}},
	}, nil)

	ms := NewMemberSync(platform, filter)
	require.NoError(t, ms.Rebuild(context.Background()))

	assert.Equal(t, 1, filter.Size())
	assert.True(t, filter.IsEligible(10))

	ms.OnMemberChange(entities.Member{ID: 10, Username: "Ash", RoleIDs: []int64{1, 2, 3}})
	assert.False(t, filter.IsEligible(10), "absent role removes eligibility")

	ms.OnMemberChange(entities.Member{ID: 12, Username: "Misty", RoleIDs: []int64{1, 2}})
	id, ok := filter.ResolveByUsername("misty")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)
}

func TestMemberSync_RebuildError(t *testing.T) {
	filter := services.NewEligibilityFilter(services.EligibilityRoles{DonorRoleIDs: []int64{1}, HuntRoleID: 2})
	filter.RebuildAll([]entities.Member{{ID: 5, Username: "kept", RoleIDs: []int64{1, 2}}})

	platform := new(mockPlatform)
	platform.On("ListGuildMembers", mock.Anything).Return(nil, errors.New("gateway down"))

	err := NewMemberSync(platform, filter).Rebuild(context.Background())
	assert.Error(t, err)
	assert.True(t, filter.IsEligible(5), "existing set is untouched on failure")
}

func TestMemberSync_RebuildKeepsGatewayUpdatesFromDuringListing(t *testing.T) {
	roles := services.EligibilityRoles{DonorRoleIDs: []int64{1}, HuntRoleID: 2, AbsentRoleID: 3}
	filter := services.NewEligibilityFilter(roles)
	filter.RebuildAll([]entities.Member{
		{ID: 10, Username: "Ash", RoleIDs: []int64{2}},
		{ID: 11, Username: "Gary", RoleIDs: []int64{1, 2}},
	})

	platform := new(mockPlatform)
	ms := NewMemberSync(platform, filter)

	platform.On("ListGuildMembers", mock.Anything).
		Run(func(args mock.Arguments) {
			// Gateway events arrive while the paged listing is still running
			ms.OnMemberChange(entities.Member{ID: 10, Username: "Ash", RoleIDs: []int64{1, 2}})
			ms.OnMemberChange(entities.Member{ID: 11, Username: "Gary", RoleIDs: []int64{1, 2, 3}})
		}).
		Return([]entities.Member{
			{ID: 10, Username: "Ash", RoleIDs: []int64{2}},
			{ID: 11, Username: "Gary", RoleIDs: []int64{1, 2}},
		}, nil)

	require.NoError(t, ms.Rebuild(context.Background()))

	assert.True(t, filter.IsEligible(10), "role grant during listing survives the rebuild")
	assert.False(t, filter.IsEligible(11), "absent role during listing survives the rebuild")
	assert.Equal(t, 1, filter.Size())
}
