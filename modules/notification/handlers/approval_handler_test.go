package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campus-hq/venue-portal/modules/approval/domain/letter"
	"github.com/campus-hq/venue-portal/modules/notification/domain/notification"
)

func TestCategoryForDecision(t *testing.T) {
	for _, role := range []letter.Role{
		letter.RoleViceChancellor,
		letter.RoleWarden,
		letter.RoleAdministration,
		letter.RoleStudentUnion,
	} {
		require.Equal(t, notification.CategoryAuthorityDecided, categoryForDecision(role), "role %s", role)
	}
	require.Equal(t, notification.CategoryServiceProviderDecided, categoryForDecision(letter.RoleServiceProvider))
}
