package authz

import "chats/internal/models"

var (
	// AnyMember covers every registered role.
	AnyMember = []models.Role{models.RoleUser, models.RoleAdmin}
	AdminOnly = []models.Role{models.RoleAdmin}
)

func HasRole(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// CanManageUser reports whether actor may change the account of targetID.
func CanManageUser(actor *models.User, targetID int) bool {
	return actor != nil && (actor.UserID == targetID || actor.IsAdmin())
}
