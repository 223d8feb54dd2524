package api

import "kanban-api/domain"

// Access decisions live here and nowhere else. Every entity row carries its
// owning user id, so the decision is one comparison regardless of how deep
// the entity sits in the project tree.

func canView(user *domain.User, owner domain.UserID) bool {
	return user != nil && user.ID == owner
}

func canEdit(user *domain.User, owner domain.UserID) bool {
	return canView(user, owner)
}
