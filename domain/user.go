package domain

import "time"

// User is the aggregate root of the ownership chain. Everything a user can
// see or edit hangs off one of their projects.
type User struct {
	ID             UserID
	Username       string
	HashedPassword string
	CreatedAt      time.Time

	Projects []*Project
}

// NewUser creates a registered user seeded with an example project. The
// caller validates username and password bounds beforehand.
func NewUser(username, hashedPassword string) *User {
	u := &User{
		ID:             NewUserID(),
		Username:       username,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}
	u.AddProject(NewProject(
		"Your first project",
		"Add sensible description of the project, if need be.",
	))
	return u
}

// AddProject attaches a project to the user and stamps ownership through the
// whole child tree.
func (u *User) AddProject(p *Project) {
	p.setOwner(u.ID)
	u.Projects = append(u.Projects, p)
}
