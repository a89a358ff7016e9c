package task

import "github.com/trezcool/kazi/core/user"

// Principal is the authenticated identity a request acts as.
type Principal struct {
	ID   string
	Role user.Role
}

func PrincipalOf(usr user.User) Principal {
	return Principal{ID: usr.ID, Role: usr.Role}
}

// Scope is the set of task rows a Principal may read.
//
//	ADMIN:    every task
//	EDUCATOR: tasks they created
//	STUDENT:  tasks assigned to them, tasks they created,
//	          and unassigned tasks created by any EDUCATOR
//
// Archived tasks are outside every scope unless IncludeArchived is set.
// Repositories render the same rules in SQL; Allows is the in-process form.
type Scope struct {
	UserID          string
	Role            user.Role
	IncludeArchived bool
}

func ScopeFor(p Principal, includeArchived ...bool) Scope {
	s := Scope{UserID: p.ID, Role: p.Role}
	if len(includeArchived) > 0 {
		s.IncludeArchived = includeArchived[0]
	}
	return s
}

// Allows reports whether t is inside the scope. creatorRole is the role of t's creator.
func (s Scope) Allows(t Task, creatorRole user.Role) bool {
	if t.IsArchived() && !s.IncludeArchived {
		return false
	}
	switch s.Role {
	case user.RoleAdmin:
		return true
	case user.RoleEducator:
		return t.CreatorID == s.UserID
	case user.RoleStudent:
		return t.IsAssignedTo(s.UserID) ||
			t.CreatorID == s.UserID ||
			(t.IsUnassigned() && creatorRole == user.RoleEducator)
	}
	return false
}

// CanCreate reports whether p may create tasks.
func CanCreate(p Principal) bool {
	return p.Role == user.RoleEducator
}

// CanUpdate reports whether p may modify t. Checked against the current row on every call.
func CanUpdate(p Principal, t Task) bool {
	return p.Role == user.RoleAdmin || t.CreatorID == p.ID || t.IsAssignedTo(p.ID)
}

// CanDelete reports whether p may archive t. Assignees may not.
func CanDelete(p Principal, t Task) bool {
	return p.Role == user.RoleAdmin || t.CreatorID == p.ID
}
