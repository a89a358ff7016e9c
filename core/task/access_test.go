package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kazi/core/user"
)

func TestScope_Allows(t *testing.T) {
	studentID, otherStudentID, educatorID := "student", "student2", "educator"
	now := time.Now()

	assigned := Task{CreatorID: educatorID, AssigneeID: &studentID}
	assignedOther := Task{CreatorID: educatorID, AssigneeID: &otherStudentID}
	open := Task{CreatorID: educatorID}
	own := Task{CreatorID: studentID}
	otherOwn := Task{CreatorID: otherStudentID}
	archived := Task{CreatorID: educatorID, AssigneeID: &studentID, ArchivedAt: &now}

	student := Scope{UserID: studentID, Role: user.RoleStudent}
	educator := Scope{UserID: educatorID, Role: user.RoleEducator}
	otherEducator := Scope{UserID: "educator2", Role: user.RoleEducator}
	admin := Scope{UserID: "admin", Role: user.RoleAdmin}

	tests := []struct {
		name        string
		scope       Scope
		task        Task
		creatorRole user.Role
		want        bool
	}{
		{name: "admin sees all", scope: admin, task: otherOwn, creatorRole: user.RoleStudent, want: true},
		{name: "educator sees own", scope: educator, task: assigned, creatorRole: user.RoleEducator, want: true},
		{name: "educator does not see others", scope: otherEducator, task: assigned, creatorRole: user.RoleEducator},
		{name: "student sees assigned", scope: student, task: assigned, creatorRole: user.RoleEducator, want: true},
		{name: "student does not see assigned to other", scope: student, task: assignedOther, creatorRole: user.RoleEducator},
		{name: "student sees unassigned from educator", scope: student, task: open, creatorRole: user.RoleEducator, want: true},
		{name: "student sees own", scope: student, task: own, creatorRole: user.RoleStudent, want: true},
		{name: "student does not see other student's unassigned", scope: student, task: otherOwn, creatorRole: user.RoleStudent},
		{name: "unassigned from admin is hidden from students", scope: student, task: Task{CreatorID: "admin"}, creatorRole: user.RoleAdmin},
		{name: "archived hidden", scope: student, task: archived, creatorRole: user.RoleEducator},
		{name: "archived hidden from admin", scope: admin, task: archived, creatorRole: user.RoleEducator},
		{
			name: "archived included", scope: Scope{UserID: studentID, Role: user.RoleStudent, IncludeArchived: true},
			task: archived, creatorRole: user.RoleEducator, want: true,
		},
		{name: "unknown role", scope: Scope{UserID: studentID, Role: "LOL"}, task: own, creatorRole: user.RoleStudent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scope.Allows(tt.task, tt.creatorRole))
		})
	}
}

func TestPermissions(t *testing.T) {
	studentID := "student"
	tsk := Task{CreatorID: "educator", AssigneeID: &studentID}

	student := Principal{ID: studentID, Role: user.RoleStudent}
	creator := Principal{ID: "educator", Role: user.RoleEducator}
	otherEducator := Principal{ID: "educator2", Role: user.RoleEducator}
	admin := Principal{ID: "admin", Role: user.RoleAdmin}

	assert.True(t, CanCreate(creator))
	assert.False(t, CanCreate(student))
	assert.False(t, CanCreate(admin))

	assert.True(t, CanUpdate(admin, tsk))
	assert.True(t, CanUpdate(creator, tsk))
	assert.True(t, CanUpdate(student, tsk))
	assert.False(t, CanUpdate(otherEducator, tsk))

	assert.True(t, CanDelete(admin, tsk))
	assert.True(t, CanDelete(creator, tsk))
	assert.False(t, CanDelete(student, tsk))
	assert.False(t, CanDelete(otherEducator, tsk))
}

func TestScopeFor(t *testing.T) {
	p := Principal{ID: "u", Role: user.RoleStudent}
	assert.Equal(t, Scope{UserID: "u", Role: user.RoleStudent}, ScopeFor(p))
	assert.True(t, ScopeFor(p, true).IncludeArchived)
}
