package main

import (
	"context"
	"time"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
)

const seedEducatorEmail = "educator@example.com"

type seedUser struct {
	name  string
	email string
	role  user.Role
}

var seedUsers = []seedUser{
	{name: "Dr. Sarah Johnson", email: seedEducatorEmail, role: user.RoleEducator},
	{name: "Alex Chen", email: "student1@example.com", role: user.RoleStudent},
	{name: "Maria Rodriguez", email: "student2@example.com", role: user.RoleStudent},
}

func ptr[T any](v T) *T { return &v }

// seed creates a demo educator, two students and a few tasks. It does nothing when the educator exists.
func (cli *commandLine) seed(pwd string) error {
	ctx := context.Background()

	if _, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Email: seedEducatorEmail}); err == nil {
		cli.logger.Info("Seed data already exists, skipping")
		return nil
	} else if err != user.ErrNotFound {
		return err
	}

	users := make([]user.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		now := core.Now()
		usr := user.User{Name: su.name, Email: su.email, Role: su.role, CreatedAt: now, UpdatedAt: now}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		usr, err := cli.usrRepo.CreateUser(ctx, usr)
		if err != nil {
			return err
		}
		users = append(users, usr)
	}
	educator, student1, student2 := task.PrincipalOf(users[0]), users[1], users[2]

	days := func(n int) *time.Time { return ptr(core.Now().AddDate(0, 0, n)) }
	newTasks := []task.NewTask{
		{
			Title:         "Learn React Fundamentals",
			Description:   ptr("Master the basics of React including components, props, state, and hooks"),
			Priority:      task.PriorityHigh,
			DueDate:       days(7),
			EstimatedTime: ptr(480),
			Tags:          []string{"react", "javascript", "frontend"},
			AssigneeID:    &student1.ID,
		},
		{
			Title:         "Database Design Principles",
			Description:   ptr("Learn about normalization, relationships, and best practices in database design"),
			Priority:      task.PriorityMedium,
			DueDate:       days(14),
			EstimatedTime: ptr(360),
			Tags:          []string{"database", "sql", "design"},
			AssigneeID:    &student2.ID,
		},
		{
			Title:         "API Development with Go",
			Description:   ptr("Build RESTful APIs using Go and Echo"),
			Priority:      task.PriorityHigh,
			DueDate:       days(10),
			EstimatedTime: ptr(600),
			Tags:          []string{"go", "api", "backend"},
		},
	}

	tasks := make([]task.Task, 0, len(newTasks))
	for _, nt := range newTasks {
		nt.Status = task.StatusTodo
		nt.DifficultyLevel = task.DifficultyIntermediate
		t, err := cli.taskSvc.Create(ctx, educator, nt)
		if err != nil {
			return err
		}
		tasks = append(tasks, t)
	}

	for _, np := range []task.NewProgress{
		{
			ProgressPercentage: ptr(40),
			Notes:              ptr("Started with basic database concepts. Need to review ER diagrams."),
			TimeSpent:          ptr(120),
		},
		{
			ProgressPercentage: ptr(60),
			Notes:              ptr("Completed the normalization section. Working on relationships now."),
			TimeSpent:          ptr(180),
		},
	} {
		if _, err := cli.taskSvc.SubmitProgress(ctx, task.PrincipalOf(student2), tasks[1].ID, np); err != nil {
			return err
		}
	}

	cli.logger.Info("Database seed completed", map[string]interface{}{"users": len(users), "tasks": len(tasks)})
	return nil
}
