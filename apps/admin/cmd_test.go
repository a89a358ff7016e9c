package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
	"github.com/trezcool/kazi/tests"
)

const testPwd = "s3cure-Passw0rd"

func setup(t *testing.T) (*testutil.Stack, *commandLine) {
	st := testutil.NewInmemStack(t)
	return st, &commandLine{
		usrRepo: st.UserRepo,
		taskSvc: st.TaskSvc,
		logger:  st.Logger,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	switch {
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err == nil || err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
		}
	case err != nil:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	_, cli := setup(t)

	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	st, cli := setup(t)

	existing := testutil.CreateUser(t, st.UserRepo, "Old Name", "lecturer@test.cd", "", user.RoleEducator)

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no name", args: []string{"adduser", "-email", "admin@test.cd"}, extra: testPwd, wantErr: errHelp},
		{name: "bad role", args: []string{"adduser", "-email", "admin@test.cd", "-name", "Admin", "-role", "LOL"}, extra: testPwd, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-email", "admin@test.cd", "-name", "Admin"}, wantErr: errHelp},
		{
			name: "weak password", args: []string{"adduser", "-email", "admin@test.cd", "-name", "Admin"}, extra: "12345678",
			wantErrStr: "password cannot be entirely numeric",
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd, _ := tt.extra.(string)
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	t.Run("create admin", func(t *testing.T) {
		mockPassword(testPwd)
		require.NoError(t, cli.run([]string{"admin", "adduser", "-email", " Admin@Test.cd ", "-name", "Admin"}))

		usr, err := st.UserRepo.GetUser(context.Background(), user.GetFilter{Email: "admin@test.cd"})
		require.NoError(t, err)
		assert.Equal(t, "Admin", usr.Name)
		assert.Equal(t, user.RoleAdmin, usr.Role)
		assert.NoError(t, usr.CheckPassword(testPwd))
	})

	t.Run("update existing", func(t *testing.T) {
		mockPassword(testPwd)
		require.NoError(t, cli.run([]string{"admin", "adduser", "-email", existing.Email, "-name", "New Name", "-role", "ADMIN"}))

		usr, err := st.UserRepo.GetUser(context.Background(), user.GetFilter{ID: existing.ID})
		require.NoError(t, err)
		assert.Equal(t, "New Name", usr.Name)
		assert.Equal(t, user.RoleAdmin, usr.Role)
		assert.NoError(t, usr.CheckPassword(testPwd))
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	st, cli := setup(t)

	usr := testutil.CreateUser(t, st.UserRepo, "User", "awe@test.cd", "mdr-mdr-mdr", user.RoleStudent)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: testPwd, wantErr: user.ErrNotFound},
		{name: "short password", args: []string{"resetpassword", "-email", usr.Email}, extra: "lol", wantErrStr: "password must contain at least 8 characters"},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: testPwd},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd, _ := tt.extra.(string)
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			checkErr(t, tt, err)
			if err == nil {
				refreshedUsr, err := st.UserRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			}
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	st, cli := setup(t)
	ctx := context.Background()

	mockPassword("")
	assert.Equal(t, errHelp, cli.run([]string{"admin", "seed"}))

	mockPassword(testPwd)
	require.NoError(t, cli.run([]string{"admin", "seed"}))

	admin := task.Principal{ID: "admin", Role: user.RoleAdmin}
	countTasks := func() int {
		_, page, err := st.TaskSvc.Query(ctx, admin, task.QueryFilter{Limit: 50})
		require.NoError(t, err)
		return page.Total
	}

	for _, su := range seedUsers {
		usr, err := st.UserRepo.GetUser(ctx, user.GetFilter{Email: su.email})
		require.NoError(t, err)
		assert.Equal(t, su.role, usr.Role)
		assert.NoError(t, usr.CheckPassword(testPwd))
	}
	assert.Equal(t, 3, countTasks())

	student2, err := st.UserRepo.GetUser(ctx, user.GetFilter{Email: "student2@example.com"})
	require.NoError(t, err)
	tasks, _, err := st.TaskSvc.Query(ctx, task.PrincipalOf(student2), task.QueryFilter{Limit: 50, Status: task.StatusInProgress})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Database Design Principles", tasks[0].Title)
	assert.Equal(t, 60, tasks[0].ProgressPercentage)

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, cli.run([]string{"admin", "seed"}))
		assert.Equal(t, 3, countTasks())
	})
}
