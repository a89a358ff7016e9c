package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/insight"
	"github.com/trezcool/kazi/core/ratelimit"
	"github.com/trezcool/kazi/core/session"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
	"github.com/trezcool/kazi/services/email"
	"github.com/trezcool/kazi/services/logger"
	"github.com/trezcool/kazi/storage/database/inmem"
)

// Stack is the whole application wired over the in-memory store.
type Stack struct {
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Mail       *emailsvc.ConsoleServiceMock

	DB           *inmemdb.DB
	UserRepo     user.Repository
	TaskRepo     task.Repository
	ProgressRepo task.ProgressRepository
	InsightRepo  insight.Repository

	UserSvc    *user.Service
	Sessions   *session.Manager
	TaskSvc    *task.Service
	InsightSvc *insight.Service
	Limiter    *ratelimit.Limiter
}

func NewTranslator() ut.Translator {
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	return translator
}

// NewValidator returns a validator with every custom tag of the app registered.
func NewValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	task.InitValidators(validate, translator)
	insight.InitValidators(validate, translator)
	return validate
}

// NewInmemStack wires the services over a fresh in-memory store. conf defaults to core.NewTestConfig().
func NewInmemStack(t *testing.T, conf ...*core.Config) *Stack {
	t.Helper()

	st := &Stack{Conf: core.NewTestConfig()}
	if len(conf) > 0 && conf[0] != nil {
		st.Conf = conf[0]
	}
	st.Logger = logsvc.NewNopLogger()
	st.Translator = NewTranslator()
	st.Validate = NewValidator(st.Translator)
	st.Mail = emailsvc.NewConsoleServiceMock(st.Conf, st.Logger)

	st.DB = inmemdb.Open()
	st.UserRepo = inmemdb.NewUserRepository(st.DB)
	st.TaskRepo = inmemdb.NewTaskRepository(st.DB)
	st.ProgressRepo = inmemdb.NewProgressRepository(st.DB)
	st.InsightRepo = inmemdb.NewInsightRepository(st.DB)

	st.UserSvc = user.NewService(st.UserRepo, st.Mail, st.Conf)
	st.Sessions = session.NewManager(st.Conf)
	st.TaskSvc = task.NewService(inmemdb.NewTransactor(), st.TaskRepo, st.ProgressRepo, st.UserRepo, st.Conf)
	st.InsightSvc = insight.NewService(st.InsightRepo, st.TaskSvc, insight.NewFallbackGenerator(), st.Logger)
	st.Limiter = ratelimit.NewLimiter(inmemdb.NewRateLimitStore(st.DB), st.Conf)
	return st
}

// CreateUser stores a user. The password is only hashed when pwd is not empty.
func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	role user.Role,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := core.Now()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateTask stores a task created by creator and, when assignee is not nil, assigned to them.
func CreateTask(
	t *testing.T,
	repo task.Repository,
	title string,
	creator user.User,
	assignee *user.User,
	createdAt ...time.Time,
) task.Task {
	t.Helper()

	tstamp := core.Now()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	tsk := task.Task{
		Title:           title,
		Priority:        task.PriorityMedium,
		Status:          task.StatusTodo,
		Tags:            []string{},
		DifficultyLevel: task.DifficultyIntermediate,
		CreatorID:       creator.ID,
		CreatedAt:       tstamp,
		UpdatedAt:       tstamp,
	}
	if assignee != nil {
		tsk.AssigneeID = &assignee.ID
	}
	tsk, err := repo.CreateTask(context.Background(), tsk)
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return tsk
}
