package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mahora/task-tracker/internal/constants"
	"github.com/mahora/task-tracker/internal/models"
	"github.com/mahora/task-tracker/internal/repository"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TaskService
	alice   *models.User
	bob     *models.User
}

func (suite *TaskServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(suite.db.AutoMigrate(&models.User{}, &models.Task{}))

	suite.alice = suite.createUser("Alice")
	suite.bob = suite.createUser("Bob")
	suite.service = suite.newService(PolicyFailOpen)
}

func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskServiceTestSuite) newService(policy UnresolvedNamePolicy) *TaskService {
	resolver := NewDirectoryResolver(repository.NewUserRepository(suite.db))
	return NewTaskService(repository.NewTaskRepository(suite.db), resolver, policy)
}

func (suite *TaskServiceTestSuite) createUser(name string) *models.User {
	user := &models.User{Name: name, Email: name + "@example.com", Credential: "pw", Role: "member"}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskServiceTestSuite) countTasks() int64 {
	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Count(&count).Error)
	return count
}

func (suite *TaskServiceTestSuite) TestCreateTask_RoundTrip() {
	ctx := context.Background()

	task, err := suite.service.CreateTask(ctx, TaskInput{
		Name:         "Write report",
		Description:  strPtr("Q3 numbers"),
		StartDate:    strPtr("2024-13-45"),
		EndDate:      strPtr("next friday"),
		AssigneeName: "Alice",
		CreatorName:  "Bob",
	})
	suite.Require().NoError(err)
	suite.NotZero(task.ID)
	suite.Equal(suite.alice.ID, *task.AssigneeID)
	suite.Equal(suite.bob.ID, *task.CreatorID)

	tasks, err := suite.service.ListTasks(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)

	got := tasks[0]
	suite.Equal(task.ID, got.ID)
	suite.Equal("Write report", got.Name)
	suite.Equal("Q3 numbers", *got.Description)
	// Dates are opaque and echoed verbatim.
	suite.Equal("2024-13-45", *got.StartDate)
	suite.Equal("next friday", *got.EndDate)
	suite.Equal("Alice", *got.AssigneeName)
	suite.Equal("Bob", *got.CreatorName)
}

func (suite *TaskServiceTestSuite) TestCreateTask_NameRequired() {
	_, err := suite.service.CreateTask(context.Background(), TaskInput{AssigneeName: "Alice"})
	suite.ErrorIs(err, ErrNameRequired)
	suite.Zero(suite.countTasks())
}

func (suite *TaskServiceTestSuite) TestCreateTask_UnknownNameStoresNull() {
	ctx := context.Background()

	task, err := suite.service.CreateTask(ctx, TaskInput{Name: "X", AssigneeName: "Ghost"})
	suite.Require().NoError(err)
	suite.Nil(task.AssigneeID)
	suite.Nil(task.CreatorID)

	tasks, err := suite.service.ListTasks(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	suite.Nil(tasks[0].AssigneeName)
	suite.Nil(tasks[0].CreatorName)
}

func (suite *TaskServiceTestSuite) TestCreateTask_FailClosedRejectsUnknownName() {
	service := suite.newService(PolicyFailClosed)

	_, err := service.CreateTask(context.Background(), TaskInput{Name: "X", AssigneeName: "Alice", CreatorName: "Ghost"})
	suite.Require().Error(err)
	suite.ErrorIs(err, ErrUnknownUser)

	var unknown *UnknownUserError
	suite.Require().True(errors.As(err, &unknown))
	suite.Equal("creator", unknown.Field)
	suite.Equal("Ghost", unknown.Name)
	suite.Zero(suite.countTasks())
}

func (suite *TaskServiceTestSuite) TestCreateTask_FailClosedAllowsOmittedNames() {
	service := suite.newService(PolicyFailClosed)

	task, err := service.CreateTask(context.Background(), TaskInput{Name: "Solo"})
	suite.Require().NoError(err)
	suite.Nil(task.AssigneeID)
	suite.Equal(int64(1), suite.countTasks())
}

func (suite *TaskServiceTestSuite) TestCreateTask_AssigneeIsResolvedOnce() {
	ctx := context.Background()

	task, err := suite.service.CreateTask(ctx, TaskInput{Name: "Pinned", AssigneeName: "Alice"})
	suite.Require().NoError(err)

	// Renaming the user later does not relink the stored reference.
	suite.Require().NoError(suite.db.Model(suite.alice).Update("name", "Alicia").Error)

	tasks, err := suite.service.ListTasks(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	suite.Equal(task.ID, tasks[0].ID)
	suite.Equal(suite.alice.ID, *tasks[0].AssigneeID)
	suite.Equal("Alicia", *tasks[0].AssigneeName)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_FullReplace() {
	ctx := context.Background()

	task, err := suite.service.CreateTask(ctx, TaskInput{
		Name:         "Draft",
		Description:  strPtr("old"),
		AssigneeName: "Alice",
		CreatorName:  "Bob",
	})
	suite.Require().NoError(err)

	matched, err := suite.service.UpdateTask(ctx, task.ID, TaskInput{Name: "Final", AssigneeName: "Bob"})
	suite.Require().NoError(err)
	suite.True(matched)

	tasks, err := suite.service.ListTasks(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 1)
	suite.Equal("Final", tasks[0].Name)
	suite.Nil(tasks[0].Description)
	suite.Equal("Bob", *tasks[0].AssigneeName)
	suite.Nil(tasks[0].CreatorName)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_MissingIDChangesNothing() {
	ctx := context.Background()

	_, err := suite.service.CreateTask(ctx, TaskInput{Name: "Keep"})
	suite.Require().NoError(err)

	matched, err := suite.service.UpdateTask(ctx, 999, TaskInput{Name: "Ghost write"})
	suite.Require().NoError(err)
	suite.False(matched)
	suite.Equal(int64(1), suite.countTasks())

	tasks, err := suite.service.ListTasks(ctx)
	suite.Require().NoError(err)
	suite.Equal("Keep", tasks[0].Name)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_NameRequired() {
	_, err := suite.service.UpdateTask(context.Background(), 1, TaskInput{})
	suite.ErrorIs(err, ErrNameRequired)
}

func (suite *TaskServiceTestSuite) TestCreateTask_NameTooLong() {
	ctx := context.Background()

	_, err := suite.service.CreateTask(ctx, TaskInput{Name: strings.Repeat("n", constants.MaxNameLength+1)})
	suite.ErrorIs(err, ErrFieldTooLong)
	var tooLong *FieldTooLongError
	suite.Require().True(errors.As(err, &tooLong))
	suite.Equal("name", tooLong.Field)
	suite.Zero(suite.countTasks())

	_, err = suite.service.CreateTask(ctx, TaskInput{Name: strings.Repeat("ñ", constants.MaxNameLength)})
	suite.NoError(err)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_DateTooLong() {
	ctx := context.Background()

	task, err := suite.service.CreateTask(ctx, TaskInput{Name: "Keep", EndDate: strPtr("2024-05-01")})
	suite.Require().NoError(err)

	long := strings.Repeat("9", constants.MaxDateLength+1)
	_, err = suite.service.UpdateTask(ctx, task.ID, TaskInput{Name: "Changed", EndDate: &long})
	var tooLong *FieldTooLongError
	suite.Require().True(errors.As(err, &tooLong))
	suite.Equal("endDate", tooLong.Field)

	tasks, err := suite.service.ListTasks(ctx)
	suite.Require().NoError(err)
	suite.Equal("Keep", tasks[0].Name)
	suite.Equal("2024-05-01", *tasks[0].EndDate)
}

func (suite *TaskServiceTestSuite) TestDeleteTask() {
	ctx := context.Background()

	task, err := suite.service.CreateTask(ctx, TaskInput{Name: "Temp"})
	suite.Require().NoError(err)

	matched, err := suite.service.DeleteTask(ctx, task.ID)
	suite.Require().NoError(err)
	suite.True(matched)
	suite.Zero(suite.countTasks())

	matched, err = suite.service.DeleteTask(ctx, task.ID)
	suite.Require().NoError(err)
	suite.False(matched)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}

// newMockService wires a TaskService to a sqlmock-backed MySQL dialector.
func newMockService(t *testing.T) (*TaskService, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}

	resolver := NewDirectoryResolver(repository.NewUserRepository(db))
	return NewTaskService(repository.NewTaskRepository(db), resolver, PolicyFailOpen), mock
}

func TestCreateTask_LookupFailureWritesNothing(t *testing.T) {
	service, mock := newMockService(t)
	lookupErr := errors.New("connection reset by peer")

	mock.ExpectQuery("SELECT .* FROM `users`").WillReturnError(lookupErr)

	_, err := service.CreateTask(context.Background(), TaskInput{Name: "X", AssigneeName: "Alice"})
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	// No INSERT was expected; an unexpected one would leave expectations unmet or fail above.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateTask_InsertFailure(t *testing.T) {
	service, mock := newMockService(t)
	insertErr := errors.New("disk full")

	mock.ExpectExec("INSERT INTO `tasks`").WillReturnError(insertErr)

	_, err := service.CreateTask(context.Background(), TaskInput{Name: "X"})
	if !errors.Is(err, insertErr) {
		t.Fatalf("expected insert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListTasks_StoreFailure(t *testing.T) {
	service, mock := newMockService(t)

	mock.ExpectQuery("SELECT .* FROM tasks AS t").WillReturnError(errors.New("timeout"))

	_, err := service.ListTasks(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// expectPartialLookup makes the assignee lookup succeed and the creator
// lookup fail. The two lookups run concurrently, so they are matched by
// argument rather than by order. The failure is delayed so the assignee row
// is read before the group context is cancelled.
func expectPartialLookup(mock sqlmock.Sqlmock, lookupErr error) {
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery("SELECT `id` FROM `users`").
		WithArgs("Alice", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("SELECT `id` FROM `users`").
		WithArgs("Carol", 1).
		WillDelayFor(50 * time.Millisecond).
		WillReturnError(lookupErr)
}

func TestCreateTask_CreatorLookupFailureWritesNothing(t *testing.T) {
	service, mock := newMockService(t)
	lookupErr := errors.New("connection reset by peer")
	expectPartialLookup(mock, lookupErr)

	_, err := service.CreateTask(context.Background(), TaskInput{
		Name:         "X",
		AssigneeName: "Alice",
		CreatorName:  "Carol",
	})
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	if !strings.Contains(err.Error(), "creator") {
		t.Fatalf("expected the creator lookup to be named, got %v", err)
	}
	// Any INSERT would have been unexpected and surfaced as a different error.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateTask_CreatorLookupFailureWritesNothing(t *testing.T) {
	service, mock := newMockService(t)
	lookupErr := errors.New("connection reset by peer")
	expectPartialLookup(mock, lookupErr)

	matched, err := service.UpdateTask(context.Background(), 3, TaskInput{
		Name:         "X",
		AssigneeName: "Alice",
		CreatorName:  "Carol",
	})
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	if matched {
		t.Fatal("expected matched to be false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateTask_StoreFailure(t *testing.T) {
	service, mock := newMockService(t)
	updateErr := errors.New("lock wait timeout")

	mock.ExpectExec("UPDATE `tasks`").WillReturnError(updateErr)

	_, err := service.UpdateTask(context.Background(), 3, TaskInput{Name: "X"})
	if !errors.Is(err, updateErr) {
		t.Fatalf("expected update error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
