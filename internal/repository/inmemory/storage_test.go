package inmemory_test

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"taskAssistant/internal/models/task"
	"taskAssistant/internal/models/thread"
	"taskAssistant/internal/models/user"
	"taskAssistant/internal/repository"
	"taskAssistant/internal/repository/inmemory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(userID uuid.UUID, title string) *task.Task {
	return &task.Task{ID: uuid.New(), UserID: userID, Title: title, Status: task.StatusActive}
}

// TestStorage_CreateTask checks that timestamps are set and the row is stored
func TestStorage_CreateTask(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	userID := uuid.New()

	taskToCreate := newTask(userID, "Buy milk")
	require.NoError(t, storage.CreateTask(ctx, taskToCreate))

	assert.False(t, taskToCreate.CreatedAt.IsZero())
	assert.Equal(t, taskToCreate.CreatedAt, taskToCreate.UpdatedAt)

	got, err := storage.GetTask(ctx, taskToCreate.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, userID, got.UserID)
}

func TestStorage_GetTask_NotFound(t *testing.T) {
	storage := inmemory.NewStorage()
	_, err := storage.GetTask(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// returned tasks are copies, mutating them does not touch storage
func TestStorage_GetTask_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	tk := newTask(uuid.New(), "Original")
	require.NoError(t, storage.CreateTask(ctx, tk))

	got, err := storage.GetTask(ctx, tk.ID)
	require.NoError(t, err)
	got.Title = "Mutated"

	again, err := storage.GetTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Title)
}

func TestStorage_UpdateTask(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	tk := newTask(uuid.New(), "Original")
	require.NoError(t, storage.CreateTask(ctx, tk))
	createdAt := tk.CreatedAt

	desc := "two litres"
	tk.Title = "Updated"
	tk.Description = &desc
	now := time.Now()
	require.NoError(t, tk.Complete(now))
	require.NoError(t, storage.UpdateTask(ctx, tk))

	got, err := storage.GetTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)
	assert.Equal(t, "two litres", *got.Description)
	assert.Equal(t, task.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, createdAt, got.CreatedAt)
	assert.False(t, got.UpdatedAt.Before(createdAt))
}

func TestStorage_UpdateTask_Missing(t *testing.T) {
	storage := inmemory.NewStorage()
	err := storage.UpdateTask(context.Background(), newTask(uuid.New(), "ghost"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStorage_DeleteTaskSoft keeps the row with status deleted
func TestStorage_DeleteTaskSoft(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	tk := newTask(uuid.New(), "Soft")
	require.NoError(t, storage.CreateTask(ctx, tk))
	require.NoError(t, tk.Complete(time.Now()))
	require.NoError(t, storage.UpdateTask(ctx, tk))

	require.NoError(t, storage.DeleteTaskSoft(ctx, tk))

	got, err := storage.GetTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusDeleted, got.Status)
	assert.Nil(t, got.CompletedAt)
	assert.Equal(t, task.StatusDeleted, tk.Status)
}

// TestStorage_DeleteTaskFull removes the row entirely
func TestStorage_DeleteTaskFull(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	userID := uuid.New()

	tasks := make([]*task.Task, 5)
	for i := range tasks {
		tasks[i] = newTask(userID, fmt.Sprintf("Task %d", i))
		require.NoError(t, storage.CreateTask(ctx, tasks[i]))
	}

	require.NoError(t, storage.DeleteTaskFull(ctx, tasks[2].ID))

	_, err := storage.GetTask(ctx, tasks[2].ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, storage.DeleteTaskFull(ctx, tasks[2].ID), repository.ErrNotFound)

	all, err := storage.ListTasks(ctx, userID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

// TestStorage_ListTasks checks newest-first order, paging and user scoping
func TestStorage_ListTasks(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	userID := uuid.New()
	otherID := uuid.New()

	for i := 1; i <= 5; i++ {
		require.NoError(t, storage.CreateTask(ctx, newTask(userID, fmt.Sprintf("Task %d", i))))
	}
	require.NoError(t, storage.CreateTask(ctx, newTask(otherID, "Foreign")))

	deleted := newTask(userID, "Deleted")
	require.NoError(t, storage.CreateTask(ctx, deleted))
	require.NoError(t, storage.DeleteTaskSoft(ctx, deleted))

	page1, err := storage.ListTasks(ctx, userID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "Task 5", page1[0].Title)
	assert.Equal(t, "Task 4", page1[1].Title)

	page3, err := storage.ListTasks(ctx, userID, 3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, "Task 1", page3[0].Title)

	beyond, err := storage.ListTasks(ctx, userID, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond)

	huge, err := storage.ListTasks(ctx, userID, math.MaxInt, 100)
	require.NoError(t, err)
	assert.Empty(t, huge)

	threads, err := storage.ListThreads(ctx, userID, math.MaxInt/2, 3)
	require.NoError(t, err)
	assert.Empty(t, threads)
}

func TestStorage_ListTasksByStatus(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	userID := uuid.New()

	active := newTask(userID, "Active")
	done := newTask(userID, "Done")
	require.NoError(t, storage.CreateTask(ctx, active))
	require.NoError(t, storage.CreateTask(ctx, done))
	require.NoError(t, done.Complete(time.Now()))
	require.NoError(t, storage.UpdateTask(ctx, done))

	actives, err := storage.ListTasksByStatus(ctx, userID, task.StatusActive, 1, 10)
	require.NoError(t, err)
	require.Len(t, actives, 1)
	assert.Equal(t, active.ID, actives[0].ID)

	completed, err := storage.ListTasksByStatus(ctx, userID, task.StatusCompleted, 1, 10)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, done.ID, completed[0].ID)
}

func TestStorage_ListRecentTasks(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	userID := uuid.New()

	a := newTask(userID, "A")
	b := newTask(userID, "B")
	c := newTask(userID, "C")
	for _, tk := range []*task.Task{a, b, c} {
		require.NoError(t, storage.CreateTask(ctx, tk))
		time.Sleep(time.Millisecond)
	}
	a.Title = "A2"
	require.NoError(t, storage.UpdateTask(ctx, a))

	recent, err := storage.ListRecentTasks(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, a.ID, recent[0].ID)
	assert.Equal(t, c.ID, recent[1].ID)
}

func TestStorage_CountTasksByStatus(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, storage.CreateTask(ctx, newTask(userID, "t")))
	}
	done := newTask(userID, "done")
	require.NoError(t, storage.CreateTask(ctx, done))
	require.NoError(t, done.Complete(time.Now()))
	require.NoError(t, storage.UpdateTask(ctx, done))
	require.NoError(t, storage.CreateTask(ctx, newTask(uuid.New(), "foreign")))

	counts, err := storage.CountTasksByStatus(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, counts[task.StatusActive])
	assert.Equal(t, 1, counts[task.StatusCompleted])
	assert.Equal(t, 0, counts[task.StatusDeleted])
}

// TestStorage_DeleteThread_Cascade checks that no messages survive the thread
func TestStorage_DeleteThread_Cascade(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	userID := uuid.New()

	th := &thread.Thread{ID: uuid.New(), UserID: userID, Status: thread.StatusActive}
	keep := &thread.Thread{ID: uuid.New(), UserID: userID, Status: thread.StatusActive}
	require.NoError(t, storage.CreateThread(ctx, th))
	require.NoError(t, storage.CreateThread(ctx, keep))

	for i := 0; i < 3; i++ {
		require.NoError(t, storage.CreateMessages(ctx, &thread.Message{
			ID: uuid.New(), ThreadID: th.ID, UserID: userID, Role: thread.RoleUser, Content: fmt.Sprintf("m%d", i),
		}))
	}
	require.NoError(t, storage.CreateMessages(ctx, &thread.Message{
		ID: uuid.New(), ThreadID: keep.ID, UserID: userID, Role: thread.RoleUser, Content: "keep",
	}))

	require.NoError(t, storage.DeleteThread(ctx, th.ID))

	msgs, err := storage.ListMessages(ctx, th.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	_, err = storage.GetThread(ctx, th.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	n, err := storage.CountMessages(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, storage.DeleteThread(ctx, th.ID), repository.ErrNotFound)
}

func TestStorage_Messages_Chronological(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	userID := uuid.New()
	th := &thread.Thread{ID: uuid.New(), UserID: userID, Status: thread.StatusActive}
	require.NoError(t, storage.CreateThread(ctx, th))

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, storage.CreateMessages(ctx, &thread.Message{
			ID: uuid.New(), ThreadID: th.ID, UserID: userID, Role: thread.RoleUser, Content: content,
		}))
	}

	msgs, err := storage.ListMessages(ctx, th.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "third", msgs[2].Content)

	err = storage.CreateMessages(ctx, &thread.Message{ID: uuid.New(), ThreadID: uuid.New(), Content: "orphan"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStorage_CreateMessages_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	userID := uuid.New()
	th := &thread.Thread{ID: uuid.New(), UserID: userID, Status: thread.StatusActive}
	require.NoError(t, storage.CreateThread(ctx, th))

	ok := &thread.Message{ID: uuid.New(), ThreadID: th.ID, UserID: userID, Role: thread.RoleUser, Content: "hi"}
	orphan := &thread.Message{ID: uuid.New(), ThreadID: uuid.New(), UserID: userID, Role: thread.RoleAssistant, Content: "reply"}
	assert.ErrorIs(t, storage.CreateMessages(ctx, ok, orphan), repository.ErrNotFound)

	msgs, err := storage.ListMessages(ctx, th.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	reply := &thread.Message{ID: uuid.New(), ThreadID: th.ID, UserID: userID, Role: thread.RoleAssistant, Content: "reply"}
	require.NoError(t, storage.CreateMessages(ctx, ok, reply))
	msgs, err = storage.ListMessages(ctx, th.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, thread.RoleUser, msgs[0].Role)
	assert.Equal(t, thread.RoleAssistant, msgs[1].Role)
}

func TestStorage_ThreadsByStatus(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	userID := uuid.New()

	active := &thread.Thread{ID: uuid.New(), UserID: userID, Status: thread.StatusActive}
	archived := &thread.Thread{ID: uuid.New(), UserID: userID, Status: thread.StatusActive}
	require.NoError(t, storage.CreateThread(ctx, active))
	require.NoError(t, storage.CreateThread(ctx, archived))
	require.NoError(t, archived.Archive(time.Now()))
	require.NoError(t, storage.UpdateThread(ctx, archived))

	all, err := storage.ListThreads(ctx, userID, 1, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, archived.ID, all[0].ID)

	actives, err := storage.ListThreadsByStatus(ctx, userID, thread.StatusActive, 1, 10)
	require.NoError(t, err)
	require.Len(t, actives, 1)
	assert.Equal(t, active.ID, actives[0].ID)

	counts, err := storage.CountThreadsByStatus(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[thread.StatusActive])
	assert.Equal(t, 1, counts[thread.StatusArchived])
}

func TestStorage_UsersAndSessions(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()

	u := &user.User{ID: uuid.New(), Email: "ann@example.com", PasswordHash: "hash"}
	require.NoError(t, storage.CreateUser(ctx, u))
	assert.ErrorIs(t, storage.CreateUser(ctx, &user.User{ID: uuid.New(), Email: "ann@example.com"}), repository.ErrAlreadyExists)

	byEmail, err := storage.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	now := time.Now()
	live := &user.Session{ID: uuid.New(), UserID: u.ID, RefreshToken: "live", ExpiresAt: now.Add(time.Hour)}
	stale := &user.Session{ID: uuid.New(), UserID: u.ID, RefreshToken: "stale", ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, storage.CreateSession(ctx, live))
	require.NoError(t, storage.CreateSession(ctx, stale))

	live.RefreshToken = "rotated"
	require.NoError(t, storage.UpdateSession(ctx, live))
	_, err = storage.GetSessionByRefreshToken(ctx, "live")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	got, err := storage.GetSessionByRefreshToken(ctx, "rotated")
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)

	removed, err := storage.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	_, err = storage.GetSession(ctx, stale.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, storage.DeleteSession(ctx, live.ID))
	assert.ErrorIs(t, storage.DeleteSession(ctx, live.ID), repository.ErrNotFound)
}

// TestStorage_ConcurrentAccess checks that parallel writers keep the storage consistent
func TestStorage_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	userID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tk := newTask(userID, fmt.Sprintf("Task %d", i))
			assert.NoError(t, storage.CreateTask(ctx, tk))
			_, err := storage.ListTasks(ctx, userID, 1, 10)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	counts, err := storage.CountTasksByStatus(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 50, counts[task.StatusActive])
}
