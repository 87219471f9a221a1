package repository

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tasklist/api/internal/models"
)

// In-memory store implementations, interchangeable with the Postgres ones.
// Tests run the full stack against these instead of a database.

type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]models.User)}
}

func (m *MemoryUserStore) Create(ctx context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	return nil
}

func (m *MemoryUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (m *MemoryUserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

func (m *MemoryUserStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.Session)}
}

func (m *MemorySessionStore) Create(ctx context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *MemorySessionStore) FindByRefreshHash(ctx context.Context, userID string, refreshHash []byte) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, session := range m.sessions {
		if session.UserID == userID && bytes.Equal(session.RefreshTokenHash, refreshHash) {
			return session, nil
		}
	}
	return models.Session{}, ErrSessionNotFound
}

func (m *MemorySessionStore) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := m.byUserLocked(userID)
	return sessions, nil
}

func (m *MemorySessionStore) DeleteByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessionStore) DeleteExpired(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var pruned int64
	for id, session := range m.sessions {
		if session.UserID == userID && session.Expired(now) {
			delete(m.sessions, id)
			pruned++
		}
	}
	return pruned, nil
}

func (m *MemorySessionStore) DeleteAllExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var pruned int64
	for id, session := range m.sessions {
		if session.Expired(now) {
			delete(m.sessions, id)
			pruned++
		}
	}
	return pruned, nil
}

func (m *MemorySessionStore) CountByUser(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.byUserLocked(userID)), nil
}

func (m *MemorySessionStore) DeleteOldestSessions(ctx context.Context, userID string, keepLatest int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := m.byUserLocked(userID)
	for i := keepLatest; i < len(sessions); i++ {
		delete(m.sessions, sessions[i].ID)
	}
	return nil
}

// byUserLocked returns the user's sessions newest first.
func (m *MemorySessionStore) byUserLocked(userID string) []models.Session {
	var sessions []models.Session
	for _, session := range m.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID > sessions[j].ID
		}
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions
}

type MemoryListStore struct {
	mu    sync.Mutex
	lists map[string]models.List
}

func NewMemoryListStore() *MemoryListStore {
	return &MemoryListStore{lists: make(map[string]models.List)}
}

func (m *MemoryListStore) Create(ctx context.Context, list models.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	list.CreatedAt = now
	list.UpdatedAt = now
	m.lists[list.ID] = list
	return nil
}

func (m *MemoryListStore) ListByUser(ctx context.Context, userID string) ([]models.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lists []models.List
	for _, list := range m.lists {
		if list.UserID == userID {
			lists = append(lists, list)
		}
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].CreatedAt.Before(lists[j].CreatedAt) })
	return lists, nil
}

func (m *MemoryListStore) GetOwned(ctx context.Context, listID string, userID string) (models.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, ok := m.lists[listID]
	if !ok || list.UserID != userID {
		return models.List{}, ErrListNotFound
	}
	return list, nil
}

func (m *MemoryListStore) UpdateTitle(ctx context.Context, listID string, userID string, title string) (models.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, ok := m.lists[listID]
	if !ok || list.UserID != userID {
		return models.List{}, ErrListNotFound
	}
	list.Title = title
	list.UpdatedAt = time.Now()
	m.lists[listID] = list
	return list, nil
}

func (m *MemoryListStore) Delete(ctx context.Context, listID string, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, ok := m.lists[listID]
	if !ok || list.UserID != userID {
		return ErrListNotFound
	}
	delete(m.lists, listID)
	return nil
}

type MemoryTaskStore struct {
	mu    sync.Mutex
	tasks map[string]models.Task
}

func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[string]models.Task)}
}

func (m *MemoryTaskStore) Create(ctx context.Context, task models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	m.tasks[task.ID] = task
	return nil
}

func (m *MemoryTaskStore) ListByList(ctx context.Context, listID string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tasks []models.Task
	for _, task := range m.tasks {
		if task.ListID == listID {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	return tasks, nil
}

func (m *MemoryTaskStore) Get(ctx context.Context, taskID string, listID string) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok || task.ListID != listID {
		return models.Task{}, ErrTaskNotFound
	}
	return task, nil
}

func (m *MemoryTaskStore) Update(ctx context.Context, taskID string, listID string, title string, completed bool) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok || task.ListID != listID {
		return models.Task{}, ErrTaskNotFound
	}
	task.Title = title
	task.Completed = completed
	task.UpdatedAt = time.Now()
	m.tasks[taskID] = task
	return task, nil
}

func (m *MemoryTaskStore) SetAttachment(ctx context.Context, taskID string, listID string, key string, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok || task.ListID != listID {
		return ErrTaskNotFound
	}
	task.AttachmentKey = &key
	task.AttachmentName = &name
	task.UpdatedAt = time.Now()
	m.tasks[taskID] = task
	return nil
}

func (m *MemoryTaskStore) Delete(ctx context.Context, taskID string, listID string) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok || task.ListID != listID {
		return models.Task{}, ErrTaskNotFound
	}
	delete(m.tasks, taskID)
	return task, nil
}
