package store

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"filmorate/internal/domain"
)

// MemoryUserStore реализует UserStorage в памяти процесса.
// Дружба хранится направленными ребрами, как и в PostgreSQL.
type MemoryUserStore struct {
	mu      sync.RWMutex
	users   map[int64]*domain.User
	friends map[int64]map[int64]struct{} // userID -> множество friendID
	logger  *slog.Logger
}

// NewMemoryUserStore создает пустое хранилище пользователей.
func NewMemoryUserStore(logger *slog.Logger) *MemoryUserStore {
	return &MemoryUserStore{
		users:   make(map[int64]*domain.User),
		friends: make(map[int64]map[int64]struct{}),
		logger:  logger,
	}
}

func (m *MemoryUserStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		m.logger.WarnContext(ctx, "User not found by ID in memory", slog.Int64("userID", id))
		return nil, domain.NotFoundf("user.Get", "user with id = %d not found", id)
	}
	return m.withFriends(user), nil
}

func (m *MemoryUserStore) GetUsers(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, m.withFriends(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryUserStore) GetUsersByIDs(ctx context.Context, ids []int64) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			users = append(users, m.withFriends(user))
		}
	}
	return users, nil
}

func (m *MemoryUserStore) AddUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := user.Clone()
	stored.ID = m.nextID()
	stored.Friends = nil
	m.users[stored.ID] = stored
	m.logger.InfoContext(ctx, "User added to memory store", slog.Int64("userID", stored.ID), slog.String("login", stored.Login))
	return m.withFriends(stored), nil
}

func (m *MemoryUserStore) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.ID]
	if !ok {
		m.logger.WarnContext(ctx, "No user found to update in memory", slog.Int64("userID", user.ID))
		return nil, domain.NotFoundf("user.Update", "user with id = %d not found", user.ID)
	}
	existing.Email = user.Email
	existing.Login = user.Login
	existing.Name = user.Name
	existing.Birthday = user.Birthday
	m.logger.InfoContext(ctx, "User updated in memory store", slog.Int64("userID", user.ID))
	return m.withFriends(existing), nil
}

func (m *MemoryUserStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.friends[userID][friendID]; ok {
		return domain.Validationf("user.AddFriend", "user %d is already a friend of user %d", friendID, userID)
	}
	if m.friends[userID] == nil {
		m.friends[userID] = make(map[int64]struct{})
	}
	m.friends[userID][friendID] = struct{}{}
	return nil
}

func (m *MemoryUserStore) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.friends[userID], friendID)
	return nil
}

func (m *MemoryUserStore) GetUserFriends(ctx context.Context, userID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.friendIDs(userID), nil
}

// withFriends копия пользователя с приложенным списком друзей. Вызывать под m.mu.
func (m *MemoryUserStore) withFriends(user *domain.User) *domain.User {
	c := user.Clone()
	c.Friends = m.friendIDs(user.ID)
	return c
}

func (m *MemoryUserStore) friendIDs(userID int64) []int64 {
	ids := make([]int64, 0, len(m.friends[userID]))
	for id := range m.friends[userID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (m *MemoryUserStore) nextID() int64 {
	var maxID int64
	for id := range m.users {
		maxID = max(maxID, id)
	}
	return maxID + 1
}
