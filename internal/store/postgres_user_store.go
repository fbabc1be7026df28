package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"filmorate/internal/domain"

	"github.com/jmoiron/sqlx"
)

const (
	selectUsers  = `SELECT id, email, login, name, birthday FROM users`
	insertUser   = `INSERT INTO users (email, login, name, birthday) VALUES ($1, $2, $3, $4) RETURNING id`
	updateUser   = `UPDATE users SET email = $1, login = $2, name = $3, birthday = $4 WHERE id = $5`
	insertFriend = `INSERT INTO users_friendship (user_id, friend_id) VALUES ($1, $2)`
	deleteFriend = `DELETE FROM users_friendship WHERE user_id = $1 AND friend_id = $2`
	selectFriend = `SELECT friend_id FROM users_friendship WHERE user_id = $1 ORDER BY friend_id`

	selectFriendsOf = `SELECT user_id, friend_id FROM users_friendship
              WHERE user_id IN (?) ORDER BY user_id, friend_id`
)

type userRow struct {
	ID       int64          `db:"id"`
	Email    string         `db:"email"`
	Login    string         `db:"login"`
	Name     sql.NullString `db:"name"`
	Birthday domain.Date    `db:"birthday"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:       r.ID,
		Email:    r.Email,
		Login:    r.Login,
		Name:     r.Name.String,
		Birthday: r.Birthday,
		Friends:  []int64{},
	}
}

type friendshipRow struct {
	UserID   int64 `db:"user_id"`
	FriendID int64 `db:"friend_id"`
}

// PostgresUserStore реализует UserStorage для PostgreSQL.
type PostgresUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresUserStore создает новый экземпляр PostgresUserStore.
func NewPostgresUserStore(db *sqlx.DB, logger *slog.Logger) (*PostgresUserStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresUserStore{db: db, logger: logger}, nil
}

func (s *PostgresUserStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var row userRow
	s.logger.DebugContext(ctx, "Executing GetUserByID query", slog.Int64("userID", id))
	if err := s.db.GetContext(ctx, &row, selectUsers+` WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "User not found by ID in DB", slog.Int64("userID", id))
			return nil, domain.NotFoundf("user.Get", "user with id = %d not found", id)
		}
		s.logger.ErrorContext(ctx, "Failed to get user by ID from DB", slog.Int64("userID", id), slog.String("error", err.Error()))
		return nil, domain.Internal("user.Get", err)
	}
	users, err := s.withFriends(ctx, []userRow{row})
	if err != nil {
		return nil, err
	}
	return users[0], nil
}

func (s *PostgresUserStore) GetUsers(ctx context.Context) ([]*domain.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, selectUsers+` ORDER BY id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users from DB", slog.String("error", err.Error()))
		return nil, domain.Internal("user.List", err)
	}
	return s.withFriends(ctx, rows)
}

// GetUsersByIDs пользователи в порядке ids. Отсутствующие id пропускаются.
func (s *PostgresUserStore) GetUsersByIDs(ctx context.Context, ids []int64) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	query, args, err := sqlx.In(selectUsers+` WHERE id IN (?)`, ids)
	if err != nil {
		return nil, domain.Internal("user.ListByIDs", err)
	}
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users by IDs from DB", slog.String("error", err.Error()))
		return nil, domain.Internal("user.ListByIDs", err)
	}
	found, err := s.withFriends(ctx, rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	users := make([]*domain.User, 0, len(found))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *PostgresUserStore) AddUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, insertUser, user.Email, user.Login, user.Name, user.Birthday).Scan(&id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert user into DB", slog.String("login", user.Login), slog.String("error", err.Error()))
		return nil, domain.Internal("user.Add", err)
	}
	s.logger.InfoContext(ctx, "User created successfully in DB", slog.Int64("userID", id), slog.String("login", user.Login))
	return s.GetUserByID(ctx, id)
}

func (s *PostgresUserStore) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	result, err := s.db.ExecContext(ctx, updateUser, user.Email, user.Login, user.Name, user.Birthday, user.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update user in DB", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		return nil, domain.Internal("user.Update", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, domain.Internal("user.Update", fmt.Errorf("failed to check update result: %w", err))
	}
	if rowsAffected == 0 {
		s.logger.WarnContext(ctx, "No user found to update in DB", slog.Int64("userID", user.ID))
		return nil, domain.NotFoundf("user.Update", "user with id = %d not found", user.ID)
	}
	s.logger.InfoContext(ctx, "User updated successfully in DB", slog.Int64("userID", user.ID))
	return s.GetUserByID(ctx, user.ID)
}

// AddFriend добавляет направленное ребро userID -> friendID.
func (s *PostgresUserStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	if _, err := s.db.ExecContext(ctx, insertFriend, userID, friendID); err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return domain.Validationf("user.AddFriend", "user %d is already a friend of user %d", friendID, userID)
		}
		s.logger.ErrorContext(ctx, "Failed to add friend in DB",
			slog.Int64("userID", userID), slog.Int64("friendID", friendID), slog.String("error", err.Error()))
		return domain.Internal("user.AddFriend", err)
	}
	s.logger.InfoContext(ctx, "Friend added in DB", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

func (s *PostgresUserStore) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	if _, err := s.db.ExecContext(ctx, deleteFriend, userID, friendID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove friend in DB",
			slog.Int64("userID", userID), slog.Int64("friendID", friendID), slog.String("error", err.Error()))
		return domain.Internal("user.RemoveFriend", err)
	}
	s.logger.InfoContext(ctx, "Friend removed in DB", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

func (s *PostgresUserStore) GetUserFriends(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	if err := s.db.SelectContext(ctx, &ids, selectFriend, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to get user friends from DB", slog.Int64("userID", userID), slog.String("error", err.Error()))
		return nil, domain.Internal("user.Friends", err)
	}
	return ids, nil
}

// withFriends одним запросом подгружает id друзей для всех строк.
func (s *PostgresUserStore) withFriends(ctx context.Context, rows []userRow) ([]*domain.User, error) {
	users := make([]*domain.User, len(rows))
	if len(rows) == 0 {
		return users, nil
	}
	byID := make(map[int64]*domain.User, len(rows))
	ids := make([]int64, len(rows))
	for i, row := range rows {
		users[i] = row.toDomain()
		byID[row.ID] = users[i]
		ids[i] = row.ID
	}

	query, args, err := sqlx.In(selectFriendsOf, ids)
	if err != nil {
		return nil, domain.Internal("user.Friends", err)
	}
	var edges []friendshipRow
	if err := s.db.SelectContext(ctx, &edges, s.db.Rebind(query), args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load friendships from DB", slog.String("error", err.Error()))
		return nil, domain.Internal("user.Friends", err)
	}
	for _, e := range edges {
		u := byID[e.UserID]
		u.Friends = append(u.Friends, e.FriendID)
	}
	return users, nil
}
