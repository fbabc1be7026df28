package service

import (
	"context"
	"log/slog"
	"slices"

	"filmorate/internal/domain"
	"filmorate/internal/mapper"
	"filmorate/internal/store"

	"github.com/go-playground/validator/v10"
)

// UserService операции над пользователями и дружбой.
// Дружба направленная: AddFriend(a, b) добавляет b в друзья a, но не наоборот.
type UserService struct {
	users     store.UserStorage
	validator *validator.Validate
	logger    *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(users store.UserStorage, v *validator.Validate, logger *slog.Logger) *UserService {
	return &UserService{users: users, validator: v, logger: logger}
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetUserByID(ctx, id)
}

func (s *UserService) GetUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.GetUsers(ctx)
}

// AddUser регистрирует пользователя. Пустое имя заменяется логином.
func (s *UserService) AddUser(ctx context.Context, req domain.NewUserRequest) (*domain.User, error) {
	user := mapper.NewUser(req)
	if err := validate(ctx, s.validator, "user.Add", user); err != nil {
		s.logger.WarnContext(ctx, "User validation failed", slog.String("error", err.Error()))
		return nil, err
	}
	defaultName(user)
	return s.users.AddUser(ctx, user)
}

// UpdateUser накладывает переданные поля на сохраненного пользователя.
func (s *UserService) UpdateUser(ctx context.Context, req domain.UpdateUserRequest) (*domain.User, error) {
	if err := validate(ctx, s.validator, "user.Update", req); err != nil {
		return nil, err
	}
	existing, err := s.users.GetUserByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	user := mapper.ApplyUserUpdate(existing, req)
	if err := validate(ctx, s.validator, "user.Update", user); err != nil {
		s.logger.WarnContext(ctx, "User validation failed", slog.Int64("userID", req.ID), slog.String("error", err.Error()))
		return nil, err
	}
	defaultName(user)
	return s.users.UpdateUser(ctx, user)
}

// AddFriend добавляет friendID в друзья userID.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID int64) error {
	if userID == friendID {
		return domain.Validationf("user.AddFriend", "user %d cannot be a friend of themselves", userID)
	}
	if err := s.checkUsers(ctx, userID, friendID); err != nil {
		return err
	}
	if err := s.users.AddFriend(ctx, userID, friendID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Friend added", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

// RemoveFriend удаляет friendID из друзей userID.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	if err := s.checkUsers(ctx, userID, friendID); err != nil {
		return err
	}
	return s.users.RemoveFriend(ctx, userID, friendID)
}

// GetUserFriends друзья пользователя по возрастанию id.
func (s *UserService) GetUserFriends(ctx context.Context, userID int64) ([]*domain.User, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.users.GetUserFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.users.GetUsersByIDs(ctx, ids)
}

// GetCommonFriends пересечение списков друзей в порядке списка первого пользователя.
func (s *UserService) GetCommonFriends(ctx context.Context, userID, otherID int64) ([]*domain.User, error) {
	if err := s.checkUsers(ctx, userID, otherID); err != nil {
		return nil, err
	}
	first, err := s.users.GetUserFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	second, err := s.users.GetUserFriends(ctx, otherID)
	if err != nil {
		return nil, err
	}

	common := make([]int64, 0, min(len(first), len(second)))
	for _, id := range first {
		if slices.Contains(second, id) {
			common = append(common, id)
		}
	}
	return s.users.GetUsersByIDs(ctx, common)
}

// AreMutualFriends true, если дружба есть в обе стороны.
func (s *UserService) AreMutualFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	if err := s.checkUsers(ctx, userID, otherID); err != nil {
		return false, err
	}
	first, err := s.users.GetUserFriends(ctx, userID)
	if err != nil {
		return false, err
	}
	second, err := s.users.GetUserFriends(ctx, otherID)
	if err != nil {
		return false, err
	}
	return slices.Contains(first, otherID) && slices.Contains(second, userID), nil
}

func (s *UserService) checkUsers(ctx context.Context, ids ...int64) error {
	for _, id := range ids {
		if _, err := s.users.GetUserByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
