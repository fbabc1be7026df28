package mapper

import "filmorate/internal/domain"

// NewUser строит пользователя из запроса на регистрацию.
func NewUser(req domain.NewUserRequest) *domain.User {
	return &domain.User{
		Email:    req.Email,
		Login:    req.Login,
		Name:     req.Name,
		Birthday: req.Birthday,
		Friends:  []int64{},
	}
}

// ApplyUserUpdate переносит в user только переданные в запросе поля.
func ApplyUserUpdate(user *domain.User, req domain.UpdateUserRequest) *domain.User {
	if req.HasLogin() {
		user.Login = *req.Login
	}
	if req.HasName() {
		user.Name = *req.Name
	}
	if req.HasEmail() {
		user.Email = *req.Email
	}
	if req.HasBirthday() {
		user.Birthday = *req.Birthday
	}
	return user
}
