package domain

import (
	"slices"
	"strings"
)

// User модель пользователя.
// Friends содержит id пользователей, на которых направлена дружба от этого пользователя.
type User struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email" validate:"required,email"`
	Login    string  `json:"login" validate:"notblank,nowhitespace"`
	Name     string  `json:"name"`
	Birthday Date    `json:"birthday" validate:"notfuture"`
	Friends  []int64 `json:"friends"`
}

// Clone возвращает глубокую копию пользователя.
func (u *User) Clone() *User {
	c := *u
	c.Friends = slices.Clone(u.Friends)
	if c.Friends == nil {
		c.Friends = []int64{}
	}
	return &c
}

// NewUserRequest тело запроса на регистрацию пользователя.
type NewUserRequest struct {
	Email    string `json:"email"`
	Login    string `json:"login"`
	Name     string `json:"name"`
	Birthday Date   `json:"birthday"`
}

// UpdateUserRequest частичное обновление пользователя.
type UpdateUserRequest struct {
	ID       int64   `json:"id" validate:"required,gt=0"`
	Email    *string `json:"email,omitempty"`
	Login    *string `json:"login,omitempty"`
	Name     *string `json:"name,omitempty"`
	Birthday *Date   `json:"birthday,omitempty"`
}

func (r UpdateUserRequest) HasEmail() bool {
	return r.Email != nil && strings.TrimSpace(*r.Email) != ""
}

func (r UpdateUserRequest) HasLogin() bool {
	return r.Login != nil && strings.TrimSpace(*r.Login) != ""
}

func (r UpdateUserRequest) HasName() bool {
	return r.Name != nil && strings.TrimSpace(*r.Name) != ""
}

func (r UpdateUserRequest) HasBirthday() bool {
	return r.Birthday != nil && !r.Birthday.IsZero()
}
