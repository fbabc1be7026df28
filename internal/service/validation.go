package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"
	"unicode"

	"filmorate/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Тексты ошибок проверки по ключу "<Struct>.<Field>.<tag>".
var validationMessages = map[string]string{
	"Film.Name.notblank":           "film name must not be blank",
	"Film.Description.max":         "film description must not be longer than 200 characters",
	"Film.ReleaseDate.releasedate": "film release date must not be earlier than 1895-12-28",
	"Film.Duration.gt":             "film duration must be a positive number",
	"User.Email.required":          "user email must not be blank",
	"User.Email.email":             "user email must be a valid email address",
	"User.Login.notblank":          "user login must not be blank",
	"User.Login.nowhitespace":      "user login must not contain whitespace",
	"User.Birthday.notfuture":      "user birthday must not be in the future",

	"UpdateFilmRequest.ID.required": "film id must be specified",
	"UpdateFilmRequest.ID.gt":       "film id must be a positive number",
	"UpdateUserRequest.ID.required": "user id must be specified",
	"UpdateUserRequest.ID.gt":       "user id must be a positive number",
}

// NewValidator создает валидатор с правилами предметной области:
// notblank, nowhitespace, releasedate и notfuture.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(domain.Date); ok {
			return d.Time
		}
		return nil
	}, domain.Date{})

	// Ошибки регистрации возможны только при пустом теге или nil функции.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("nowhitespace", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
	})
	_ = v.RegisterValidation("releasedate", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.Before(domain.EarliestReleaseDate.Time)
	})
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.After(domain.Today().Time)
	})
	return v
}

// validate проверяет s и превращает первое нарушенное правило в ошибку валидации.
func validate(ctx context.Context, v *validator.Validate, op string, s any) error {
	err := v.StructCtx(ctx, s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.Internal(op, err)
	}
	fe := fieldErrs[0]
	msg, ok := validationMessages[fe.Namespace()+"."+fe.Tag()]
	if !ok {
		msg = fe.Namespace() + " failed on the '" + fe.Tag() + "' rule"
	}
	return domain.Validationf(op, "%s", msg)
}

// defaultName подставляет логин вместо пустого имени.
func defaultName(user *domain.User) {
	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.Login
	}
}
