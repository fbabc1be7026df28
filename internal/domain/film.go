package domain

import (
	"slices"
	"strings"
	"time"
)

const (
	// MaxDescriptionLength максимальная длина описания фильма (в символах).
	MaxDescriptionLength = 200
)

// EarliestReleaseDate день первого киносеанса; фильм не может выйти раньше.
var EarliestReleaseDate = NewDate(1895, time.December, 28)

// Genre жанр фильма (справочник).
type Genre struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name,omitempty" db:"name"`
}

// Mpa рейтинг Американской киноассоциации (справочник).
type Mpa struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name,omitempty" db:"name"`
}

// Film основная доменная модель фильма.
// Порядок полей задает порядок проверок: срабатывает первое нарушенное правило.
type Film struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name" validate:"notblank"`
	Description string  `json:"description" validate:"max=200"`
	ReleaseDate Date    `json:"releaseDate" validate:"releasedate"`
	Duration    int     `json:"duration" validate:"gt=0"`
	Genres      []Genre `json:"genres"`
	Mpa         *Mpa    `json:"mpa"`
}

// Clone возвращает глубокую копию фильма.
func (f *Film) Clone() *Film {
	c := *f
	c.Genres = slices.Clone(f.Genres)
	if c.Genres == nil {
		c.Genres = []Genre{}
	}
	if f.Mpa != nil {
		m := *f.Mpa
		c.Mpa = &m
	}
	return &c
}

// GenreIDs id жанров фильма в порядке возрастания без повторов.
func (f *Film) GenreIDs() []int64 {
	ids := make([]int64, 0, len(f.Genres))
	for _, g := range f.Genres {
		ids = append(ids, g.ID)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// SortGenres упорядочивает жанры по id и убирает повторы.
func SortGenres(genres []Genre) []Genre {
	out := slices.Clone(genres)
	slices.SortFunc(out, func(a, b Genre) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	out = slices.CompactFunc(out, func(a, b Genre) bool { return a.ID == b.ID })
	if out == nil {
		out = []Genre{}
	}
	return out
}

// NewFilmRequest тело запроса на создание фильма.
type NewFilmRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ReleaseDate Date    `json:"releaseDate"`
	Duration    int     `json:"duration"`
	Genres      []Genre `json:"genres,omitempty"`
	Mpa         *Mpa    `json:"mpa,omitempty"`
}

// UpdateFilmRequest частичное обновление фильма: nil означает "поле не передано".
type UpdateFilmRequest struct {
	ID          int64   `json:"id" validate:"required,gt=0"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ReleaseDate *Date   `json:"releaseDate,omitempty"`
	Duration    *int    `json:"duration,omitempty"`
	Genres      []Genre `json:"genres,omitempty"`
	Mpa         *Mpa    `json:"mpa,omitempty"`
}

func (r UpdateFilmRequest) HasName() bool {
	return r.Name != nil && strings.TrimSpace(*r.Name) != ""
}

func (r UpdateFilmRequest) HasDescription() bool {
	return r.Description != nil && strings.TrimSpace(*r.Description) != ""
}

func (r UpdateFilmRequest) HasReleaseDate() bool {
	return r.ReleaseDate != nil && !r.ReleaseDate.IsZero()
}

func (r UpdateFilmRequest) HasDuration() bool {
	return r.Duration != nil
}

func (r UpdateFilmRequest) HasGenres() bool {
	return len(r.Genres) > 0
}

func (r UpdateFilmRequest) HasMpa() bool {
	return r.Mpa != nil
}
