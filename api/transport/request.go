package transport

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fastygo/tasktracker/domain"
)

const (
	maxTaskNameLen = 200
	maxCategoryLen = 100
)

// timeLayouts are tried in order when parsing task times and birthdays.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Nickname     string `json:"nickname"`
	Gender       string `json:"gender"`
	Relationship string `json:"relationship"`
	Birthday     string `json:"birthday"`
}

// Validate checks the credentials and returns the profile part of the request.
func (r *RegisterRequest) Validate() (domain.Profile, error) {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return domain.Profile{}, domain.NewError(domain.ErrCodeInvalid, "email is required")
	}
	if !strings.Contains(r.Email, "@") {
		return domain.Profile{}, domain.NewError(domain.ErrCodeInvalid, "email is invalid")
	}
	if r.Password == "" {
		return domain.Profile{}, domain.NewError(domain.ErrCodeInvalid, "password is required")
	}
	return profileFrom(r.Nickname, r.Gender, r.Relationship, r.Birthday)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return domain.NewError(domain.ErrCodeInvalid, "email and password are required")
	}
	return nil
}

type ValidateRequest struct {
	Token string `json:"token"`
}

type ProfileUpdateRequest struct {
	Nickname     string `json:"nickname"`
	Gender       string `json:"gender"`
	Relationship string `json:"relationship"`
	Birthday     string `json:"birthday"`
}

func (r *ProfileUpdateRequest) Validate() (domain.Profile, error) {
	return profileFrom(r.Nickname, r.Gender, r.Relationship, r.Birthday)
}

type TaskRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Time     string `json:"time"`
	Status   string `json:"status"`
}

// Validate trims and lower-cases the request in place and returns the parsed time.
// An empty status means pending.
func (r *TaskRequest) Validate() (time.Time, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))

	switch {
	case r.Name == "":
		return time.Time{}, domain.NewError(domain.ErrCodeInvalid, "name cannot be empty")
	case utf8.RuneCountInString(r.Name) > maxTaskNameLen:
		return time.Time{}, domain.NewError(domain.ErrCodeInvalid, "name is too long")
	case r.Category == "":
		return time.Time{}, domain.NewError(domain.ErrCodeInvalid, "category cannot be empty")
	case utf8.RuneCountInString(r.Category) > maxCategoryLen:
		return time.Time{}, domain.NewError(domain.ErrCodeInvalid, "category is too long")
	}

	if r.Status == "" {
		r.Status = domain.TaskStatusPending
	}
	if !domain.IsValidTaskStatus(r.Status) {
		return time.Time{}, domain.NewError(domain.ErrCodeInvalid, "status must be one of: pending, in_progress, completed")
	}

	at, err := ParseTime(r.Time)
	if err != nil {
		return time.Time{}, err
	}
	return at, nil
}

// ParseTime accepts RFC 3339 and a few zone-less layouts, which are read as UTC.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, domain.NewError(domain.ErrCodeInvalid, "time is required")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewError(domain.ErrCodeInvalid, "time must be an ISO 8601 timestamp")
}

func profileFrom(nickname, gender, relationship, birthday string) (domain.Profile, error) {
	p := domain.Profile{
		Nickname:     strings.TrimSpace(nickname),
		Gender:       strings.TrimSpace(gender),
		Relationship: strings.TrimSpace(relationship),
	}
	if strings.TrimSpace(birthday) != "" {
		t, err := ParseTime(birthday)
		if err != nil {
			return domain.Profile{}, domain.NewError(domain.ErrCodeInvalid, "birthday must be a date")
		}
		p.Birthday = &t
	}
	return p, nil
}
