package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ourcodingkiddos/backend/internal/model"
	"ourcodingkiddos/backend/internal/repository"
)

// ── shared business errors ──

var (
	ErrNoPermission     = errors.New("you do not have permission to do that")
	ErrStudentNotFound  = errors.New("student not found")
	ErrStudentRequired  = errors.New("student_id is required")
	ErrSlugTaken        = errors.New("slug is already in use")
	ErrNothingToDo      = errors.New("nothing to update")
	ErrInvalidTimeRange = errors.New("ends_at must be after starts_at")
)

// Caller the authenticated user behind a request
type Caller struct {
	UserID string
	Role   string
}

// IsAdmin admin shortcut
func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// IsStaff instructors and admins
func (c Caller) IsStaff() bool { return c.Role == model.RoleAdmin || c.Role == model.RoleInstructor }

// ── time formatting ──

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ── student access ──

// canActFor the student themself, their parent or an admin
func canActFor(caller Caller, s *model.Student) bool {
	if caller.IsAdmin() {
		return true
	}
	if s.UserID != nil && *s.UserID == caller.UserID {
		return true
	}
	return s.ParentID != nil && *s.ParentID == caller.UserID
}

// canView adds instructors to canActFor
func canView(caller Caller, s *model.Student) bool {
	return caller.Role == model.RoleInstructor || canActFor(caller, s)
}

// resolveStudent loads the student a request is about. An empty id means "the calling
// student"; parents and admins must name the student.
func resolveStudent(ctx context.Context, repo *repository.Repository, studentID string, caller Caller, write bool) (*model.Student, error) {
	var (
		s   *model.Student
		err error
	)
	if studentID == "" {
		if caller.Role != model.RoleStudent {
			return nil, ErrStudentRequired
		}
		s, err = repo.Student.GetByUserID(ctx, caller.UserID)
	} else {
		s, err = repo.Student.GetByID(ctx, studentID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	allowed := canView(caller, s)
	if write {
		allowed = canActFor(caller, s)
	}
	if !allowed {
		return nil, ErrNoPermission
	}
	return s, nil
}

// canEditCourse admins edit everything, instructors their own courses
func canEditCourse(caller Caller, c *model.Course) bool {
	if caller.IsAdmin() {
		return true
	}
	return caller.Role == model.RoleInstructor && c.InstructorID != nil && *c.InstructorID == caller.UserID
}

// ── slugs ──

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

const maxSlugLen = 100

// IsSlug lowercase words joined by single hyphens
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Slugify derives a slug from a title
func Slugify(title string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	if s == "" {
		s = "item"
	}
	return s
}

type slugCheck func(ctx context.Context, slug string) (bool, error)

// pickSlug validates an explicit slug or derives a free one from the title
func pickSlug(ctx context.Context, explicit, title string, taken slugCheck) (string, error) {
	if explicit != "" {
		busy, err := taken(ctx, explicit)
		if err != nil {
			return "", err
		}
		if busy {
			return "", ErrSlugTaken
		}
		return explicit, nil
	}

	base := Slugify(title)
	for i := 1; i <= 20; i++ {
		candidate := base
		if i > 1 {
			candidate = base + "-" + strconv.Itoa(i)
		}
		busy, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !busy {
			return candidate, nil
		}
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func strPtr(s string) *string { return &s }
