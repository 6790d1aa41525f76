package portfolio

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-builder/pkg/apperror"
)

// Document is the stored, free-form portfolio. Keys the form does not know
// about are kept as they are.
type Document map[string]any

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Year   string `json:"year"`
}

type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link"`
}

type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}

// Portfolio is the typed form of a Document.
type Portfolio struct {
	FullName   string       `json:"fullName"`
	Title      string       `json:"title"`
	Bio        string       `json:"bio"`
	Skills     []string     `json:"skills"`
	Education  []Education  `json:"education"`
	Experience []Experience `json:"experience"`
	Projects   []Project    `json:"projects"`
	Contact    Contact      `json:"contact"`
}

// Defaults is the empty form: blank scalars and one blank row per list.
func Defaults() Portfolio {
	return Portfolio{
		Skills:     []string{""},
		Education:  []Education{{}},
		Experience: []Experience{{}},
		Projects:   []Project{{Technologies: []string{""}}},
	}
}

type Repository interface {
	// GetByUserID returns an empty Document when the user has never saved one.
	GetByUserID(ctx context.Context, userID uuid.UUID) (Document, error)
	// Save replaces the whole document. Concurrent saves are last-write-wins.
	Save(ctx context.Context, userID uuid.UUID, doc Document) (Document, error)
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

type Cache interface {
	Get(ctx context.Context, userID uuid.UUID) (Document, bool)
	Set(ctx context.Context, userID uuid.UUID, doc Document)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (p *Portfolio) Validate() error {
	if strings.TrimSpace(p.FullName) == "" {
		return apperror.NewValidation("Full name is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return apperror.NewValidation("Title is required")
	}
	if p.Contact.Email != "" && !emailPattern.MatchString(p.Contact.Email) {
		return apperror.NewValidation("Please enter a valid email address")
	}
	if p.Contact.LinkedIn != "" && !strings.HasPrefix(p.Contact.LinkedIn, "https://") {
		return apperror.NewValidation("LinkedIn URL must start with https://")
	}
	if p.Contact.GitHub != "" && !strings.HasPrefix(p.Contact.GitHub, "https://") {
		return apperror.NewValidation("GitHub URL must start with https://")
	}
	return nil
}
