package generated

import "time"

// Kinds of generated content.
const (
	KindCoverLetter = "cover_letter"
	KindTailoredCV  = "tailored_cv"
)

// Content is a stored piece of generated text, such as a cover letter
// tailored to a job posting.
type Content struct {
	ID             string
	UserID         string
	DocumentID     string
	Kind           string
	Title          string
	Content        string
	CreatedAt      time.Time
	LastAccessedAt *time.Time
	DeletedAt      *time.Time
}

// ValidKind reports whether kind is a supported content kind.
func ValidKind(kind string) bool {
	return kind == KindCoverLetter || kind == KindTailoredCV
}
