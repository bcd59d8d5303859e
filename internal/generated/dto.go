package generated

import "time"

// ContentResponse is the API shape for a piece of generated content.
type ContentResponse struct {
	ID             string     `json:"id"`
	DocumentID     string     `json:"documentId,omitempty"`
	Kind           string     `json:"kind"`
	Title          string     `json:"title,omitempty"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty"`
}

func toResponse(content Content) ContentResponse {
	return ContentResponse{
		ID:             content.ID,
		DocumentID:     content.DocumentID,
		Kind:           content.Kind,
		Title:          content.Title,
		Content:        content.Content,
		CreatedAt:      content.CreatedAt,
		LastAccessedAt: content.LastAccessedAt,
	}
}
