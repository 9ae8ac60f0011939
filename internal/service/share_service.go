package service

import (
	"context"
	"fmt"

	"github.com/sillystar/blog/internal/db"
	"github.com/sillystar/blog/internal/mail"
)

// ShareService emails post recommendations to third parties.
type ShareService struct {
	mailer  mail.Mailer
	from    string
	baseURL string
}

// ShareInput carries the validated share form fields.
type ShareInput struct {
	Name     string
	Email    string
	To       string
	Comments string
}

// NewShareService creates a ShareService sending from the given
// administrative address.
func NewShareService(mailer mail.Mailer, from, baseURL string) *ShareService {
	return &ShareService{mailer: mailer, from: from, baseURL: baseURL}
}

// Share dispatches one recommendation email for the given post.
func (s *ShareService) Share(ctx context.Context, post *db.Post, input ShareInput) error {
	postURL := s.baseURL + post.URL()

	subject := fmt.Sprintf("%s recommends you to read %s", input.Name, post.Title)
	body := fmt.Sprintf("Read the awesome post %s at %s\n\n %s's comments: %s",
		post.Title, postURL, input.Name, input.Comments)

	return s.mailer.Send(ctx, mail.Message{
		From:    s.from,
		To:      input.To,
		Subject: subject,
		Body:    body,
	})
}
