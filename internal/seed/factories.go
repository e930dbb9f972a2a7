package seed

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"chattym/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9_-]+`)

// Factory builds unsaved domain entities filled with fake content.
// Its methods are safe for concurrent use.
type Factory struct {
	faker *gofakeit.Faker
	now   func() time.Time
}

// NewFactory wraps a faker. Pass gofakeit.New(seed) for reproducible output.
func NewFactory(faker *gofakeit.Faker) *Factory {
	return &Factory{faker: faker, now: time.Now}
}

// User returns an active account. The index keeps usernames and emails unique.
func (f *Factory) User(index int, passwordHash string) *models.User {
	base := usernameUnsafe.ReplaceAllString(strings.ToLower(f.faker.Username()), "")
	if len(base) > 20 {
		base = base[:20]
	}
	if base == "" {
		base = "user"
	}
	username := fmt.Sprintf("%s_%d", base, index)

	birthday := f.faker.DateRange(f.now().AddDate(-70, 0, 0), f.now().AddDate(-16, 0, 0))
	return &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: passwordHash,
		Bio:      truncate(f.faker.Sentence(12), 500),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		Birthday: &birthday,
		IsActive: true,
	}
}

// Post returns a post by author dated within the last 90 days.
func (f *Factory) Post(author *models.User, inactive bool) *models.Post {
	created := f.recent(90 * 24 * time.Hour)
	p := &models.Post{
		UserID:    author.ID,
		Title:     truncate(strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 8)), "."), models.PostTitleMaxLen),
		Text:      truncate(f.faker.Paragraph(1, f.faker.Number(1, 4), 12, "\n\n"), models.PostTextMaxLen),
		IsActive:  !inactive,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if f.chance(0.35) {
		p.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID())
	}
	return p
}

// Comment returns a comment on post. A non-nil parent makes it a reply.
func (f *Factory) Comment(author *models.User, post *models.Post, parent *models.Comment) *models.Comment {
	c := &models.Comment{
		UserID:   author.ID,
		PostID:   post.ID,
		Content:  truncate(f.faker.Sentence(f.faker.Number(4, 20)), models.CommentContentMaxLen),
		IsActive: true,
	}
	if parent != nil {
		id := parent.ID
		c.ParentID = &id
	}
	return c
}

// Message returns a chat line from sender in conv.
func (f *Factory) Message(conv *models.Conversation, sender *models.User) *models.Message {
	content := f.faker.Sentence(f.faker.Number(2, 14))
	if f.chance(0.2) {
		content = f.faker.HackerPhrase()
	}
	return &models.Message{
		ConversationID: conv.ID,
		SenderID:       sender.ID,
		Content:        truncate(content, models.MessageContentMaxLen),
	}
}

func (f *Factory) chance(ratio float64) bool {
	if ratio <= 0 {
		return false
	}
	return f.faker.Float64() < ratio
}

func (f *Factory) pick(users []*models.User) *models.User {
	return users[f.faker.Number(0, len(users)-1)]
}

// pair returns two distinct users. len(users) must be at least 2.
func (f *Factory) pair(users []*models.User) (*models.User, *models.User) {
	i := f.faker.Number(0, len(users)-1)
	j := f.faker.Number(0, len(users)-2)
	if j >= i {
		j++
	}
	return users[i], users[j]
}

func (f *Factory) recent(window time.Duration) time.Time {
	minutes := f.faker.Number(0, int(window/time.Minute))
	return f.now().Add(-time.Duration(minutes) * time.Minute).Truncate(time.Second)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return strings.TrimSpace(s[:limit])
}
