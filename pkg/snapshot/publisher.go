package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/vango-dev/rangeui/internal/errors"
	"github.com/vango-dev/rangeui/pkg/memhost"
)

// ContentType is the content type of published pages.
const ContentType = "text/html; charset=utf-8"

// hashLen is the number of hex digits of the content hash kept in keys.
const hashLen = 12

// Publisher renders documents to pages and stores them.
type Publisher struct {
	store  Store
	logger *slog.Logger
	title  string
	now    func() time.Time
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTitle sets the <title> of published pages.
func WithTitle(title string) PublisherOption {
	return func(p *Publisher) {
		p.title = title
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPublisher creates a Publisher writing to store.
func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		title:  "rangeui",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Page returns the complete HTML page for doc.
func (p *Publisher) Page(doc *memhost.Document) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(p.title))
	b.WriteString("</title>\n</head>\n")
	b.WriteString(memhost.HTML(doc.Body()))
	b.WriteString("\n</html>\n")
	return []byte(b.String())
}

// Publish stores the page for doc under "<name>-<hash>.html", where hash is a
// prefix of the page's SHA-256. Publishing an unchanged document yields the
// same key.
func (p *Publisher) Publish(ctx context.Context, doc *memhost.Document, name string) (*Object, error) {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return nil, errors.New("E401").WithDetail(fmt.Sprintf("invalid snapshot name %q", name))
	}
	body := p.Page(doc)
	sum := sha256.Sum256(body)
	digest := hex.EncodeToString(sum[:])

	obj := &Object{
		Key:         fmt.Sprintf("%s-%s.html", name, digest[:hashLen]),
		ContentType: ContentType,
		Body:        body,
		Metadata: map[string]string{
			"content-sha256": digest,
			"rendered-at":    p.now().UTC().Format(time.RFC3339),
		},
		CreatedAt: p.now(),
	}
	if err := p.store.Put(ctx, obj); err != nil {
		p.logger.Error("snapshot publish failed", "key", obj.Key, "error", err)
		return nil, errors.New("E401").WithDetail(obj.Key).Wrap(err)
	}
	p.logger.Info("snapshot published", "key", obj.Key, "bytes", len(body))
	return obj, nil
}
