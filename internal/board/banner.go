package board

import (
	"sync"
	"time"
)

const defaultBannerTTL = 7 * time.Second

// Message is one transient banner entry.
type Message struct {
	Title     string    `json:"title"`
	Detail    string    `json:"detail,omitempty"`
	PostedAt  time.Time `json:"postedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Banner holds short-lived error messages. Expired entries are pruned on read.
type Banner struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	messages []Message
}

// NewBanner constructs a Banner; ttl <= 0 uses 7s.
func NewBanner(ttl time.Duration) *Banner {
	if ttl <= 0 {
		ttl = defaultBannerTTL
	}
	return &Banner{ttl: ttl, now: time.Now}
}

// WithClock overrides the banner's time source.
func (b *Banner) WithClock(now func() time.Time) *Banner {
	if now != nil {
		b.now = now
	}
	return b
}

// Post adds a message that expires after the banner's TTL.
func (b *Banner) Post(title, detail string) Message {
	now := b.now()
	msg := Message{Title: title, Detail: detail, PostedAt: now, ExpiresAt: now.Add(b.ttl)}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.pruneLocked(now)
	b.messages = append(b.messages, msg)
	return msg
}

// Active returns live messages, newest first.
func (b *Banner) Active() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pruneLocked(b.now())

	out := make([]Message, len(b.messages))
	for i, m := range b.messages {
		out[len(b.messages)-1-i] = m
	}
	return out
}

// Visible reports whether any message is still live.
func (b *Banner) Visible() bool {
	return len(b.Active()) > 0
}

func (b *Banner) pruneLocked(now time.Time) {
	kept := b.messages[:0]
	for _, m := range b.messages {
		if now.Before(m.ExpiresAt) {
			kept = append(kept, m)
		}
	}
	b.messages = kept
}
