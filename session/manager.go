// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package session caches conversation handles per session key so
// follow-up questions reach the model with their chat history intact.
package session

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/poiesic/findit/ai"
)

const (
	// DefaultTTL is how long an idle conversation stays cached.
	DefaultTTL = 30 * time.Minute

	// DefaultMaxSize bounds the number of cached conversations.
	DefaultMaxSize = 256
)

// Conversation is one cached chat handle. The manager guards only the
// cache; callers serialize use of Chat within a conversation.
type Conversation struct {
	Key       string
	Chat      ai.Chat
	CreatedAt time.Time
	LastUsed  time.Time
	Turns     int
}

// OpenChatFunc creates the model-side conversation behind a new session.
type OpenChatFunc func(key string) ai.Chat

// Manager is a bounded TTL cache of conversations. Expiry is enforced
// both on read and by a janitor goroutine; when the cache is full the
// conversation idle the longest is evicted.
type Manager struct {
	openChat OpenChatFunc
	ttl      time.Duration
	maxSize  int
	clock    func() time.Time
	logger   *slog.Logger

	mu            sync.Mutex
	conversations map[string]*Conversation
	group         singleflight.Group

	janitorStop chan struct{}
	closeOnce   sync.Once
}

// Option configures a Manager.
type Option func(*Manager) error

// WithTTL overrides the idle lifetime. Non-positive values restore the
// default.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) error {
		if ttl <= 0 {
			ttl = DefaultTTL
		}
		m.ttl = ttl
		return nil
	}
}

// WithMaxSize overrides the cache bound. Non-positive values restore
// the default.
func WithMaxSize(size int) Option {
	return func(m *Manager) error {
		if size <= 0 {
			size = DefaultMaxSize
		}
		m.maxSize = size
		return nil
	}
}

// WithClock replaces the time source. A nil clock restores time.Now.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) error {
		if clock == nil {
			clock = time.Now
		}
		m.clock = clock
		return nil
	}
}

// WithLogger replaces the default logger. A nil logger restores
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewManager creates a conversation cache and starts its janitor. A nil
// openChat is legal; conversations then carry a nil Chat and callers
// fall back to single-shot completions.
func NewManager(openChat OpenChatFunc, opts ...Option) (*Manager, error) {
	m := &Manager{
		openChat:      openChat,
		ttl:           DefaultTTL,
		maxSize:       DefaultMaxSize,
		clock:         time.Now,
		logger:        slog.Default().With("component", "session"),
		conversations: make(map[string]*Conversation),
		janitorStop:   make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	go m.janitor(interval)

	return m, nil
}

// Get returns the live conversation for the key, creating it when
// absent or expired. Concurrent calls for the same key create at most
// one conversation.
func (m *Manager) Get(key string) *Conversation {
	if c := m.lookup(key); c != nil {
		return c
	}

	v, _, _ := m.group.Do(key, func() (any, error) {
		// A racing caller may have created it between our miss and the
		// flight getting scheduled.
		if c := m.lookup(key); c != nil {
			return c, nil
		}
		return m.create(key), nil
	})
	return v.(*Conversation)
}

// Touch records a completed turn and refreshes the idle timer.
func (m *Manager) Touch(c *Conversation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.LastUsed = m.clock()
	c.Turns++
}

// Len reports the number of cached conversations.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conversations)
}

// Close stops the janitor. Cached conversations are dropped; their
// chats hold no resources of their own.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.janitorStop)
	})
}

func (m *Manager) lookup(key string) *Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[key]
	if !ok {
		return nil
	}

	now := m.clock()
	if now.Sub(c.LastUsed) > m.ttl {
		delete(m.conversations, key)
		m.logger.Debug("session expired on read", "key", key)
		return nil
	}

	c.LastUsed = now
	return c
}

func (m *Manager) create(key string) *Conversation {
	now := m.clock()
	c := &Conversation{
		Key:       key,
		CreatedAt: now,
		LastUsed:  now,
	}
	if m.openChat != nil {
		c.Chat = m.openChat(key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked()
	m.conversations[key] = c
	m.logger.Debug("session created", "key", key, "cached", len(m.conversations))
	return c
}

// evictLocked drops the longest-idle conversations until there is room
// for one more entry.
func (m *Manager) evictLocked() {
	for len(m.conversations) >= m.maxSize {
		var oldestKey string
		var oldest time.Time
		for key, c := range m.conversations {
			if oldestKey == "" || c.LastUsed.Before(oldest) {
				oldestKey = key
				oldest = c.LastUsed
			}
		}
		delete(m.conversations, oldestKey)
		m.logger.Debug("session evicted", "key", oldestKey)
	}
}

func (m *Manager) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.janitorStop:
			return
		}
	}
}

func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	for key, c := range m.conversations {
		if now.Sub(c.LastUsed) > m.ttl {
			delete(m.conversations, key)
			m.logger.Debug("session expired in sweep", "key", key)
		}
	}
}
