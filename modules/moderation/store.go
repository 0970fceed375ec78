package moderation

import (
	"sort"
	"sync"
	"time"
)

// Warning is one recorded strike against a member.
type Warning struct {
	UserID      string
	ModeratorID string
	Reason      string
	At          time.Time
}

// Punishment is an active measure against a member. A zero ExpiresAt
// means it does not lapse on its own.
type Punishment struct {
	GuildID   string
	UserID    string
	Kind      string
	Reason    string
	IssuedBy  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Store is the module's in-memory moderation ledger. It lives in the
// service container as "moderation.store" and is shared by every
// moderation handler, so all access goes through the mutex.
type Store struct {
	mu          sync.Mutex
	warnings    map[string][]Warning
	punishments map[string]Punishment
}

// NewStore creates an empty ledger.
func NewStore() *Store {
	return &Store{
		warnings:    make(map[string][]Warning),
		punishments: make(map[string]Punishment),
	}
}

func memberKey(guildID, userID string) string {
	return guildID + "/" + userID
}

func punishmentKey(guildID, userID, kind string) string {
	return guildID + "/" + userID + "/" + kind
}

// AddWarning records a strike and returns the member's new total.
func (s *Store) AddWarning(guildID, userID string, w Warning) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memberKey(guildID, userID)
	s.warnings[key] = append(s.warnings[key], w)
	return len(s.warnings[key])
}

// Warnings returns a member's strikes, oldest first.
func (s *Store) Warnings(guildID, userID string) []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.warnings[memberKey(guildID, userID)]
	out := make([]Warning, len(list))
	copy(out, list)
	return out
}

// ClearWarnings removes a member's strikes and returns how many were
// dropped.
func (s *Store) ClearWarnings(guildID, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memberKey(guildID, userID)
	n := len(s.warnings[key])
	delete(s.warnings, key)
	return n
}

// Punish records a punishment, replacing any active one of the same kind
// for the same member.
func (s *Store) Punish(p Punishment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.punishments[punishmentKey(p.GuildID, p.UserID, p.Kind)] = p
}

// Lift removes an active punishment. It reports whether one existed.
func (s *Store) Lift(guildID, userID, kind string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := punishmentKey(guildID, userID, kind)
	_, ok := s.punishments[key]
	delete(s.punishments, key)
	return ok
}

// Punished reports whether a member has an active punishment of a kind.
func (s *Store) Punished(guildID, userID, kind string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.punishments[punishmentKey(guildID, userID, kind)]
	return ok
}

// Active returns a guild's punishments sorted by user id.
func (s *Store) Active(guildID string) []Punishment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Punishment
	for _, p := range s.punishments {
		if p.GuildID == guildID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// ExpireDue removes punishments whose expiry has passed and returns them.
// Permanent punishments are never returned.
func (s *Store) ExpireDue(now time.Time) []Punishment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []Punishment
	for key, p := range s.punishments {
		if !p.ExpiresAt.IsZero() && !p.ExpiresAt.After(now) {
			expired = append(expired, p)
			delete(s.punishments, key)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		if expired[i].GuildID != expired[j].GuildID {
			return expired[i].GuildID < expired[j].GuildID
		}
		return expired[i].UserID < expired[j].UserID
	})
	return expired
}
