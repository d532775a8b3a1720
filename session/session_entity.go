package session

import (
	"context"
	"time"
	"worksync/authority"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Token    string                `json:"token"`
	Identity Identity              `json:"identity"`
	Perms    authority.Permissions `json:"perms"`

	SigningTime time.Time       `json:"-"`
	Context     context.Context `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (i Identity) DisplayName() string {
	if i.Nickname != "" {
		return i.Nickname
	}
	return i.Name
}

func (s *Session) Clone() Session {
	perms := make(authority.Permissions, len(s.Perms))
	copy(perms, s.Perms)
	return Session{Token: s.Token, Identity: s.Identity, Perms: perms, SigningTime: s.SigningTime, Context: s.Context}
}

func (s *Session) ExpiresAt() time.Time {
	return s.SigningTime.Add(TokenExpiration)
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt())
}

// Ctx returns the request context of the session, never nil.
func (s *Session) Ctx() context.Context {
	if s == nil || s.Context == nil {
		return context.Background()
	}
	return s.Context
}
