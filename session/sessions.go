package session

import (
	"strings"
	"time"
	"worksync/authority"
	"worksync/bizerror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const TokenExpiration = 24 * time.Hour

var TokenCache = cache.New(TokenExpiration, 1*time.Minute)

type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const (
	KeySecCtx   = "SecCtx"
	KeySecToken = "sec_token"

	bearerPrefix = "Bearer "
)

// Sign issues a new token for the identity, it stays valid for TokenExpiration from now.
func Sign(identity Identity, perms authority.Permissions, now time.Time) *Session {
	s := &Session{Token: uuid.New().String(), Identity: identity, Perms: perms, SigningTime: now}
	TokenCache.Set(s.Token, s, TokenExpiration)
	return s
}

// Lookup finds the live session of token. Sessions past their expiry are evicted.
func Lookup(token string, now time.Time) (*Session, bool) {
	if token == "" {
		return nil, false
	}
	value, found := TokenCache.Get(token)
	if !found {
		return nil, false
	}
	s, ok := value.(*Session)
	if !ok || s.Expired(now) {
		TokenCache.Delete(token)
		return nil, false
	}
	return s, true
}

// Refresh replaces the permissions of a live session, its expiry is kept.
func Refresh(s *Session, perms authority.Permissions, now time.Time) (*Session, error) {
	ttl := s.ExpiresAt().Sub(now)
	if ttl <= 0 {
		TokenCache.Delete(s.Token)
		return nil, bizerror.ErrUnauthenticated
	}
	refreshed := &Session{Token: s.Token, Identity: s.Identity, Perms: perms, SigningTime: s.SigningTime}
	TokenCache.Set(s.Token, refreshed, ttl)
	return refreshed, nil
}

func Revoke(token string) {
	if token != "" {
		TokenCache.Delete(token)
	}
}

// RequestToken reads the token from the session cookie, or from a bearer Authorization header.
func RequestToken(ctx *gin.Context) string {
	if token, err := ctx.Cookie(KeySecToken); err == nil && token != "" {
		return token
	}
	if h := ctx.GetHeader("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
	}
	return ""
}

func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return &Session{Context: ctx.Request.Context()}
	}
	s0, ok := value.(*Session)
	if !ok || s0.Token == "" {
		return &Session{Context: ctx.Request.Context()}
	}
	s := s0.Clone()
	s.Context = ctx.Request.Context() // trace context
	return &s
}

func SimpleAuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s, found := Lookup(RequestToken(ctx), time.Now())
		if !found {
			panic(bizerror.ErrUnauthenticated)
		}
		InjectSessionIntoGinContext(ctx, s)
		ctx.Next()
	}
}

func InjectSessionIntoGinContext(ctx *gin.Context, s *Session) {
	if s != nil && s.Token != "" {
		ctx.Set(KeySecCtx, s)
	}
}
