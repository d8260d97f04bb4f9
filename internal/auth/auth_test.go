package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/saurabh-eg/Tasksync/internal/auth"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword err: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal plain password")
	}
	if !auth.CheckPassword("secret123", hash) {
		t.Fatal("correct password rejected")
	}
	if auth.CheckPassword("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPassword_LongInput(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	hash, err := auth.HashPassword(string(long))
	if err != nil {
		t.Fatalf("HashPassword err: %v", err)
	}
	if !auth.CheckPassword(string(long), hash) {
		t.Fatal("long password rejected after hashing")
	}
}

func TestToken_RoundTrip(t *testing.T) {
	tok, err := auth.NewToken("secret", "user-42", time.Minute)
	if err != nil {
		t.Fatalf("NewToken err: %v", err)
	}
	uid, err := auth.ParseToken("secret", tok)
	if err != nil {
		t.Fatalf("ParseToken err: %v", err)
	}
	if uid != "user-42" {
		t.Fatalf("sub = %q", uid)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, _ := auth.NewToken("secret", "user-42", time.Minute)
	if _, err := auth.ParseToken("other", tok); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	tok, _ := auth.NewToken("secret", "user-42", -time.Minute)
	if _, err := auth.ParseToken("secret", tok); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := auth.ParseToken("secret", "not.a.token"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	fresh, _ := auth.NewToken("secret", "u", time.Hour)
	if auth.TokenExpired(fresh) {
		t.Fatal("fresh token reported expired")
	}

	stale, _ := auth.NewToken("secret", "u", -time.Hour)
	if !auth.TokenExpired(stale) {
		t.Fatal("stale token reported alive")
	}

	// кривой токен считаем протухшим
	if !auth.TokenExpired("garbage") {
		t.Fatal("garbage token must count as expired")
	}
	if !auth.TokenExpired("") {
		t.Fatal("empty token must count as expired")
	}
}
