package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clubweb/internal/db"
	"clubweb/internal/models"
)

func newTestStore(t *testing.T, secret string) *Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database, secret, time.Hour)
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-key"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestLoginGetLogout(t *testing.T) {
	s := newTestStore(t, "secret")
	ctx := context.Background()
	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	sess, err := s.Login(ctx, Login{Token: "opaque-token", Name: "Kim", Email: "kim@club.test", Role: models.RoleOfficer})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Token != "opaque-token" || got.Name != "Kim" || !got.IsOfficer() {
		t.Fatalf("session = %+v", got)
	}
	if d := got.ExpiresAt.Sub(sess.CreatedAt); d < 59*time.Minute || d > 61*time.Minute {
		t.Fatalf("ttl = %v", d)
	}

	if err := s.Logout(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Logout(ctx, sess.ID); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if _, err := s.Get(ctx, sess.ID); !errors.Is(err, ErrNoSession) {
		t.Fatalf("after logout err = %v", err)
	}
	if len(events) != 2 || events[0].Kind != EventLogin || events[1].Kind != EventLogout {
		t.Fatalf("events = %+v", events)
	}
	if events[1].Kind.String() != "logout" {
		t.Fatalf("kind string = %q", events[1].Kind)
	}
}

func TestTokenNotStoredInClear(t *testing.T) {
	s := newTestStore(t, "secret")
	sess, err := s.Login(context.Background(), Login{Token: "very-secret-token"})
	if err != nil {
		t.Fatal(err)
	}
	var sealed []byte
	if err := s.db.QueryRow(`SELECT sealed_token FROM sessions WHERE id = ?`, sess.ID).Scan(&sealed); err != nil {
		t.Fatal(err)
	}
	if string(sealed) == "very-secret-token" || len(sealed) <= len("very-secret-token") {
		t.Fatalf("token stored unsealed")
	}

	other := NewStore(s.db, "another-secret", time.Hour)
	if _, err := other.Get(context.Background(), sess.ID); !errors.Is(err, ErrNoSession) {
		t.Fatalf("foreign secret err = %v", err)
	}
}

func TestLoginReadsClaims(t *testing.T) {
	s := newTestStore(t, "secret")
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	tok := signed(t, jwt.MapClaims{"uid": "42", "role": "officer", "name": "Park", "exp": exp.Unix()})

	sess, err := s.Login(context.Background(), Login{Token: tok})
	if err != nil {
		t.Fatal(err)
	}
	if sess.Role != models.RoleOfficer || sess.Name != "Park" || !sess.ExpiresAt.Equal(exp) {
		t.Fatalf("session = %+v", sess)
	}

	c, ok := ReadClaims(tok)
	if !ok || c.Subject != "42" {
		t.Fatalf("claims = %+v", c)
	}
	if _, ok := ReadClaims("not-a-jwt"); ok {
		t.Fatal("opaque token parsed as claims")
	}
}

func TestLoginRejectsExpiredToken(t *testing.T) {
	s := newTestStore(t, "secret")
	tok := signed(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})
	if _, err := s.Login(context.Background(), Login{Token: tok}); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
	if _, err := s.Login(context.Background(), Login{}); err == nil {
		t.Fatal("empty token accepted")
	}
}

func TestExpiryAndPurge(t *testing.T) {
	s := newTestStore(t, "secret")
	ctx := context.Background()
	sess, err := s.Login(ctx, Login{Token: "t", Email: "a@club.test"})
	if err != nil {
		t.Fatal(err)
	}
	if sess.Role != models.RoleMember {
		t.Fatalf("default role = %q", sess.Role)
	}

	s.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	if _, err := s.Get(ctx, sess.ID); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
	n, err := s.PurgeExpired(ctx)
	if err != nil || n != 1 {
		t.Fatalf("purged %d, %v", n, err)
	}
	if _, err := s.Get(ctx, sess.ID); !errors.Is(err, ErrNoSession) {
		t.Fatalf("after purge err = %v", err)
	}
}

func TestSessionsPerDeviceAreIndependent(t *testing.T) {
	s := newTestStore(t, "secret")
	ctx := context.Background()
	laptop, _ := s.Login(ctx, Login{Token: "a", Email: "kim@club.test"})
	phone, err := s.Login(ctx, Login{Token: "b", Email: "kim@club.test"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, laptop.ID); err != nil {
		t.Fatalf("first session dropped by second login: %v", err)
	}
	if err := s.Logout(ctx, phone.ID); err != nil {
		t.Fatal(err)
	}
	if got, err := s.Get(ctx, laptop.ID); err != nil || got.Token != "a" {
		t.Fatalf("first session after second logout: %+v, %v", got, err)
	}
}
