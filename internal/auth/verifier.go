package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lifedash/internal/cache"
	"lifedash/internal/core"
	"lifedash/internal/sheets"
)

var ErrInvalidCredentials = errors.New("invalid user id or password")

// CredentialVerifier checks a user id and secret.
type CredentialVerifier interface {
	Verify(ctx context.Context, id, secret string) (Principal, error)
}

type credential struct {
	userName string
	secret   string
}

const credentialsKey = "login"

// SheetVerifier checks credentials against the Login sheet, whose rows are
// [userName, userId, password]. Ids are matched trimmed and lower-cased.
// Stored bcrypt hashes are compared as hashes; any other stored value is
// compared as plaintext in constant time.
type SheetVerifier struct {
	fetcher sheets.RowFetcher
	sheet   string
	cache   *cache.LRUCache[map[string]credential]
}

var _ CredentialVerifier = (*SheetVerifier)(nil)

// NewSheetVerifier caches the parsed sheet for ttl.
func NewSheetVerifier(fetcher sheets.RowFetcher, sheet string, ttl time.Duration) *SheetVerifier {
	return &SheetVerifier{
		fetcher: fetcher,
		sheet:   sheet,
		cache:   cache.NewLRUCache[map[string]credential](1, ttl),
	}
}

// Cache exposes the credential cache for periodic cleanup.
func (v *SheetVerifier) Cache() cache.Cleaner {
	return v.cache
}

func (v *SheetVerifier) Verify(ctx context.Context, id, secret string) (Principal, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	secret = strings.TrimSpace(secret)
	if id == "" || secret == "" {
		return Principal{}, ErrInvalidCredentials
	}

	creds, err := v.cache.GetOrLoad(ctx, credentialsKey, v.load)
	if err != nil {
		return Principal{}, fmt.Errorf("load credentials: %w", err)
	}

	c, ok := creds[id]
	if !ok || !matches(c.secret, secret) {
		return Principal{}, ErrInvalidCredentials
	}
	return Principal{UserID: id, UserName: c.userName}, nil
}

// Invalidate drops the cached sheet so the next login reads it again.
func (v *SheetVerifier) Invalidate() {
	v.cache.Delete(credentialsKey)
}

func (v *SheetVerifier) load(ctx context.Context) (map[string]credential, error) {
	rows, err := v.fetcher.FetchRows(ctx, v.sheet)
	if err != nil {
		return nil, err
	}
	creds := parseLoginRows(rows)
	slog.DebugContext(ctx, "Loaded login sheet", "users", len(creds))
	return creds, nil
}

// parseLoginRows skips the header and any row missing a field.
func parseLoginRows(rows [][]any) map[string]credential {
	out := make(map[string]credential)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		name := strings.TrimSpace(cellAt(row, 0))
		id := strings.ToLower(strings.TrimSpace(cellAt(row, 1)))
		secret := strings.TrimSpace(cellAt(row, 2))
		if name == "" || id == "" || secret == "" {
			continue
		}
		out[id] = credential{userName: name, secret: secret}
	}
	return out
}

func cellAt(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	return core.CellString(row[i])
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

func matches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	// TODO: drop plaintext once every Login row holds a bcrypt hash
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// HashSecret returns the bcrypt hash to store in the Login sheet.
func HashSecret(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(h), nil
}
