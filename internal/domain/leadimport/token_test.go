package leadimport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"leadcrm/internal/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		Columns:    []string{"Name", "E", "Ph"},
		Rows:       [][]string{{"Jane Doe", "jane@x.com", "555-1234"}},
		Source:     "leads.csv",
		ArchiveKey: "lead-imports/2024/01/01/x_leads.csv",
	}
}

const testSecret = "import-secret"

func TestInlineCodec_RoundTrip(t *testing.T) {
	ctx := context.Background()
	codec := NewInlineCodec(testSecret, time.Hour)

	token, err := codec.Save(ctx, sampleTable())
	require.NoError(t, err)

	got, err := codec.Load(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), got)
}

func TestInlineCodec_Expired(t *testing.T) {
	ctx := context.Background()
	codec := NewInlineCodec(testSecret, time.Minute)
	now := time.Now()
	codec.now = func() time.Time { return now }

	token, err := codec.Save(ctx, sampleTable())
	require.NoError(t, err)

	codec.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = codec.Load(ctx, token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

// resign rewrites the payload segment of a token and keeps the old signature.
func resign(t *testing.T, token string, edit func(map[string]any)) string {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	edit(payload)
	raw, err = json.Marshal(payload)
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString(raw)
	return strings.Join(parts, ".")
}

func signTable(t *testing.T, secret string, claims tableClaims) string {
	t.Helper()
	s, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestInlineCodec_Invalid(t *testing.T) {
	codec := NewInlineCodec(testSecret, 0)
	ctx := context.Background()

	good, err := codec.Save(ctx, sampleTable())
	require.NoError(t, err)

	accessToken, err := jwt.New(testSecret, time.Hour).GenerateToken(1, "boss", "staff")
	require.NoError(t, err)

	registered := jwtlib.RegisteredClaims{Issuer: jwt.Issuer, Audience: jwtlib.ClaimStrings{inlineAudience}}

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "%%%",
		"not a jwt":    base64.RawURLEncoding.EncodeToString([]byte(`{"tbl":{"columns":["A"]}}`)),
		"other secret": signTable(t, "other-secret", tableClaims{Table: *sampleTable(), RegisteredClaims: registered}),
		"access token": accessToken,
		"no columns":   signTable(t, testSecret, tableClaims{RegisteredClaims: registered}),
		"ragged rows": signTable(t, testSecret, tableClaims{
			Table:            Table{Columns: []string{"A", "B"}, Rows: [][]string{{"1"}}},
			RegisteredClaims: registered,
		}),
		"edited archive key": resign(t, good, func(p map[string]any) {
			p["tbl"].(map[string]any)["archive_key"] = "someone/else.csv"
		}),
		"edited rows": resign(t, good, func(p map[string]any) {
			p["tbl"].(map[string]any)["rows"] = [][]string{{"Mallory", "m@x.com", "5551234"}}
		}),
	} {
		_, err := codec.Load(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStore_RoundTripAndDiscard(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, 30*time.Minute)

	token, err := store.Save(ctx, sampleTable())
	require.NoError(t, err)
	assert.True(t, mr.Exists(redisTableKeyPrefix+token))
	assert.Equal(t, 30*time.Minute, mr.TTL(redisTableKeyPrefix+token))

	got, err := store.Load(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), got)

	require.NoError(t, store.Discard(ctx, token))
	_, err = store.Load(ctx, token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	token, err := store.Save(ctx, sampleTable())
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = store.Load(ctx, token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRedisStore_InvalidToken(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	_, err := store.Load(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
