package leadimport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadcrm/internal/pkg/jwt"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TableStore carries a parsed table between the upload and mapping steps.
type TableStore interface {
	Save(ctx context.Context, t *Table) (string, error)
	Load(ctx context.Context, token string) (*Table, error)
	Discard(ctx context.Context, token string) error
}

// InlineCodec carries the whole table inside the token itself as an HS256 JWT.
// Nothing is stored server-side and the signature keeps clients from editing
// rows, the source name or the archive key. A zero TTL never expires.
type InlineCodec struct {
	TTL    time.Duration
	secret []byte
	now    func() time.Time
}

// inlineAudience keeps import tokens and API access tokens apart.
const inlineAudience = "leadcrm-import"

type tableClaims struct {
	Table Table `json:"tbl"`
	jwtlib.RegisteredClaims
}

func NewInlineCodec(secret string, ttl time.Duration) *InlineCodec {
	return &InlineCodec{TTL: ttl, secret: []byte(secret), now: time.Now}
}

func (c *InlineCodec) Save(_ context.Context, t *Table) (string, error) {
	now := c.clock()
	claims := tableClaims{
		Table: *t,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:   jwt.Issuer,
			Audience: jwtlib.ClaimStrings{inlineAudience},
			IssuedAt: jwtlib.NewNumericDate(now),
		},
	}
	if c.TTL > 0 {
		claims.ExpiresAt = jwtlib.NewNumericDate(now.Add(c.TTL))
	}

	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("encode table: %w", err)
	}
	return token, nil
}

func (c *InlineCodec) Load(_ context.Context, token string) (*Table, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	var claims tableClaims
	_, err := jwtlib.ParseWithClaims(token, &claims,
		func(*jwtlib.Token) (any, error) { return c.secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(jwt.Issuer),
		jwtlib.WithAudience(inlineAudience),
		jwtlib.WithTimeFunc(c.clock),
	)
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	t := claims.Table
	if len(t.Columns) == 0 {
		return nil, ErrInvalidToken
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells", ErrInvalidToken, i+1, len(row))
		}
	}
	return &t, nil
}

// Discard is a no-op: an inline token cannot be revoked.
func (c *InlineCodec) Discard(context.Context, string) error { return nil }

func (c *InlineCodec) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

const redisTableKeyPrefix = "import:table:"

// RedisStore keeps the table server-side under a uuid token with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(token string) string {
	return redisTableKeyPrefix + token
}

func (s *RedisStore) Save(ctx context.Context, t *Table) (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode table: %w", err)
	}
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.key(token), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store table: %w", err)
	}
	return token, nil
}

func (s *RedisStore) Load(ctx context.Context, token string) (*Table, error) {
	token = strings.TrimSpace(token)
	if _, err := uuid.Parse(token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}

	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &t, nil
}

func (s *RedisStore) Discard(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(strings.TrimSpace(token))).Err()
}
