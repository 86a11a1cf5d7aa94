package sessionstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/supermarket-console/internal/application/session"
	"github.com/jhoicas/supermarket-console/pkg/jwt"
)

var _ session.Store = (*RedisStore)(nil)

// RedisStore sesión compartida en Redis bajo <prefix>:authToken y <prefix>:userInfo.
// Si el token es un JWT con exp, ambas llaves expiran con él.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisClient abre la conexión desde una URL redis:// y verifica con PING.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL inválida: %w", err)
	}
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.DialTimeout = 5 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping Redis: %w", err)
	}
	return client, nil
}

// NewRedisStore construye el store sobre un cliente ya abierto.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (r *RedisStore) key(name string) string {
	return r.prefix + ":" + name
}

func (r *RedisStore) Load(ctx context.Context) (session.State, error) {
	vals, err := r.client.MGet(ctx, r.key(KeyToken), r.key(KeyUser)).Result()
	if err != nil {
		return session.State{}, fmt.Errorf("leer sesión de Redis: %w", err)
	}
	token, _ := vals[0].(string)
	rawUser, _ := vals[1].(string)
	if token == "" {
		return session.State{}, nil
	}
	user, err := decodeUser(rawUser)
	if err != nil {
		return session.State{}, err
	}
	return session.State{Token: token, User: user}, nil
}

// Save escribe ambas llaves en una sola transacción MULTI/EXEC.
func (r *RedisStore) Save(ctx context.Context, s session.State) error {
	user, err := encodeUser(s.User)
	if err != nil {
		return err
	}
	ttl := r.ttl(s.Token)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(KeyToken), s.Token, ttl)
		pipe.Set(ctx, r.key(KeyUser), user, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("guardar sesión en Redis: %w", err)
	}
	return nil
}

// Clear borra ambas llaves con un solo DEL.
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(KeyToken), r.key(KeyUser)).Err(); err != nil {
		return fmt.Errorf("borrar sesión de Redis: %w", err)
	}
	return nil
}

// ttl 0 (sin expiración) si el token no trae exp legible.
func (r *RedisStore) ttl(token string) time.Duration {
	exp, ok := jwt.ExpiresAt(token)
	if !ok {
		return 0
	}
	d := exp.Sub(r.now())
	if d <= 0 {
		return time.Second
	}
	return d
}
