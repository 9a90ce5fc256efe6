// Package cache guarda en Redis el resultado de StatsByLocation entre mutaciones del ledger.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/inventory"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
)

const (
	statsCacheKey = "inventory:stats:by_location"
	statsGenKey   = "inventory:stats:gen"
)

var errStaleGeneration = errors.New("generación de estadísticas desactualizada")

var _ inventory.StatsCache = (*RedisStatsCache)(nil)

// RedisStatsCache implementa inventory.StatsCache con una clave JSON y un contador de generación.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient abre y verifica la conexión.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar redis: %w", err)
	}
	return client, nil
}

// NewRedisStatsCache construye la caché. ttl <= 0 significa sin expiración (solo invalidación).
func NewRedisStatsCache(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStatsCache{client: client, ttl: ttl}
}

func (c *RedisStatsCache) GetStats(ctx context.Context) (map[string]entity.LocationStats, int64, bool, error) {
	vals, err := c.client.MGet(ctx, statsGenKey, statsCacheKey).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("leer estadísticas de caché: %w", err)
	}

	gen, err := parseGen(vals[0])
	if err != nil {
		return nil, 0, false, err
	}
	raw, ok := vals[1].(string)
	if !ok {
		return nil, gen, false, nil
	}

	var stats map[string]entity.LocationStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, gen, false, fmt.Errorf("decodificar estadísticas de caché: %w", err)
	}
	return stats, gen, true, nil
}

// SetStats escribe bajo WATCH de la generación: si otra invalidación la avanzó, no guarda nada.
func (c *RedisStatsCache) SetStats(ctx context.Context, gen int64, stats map[string]entity.LocationStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("codificar estadísticas: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, statsGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, statsCacheKey, data, c.ttl)
			return nil
		})
		return err
	}, statsGenKey)

	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("guardar estadísticas en caché: %w", err)
	}
}

// InvalidateStats avanza la generación y borra el valor en una sola transacción.
func (c *RedisStatsCache) InvalidateStats(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, statsGenKey)
		pipe.Del(ctx, statsCacheKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidar estadísticas en caché: %w", err)
	}
	return nil
}

func parseGen(v interface{}) (int64, error) {
	raw, ok := v.(string)
	if !ok {
		return 0, nil
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("generación de caché inválida %q: %w", raw, err)
	}
	return gen, nil
}
