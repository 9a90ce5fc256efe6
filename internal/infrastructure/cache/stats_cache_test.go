package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/inventory"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/domain/entity"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/cache"
	"github.com/emanueliriarte-arch/mi-app-inventario/internal/infrastructure/memory"
)

type StatsCacheTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	cache     *cache.RedisStatsCache
}

func TestStatsCacheSuite(t *testing.T) {
	suite.Run(t, new(StatsCacheTestSuite))
}

func (s *StatsCacheTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: s.miniRedis.Addr()})
	s.cache = cache.NewRedisStatsCache(s.client, 10*time.Minute)
}

func (s *StatsCacheTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *StatsCacheTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func sampleStats() map[string]entity.LocationStats {
	return map[string]entity.LocationStats{
		"Almacén":         {ProductCount: 2, TotalQuantity: decimal.RequireFromString("12.5"), DistinctUnits: 2},
		entity.NoLocation: {ProductCount: 1, TotalQuantity: decimal.NewFromInt(3), DistinctUnits: 1},
	}
}

func (s *StatsCacheTestSuite) TestGet_Miss() {
	stats, gen, ok, err := s.cache.GetStats(context.Background())
	s.NoError(err)
	s.False(ok)
	s.Nil(stats)
	s.Zero(gen, "sin clave de generación se parte de 0")
}

func (s *StatsCacheTestSuite) TestSetThenGet() {
	ctx := context.Background()
	s.Require().NoError(s.cache.SetStats(ctx, 0, sampleStats()))

	got, _, ok, err := s.cache.GetStats(ctx)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Len(got, 2)
	s.Equal(2, got["Almacén"].ProductCount)
	s.True(got["Almacén"].TotalQuantity.Equal(decimal.RequireFromString("12.5")))
	s.Equal(1, got[entity.NoLocation].ProductCount, "la clave vacía (sin departamento) sobrevive a JSON")
}

func (s *StatsCacheTestSuite) TestTTL() {
	ctx := context.Background()
	s.Require().NoError(s.cache.SetStats(ctx, 0, sampleStats()))

	s.miniRedis.FastForward(11 * time.Minute)

	_, _, ok, err := s.cache.GetStats(ctx)
	s.NoError(err)
	s.False(ok, "expirada tras el TTL")
}

func (s *StatsCacheTestSuite) TestInvalidate() {
	ctx := context.Background()
	s.Require().NoError(s.cache.SetStats(ctx, 0, sampleStats()))
	s.Require().NoError(s.cache.InvalidateStats(ctx))

	_, gen, ok, err := s.cache.GetStats(ctx)
	s.NoError(err)
	s.False(ok)
	s.Equal(int64(1), gen)
}

func (s *StatsCacheTestSuite) TestSet_StaleGenerationIsDropped() {
	ctx := context.Background()
	_, gen, _, err := s.cache.GetStats(ctx)
	s.Require().NoError(err)

	// una mutación confirma entre la lectura del store y el guardado
	s.Require().NoError(s.cache.InvalidateStats(ctx))
	s.Require().NoError(s.cache.SetStats(ctx, gen, sampleStats()))

	_, current, ok, err := s.cache.GetStats(ctx)
	s.NoError(err)
	s.False(ok, "no se guarda un valor calculado antes de la invalidación")
	s.Equal(gen+1, current)
	s.False(s.miniRedis.Exists("inventory:stats:by_location"))

	s.Require().NoError(s.cache.SetStats(ctx, current, sampleStats()))
	_, _, ok, err = s.cache.GetStats(ctx)
	s.NoError(err)
	s.True(ok, "con la generación vigente sí se guarda")
}

func (s *StatsCacheTestSuite) TestCorruptGeneration() {
	s.Require().NoError(s.miniRedis.Set("inventory:stats:gen", "x"))

	_, _, ok, err := s.cache.GetStats(context.Background())
	s.Error(err)
	s.False(ok)
}

// racingStats lee del store y, en la primera llamada, deja que otra mutación confirme antes
// de devolver el resultado ya leído.
type racingStats struct {
	inner  *memory.Store
	before func()
}

func (r *racingStats) StatsByLocation(ctx context.Context) (map[string]entity.LocationStats, error) {
	stats, err := r.inner.StatsByLocation(ctx)
	if err != nil {
		return nil, err
	}
	if hook := r.before; hook != nil {
		r.before = nil
		hook()
	}
	return stats, nil
}

func (s *StatsCacheTestSuite) TestLedger_MutationDuringStatsReadIsNotCached() {
	ctx := context.Background()
	store := memory.NewStore()
	stats := &racingStats{inner: store}
	cfg := inventory.LedgerConfig{Vocab: inventory.NewVocabulary(inventory.DefaultUnits, inventory.DefaultLocations, false)}
	uc := inventory.NewLedgerUseCase(store, store.Products(), store.Movements(), stats, cfg,
		inventory.WithStatsCache(s.cache))

	p, _, err := uc.AddProduct(ctx, inventory.NewProductInput{
		Name: "Bolt", Quantity: decimal.NewFromInt(100), Unit: "Unitario", Location: "Almacén",
	})
	s.Require().NoError(err)

	stats.before = func() {
		_, _, err := uc.AdjustQuantity(ctx, p.ID, decimal.NewFromInt(50), entity.MovementTypeIncrease)
		s.Require().NoError(err)
	}

	first, err := uc.StatsByLocation(ctx)
	s.Require().NoError(err)
	s.True(first["Almacén"].TotalQuantity.Equal(decimal.NewFromInt(100)), "la lectura en curso ve el valor previo")

	second, err := uc.StatsByLocation(ctx)
	s.Require().NoError(err)
	s.True(second["Almacén"].TotalQuantity.Equal(decimal.NewFromInt(150)),
		"la segunda lectura refleja el ajuste confirmado: got %s", second["Almacén"].TotalQuantity)

	third, err := uc.StatsByLocation(ctx)
	s.Require().NoError(err)
	s.True(third["Almacén"].TotalQuantity.Equal(decimal.NewFromInt(150)), "ahora sí sale de caché")
}

func (s *StatsCacheTestSuite) TestCorruptValue() {
	s.Require().NoError(s.miniRedis.Set("inventory:stats:by_location", "{no-json"))

	_, _, ok, err := s.cache.GetStats(context.Background())
	s.Error(err)
	s.False(ok)
}

func (s *StatsCacheTestSuite) TestServerDown() {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer client.Close()
	c := cache.NewRedisStatsCache(client, time.Minute)

	_, _, ok, err := c.GetStats(context.Background())
	s.Error(err)
	s.False(ok)
	s.Error(c.InvalidateStats(context.Background()))
}
