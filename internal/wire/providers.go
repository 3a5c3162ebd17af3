// Package wire 提供依赖注入配置
package wire

import (
	"rpg-motif-api/internal/application/conflict"
	"rpg-motif-api/internal/application/evolution"
	"rpg-motif-api/internal/application/lifecycle"
	"rpg-motif-api/internal/application/motif"
	"rpg-motif-api/internal/application/spatial"
	"rpg-motif-api/internal/config"
	"rpg-motif-api/internal/domain/repository"
	"rpg-motif-api/internal/infrastructure/messaging"
	"rpg-motif-api/internal/infrastructure/persistence/postgres"
	"rpg-motif-api/internal/infrastructure/persistence/redis"
)

// DataLayer 数据层依赖容器
type DataLayer struct {
	PgClient     *postgres.Client
	TxManager    *postgres.TxManager
	MotifRepo    *postgres.MotifRepository
	ConflictRepo *postgres.ConflictRepository

	RedisClient *redis.Client
	Cache       *redis.Cache

	Producer *messaging.Producer
}

// Worker 后台扫描进程的依赖容器
type Worker struct {
	Scheduler *lifecycle.Scheduler
	Engine    *evolution.Engine
	Detector  *conflict.Detector
	Motifs    *motif.Service
}

// Bootstrap 初始化进程的依赖容器
type Bootstrap struct {
	PgClient *postgres.Client
	Motifs   *motif.Service
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideRateLimiter 提供限流器
func ProvideRateLimiter(redisClient *redis.Client) *redis.RateLimiter {
	return redis.NewRateLimiter(redisClient)
}

// ProvideResolver 提供空间解析器
func ProvideResolver(motifs repository.MotifRepository, cfg *config.Config) *spatial.Resolver {
	return spatial.NewResolver(motifs, cfg.Motif.DefaultLocalRadius)
}

// ProvideScheduler 提供生命周期调度器
func ProvideScheduler(motifs repository.MotifRepository, cfg *config.Config) *lifecycle.Scheduler {
	return lifecycle.NewScheduler(motifs, cfg.Motif.CleanupRetention)
}

// ProvideDetector 提供冲突检测器
func ProvideDetector(
	motifs repository.MotifRepository,
	conflicts repository.ConflictRepository,
	resolver *spatial.Resolver,
	cfg *config.Config,
) *conflict.Detector {
	return conflict.NewDetector(motifs, conflicts, resolver, cfg.Motif.TensionThreshold)
}
