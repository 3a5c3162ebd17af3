//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"rpg-motif-api/internal/application/evolution"
	"rpg-motif-api/internal/application/motif"
	"rpg-motif-api/internal/application/synthesis"
	"rpg-motif-api/internal/config"
	"rpg-motif-api/internal/domain/repository"
	"rpg-motif-api/internal/infrastructure/messaging"
	"rpg-motif-api/internal/infrastructure/persistence/postgres"
	"rpg-motif-api/internal/infrastructure/persistence/redis"
	"rpg-motif-api/internal/interfaces/http/handler"
	"rpg-motif-api/internal/interfaces/http/middleware"
	"rpg-motif-api/internal/interfaces/http/router"
)

// InitializeDataLayer 初始化数据层
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		wire.Struct(new(DataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		AppSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeWorker 初始化后台扫描进程
func InitializeWorker(ctx context.Context, cfg *config.Config) (*Worker, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		AppSet,
		wire.Struct(new(Worker), "*"),
	)
	return nil, nil, nil
}

// InitializeBootstrap 初始化迁移与种子进程
func InitializeBootstrap(ctx context.Context, cfg *config.Config) (*Bootstrap, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		AppSet,
		wire.Struct(new(Bootstrap), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewMotifRepository,
	postgres.NewConflictRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.MotifRepository), new(*postgres.MotifRepository)),
	wire.Bind(new(repository.ConflictRepository), new(*postgres.ConflictRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	wire.Bind(new(motif.KVCache), new(*redis.Cache)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
	wire.Bind(new(motif.EffectEventPublisher), new(*messaging.Producer)),
)

// AppSet 应用服务提供者集合
var AppSet = wire.NewSet(
	ProvideResolver,
	ProvideScheduler,
	ProvideDetector,
	evolution.NewEngine,
	synthesis.NewSynthesizer,
	motif.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideRateLimiter,
	wire.Bind(new(middleware.Limiter), new(*redis.RateLimiter)),
	handler.NewHealthHandler,
	handler.NewMotifHandler,
	handler.NewSpatialHandler,
	handler.NewSynthesisHandler,
	handler.NewConflictHandler,
	handler.NewAdminHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)
