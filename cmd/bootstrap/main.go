// Package main 数据库迁移与常驻主题种子入口
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"rpg-motif-api/internal/config"
	"rpg-motif-api/internal/wire"
	"rpg-motif-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()

	// 2. 初始化依赖
	boot, cleanup, err := wire.InitializeBootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize bootstrap: %v", err)
	}
	defer cleanup()

	// 3. 同步表结构
	fmt.Println("Running schema migration...")
	if err := boot.PgClient.AutoMigrate(ctx); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	fmt.Println("Schema migration done.")

	// 4. 补齐常驻全局主题
	created, err := boot.Motifs.SeedCanonical(ctx)
	if err != nil {
		log.Fatalf("failed to seed canonical motifs: %v", err)
	}
	if created > 0 {
		fmt.Printf("Seeded %d canonical motifs.\n", created)
	} else {
		fmt.Println("Canonical motifs already present.")
	}

	fmt.Println("Bootstrap completed.")
}
