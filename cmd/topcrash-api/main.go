package main

import (
	"context"

	"topcrash/internal/adapters/crashstats"
	"topcrash/internal/platform/config"
	"topcrash/internal/platform/logger"
	phttp "topcrash/internal/platform/net/http"
	"topcrash/internal/platform/net/middleware"

	"topcrash/internal/services/topcrash/domain"
	tchttp "topcrash/internal/services/topcrash/http"
	tcsvc "topcrash/internal/services/topcrash/service"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	csCfg := root.Prefix("CORE_CRASHSTATS_")
	tcCfg := root.Prefix("CORE_TOPCRASH_")

	// bring up logging early
	l := logger.Get()

	client := crashstats.NewClient(crashstats.FromConfig(csCfg))
	catalog := domain.DefaultCatalog()
	svc := tcsvc.New(client, catalog, tcsvc.Config{
		MinimumCrashes: tcCfg.MayInt("MIN_CRASHES", 0),
		LookbackDays:   tcCfg.MayInt("LOOKBACK_DAYS", 0),
		BlockPatterns:  tcCfg.MayCSV("BLOCK_PATTERNS", nil),
	})

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg)
	r := srv.Router()
	r.Use(middleware.Defaults()...)
	r.Use(middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: apiCfg.MayCSV("CORS_ORIGINS", []string{"*"}),
	}))
	r.Use(middleware.AccessLogZerolog(middleware.AccessLogOptions{
		Slow: apiCfg.MayDuration("SLOW", 0),
	}))
	r.Use(middleware.RecoverJSON)
	r.Use(middleware.Heartbeat("/healthz"))

	tchttp.Mount(r, svc, catalog)

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
