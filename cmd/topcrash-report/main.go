package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"topcrash/internal/adapters/crashstats"
	"topcrash/internal/platform/config"
	"topcrash/internal/platform/logger"

	"topcrash/internal/services/topcrash/domain"
	tcsvc "topcrash/internal/services/topcrash/service"
)

func main() {
	root := config.New()
	csCfg := root.Prefix("CORE_CRASHSTATS_")
	tcCfg := root.Prefix("CORE_TOPCRASH_")

	l := logger.Get()

	var (
		fDate = flag.String("date", "", "end of the crash-date window YYYY-MM-DD (default today)")
		fDays = flag.Int("days", 0, "lookback duration in days (default 7)")
		fMin  = flag.Int("min-crashes", 0, "minimum crashes for the primary pass (default 5)")
	)
	flag.Parse()

	var date time.Time
	if *fDate != "" {
		t, err := time.Parse("2006-01-02", *fDate)
		if err != nil {
			l.Panic().Err(err).Msg("bad -date")
		}
		date = t
	}

	client := crashstats.NewClient(crashstats.FromConfig(csCfg))
	svc := tcsvc.New(client, domain.DefaultCatalog(), tcsvc.Config{
		MinimumCrashes: tcCfg.MayInt("MIN_CRASHES", 0),
		LookbackDays:   tcCfg.MayInt("LOOKBACK_DAYS", 0),
		BlockPatterns:  tcCfg.MayCSV("BLOCK_PATTERNS", nil),
	})

	out, err := svc.Signatures(context.Background(), domain.RunInput{
		Date:           date,
		LookbackDays:   *fDays,
		MinimumCrashes: *fMin,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("topcrash run failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		l.Fatal().Err(err).Msg("encode failed")
	}
}
