package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"breakoutbot/internal/account"
	"breakoutbot/internal/cfg"
	"breakoutbot/internal/core"
	"breakoutbot/internal/data"
	"breakoutbot/internal/engine"
	"breakoutbot/internal/logx"
	"breakoutbot/internal/notify"
	"breakoutbot/internal/web"
)

func main() {
	config := cfg.Load()
	logx.Setup(config.LogLevel)
	if err := config.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log.Info().Str("symbol", config.Symbol).Str("feed", config.Feed).Msg("breakoutd starting")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := account.NewStore(config.StartCapitalUSDT, config.HistoryLimit)

	var market engine.MarketData
	switch config.Feed {
	case "sim":
		market = data.NewSim(64_000, 0.002, time.Now().UnixNano())
	default:
		market = data.NewBinance(config.Symbol)
	}

	var sinks []notify.Sink
	if config.TgToken != "" && config.TgChatID != 0 {
		tg, err := notify.NewTelegram(config.TgToken, config.TgChatID)
		if err != nil {
			log.Warn().Err(err).Msg("telegram disabled")
		} else {
			sinks = append(sinks, tg)
		}
	}
	notifier := notify.NewService(sinks...)
	go notifier.Run(ctx)

	wsrv := web.NewServer(config.WebAddr, store)
	go func() {
		if err := wsrv.Serve(); err != nil {
			log.Error().Err(err).Msg("web server stopped")
		}
	}()

	publish := func(evt core.Event) {
		notifier.Publish(evt)
		wsrv.PublishEvent(evt)
	}

	eng := engine.New(engine.Config{
		Symbol:          config.Symbol,
		CoarseInterval:  config.CoarseTF,
		FineInterval:    config.FineTF,
		CoarseLimit:     config.CoarseLimit,
		FineLimit:       config.FineLimit,
		TriggerPct:      config.TriggerPct,
		ProfitTargetPct: config.ProfitTargetPct,
		StopLossPct:     config.StopLossPct,
		FeeRate:         config.FeeRate,
		NotionalUSDT:    config.NotionalUSDT,
		MaxPerSide:      config.MaxPerSide,
		CycleSleep:      config.CycleSleep,
		StatusEvery:     config.StatusEvery,
	}, market, store, publish)
	go eng.Run(ctx)

	<-ctx.Done()
	log.Info().Msg("shutdown")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	if err := wsrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("web shutdown")
	}
}
