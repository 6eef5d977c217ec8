package cfg

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is read once at startup; there is no hot-reload.
type Config struct {
	Symbol   string
	CoarseTF string
	FineTF   string

	CoarseLimit int
	FineLimit   int

	TriggerPct       float64
	ProfitTargetPct  float64
	StopLossPct      float64
	FeeRate          float64
	NotionalUSDT     float64
	MaxPerSide       int
	StartCapitalUSDT float64

	CycleSleep   time.Duration
	HistoryLimit int
	StatusEvery  time.Duration

	Feed     string // binance | sim
	WebAddr  string
	TgToken  string
	TgChatID int64
	LogLevel string
}

func Load() Config {
	v := viper.New()
	v.SetConfigFile(".env")
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	v.SetDefault("SYMBOL", "BTCUSDT")
	v.SetDefault("COARSE_TF", "2h")
	v.SetDefault("FINE_TF", "30m")
	v.SetDefault("COARSE_LIMIT", 50)
	v.SetDefault("FINE_LIMIT", 200)
	v.SetDefault("TRIGGER_PCT", 1.5)
	v.SetDefault("PROFIT_TARGET_PCT", 10.0)
	v.SetDefault("STOP_LOSS_PCT", 3.0)
	v.SetDefault("FEE_RATE", 0.0004)
	v.SetDefault("ORDER_NOTIONAL_USDT", 10.0)
	v.SetDefault("MAX_PER_SIDE", 12)
	v.SetDefault("START_CAPITAL_USDT", 1000.0)
	v.SetDefault("CYCLE_SLEEP", "5s")
	v.SetDefault("HISTORY_LIMIT", 500)
	v.SetDefault("STATUS_EVERY", "15m")
	v.SetDefault("FEED", "binance")
	v.SetDefault("WEB_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")

	return Config{
		Symbol:           v.GetString("SYMBOL"),
		CoarseTF:         v.GetString("COARSE_TF"),
		FineTF:           v.GetString("FINE_TF"),
		CoarseLimit:      v.GetInt("COARSE_LIMIT"),
		FineLimit:        v.GetInt("FINE_LIMIT"),
		TriggerPct:       v.GetFloat64("TRIGGER_PCT"),
		ProfitTargetPct:  v.GetFloat64("PROFIT_TARGET_PCT"),
		StopLossPct:      v.GetFloat64("STOP_LOSS_PCT"),
		FeeRate:          v.GetFloat64("FEE_RATE"),
		NotionalUSDT:     v.GetFloat64("ORDER_NOTIONAL_USDT"),
		MaxPerSide:       v.GetInt("MAX_PER_SIDE"),
		StartCapitalUSDT: v.GetFloat64("START_CAPITAL_USDT"),
		CycleSleep:       v.GetDuration("CYCLE_SLEEP"),
		HistoryLimit:     v.GetInt("HISTORY_LIMIT"),
		StatusEvery:      v.GetDuration("STATUS_EVERY"),
		Feed:             v.GetString("FEED"),
		WebAddr:          v.GetString("WEB_ADDR"),
		TgToken:          v.GetString("TG_TOKEN"),
		TgChatID:         v.GetInt64("TG_CHAT_ID"),
		LogLevel:         v.GetString("LOG_LEVEL"),
	}
}

// Validate rejects unusable parameter sets. These are the only fatal
// errors in the process.
func (c Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("SYMBOL is empty")
	}
	if c.TriggerPct <= 0 {
		return fmt.Errorf("TRIGGER_PCT must be > 0, got %v", c.TriggerPct)
	}
	if c.ProfitTargetPct <= 0 || c.StopLossPct <= 0 {
		return fmt.Errorf("PROFIT_TARGET_PCT and STOP_LOSS_PCT must be > 0")
	}
	if c.FeeRate < 0 || c.FeeRate >= 1 {
		return fmt.Errorf("FEE_RATE must be in [0,1), got %v", c.FeeRate)
	}
	if c.NotionalUSDT <= 0 {
		return fmt.Errorf("ORDER_NOTIONAL_USDT must be > 0, got %v", c.NotionalUSDT)
	}
	if c.MaxPerSide < 1 {
		return fmt.Errorf("MAX_PER_SIDE must be >= 1, got %d", c.MaxPerSide)
	}
	if c.CoarseLimit < 2 {
		return fmt.Errorf("COARSE_LIMIT must be >= 2, got %d", c.CoarseLimit)
	}
	if c.FineLimit < 1 {
		return fmt.Errorf("FINE_LIMIT must be >= 1, got %d", c.FineLimit)
	}
	if c.CycleSleep <= 0 {
		return fmt.Errorf("CYCLE_SLEEP must be > 0, got %v", c.CycleSleep)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("HISTORY_LIMIT must be >= 1, got %d", c.HistoryLimit)
	}
	if c.Feed != "binance" && c.Feed != "sim" {
		return fmt.Errorf("FEED must be binance or sim, got %q", c.Feed)
	}
	return nil
}
