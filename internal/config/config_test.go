package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("加载默认配置失败: %v", err)
	}

	if cfg.App.Name != "predboard" {
		t.Errorf("app.name 不符: %q", cfg.App.Name)
	}
	if cfg.Scheduler.Interval != 30*time.Second {
		t.Errorf("scheduler.interval 不符: %s", cfg.Scheduler.Interval)
	}
	if !cfg.Scheduler.RunImmediately {
		t.Errorf("scheduler.run_immediately 默认应为 true")
	}
	if cfg.Dashboard.WindowDays != 7 || cfg.Dashboard.RecentLimit != 30 || cfg.Dashboard.PendingLimit != 100 {
		t.Errorf("dashboard 默认值不符: %+v", cfg.Dashboard)
	}
	if cfg.Status.DelayedAfter != 2*time.Minute || cfg.Status.OfflineAfter != 10*time.Minute {
		t.Errorf("status 阈值不符: %+v", cfg.Status)
	}
	if cfg.PriceFeed.Pair != "BTC-USD" {
		t.Errorf("pricefeed.pair 不符: %q", cfg.PriceFeed.Pair)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("server.listen_addr 不符: %q", cfg.Server.ListenAddr)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  name: predboard-test
scheduler:
  interval: 1m
dashboard:
  window_days: 14
status:
  delayed_after: 3m
  offline_after: 15m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.App.Name != "predboard-test" {
		t.Errorf("app.name 不符: %q", cfg.App.Name)
	}
	if cfg.Scheduler.Interval != time.Minute {
		t.Errorf("scheduler.interval 不符: %s", cfg.Scheduler.Interval)
	}
	if cfg.Dashboard.WindowDays != 14 {
		t.Errorf("dashboard.window_days 不符: %d", cfg.Dashboard.WindowDays)
	}
	if cfg.Status.OfflineAfter != 15*time.Minute {
		t.Errorf("status.offline_after 不符: %s", cfg.Status.OfflineAfter)
	}
	// Unset keys keep their defaults.
	if cfg.Dashboard.RecentLimit != 30 {
		t.Errorf("未设置的键应保留默认值, 实际 %d", cfg.Dashboard.RecentLimit)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Scheduler: SchedulerConfig{Interval: 30 * time.Second},
			Dashboard: DashboardConfig{WindowDays: 7, RecentLimit: 30, PendingLimit: 100, ValidatedLimit: 500},
			Status:    StatusConfig{DelayedAfter: 2 * time.Minute, OfflineAfter: 10 * time.Minute},
			Export:    ExportConfig{MaxDataPoints: 1000},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("合法配置不应报错: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.Scheduler.Interval = 0 }},
		{"zero window", func(c *Config) { c.Dashboard.WindowDays = 0 }},
		{"inverted thresholds", func(c *Config) { c.Status.OfflineAfter = time.Minute }},
		{"telegram missing token", func(c *Config) { c.Alerting.Telegram.Enabled = true; c.Alerting.Telegram.ChatID = "1" }},
		{"telegram missing chat", func(c *Config) { c.Alerting.Telegram.Enabled = true; c.Alerting.Telegram.BotToken = "t" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("非法配置应报错")
			}
		})
	}
}

func TestResolveMaxPoints(t *testing.T) {
	cfg := &Config{Export: ExportConfig{MaxDataPoints: 5000}}

	if got := cfg.ResolveMaxPoints(0); got != 5000 {
		t.Errorf("无覆盖时应取配置值, 实际 %d", got)
	}
	if got := cfg.ResolveMaxPoints(200); got != 200 {
		t.Errorf("CLI 覆盖应优先, 实际 %d", got)
	}
}
