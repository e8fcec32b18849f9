package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/labstack/gommon/log"

	"github.com/eringen/scholarpage"
)

const envPrefix = "SCHOLARPAGE_"

// fileConfig mirrors config.yaml.
type fileConfig struct {
	Site struct {
		Name        string `koanf:"name"`
		URL         string `koanf:"url"`
		Description string `koanf:"description"`
		Author      string `koanf:"author"`
	} `koanf:"site"`
	Server struct {
		Addr         string        `koanf:"addr"`
		Database     string        `koanf:"database"`
		StaticDir    string        `koanf:"static_dir"`
		CookieSecure bool          `koanf:"cookie_secure"`
		PageCacheTTL time.Duration `koanf:"page_cache_ttl"`
	} `koanf:"server"`
	Content struct {
		File  string `koanf:"file"`
		Watch bool   `koanf:"watch"`
	} `koanf:"content"`
	Editor struct {
		MaxSnapshots  int           `koanf:"max_snapshots"`
		DraftDebounce time.Duration `koanf:"draft_debounce"`
	} `koanf:"editor"`
	Analytics struct {
		Enabled       bool   `koanf:"enabled"`
		Database      string `koanf:"database"`
		RetentionDays int    `koanf:"retention_days"`
	} `koanf:"analytics"`
	Admin struct {
		Password      string `koanf:"password"`
		SessionSecret string `koanf:"session_secret"`
	} `koanf:"admin"`
	Publish struct {
		Bucket    string `koanf:"bucket"`
		Region    string `koanf:"region"`
		Endpoint  string `koanf:"endpoint"`
		Prefix    string `koanf:"prefix"`
		PathStyle bool   `koanf:"path_style"`
	} `koanf:"publish"`
}

// envKey maps SCHOLARPAGE_SERVER_STATIC_DIR to server.static_dir. Only the
// first underscore separates the section since keys contain underscores.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
}

// loadConfig reads path when it exists and overlays the environment.
func loadConfig(path string) (scholarpage.SiteConfig, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return scholarpage.SiteConfig{}, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return scholarpage.SiteConfig{}, fmt.Errorf("loading env config: %w", err)
	}

	var fc fileConfig
	if err := k.Unmarshal("", &fc); err != nil {
		return scholarpage.SiteConfig{}, fmt.Errorf("parsing config: %w", err)
	}
	return fc.siteConfig(), nil
}

func (fc fileConfig) siteConfig() scholarpage.SiteConfig {
	return scholarpage.SiteConfig{
		Name:                  fc.Site.Name,
		URL:                   fc.Site.URL,
		Description:           fc.Site.Description,
		Author:                fc.Site.Author,
		Addr:                  fc.Server.Addr,
		DatabasePath:          fc.Server.Database,
		StaticDir:             fc.Server.StaticDir,
		CookieSecure:          fc.Server.CookieSecure,
		PageCacheTTL:          fc.Server.PageCacheTTL,
		ContentFile:           fc.Content.File,
		WatchContent:          fc.Content.Watch,
		MaxSnapshots:          fc.Editor.MaxSnapshots,
		DraftDebounce:         fc.Editor.DraftDebounce,
		AnalyticsEnabled:      fc.Analytics.Enabled,
		AnalyticsDatabasePath: fc.Analytics.Database,
		AnalyticsRetention:    fc.Analytics.RetentionDays,
		AdminPassword:         fc.Admin.Password,
		SessionSecret:         fc.Admin.SessionSecret,
		Publish: scholarpage.PublishConfig{
			Bucket:    fc.Publish.Bucket,
			Region:    fc.Publish.Region,
			Endpoint:  fc.Publish.Endpoint,
			Prefix:    fc.Publish.Prefix,
			PathStyle: fc.Publish.PathStyle,
		},
	}
}

// openApp loads the config and initializes an app for one-shot commands.
// Analytics and the content watcher stay off outside serve.
func openApp() (*scholarpage.App, error) {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg.AnalyticsEnabled = false
	cfg.WatchContent = false
	a := scholarpage.New(cfg)
	if !verbose {
		a.Echo.Logger.SetLevel(log.WARN)
	}
	if err := a.Init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}
