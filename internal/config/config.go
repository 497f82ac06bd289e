// Package config provides configuration loading and validation for the scraping core and CLI.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g. PREPLINK_SCRAPE_MAX_PAGES.
const EnvPrefix = "PREPLINK"

// DefaultConfigName is the config file name (without extension) searched in the working directory.
const DefaultConfigName = "preplink"

// Config holds the full application configuration.
type Config struct {
	Scrape ScrapeConfig `yaml:"scrape" mapstructure:"scrape"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ScrapeConfig holds the crawl budgets and network policy for one crawl.
// It is passed by value into the crawler so concurrent crawls never share policy state.
type ScrapeConfig struct {
	UserAgent          string           `yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
	MaxCharsPerPage    int              `yaml:"max_chars_per_page" mapstructure:"max_chars_per_page" validate:"gt=0"`
	MaxTotalChars      int              `yaml:"max_total_chars" mapstructure:"max_total_chars" validate:"gt=0"`
	MaxPages           int              `yaml:"max_pages" mapstructure:"max_pages" validate:"gte=1"` // homepage included
	MaxTosPages        int              `yaml:"max_tos_pages" mapstructure:"max_tos_pages" validate:"gte=1"`
	TosMaxCharsPerPage int              `yaml:"tos_max_chars_per_page" mapstructure:"tos_max_chars_per_page" validate:"gt=0"`
	PolitenessDelay    time.Duration    `yaml:"politeness_delay" mapstructure:"politeness_delay" validate:"gte=0"`
	RequestTimeout     time.Duration    `yaml:"request_timeout" mapstructure:"request_timeout" validate:"gt=0"`
	MaxBodyBytes       int64            `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"gt=0"`
	Browser            BrowserConfig    `yaml:"browser" mapstructure:"browser"`
	Classifier         ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
}

// BrowserConfig configures the headless browser used for script-rendered sites.
type BrowserConfig struct {
	Headless              bool          `yaml:"headless" mapstructure:"headless"`
	ExecPath              string        `yaml:"exec_path" mapstructure:"exec_path"` // empty: let chromedp find Chrome
	UserAgent             string        `yaml:"user_agent" mapstructure:"user_agent"`
	ViewportWidth         int           `yaml:"viewport_width" mapstructure:"viewport_width" validate:"gt=0"`
	ViewportHeight        int           `yaml:"viewport_height" mapstructure:"viewport_height" validate:"gt=0"`
	HomeNavigationTimeout time.Duration `yaml:"home_navigation_timeout" mapstructure:"home_navigation_timeout" validate:"gt=0"`
	NavigationTimeout     time.Duration `yaml:"navigation_timeout" mapstructure:"navigation_timeout" validate:"gt=0"`
	NetworkIdleTimeout    time.Duration `yaml:"network_idle_timeout" mapstructure:"network_idle_timeout" validate:"gte=0"`
	BodyWaitTimeout       time.Duration `yaml:"body_wait_timeout" mapstructure:"body_wait_timeout" validate:"gt=0"`
	HomeSettleDelay       time.Duration `yaml:"home_settle_delay" mapstructure:"home_settle_delay" validate:"gte=0"`
	PageSettleDelay       time.Duration `yaml:"page_settle_delay" mapstructure:"page_settle_delay" validate:"gte=0"`
	BackoffBase           time.Duration `yaml:"backoff_base" mapstructure:"backoff_base" validate:"gte=0"`
	BackoffMaxRetries     int           `yaml:"backoff_max_retries" mapstructure:"backoff_max_retries" validate:"gte=0"`
}

// ClassifierConfig holds the tunable thresholds of the static/dynamic site heuristic.
type ClassifierConfig struct {
	MinBodyTextChars int      `yaml:"min_body_text_chars" mapstructure:"min_body_text_chars" validate:"gte=0"`
	MaxScriptTags    int      `yaml:"max_script_tags" mapstructure:"max_script_tags" validate:"gte=0"`
	FrameworkTokens  []string `yaml:"framework_tokens" mapstructure:"framework_tokens"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// Default returns the configuration the crawler ships with.
func Default() *Config {
	return &Config{
		Scrape: DefaultScrapeConfig(),
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultScrapeConfig returns the default crawl budgets and timeouts.
func DefaultScrapeConfig() ScrapeConfig {
	return ScrapeConfig{
		UserAgent:          "PrepLinkBot/0.1 (+https://github.com/apk-official/PrepLinkApp)",
		MaxCharsPerPage:    20_000,
		MaxTotalChars:      100_000,
		MaxPages:           10,
		MaxTosPages:        3,
		TosMaxCharsPerPage: 40_000,
		PolitenessDelay:    1 * time.Second,
		RequestTimeout:     10 * time.Second,
		MaxBodyBytes:       5 << 20,
		Browser: BrowserConfig{
			Headless: true,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
				"(KHTML, like Gecko) Chrome/113.0.0.0 Safari/537.36",
			ViewportWidth:         1280,
			ViewportHeight:        800,
			HomeNavigationTimeout: 30 * time.Second,
			NavigationTimeout:     20 * time.Second,
			NetworkIdleTimeout:    10 * time.Second,
			BodyWaitTimeout:       5 * time.Second,
			HomeSettleDelay:       1200 * time.Millisecond,
			PageSettleDelay:       600 * time.Millisecond,
			BackoffBase:           2 * time.Second,
			BackoffMaxRetries:     2,
		},
		Classifier: ClassifierConfig{
			MinBodyTextChars: 100,
			MaxScriptTags:    20,
			FrameworkTokens:  []string{"react", "vue", "angular"},
		},
	}
}

// Load reads configuration from an optional YAML file and PREPLINK_* environment variables.
// An empty path searches for preplink.yaml in the working directory; a missing file is not an error
// unless the path was given explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return eris.Wrap(err, "config: invalid")
	}
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	s := d.Scrape
	v.SetDefault("scrape.user_agent", s.UserAgent)
	v.SetDefault("scrape.max_chars_per_page", s.MaxCharsPerPage)
	v.SetDefault("scrape.max_total_chars", s.MaxTotalChars)
	v.SetDefault("scrape.max_pages", s.MaxPages)
	v.SetDefault("scrape.max_tos_pages", s.MaxTosPages)
	v.SetDefault("scrape.tos_max_chars_per_page", s.TosMaxCharsPerPage)
	v.SetDefault("scrape.politeness_delay", s.PolitenessDelay)
	v.SetDefault("scrape.request_timeout", s.RequestTimeout)
	v.SetDefault("scrape.max_body_bytes", s.MaxBodyBytes)

	b := s.Browser
	v.SetDefault("scrape.browser.headless", b.Headless)
	v.SetDefault("scrape.browser.exec_path", b.ExecPath)
	v.SetDefault("scrape.browser.user_agent", b.UserAgent)
	v.SetDefault("scrape.browser.viewport_width", b.ViewportWidth)
	v.SetDefault("scrape.browser.viewport_height", b.ViewportHeight)
	v.SetDefault("scrape.browser.home_navigation_timeout", b.HomeNavigationTimeout)
	v.SetDefault("scrape.browser.navigation_timeout", b.NavigationTimeout)
	v.SetDefault("scrape.browser.network_idle_timeout", b.NetworkIdleTimeout)
	v.SetDefault("scrape.browser.body_wait_timeout", b.BodyWaitTimeout)
	v.SetDefault("scrape.browser.home_settle_delay", b.HomeSettleDelay)
	v.SetDefault("scrape.browser.page_settle_delay", b.PageSettleDelay)
	v.SetDefault("scrape.browser.backoff_base", b.BackoffBase)
	v.SetDefault("scrape.browser.backoff_max_retries", b.BackoffMaxRetries)

	c := s.Classifier
	v.SetDefault("scrape.classifier.min_body_text_chars", c.MinBodyTextChars)
	v.SetDefault("scrape.classifier.max_script_tags", c.MaxScriptTags)
	v.SetDefault("scrape.classifier.framework_tokens", c.FrameworkTokens)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}
