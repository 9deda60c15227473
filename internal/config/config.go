package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	PostgresURL string `mapstructure:"POSTGRES_URL"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	MapsAPIKey string `mapstructure:"MAPS_API_KEY"`

	ZipCodesFile string `mapstructure:"ZIP_CODES_FILE"`
	CSVFile      string `mapstructure:"CSV_FILE"`
	StatsFile    string `mapstructure:"STATS_FILE"`
	ImageDir     string `mapstructure:"IMAGE_DIR"`

	SiteOrigin      string `mapstructure:"SITE_ORIGIN"`
	SearchRadiusM   int    `mapstructure:"SEARCH_RADIUS_M"`
	ScrapeWorkers   int    `mapstructure:"SCRAPE_WORKERS"`
	MaxRetries      int    `mapstructure:"MAX_RETRIES"`
	RetryBaseDelay  int    `mapstructure:"RETRY_BASE_DELAY"`  // seconds
	FetchTimeout    int    `mapstructure:"FETCH_TIMEOUT"`     // seconds
	MinFetchSpacing int    `mapstructure:"MIN_FETCH_SPACING"` // seconds, per session
	RescrapeDays    int    `mapstructure:"RESCRAPE_DAYS"`
	Headless        bool   `mapstructure:"HEADLESS"`

	// Page-structure selectors. The target site's markup changes
	// independently of this code, so the structural signatures are
	// configuration rather than constants.
	SearchLinkSelector  string `mapstructure:"SEARCH_LINK_SELECTOR"`
	DetailContainer     string `mapstructure:"DETAIL_CONTAINER"`
	HeadingSelector     string `mapstructure:"HEADING_SELECTOR"`
	AnchorStackSelector string `mapstructure:"ANCHOR_STACK_SELECTOR"`
	AnchorLinkSelector  string `mapstructure:"ANCHOR_LINK_SELECTOR"`
	ImageButtonSelector string `mapstructure:"IMAGE_BUTTON_SELECTOR"`
	ImageSelector       string `mapstructure:"IMAGE_SELECTOR"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = viper.ReadInConfig()

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ZIP_CODES_FILE", "data/zip_codes.txt")
	viper.SetDefault("CSV_FILE", "data/pickleball_courts.csv")
	viper.SetDefault("STATS_FILE", "data/scraping_stats.csv")
	viper.SetDefault("IMAGE_DIR", "data/images")
	viper.SetDefault("SITE_ORIGIN", "https://www.pickleheads.com")
	viper.SetDefault("SEARCH_RADIUS_M", 5000)
	viper.SetDefault("SCRAPE_WORKERS", 2)
	viper.SetDefault("MAX_RETRIES", 2)
	viper.SetDefault("RETRY_BASE_DELAY", 1)
	viper.SetDefault("FETCH_TIMEOUT", 30) // in seconds
	viper.SetDefault("MIN_FETCH_SPACING", 5)
	viper.SetDefault("RESCRAPE_DAYS", 2)
	viper.SetDefault("HEADLESS", true)

	viper.SetDefault("SEARCH_LINK_SELECTOR", "a.chakra-link.css-13arwou")
	viper.SetDefault("DETAIL_CONTAINER", "div.css-199v8ro")
	viper.SetDefault("HEADING_SELECTOR", "h1.chakra-heading.css-1ub50s6")
	viper.SetDefault("ANCHOR_STACK_SELECTOR", "div.chakra-stack.css-1igwmid")
	viper.SetDefault("ANCHOR_LINK_SELECTOR", "a.chakra-link.css-1kon4c3")
	viper.SetDefault("IMAGE_BUTTON_SELECTOR", "button.chakra-button.css-eahiz5")
	viper.SetDefault("IMAGE_SELECTOR", "img.chakra-image")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
