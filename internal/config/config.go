package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/artifactng/wheelspin-backend/internal/models"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Promotion PromotionConfig
	LogLevel  string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// PromotionConfig holds the static promotion parameters: the spin ceiling,
// the global grand-prize contestant cap, the range table, and the named
// prizes each range's gift quota is distributed over. All of it is loaded
// once at process start.
type PromotionConfig struct {
	MaxSpins          int
	ContestantCap     int
	APISecret         string
	SpinBaseURL       string
	MaxRedeemAttempts int
	// GrandPrizeName, when set, places a single inventory unit of that prize
	// in the first range, taken out of its gift quota.
	GrandPrizeName string
	PrizeNames     []string
	Ranges         []models.RangeSpec
}

// Load loads configuration from environment variables and config files
func Load(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// The structured defaults can't be expressed through viper.SetDefault.
	if len(config.Promotion.Ranges) == 0 {
		config.Promotion.Ranges = DefaultRanges()
	}
	if len(config.Promotion.PrizeNames) == 0 {
		config.Promotion.PrizeNames = DefaultPrizeNames()
	}

	if err := config.Promotion.Validate(); err != nil {
		return nil, fmt.Errorf("invalid promotion config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017/?replicaSet=rs0")
	viper.SetDefault("MongoDB.Database", "wheelspin")
	viper.SetDefault("Promotion.MaxSpins", 256000)
	viper.SetDefault("Promotion.ContestantCap", 16)
	viper.SetDefault("Promotion.SpinBaseURL", "https://wheelspin.vercel.app/?ticket=")
	viper.SetDefault("Promotion.GrandPrizeName", "₦1,000,000")
	viper.SetDefault("Promotion.MaxRedeemAttempts", 5)
	viper.SetDefault("LogLevel", "info")
}

// DefaultRanges returns the promotion's range table: contiguous spans of spin
// numbers with their gift quotas, contestant quotas, and advertised odds.
func DefaultRanges() []models.RangeSpec {
	return []models.RangeSpec{
		{Start: 1, End: 100, GiftQuota: 10, ContestantQuota: 4, BaseProbability: 0.1},
		{Start: 101, End: 1000, GiftQuota: 10, ContestantQuota: 2, BaseProbability: 0.0111},
		{Start: 1001, End: 2000, GiftQuota: 8, ContestantQuota: 2, BaseProbability: 0.008},
		{Start: 2001, End: 5000, GiftQuota: 7, ContestantQuota: 2, BaseProbability: 0.00233},
		{Start: 5001, End: 10000, GiftQuota: 5, ContestantQuota: 2, BaseProbability: 0.001},
		{Start: 10001, End: 50000, GiftQuota: 5, ContestantQuota: 2, BaseProbability: 0.000125},
		{Start: 50001, End: 256000, GiftQuota: 5, ContestantQuota: 2, BaseProbability: 0.0000243},
	}
}

// DefaultPrizeNames returns the named prizes a range's gift quota is spread
// across.
func DefaultPrizeNames() []string {
	return []string{
		"₦100,000",
		"₦50,000",
		"₦20,000",
		"Phone",
		"Artifact Hoodie",
		"Premiere Invite",
	}
}

// Validate checks the range table invariants: ranges must be contiguous,
// non-overlapping, start at spin 1, and jointly cover [1, MaxSpins]; quotas
// must fit inside their range.
func (p PromotionConfig) Validate() error {
	if p.MaxSpins <= 0 {
		return fmt.Errorf("maxSpins must be positive, got %d", p.MaxSpins)
	}
	if p.ContestantCap <= 0 {
		return fmt.Errorf("contestantCap must be positive, got %d", p.ContestantCap)
	}
	if p.MaxRedeemAttempts <= 0 {
		return fmt.Errorf("maxRedeemAttempts must be positive, got %d", p.MaxRedeemAttempts)
	}
	if len(p.Ranges) == 0 {
		return fmt.Errorf("no ranges configured")
	}
	if len(p.PrizeNames) == 0 {
		return fmt.Errorf("no prize names configured")
	}

	next := 1
	for i, r := range p.Ranges {
		if r.Start != next {
			return fmt.Errorf("range %d starts at %d, want %d: ranges must be contiguous", i, r.Start, next)
		}
		if r.End < r.Start {
			return fmt.Errorf("range %d ends at %d before it starts at %d", i, r.End, r.Start)
		}
		if r.ContestantQuota < 0 || r.GiftQuota < 0 {
			return fmt.Errorf("range %d has a negative quota", i)
		}
		if r.ContestantQuota+r.GiftQuota > r.Size() {
			return fmt.Errorf("range %d quotas exceed its %d spins", i, r.Size())
		}
		next = r.End + 1
	}
	if last := p.Ranges[len(p.Ranges)-1].End; last != p.MaxSpins {
		return fmt.Errorf("ranges cover [1,%d] but maxSpins is %d", last, p.MaxSpins)
	}
	return nil
}

// RangeFor returns the range containing the given spin number.
func (p PromotionConfig) RangeFor(spinNumber int) (models.RangeSpec, bool) {
	for _, r := range p.Ranges {
		if r.Contains(spinNumber) {
			return r, true
		}
	}
	return models.RangeSpec{}, false
}

// BuildInventory expands the range table into prize inventory records,
// spreading each range's gift quota evenly across the configured prize names.
// Every name gets at least one unit, matching the original allocation table.
// The grand prize, when configured, is a single unit in the first range and
// comes out of that range's quota before the spread.
func (p PromotionConfig) BuildInventory() []models.PrizeInventoryRecord {
	var records []models.PrizeInventoryRecord
	for i, r := range p.Ranges {
		if r.GiftQuota == 0 {
			continue
		}
		quota := r.GiftQuota
		if i == 0 && p.GrandPrizeName != "" {
			records = append(records, models.PrizeInventoryRecord{
				Name:       p.GrandPrizeName,
				RangeStart: r.Start,
				RangeEnd:   r.End,
				TotalCount: 1,
				Remaining:  1,
			})
			quota--
		}
		if quota <= 0 {
			continue
		}
		perName := quota / len(p.PrizeNames)
		if perName < 1 {
			perName = 1
		}
		for _, name := range p.PrizeNames {
			records = append(records, models.PrizeInventoryRecord{
				Name:       name,
				RangeStart: r.Start,
				RangeEnd:   r.End,
				TotalCount: perName,
				Remaining:  perName,
			})
		}
	}
	return records
}
