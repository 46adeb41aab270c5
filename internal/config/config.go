package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/smcana/liveplanner"
)

// Creation modes selectable via YT_CREATION_MODE.
const (
	ModeAPI    = "api"
	ModeStudio = "studio"
)

// defaultStorageStateFile is picked up from the working directory when no
// storage state path is configured explicitly.
const defaultStorageStateFile = "storage_state.json"

const defaultMassDescription = "Si quieres hacer un donativo a la Parroquia:\n" +
	"https://smcana.es/donativos/\n" +
	"Donativo Bizum ONG: 00104 o 38194 o 38341"

const defaultVigilDescription = "También puedes oírlas después en Spotify:\n" +
	"https://open.spotify.com/show/1XitO8Ckw0kDvDTT9CuVp2"

type Config struct {
	ClientId     string `env:"YT_CLIENT_ID" required:"true"`
	ClientSecret string `env:"YT_CLIENT_SECRET" required:"true"`
	RefreshToken string `env:"YT_REFRESH_TOKEN" required:"true"`

	Timezone             string `env:"YT_TIMEZONE" default:"Europe/Madrid"`
	DefaultPrivacyStatus string `env:"YT_DEFAULT_PRIVACY_STATUS" default:"unlisted"`

	KeywordMisa10 string `env:"YT_KEYWORD_MISA_10" default:"Misa 10h"`
	KeywordMisa12 string `env:"YT_KEYWORD_MISA_12" default:"Misa 12h"`
	KeywordMisa20 string `env:"YT_KEYWORD_MISA_20" default:"Misa 20h"`
	KeywordVela21 string `env:"YT_KEYWORD_VELA_21" default:"Vela 21h"`
	VelaWeekday   string `env:"YT_VELA_WEEKDAY" default:"thursday"`

	StartOffsetDays   int  `env:"YT_START_OFFSET_DAYS" default:"1"`
	MaxDaysAhead      int  `env:"YT_MAX_DAYS_AHEAD" default:"3650"`
	StopOnCreateLimit bool `env:"YT_STOP_ON_CREATE_LIMIT" default:"true"`

	RateLimitRetryLimit       int `env:"YT_RATE_LIMIT_RETRY_LIMIT" default:"3"`
	RateLimitRetryBaseSeconds int `env:"YT_RATE_LIMIT_RETRY_BASE_SECONDS" default:"2"`
	RateLimitRetryMaxSeconds  int `env:"YT_RATE_LIMIT_RETRY_MAX_SECONDS" default:"30"`

	CreatePauseSeconds int     `env:"YT_CREATE_PAUSE_SECONDS" default:"2"`
	RequestsPerSecond  float64 `env:"YT_REQUESTS_PER_SECOND" default:"4"`

	CreationMode string `env:"YT_CREATION_MODE" default:"api"`

	StudioURL              string `env:"YT_STUDIO_URL" default:"http://localhost:8931"`
	StudioStorageStatePath string `env:"YT_STUDIO_STORAGE_STATE_PATH"`
	StudioTimeoutSeconds   int    `env:"YT_STUDIO_TIMEOUT_SECONDS" default:"30"`
}

// Normalize cleans up the string settings after they have been read from the
// environment. A variable that is set but blank gets its default back, so a
// stray `YT_TIMEZONE=` line in an .env file doesn't break the run. When no
// storage state path is configured, a storage_state.json in the working
// directory is picked up.
func (c *Config) Normalize() {
	restore := func(value *string, fallback string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = fallback
		}
	}
	restore(&c.Timezone, "Europe/Madrid")
	restore(&c.DefaultPrivacyStatus, "unlisted")
	restore(&c.KeywordMisa10, "Misa 10h")
	restore(&c.KeywordMisa12, "Misa 12h")
	restore(&c.KeywordMisa20, "Misa 20h")
	restore(&c.KeywordVela21, "Vela 21h")
	restore(&c.VelaWeekday, "thursday")
	restore(&c.CreationMode, ModeAPI)
	restore(&c.StudioURL, "http://localhost:8931")

	c.StudioStorageStatePath = strings.TrimSpace(c.StudioStorageStatePath)
	if c.StudioStorageStatePath == "" {
		if _, err := os.Stat(defaultStorageStateFile); err == nil {
			c.StudioStorageStatePath = defaultStorageStateFile
		}
	}
}

// Definitions assembles the four recurring slots: three daily masses and the
// weekly vigil. Each keyword doubles as the title prefix.
func (c *Config) Definitions() ([]liveplanner.Definition, error) {
	vigilDay, err := parseWeekday(c.VelaWeekday)
	if err != nil {
		return nil, err
	}
	return []liveplanner.Definition{
		{Prefix: c.KeywordMisa10, StartTime: "10:00", Keyword: c.KeywordMisa10, DefaultDescription: defaultMassDescription},
		{Prefix: c.KeywordMisa12, StartTime: "12:00", Keyword: c.KeywordMisa12, DefaultDescription: defaultMassDescription},
		{Prefix: c.KeywordMisa20, StartTime: "20:00", Keyword: c.KeywordMisa20, DefaultDescription: defaultMassDescription},
		{Prefix: c.KeywordVela21, StartTime: "21:00", Keyword: c.KeywordVela21, Weekday: &vigilDay, DefaultDescription: defaultVigilDescription},
	}, nil
}

func (c *Config) RetryBase() time.Duration {
	return time.Duration(c.RateLimitRetryBaseSeconds) * time.Second
}

func (c *Config) RetryMax() time.Duration {
	return time.Duration(c.RateLimitRetryMaxSeconds) * time.Second
}

func (c *Config) CreatePause() time.Duration {
	return time.Duration(c.CreatePauseSeconds) * time.Second
}

func (c *Config) StudioTimeout() time.Duration {
	return time.Duration(c.StudioTimeoutSeconds) * time.Second
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(name string) (time.Weekday, error) {
	if day, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]; ok {
		return day, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
