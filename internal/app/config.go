package app

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Constants
const (
	DefaultCalendarFile = "calendar_data.json"
	DefaultAuthFile     = "auth.secret"
	BackupDir           = "backup"
	BackupSuffix        = ".backup"
	TmpSuffix           = ".tmp.json"
	StagingSuffix       = ".staging.json"
	FilePermissions     = 0644

	// Error messages
	ErrEditModeDisabled     = "Edit mode disabled"
	ErrInvalidDateFormat    = "Invalid date format"
	ErrInvalidGrid          = "Invalid grid parameters"
	ErrInvalidFormat        = "Invalid format"
	ErrEventNotFound        = "Event not found"
	ErrMissingCalendar      = "Missing calendar"
	ErrInternalServer       = "Internal server error"
	ErrFailedToSave         = "Failed to save calendar"
	ErrFailedToGenerateJSON = "Failed to generate JSON"
	ErrFailedToGenerateICS  = "Failed to generate ICS"

	// Metadata keys
	MetadataCreatedAt = "created_at"
	MetadataSource    = "source"

	// Cell metadata keys
	PropHoliday = "holiday"
	PropToday   = "today"

	// Mode strings
	ModeServe = "serve"
	ModeEdit  = "edit"

	// ICS constants
	ICSProductID = "-//Winterberg//Kalender Grid//DE"
	ICSTimezone  = "Europe/Berlin"
	ICSDomain    = "kalender.winterberg.de"
)

// Config holds the runtime settings, read from the environment.
type Config struct {
	DataFile       string            `env:"KALENDER_DATA_FILE" envDefault:"calendar_data.json"`
	Port           int               `env:"KALENDER_PORT" envDefault:"8080"`
	EditMode       bool              `env:"KALENDER_EDIT" envDefault:"false"`
	AuthFile       string            `env:"AUTH_FILE"`
	FirstDayOfWeek int               `env:"KALENDER_FIRST_DAY" envDefault:"1"`
	Prefill        bool              `env:"KALENDER_PREFILL" envDefault:"true"`
	Postfill       bool              `env:"KALENDER_POSTFILL" envDefault:"true"`
	Holidays       bool              `env:"KALENDER_HOLIDAYS" envDefault:"true"`
	LogFile        string            `env:"KALENDER_LOG_FILE"`
	LogMaxSizeMB   int               `env:"KALENDER_LOG_MAX_SIZE_MB" envDefault:"10"`
	LogMaxBackups  int               `env:"KALENDER_LOG_MAX_BACKUPS" envDefault:"3"`
	EventTypes     map[string]string `env:"KALENDER_EVENT_TYPES" envDefault:"meeting:Termin,deadline:Frist,birthday:Geburtstag,vacation:Urlaub"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.FirstDayOfWeek < 0 || cfg.FirstDayOfWeek > 6 {
		return cfg, fmt.Errorf("KALENDER_FIRST_DAY must be between 0 and 6, got %d", cfg.FirstDayOfWeek)
	}
	return cfg, nil
}

// Mode returns the mode string for log output.
func (c Config) Mode() string {
	if c.EditMode {
		return ModeEdit
	}
	return ModeServe
}

// TypeLabel returns the display name for an event type, or the type itself.
func (c Config) TypeLabel(eventType string) string {
	if label, ok := c.EventTypes[eventType]; ok {
		return label
	}
	return eventType
}

// SetupLogging tees the standard logger into a rotating log file when
// LogFile is set. The returned closer flushes the file.
func SetupLogging(c Config) io.Closer {
	if c.LogFile == "" {
		return noopCloser{}
	}
	rotator := &lumberjack.Logger{
		Filename:   c.LogFile,
		MaxSize:    c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return rotator
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }
