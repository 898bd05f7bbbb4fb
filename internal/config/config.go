// Package config loads the process-wide configuration record. Values come from
// built-in defaults, an optional config file and environment variables; the
// three secrets are read from GEMINI_API_KEY, SERVICE_ACCOUNT_JSON and
// SHEET_ID / SHEET_NAME.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	errs "github.com/edgard/hubermanchat/internal/errors"
)

// Config is loaded once at startup and never modified afterwards.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Sheets   SheetsConfig   `mapstructure:"sheets"`
	Server   ServerConfig   `mapstructure:"server"`
	Session  SessionConfig  `mapstructure:"session"`
	UI       UIConfig       `mapstructure:"ui"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Debug    DebugConfig    `mapstructure:"debug"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

type GeminiConfig struct {
	APIKey       string   `mapstructure:"api_key"       validate:"required"`
	Model        string   `mapstructure:"model"         validate:"required"`
	Temperature  *float32 `mapstructure:"temperature"   validate:"omitempty,min=0,max=2"`
	SystemPrompt string   `mapstructure:"system_prompt" validate:"required"`
}

type SheetsConfig struct {
	// ServiceAccountJSON is the raw credential bundle. It may be given as a
	// JSON string or as a nested table in the config file.
	ServiceAccountJSON string   `mapstructure:"-"                  validate:"required"`
	ID                 string   `mapstructure:"id"                 validate:"required_without=Name"`
	Name               string   `mapstructure:"name"               validate:"required_without=ID"`
	Scopes             []string `mapstructure:"scopes"             validate:"min=1"`
	ValueInputOption   string   `mapstructure:"value_input_option" validate:"oneof=RAW USER_ENTERED"`

	// Credential is the parsed form of ServiceAccountJSON.
	Credential *ServiceAccount `mapstructure:"-" validate:"-"`
}

type ServerConfig struct {
	Addr              string        `mapstructure:"addr"                validate:"required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"min=1s"`
}

type SessionConfig struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"   validate:"min=1m"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"min=1s"`
}

type UIConfig struct {
	Title       string `mapstructure:"title"       validate:"required"`
	Icon        string `mapstructure:"icon"`
	Placeholder string `mapstructure:"placeholder"`
}

type TelegramConfig struct {
	// Token enables the Telegram surface when set.
	Token   string `mapstructure:"token"`
	Welcome string `mapstructure:"welcome"`
}

// Enabled reports whether the Telegram surface should run.
func (t TelegramConfig) Enabled() bool {
	return t.Token != ""
}

type DebugConfig struct {
	// CredentialDiagnostics logs the service-account identity at debug level
	// during startup. It is never rendered to users.
	CredentialDiagnostics bool `mapstructure:"credential_diagnostics"`
}

// secretEnv maps the configuration keys holding secrets to the environment
// variables they are read from.
var secretEnv = map[string]string{
	"gemini.api_key":              "GEMINI_API_KEY",
	"sheets.service_account_json": "SERVICE_ACCOUNT_JSON",
	"sheets.id":                   "SHEET_ID",
	"sheets.name":                 "SHEET_NAME",
}

// fieldEnv names the environment variable for a validated secret field, used
// to build readable error messages.
var fieldEnv = map[string]string{
	"Config.Gemini.APIKey":             "GEMINI_API_KEY",
	"Config.Sheets.ServiceAccountJSON": "SERVICE_ACCOUNT_JSON",
	"Config.Sheets.ID":                 "SHEET_ID",
	"Config.Sheets.Name":               "SHEET_NAME",
}

// Load reads and validates configuration from:
// 1. Default values
// 2. the config file at path, if it exists
// 3. HUBERMAN_* environment variables and the secret variables
//
// Every failure is returned as a ConfigError.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HUBERMAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range secretEnv {
		if err := v.BindEnv(key, env, "HUBERMAN_"+env); err != nil {
			return nil, errs.NewConfigError("failed to bind environment", err)
		}
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, errs.NewConfigError("failed to load config file", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errs.NewConfigError("failed to parse config", err)
	}

	raw, err := serviceAccountJSON(v.Get("sheets.service_account_json"))
	if err != nil {
		return nil, errs.NewConfigError("invalid SERVICE_ACCOUNT_JSON", err)
	}
	cfg.Sheets.ServiceAccountJSON = raw

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cred, err := ParseServiceAccount([]byte(cfg.Sheets.ServiceAccountJSON))
	if err != nil {
		return nil, errs.NewConfigError("invalid SERVICE_ACCOUNT_JSON", err)
	}
	cfg.Sheets.Credential = cred

	return cfg, nil
}

// Validate checks the struct constraints and reports missing secrets by the
// name of their environment variable.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.NewConfigError("invalid configuration", err)
	}

	var missing, invalid []string
	for _, fe := range verrs {
		if env, ok := fieldEnv[fe.Namespace()]; ok {
			missing = append(missing, env)
			continue
		}
		invalid = append(invalid, fmt.Sprintf("%s (%s=%s)", fe.Namespace(), fe.Tag(), fe.Param()))
	}

	switch {
	case len(missing) > 0:
		return errs.NewConfigError(fmt.Sprintf("missing secrets: %s", strings.Join(dedupe(missing), ", ")), err)
	default:
		return errs.NewConfigError(fmt.Sprintf("invalid configuration: %s", strings.Join(invalid, "; ")), err)
	}
}

func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)

	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	// A missing config file is fine, everything can come from the environment.
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func serviceAccountJSON(raw any) (string, error) {
	switch val := raw.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(val), nil
	case []byte:
		return strings.TrimSpace(string(val)), nil
	case map[string]any:
		data, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", raw)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("gemini.model", DefaultGeminiModel)
	v.SetDefault("gemini.system_prompt", DefaultSystemPrompt)

	v.SetDefault("sheets.scopes", DefaultSheetsScopes)
	v.SetDefault("sheets.value_input_option", DefaultValueInputOption)

	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("server.read_header_timeout", DefaultServerReadHeaderTimeout)

	v.SetDefault("session.idle_timeout", DefaultSessionIdleTimeout)
	v.SetDefault("session.sweep_interval", DefaultSessionSweepInterval)

	v.SetDefault("ui.title", DefaultUITitle)
	v.SetDefault("ui.icon", DefaultUIIcon)
	v.SetDefault("ui.placeholder", DefaultUIPlaceholder)

	v.SetDefault("telegram.welcome", DefaultTelegramWelcome)

	v.SetDefault("debug.credential_diagnostics", false)
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, val := range values {
		if seen[val] {
			continue
		}
		seen[val] = true
		out = append(out, val)
	}
	return out
}
