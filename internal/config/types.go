package config

import "time"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type HTTPConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	HandlerTimeout    time.Duration `mapstructure:"handler_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" env:"TRANSCENDENCE_DB_HOST"`
	Port     int    `mapstructure:"port" env:"TRANSCENDENCE_DB_PORT"`
	User     string `mapstructure:"user" env:"TRANSCENDENCE_DB_USER"`
	Password string `mapstructure:"password" env:"TRANSCENDENCE_DB_PASSWORD"`
	Name     string `mapstructure:"name" env:"TRANSCENDENCE_DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" env:"TRANSCENDENCE_DB_SSLMODE"`
	LogLevel string `mapstructure:"log_level"`
	// AutoMigrate runs pending goose migrations when the server starts.
	AutoMigrate bool `mapstructure:"auto_migrate"`
	// MigrationsDir overrides the migrations/ folder at the module root.
	MigrationsDir string `mapstructure:"migrations_dir" env:"TRANSCENDENCE_MIGRATIONS_DIR"`
}

type AuthConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret" env:"TRANSCENDENCE_JWT_SECRET"`
	TokenExpiration     time.Duration `mapstructure:"token_expiration"`
	RefreshTokenEnabled bool          `mapstructure:"refresh_token_enabled"`
	CookieName          string        `mapstructure:"cookie_name"`
	CookieSecure        bool          `mapstructure:"cookie_secure"`
}

type TwoFactorConfig struct {
	AppName string `mapstructure:"app_name"`
	QRSize  int    `mapstructure:"qr_size"`
}

type OAuthConfig struct {
	ClientID     string        `mapstructure:"client_id" env:"TRANSCENDENCE_FT_CLIENT_ID"`
	ClientSecret string        `mapstructure:"client_secret" env:"TRANSCENDENCE_FT_CLIENT_SECRET"`
	RedirectURL  string        `mapstructure:"redirect_url" env:"TRANSCENDENCE_FT_REDIRECT_URL"`
	AuthURL      string        `mapstructure:"auth_url"`
	TokenURL     string        `mapstructure:"token_url"`
	ProfileURL   string        `mapstructure:"profile_url"`
	Scopes       []string      `mapstructure:"scopes"`
	MaxRetries   uint64        `mapstructure:"max_retries"`
	RetryBase    time.Duration `mapstructure:"retry_base"`
	StateTTL     time.Duration `mapstructure:"state_ttl"`
	// SuccessRedirect is where the browser lands after a completed login.
	SuccessRedirect string `mapstructure:"success_redirect"`
}

func (c OAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	TwoFactor TwoFactorConfig `mapstructure:"twofactor"`
	OAuth     OAuthConfig     `mapstructure:"oauth"`
}
