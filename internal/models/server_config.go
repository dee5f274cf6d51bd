package models

// ServerConfig holds process-wide settings and the optional status/relay listener
type ServerConfig struct {
	Listen         string `json:"listen,omitzero" yaml:"listen"` // empty disables the HTTP server
	AllowedOrigins string `json:"allowed_origins,omitzero" yaml:"allowed_origins"`
	Environment    string `json:"environment,omitzero" yaml:"environment"`
	LogLevel       string `json:"log_level,omitzero" yaml:"log_level"`
}
