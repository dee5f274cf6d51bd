package models

// DatabaseType selects the gorm driver for the archive sink
type DatabaseType string

const (
	PostgreSQL DatabaseType = "postgresql"
	MySQL      DatabaseType = "mysql"
	SQLite     DatabaseType = "sqlite"
	ClickHouse DatabaseType = "clickhouse"
)

// DatabaseConfig holds the optional archive sink settings. DSN, when set,
// overrides the individual connection fields. SQLite only reads FilePath.
type DatabaseConfig struct {
	Type     DatabaseType `yaml:"type" json:"type"`
	DSN      string       `yaml:"dsn,omitempty" json:"dsn,omitzero"`
	FilePath string       `yaml:"file_path,omitempty" json:"file_path,omitzero"`

	Host     string `yaml:"host,omitempty" json:"host,omitzero"`
	Port     int    `yaml:"port,omitempty" json:"port,omitzero"`
	Username string `yaml:"username,omitempty" json:"username,omitzero"`
	Password string `yaml:"password,omitempty" json:"-"`
	Database string `yaml:"database,omitempty" json:"database,omitzero"`
	SSLMode  string `yaml:"ssl_mode,omitempty" json:"ssl_mode,omitzero"`

	// Pool settings, zero keeps the driver default
	MaxOpenConns    int `yaml:"max_open_conns,omitempty" json:"max_open_conns,omitzero"`
	MaxIdleConns    int `yaml:"max_idle_conns,omitempty" json:"max_idle_conns,omitzero"`
	ConnMaxLifetime int `yaml:"conn_max_lifetime,omitempty" json:"conn_max_lifetime,omitzero"` // seconds

	// BatchSize is the number of lines buffered before an insert
	BatchSize int `yaml:"batch_size,omitempty" json:"batch_size,omitzero"`
}
