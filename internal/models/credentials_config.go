package models

// Token is an OAuth 1.0a key/secret pair
type Token struct {
	Key    string `json:"key" yaml:"key"`
	Secret string `json:"-" yaml:"secret"`
}

// IsZero reports whether either half is missing
func (t Token) IsZero() bool {
	return t.Key == "" || t.Secret == ""
}

// CredentialsConfig holds the application (consumer) and user (access) tokens
type CredentialsConfig struct {
	Consumer Token `json:"consumer" yaml:"consumer"`
	Access   Token `json:"access" yaml:"access"`
}
