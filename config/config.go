package config

// AppConfig holds the application configuration, loaded once at startup
// and injected into the components that need it.
type AppConfig struct {
	Addr         string
	DBPath       string
	RedisAddress string
	SymmetricKey []byte
	UploadDir    string
	ReportDir    string
	InferenceURL string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
}

// RedisEnabled reports whether a redis cache was configured; without it the
// server falls back to the in-process store.
func (c *AppConfig) RedisEnabled() bool {
	return c.RedisAddress != ""
}
