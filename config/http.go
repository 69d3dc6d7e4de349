package config

// HTTPConfig configures the REST API.
type HTTPConfig struct {
	// Addr is the listen address. Empty disables the API.
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on every request.
	Token string `json:"token"`
}
