package config

// StoreConfig locates the run history database.
type StoreConfig struct {
	Disabled bool   `json:"disabled"`
	Path     string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Path == "" && !c.Disabled {
		c.Path = "gridsim.db"
	}
}

// APIConfig defines the HTTP API served by "gridsim serve".
type APIConfig struct {
	Addr string `json:"addr"`
	// Token enables bearer authentication when set.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
