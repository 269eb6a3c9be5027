package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	// Clear anything a developer's shell or .env might set.
	for _, k := range []string{"PORT", "ENV", "DATABASE_URL", "REDIS_URL", "BCRYPT_COST", "ADMIN_SEED", "SEED_DEFAULT_TURFS", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "playmate.db")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("ADMIN_SEED", "true")
	t.Setenv("SEED_DEFAULT_TURFS", "true")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != "3000" || c.DatabaseURL != "playmate.db" || c.BcryptCost != 10 {
		t.Errorf("config = %+v", c)
	}
	if !c.Seed.Admin || !c.Seed.DefaultTurfs || c.Seed.AdminPhone == "" {
		t.Errorf("seed = %+v, want both seeds on with an admin phone", c.Seed)
	}
	if c.Redis.URL != "" {
		t.Errorf("redis url = %q, want empty", c.Redis.URL)
	}
	if c.IsProduction() {
		t.Error("IsProduction = true for a development config")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "Production")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/playmate")
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("ADMIN_SEED", "false")
	t.Setenv("SEED_DEFAULT_TURFS", "false")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.IsProduction() || c.Redis.URL != "localhost:6379" || c.Redis.DB != 2 || c.BcryptCost != 12 {
		t.Errorf("config = %+v", c)
	}
	if c.Seed.Admin || c.Seed.DefaultTurfs {
		t.Errorf("seed = %+v, want both off", c.Seed)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Port: "3000", DatabaseURL: "playmate.db", BcryptCost: 10}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"empty port", func(c *Config) { c.Port = "" }, false},
		{"empty database", func(c *Config) { c.DatabaseURL = "" }, false},
		{"cost too low", func(c *Config) { c.BcryptCost = 1 }, false},
		{"cost too high", func(c *Config) { c.BcryptCost = 40 }, false},
		{"admin seed without password", func(c *Config) { c.Seed = SeedConfig{Admin: true, AdminPhone: "0000000000"} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			if err := c.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	tests := map[string]string{
		"":  "*",
		"*": "*",
		" https://a.example , https://b.example ": "https://a.example,https://b.example",
		" , ": "*",
	}
	for in, want := range tests {
		c := Config{CORSOrigins: in}
		if got := c.AllowedOrigins(); got != want {
			t.Errorf("AllowedOrigins(%q) = %q, want %q", in, got, want)
		}
	}
}
