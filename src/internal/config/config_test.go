package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Configuration {
	return &Configuration{
		Security: SecuritySettings{AdminEmail: "admin@example.com", AdminPassword: "secret"},
		Session:  SessionSettings{Backend: "cookie", Codec: "json"},
		Storage:  StorageConfig{Provider: "local"},
		Redis:    Redis{Url: "localhost:6379"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Configuration) {}},
		{name: "missing email", mutate: func(c *Configuration) { c.Security.AdminEmail = "" }, wantErr: true},
		{name: "missing password", mutate: func(c *Configuration) { c.Security.AdminPassword = "" }, wantErr: true},
		{name: "memory backend", mutate: func(c *Configuration) { c.Session.Backend = "memory" }},
		{name: "redis backend", mutate: func(c *Configuration) { c.Session.Backend = "redis" }},
		{name: "redis backend without url", mutate: func(c *Configuration) {
			c.Session.Backend = "redis"
			c.Redis.Url = ""
		}, wantErr: true},
		{name: "unknown backend", mutate: func(c *Configuration) { c.Session.Backend = "local-storage" }, wantErr: true},
		{name: "jwt without key", mutate: func(c *Configuration) { c.Session.Codec = "jwt" }, wantErr: true},
		{name: "jwt with key", mutate: func(c *Configuration) {
			c.Session.Codec = "jwt"
			c.Security.SessionSigningKey = "k"
		}},
		{name: "unknown codec", mutate: func(c *Configuration) { c.Session.Codec = "xml" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Configuration) { c.Storage.Provider = "s3" }, wantErr: true},
		{name: "s3 without credentials", mutate: func(c *Configuration) {
			c.Storage.Provider = "s3"
			c.Storage.S3.Bucket = "images"
		}, wantErr: true},
		{name: "s3 complete", mutate: func(c *Configuration) {
			c.Storage.Provider = "s3"
			c.Storage.S3 = S3Storage{Bucket: "images", AccessKeyID: "id", SecretAccessKey: "secret"}
		}},
		{name: "unknown storage", mutate: func(c *Configuration) { c.Storage.Provider = "ftp" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "env@example.com")
	t.Setenv("SESSION_BACKEND", "memory")
	t.Setenv("REDIS_DB", "3")

	cfg := validConfig()
	applyEnv(cfg)

	assert.Equal(t, "env@example.com", cfg.Security.AdminEmail)
	assert.Equal(t, "secret", cfg.Security.AdminPassword)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 3, cfg.Redis.Db)
}
