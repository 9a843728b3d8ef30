package config

import (
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "uploads")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "webapp")
	t.Setenv("S3_USE_SSL", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "uploads", cfg.BucketName)
	assert.Equal(t, "app", cfg.DBUser)
	assert.Equal(t, "secret", cfg.DBPassword)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, "webapp", cfg.DBName)
	assert.False(t, cfg.S3UseSSL)
	assert.Equal(t, "s3.amazonaws.com", cfg.S3Endpoint)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, 60, cfg.MetricsExportInterval)
}

func TestLoad_MissingBucket(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_BUCKET_NAME")
}

func TestLoad_InvalidNumbers(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "uploads")
	t.Setenv("LOG_MAX_SIZE_MB", "lots")
	t.Setenv("S3_USE_SSL", "maybe")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_MAX_SIZE_MB")
	assert.Contains(t, err.Error(), "S3_USE_SSL")
}

func TestValidate(t *testing.T) {
	var cfg AppConfig
	applyDefaults(&cfg)
	cfg.BucketName = "b"
	require.NoError(t, cfg.Validate())

	cfg.RateLimitPerMinute = -1
	require.Error(t, cfg.Validate())
}

func TestBuildDSN_FromFields(t *testing.T) {
	dsn, err := BuildDSN(AppConfig{
		DBUser:     "app",
		DBPassword: "p@ss",
		DBHost:     "db.internal",
		DBPort:     "3307",
		DBName:     "webapp",
	})
	require.NoError(t, err)

	mc, err := gomysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "app", mc.User)
	assert.Equal(t, "p@ss", mc.Passwd)
	assert.Equal(t, "tcp", mc.Net)
	assert.Equal(t, "db.internal:3307", mc.Addr)
	assert.Equal(t, "webapp", mc.DBName)
	assert.True(t, mc.ParseTime)
}

func TestBuildDSN_HostAlreadyHasPort(t *testing.T) {
	dsn, err := BuildDSN(AppConfig{DBUser: "root", DBHost: "10.0.0.5:3310", DBPort: "3306", DBName: "x"})
	require.NoError(t, err)

	mc, err := gomysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:3310", mc.Addr)
}

func TestBuildDSN_URLOverride(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		wantAddr string
		wantDB   string
		wantUser string
		wantErr  bool
	}{
		{"mysql url", "mysql://app:secret@db:3306/webapp", "db:3306", "webapp", "app", false},
		{"sqlalchemy style url", "mysql+pymysql://app:secret@db/webapp", "db:3306", "webapp", "app", false},
		{"driver dsn", "app:secret@tcp(db:3306)/webapp", "db:3306", "webapp", "app", false},
		{"wrong scheme", "postgres://app:secret@db/webapp", "", "", "", true},
		{"no host", "mysql:///webapp", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := BuildDSN(AppConfig{DatabaseURI: tt.uri, DBHost: "ignored", DBName: "ignored"})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			mc, err := gomysql.ParseDSN(dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, mc.Addr)
			assert.Equal(t, tt.wantDB, mc.DBName)
			assert.Equal(t, tt.wantUser, mc.User)
			assert.Equal(t, "secret", mc.Passwd)
			assert.True(t, mc.ParseTime)
		})
	}
}

func TestEnsureDatabase_RejectsUnsafeName(t *testing.T) {
	err := EnsureDatabase(AppConfig{DBHost: "127.0.0.1", DBName: "app`; DROP DATABASE mysql; --"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database name")
}
