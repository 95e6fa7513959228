package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StoreDriverMongo, cfg.StoreDriver)
	assert.Equal(t, "secondchance", cfg.MongoDatabase)
	assert.Equal(t, 60, cfg.JWTTTLMinutes)
	assert.Equal(t, "secondchance", cfg.JWTIssuer)
}

func TestLoadConfig_MissingSecretIsFatal(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_PostgresRequiresDatabaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfig()
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"mongo ok", Config{StoreDriver: "Mongo", MongoURI: "mongodb://x", JWTTTLMinutes: 5}, false},
		{"postgres ok", Config{StoreDriver: "postgres", DatabaseURL: "postgres://x", JWTTTLMinutes: 5}, false},
		{"mongo without uri", Config{StoreDriver: "mongo", JWTTTLMinutes: 5}, true},
		{"unknown driver", Config{StoreDriver: "sqlite", JWTTTLMinutes: 5}, true},
		{"zero ttl", Config{StoreDriver: "mongo", MongoURI: "mongodb://x"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}
