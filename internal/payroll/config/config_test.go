package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/OBuskas/ananaPayroll/internal/payroll/db"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sqliteConfig = `
GRPC_PORT: 50051
HTTP_PORT: 8080
DB_DRIVER: sqlite
SQLITE_PATH: ":memory:"
JWT_SECRET: s3cret
VAULT_ADDRESS: "0x000000000000000000000000000000000000a11e"
VAULT_OWNER: "0x00000000000000000000000000000000000000f0"
MANAGER_ADDRESS: "0x000000000000000000000000000000000000ba7c"
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(sqliteConfig))
	require.NoError(t, err)

	assert.Equal(t, defaultTopic, cfg.Topic)
	assert.Equal(t, defaultGroupID, cfg.GroupID)

	dbCfg := cfg.Database()
	assert.Equal(t, db.SQLite, dbCfg.Driver)
	assert.Equal(t, ":memory:", dbCfg.SQLitePath)

	opts := cfg.LedgerOptions()
	assert.Equal(t, common.HexToAddress("0xa11e"), opts.VaultAddress)
	assert.Equal(t, common.HexToAddress("0xba7c"), opts.ManagerAddress)
	assert.Equal(t, common.Address{}, opts.TokenMinter)
	assert.Zero(t, opts.TokenDecimals)
}

func TestParse_EnvOverridesSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	cfg, err := Parse([]byte(sqliteConfig))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`
DB_DRIVER: mysql
VAULT_ADDRESS: nope
TOKEN_MINTER: "0x12"
TOKEN_DECIMALS: 30
`))
	require.Error(t, err)
	for _, msg := range []string{
		"GRPC_PORT must be set",
		"HTTP_PORT must be set",
		`DB_DRIVER "mysql" is not supported`,
		"JWT_SECRET must be set",
		`VAULT_ADDRESS "nope" is not a hex address`,
		"TOKEN_MINTER",
		"TOKEN_DECIMALS 30 exceeds 18",
	} {
		assert.Contains(t, err.Error(), msg)
	}
}

func TestParse_PostgresNeedsHost(t *testing.T) {
	_, err := Parse([]byte(`
GRPC_PORT: 1
HTTP_PORT: 2
JWT_SECRET: x
VAULT_ADDRESS: "0x000000000000000000000000000000000000a11e"
VAULT_OWNER: "0x00000000000000000000000000000000000000f0"
MANAGER_ADDRESS: "0x000000000000000000000000000000000000ba7c"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST and DB_NAME are required for postgres")
}

func TestLoad_ShippedFile(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, uint8(6), cfg.TokenDecimals)
}

func TestPath(t *testing.T) {
	t.Setenv(PathEnv, "")
	assert.Equal(t, DefaultPath, Path())

	custom := filepath.Join(t.TempDir(), "payroll.yaml")
	require.NoError(t, os.WriteFile(custom, []byte(sqliteConfig), 0o600))
	t.Setenv(PathEnv, custom)
	assert.Equal(t, custom, Path())

	_, err := Load(Path())
	require.NoError(t, err)
}
