package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/txbuilder"
)

const (
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DatadirKey is the local data directory to store the internal state of the control plane
	DatadirKey = "DATADIR"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// NamespaceKey is the kubernetes namespace of the node resources
	NamespaceKey = "NAMESPACE"
	// KubeconfigKey is the path of a kubeconfig file, the in-cluster config is used if empty
	KubeconfigKey = "KUBECONFIG"
	// RPCPortKey is the port where the HTTP game interface listens on
	RPCPortKey = "RPC_PORT"
	// AdminKeyKey is the cbor hex encoded ed25519 signing key of the game admin
	AdminKeyKey = "ADMIN_KEY"
	// NetworkIDKey is the network id of the sidecar node, 0 testnet or 1 mainnet
	NetworkIDKey = "NETWORK_ID"
	// GameValidatorKey is the cbor hex of the compiled game validator script
	GameValidatorKey = "GAME_VALIDATOR"
	// ConfirmTimeoutKey bounds the wait for a submitted transaction to be confirmed
	ConfirmTimeoutKey = "CONFIRM_TIMEOUT"
	// SidecarPortKey is the port where node sidecars expose their metrics
	SidecarPortKey = "SIDECAR_PORT"
	// SidecarNodeURLKey is the websocket url of the node followed by the sidecar
	SidecarNodeURLKey = "SIDECAR_NODE_URL"
	// StatusIntervalKey is the pause between two node status rounds of the operator
	StatusIntervalKey = "STATUS_INTERVAL"
	// ScrapeRateKey is the max number of sidecars scraped per second by the operator
	ScrapeRateKey = "SCRAPE_RATE"
	// ExternalDomainKey is the domain under which nodes are publicly reachable
	ExternalDomainKey = "EXTERNAL_DOMAIN"
	// ReconnectRateKey is the max number of node reconnection attempts per second
	ReconnectRateKey = "RECONNECT_RATE"
	// MetricsPortKey is the port where the rpc tier exposes its metrics
	MetricsPortKey = "METRICS_PORT"

	DbLocation = "db"

	DBInMemory = "inmemory"
	DBBadger   = "badger"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("hydra-control-plane", false)

var supportedDBTypes = map[string]bool{
	DBInMemory: true,
	DBBadger:   true,
}

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("HYDRA")
	vip.AutomaticEnv()

	vip.SetDefault(LogLevelKey, int(log.InfoLevel))
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(NamespaceKey, "hydra-doom")
	vip.SetDefault(RPCPortKey, 8000)
	vip.SetDefault(NetworkIDKey, int(cardano.TestnetNetworkID))
	vip.SetDefault(ConfirmTimeoutKey, 10*time.Second)
	vip.SetDefault(SidecarPortKey, 8001)
	vip.SetDefault(SidecarNodeURLKey, "ws://127.0.0.1:4001")
	vip.SetDefault(StatusIntervalKey, 5*time.Second)
	vip.SetDefault(ScrapeRateKey, 20)
	vip.SetDefault(ReconnectRateKey, 1)
	vip.SetDefault(MetricsPortKey, 9090)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDbDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetLogLevel() log.Level {
	return log.Level(GetInt(LogLevelKey))
}

func GetNetworkID() uint8 {
	return uint8(GetInt(NetworkIDKey))
}

// GetAdminKey parses the admin signing key. It is required by the rpc tier
// only, so it is not checked at init.
func GetAdminKey() (cardano.SigningKey, error) {
	raw := GetString(AdminKeyKey)
	if raw == "" {
		return cardano.SigningKey{}, fmt.Errorf("missing %s", AdminKeyKey)
	}
	return cardano.ParseSigningKey(raw)
}

// GetValidator parses the game validator script.
func GetValidator() (txbuilder.Validator, error) {
	raw := GetString(GameValidatorKey)
	if raw == "" {
		return txbuilder.Validator{}, fmt.Errorf("missing %s", GameValidatorKey)
	}
	return txbuilder.NewValidator(raw)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	level := GetInt(LogLevelKey)
	if level < int(log.PanicLevel) || level > int(log.TraceLevel) {
		return fmt.Errorf("%s must be in range [%d, %d]", LogLevelKey, log.PanicLevel, log.TraceLevel)
	}

	if dbType := GetString(DBTypeKey); !supportedDBTypes[dbType] {
		return fmt.Errorf("unsupported %s %q", DBTypeKey, dbType)
	}

	networkID := GetInt(NetworkIDKey)
	if networkID != int(cardano.TestnetNetworkID) && networkID != int(cardano.MainnetNetworkID) {
		return fmt.Errorf("%s must be either 0 or 1", NetworkIDKey)
	}

	if len(GetString(NamespaceKey)) <= 0 {
		return fmt.Errorf("missing namespace")
	}

	for _, key := range []string{ConfirmTimeoutKey, StatusIntervalKey} {
		if GetDuration(key) <= 0 {
			return fmt.Errorf("%s must be a positive duration", key)
		}
	}
	for _, key := range []string{RPCPortKey, SidecarPortKey, MetricsPortKey} {
		if port := GetInt(key); port <= 0 || port > 65535 {
			return fmt.Errorf("%s must be a valid port", key)
		}
	}
	for _, key := range []string{ScrapeRateKey, ReconnectRateKey} {
		if GetInt(key) <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}

	return nil
}

func initDatadir() error {
	if GetString(DBTypeKey) != DBBadger {
		return nil
	}
	return makeDirectoryIfNotExists(GetDbDir())
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
