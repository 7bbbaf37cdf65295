// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package config

import (
	"os"
	"time"

	"github.com/holiman/uint256"
	"github.com/iotexproject/go-pkgs/crypto"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	uconfig "go.uber.org/config"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-bridge/action"
	"github.com/iotexproject/iotex-bridge/db"
	"github.com/iotexproject/iotex-bridge/pkg/log"
)

// IMPORTANT: to define a config, add a field or a new config type to the existing config types. In addition, provide
// the default value in Default var.

const (
	// DirectBridgedChain verifies bridged state against headers imported by the finality light client
	DirectBridgedChain = "direct"
	// ChildBridgedChain verifies bridged state against child chain heads relayed through the relay chain
	ChildBridgedChain = "child"
)

var (
	// Default is the default config
	Default = Config{
		Chain: Chain{
			ID:               1,
			DB:               db.DefaultConfig,
			BlockInterval:    5 * time.Second,
			GenesisTimestamp: 1546329600,
			FundBalance:      "0",
		},
		Bridge: Bridge{
			HeadersToKeep:               1024,
			RootsToKeep:                 1024,
			ChildHeadsToKeep:            1024,
			DeliveryFee:                 "0",
			ConfirmationFee:             "0",
			MaxUnconfirmedMessages:      1024,
			MaxUnrewardedRelayerEntries: 128,
			MaxMessagesInDeliveryTx:     128,
			MaxPayloadSize:              64 * 1024,
			MaxMessagesToPruneAtOnce:    8,
			BridgedChain: BridgedChain{
				Kind: DirectBridgedChain,
			},
		},
		API: API{
			Port:                  14014,
			RangeQueryLimit:       1000,
			MaxConcurrentRequests: 64,
		},
		Relay: Relay{
			PollInterval:   time.Second,
			StallTimeout:   5 * time.Minute,
			HeadersPerPoll: 64,
			Strategy: Strategy{
				MaxMessagesInFlight:    512,
				MaxUnconfirmedMessages: 1024,
				MaxMessagesInBatch:     64,
				MaxBatchWeight:         512 * 1024,
			},
			SubmitRateLimit: 10,
			SubmitBurst:     1,
			RequestTimeout:  10 * time.Second,
			RestartBackoff: Backoff{
				InitialInterval: time.Second,
				MaxInterval:     time.Minute,
			},
		},
		Probe: Probe{
			Port: 8080,
		},
	}

	// ErrInvalidCfg indicates the invalid config value
	ErrInvalidCfg = errors.New("invalid config value")

	// Validates is the collection config validation functions of a bridge node
	Validates = []Validate{
		ValidateChain,
		ValidateBridge,
		ValidateAPI,
	}

	// RelayValidates is the collection config validation functions of a relayer
	RelayValidates = []Validate{
		ValidateRelay,
	}
)

type (
	// Chain is the config struct of the local chain
	Chain struct {
		ID uint32    `yaml:"id"`
		DB db.Config `yaml:"db"`
		// Owner is the address allowed to initialize the light client, note roots and change operating modes
		Owner string `yaml:"owner"`
		// AuthorityKeys are the hex private keys finalizing the local blocks
		AuthorityKeys []string `yaml:"authorityKeys"`
		// AuthoritySetID is the id of the genesis authority set
		AuthoritySetID   uint64        `yaml:"authoritySetID"`
		BlockInterval    time.Duration `yaml:"blockInterval"`
		GenesisTimestamp int64         `yaml:"genesisTimestamp"`
		// GenesisBalances maps account addresses to their initial balance in decimal
		GenesisBalances map[string]string `yaml:"genesisBalances"`
		// FundBalance is the initial balance of the relayer fund in decimal
		FundBalance string `yaml:"fundBalance"`
	}

	// BridgedChain describes how the bridged chain's state is verified
	BridgedChain struct {
		// Kind is direct or child
		Kind string `yaml:"kind"`
		// ChildID is the id of the bridged chain on the relay chain when Kind is child
		ChildID uint32 `yaml:"childID"`
	}

	// Bridge is the configuration of one bridge pair deployment
	Bridge struct {
		HeadersToKeep               uint64       `yaml:"headersToKeep"`
		RootsToKeep                 uint64       `yaml:"rootsToKeep"`
		ChildHeadsToKeep            uint64       `yaml:"childHeadsToKeep"`
		DeliveryFee                 string       `yaml:"deliveryFee"`
		ConfirmationFee             string       `yaml:"confirmationFee"`
		MaxUnconfirmedMessages      uint64       `yaml:"maxUnconfirmedMessages"`
		MaxUnrewardedRelayerEntries uint64       `yaml:"maxUnrewardedRelayerEntries"`
		MaxMessagesInDeliveryTx     uint64       `yaml:"maxMessagesInDeliveryTx"`
		MaxPayloadSize              uint64       `yaml:"maxPayloadSize"`
		MaxMessagesToPruneAtOnce    uint64       `yaml:"maxMessagesToPruneAtOnce"`
		Lanes                       []string     `yaml:"lanes"`
		BridgedChain                BridgedChain `yaml:"bridgedChain"`
	}

	// API is the config struct for the JSON-RPC server
	API struct {
		Port                  int    `yaml:"port"`
		RangeQueryLimit       uint64 `yaml:"rangeQueryLimit"`
		MaxConcurrentRequests int64  `yaml:"maxConcurrentRequests"`
	}

	// RelayChain is a chain the relayer talks to
	RelayChain struct {
		Name     string `yaml:"name"`
		Endpoint string `yaml:"endpoint"`
		// SignerKey is the hex private key signing the relayer's actions on this chain
		SignerKey string `yaml:"signerKey"`
	}

	// Strategy limits the ranges a race submits
	Strategy struct {
		MaxMessagesInFlight    uint64 `yaml:"maxMessagesInFlight"`
		MaxUnconfirmedMessages uint64 `yaml:"maxUnconfirmedMessages"`
		MaxMessagesInBatch     uint64 `yaml:"maxMessagesInBatch"`
		MaxBatchWeight         uint64 `yaml:"maxBatchWeight"`
	}

	// Backoff is an exponential backoff policy
	Backoff struct {
		InitialInterval time.Duration `yaml:"initialInterval"`
		MaxInterval     time.Duration `yaml:"maxInterval"`
		// MaxElapsedTime stops restarting after the duration, zero restarts forever
		MaxElapsedTime time.Duration `yaml:"maxElapsedTime"`
	}

	// Relay is the config struct of the relayer
	Relay struct {
		ChainA          RelayChain    `yaml:"chainA"`
		ChainB          RelayChain    `yaml:"chainB"`
		Lanes           []string      `yaml:"lanes"`
		RelayFinality   bool          `yaml:"relayFinality"`
		// ChildIDs are the child chains whose heads published on chain a are relayed to chain b
		ChildIDs        []uint32      `yaml:"childIDs"`
		HeadersPerPoll  uint64        `yaml:"headersPerPoll"`
		PollInterval    time.Duration `yaml:"pollInterval"`
		StallTimeout    time.Duration `yaml:"stallTimeout"`
		Strategy        Strategy      `yaml:"strategy"`
		SubmitRateLimit float64       `yaml:"submitRateLimit"`
		SubmitBurst     int           `yaml:"submitBurst"`
		RequestTimeout  time.Duration `yaml:"requestTimeout"`
		RestartBackoff  Backoff       `yaml:"restartBackoff"`
	}

	// Probe is the config struct of the probe server
	Probe struct {
		Port int `yaml:"port"`
	}

	// Config is the root config struct, each package's config should be put as its sub struct
	Config struct {
		Chain   Chain                       `yaml:"chain"`
		Bridge  Bridge                      `yaml:"bridge"`
		API     API                         `yaml:"api"`
		Relay   Relay                       `yaml:"relay"`
		Probe   Probe                       `yaml:"probe"`
		Log     log.GlobalConfig            `yaml:"log"`
		SubLogs map[string]log.GlobalConfig `yaml:"subLogs"`
	}

	// Validate is the interface of validating the config
	Validate func(Config) error
)

// New creates a config instance. It first loads the default configs. If the config path is not empty, it will read from
// the file and override the default configs. By default, it will apply all validation functions. To bypass validation,
// use DoNotValidate instead.
func New(configPaths []string, validates ...Validate) (Config, error) {
	opts := make([]uconfig.YAMLOption, 0)
	opts = append(opts, uconfig.Static(Default))
	opts = append(opts, uconfig.Expand(os.LookupEnv))
	for _, path := range configPaths {
		if path != "" {
			opts = append(opts, uconfig.File(path))
		}
	}
	yaml, err := uconfig.NewYAML(opts...)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to init config")
	}

	var cfg Config
	if err := yaml.Get(uconfig.Root).Populate(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal YAML config to struct")
	}

	// By default, the config needs to pass all the validation
	if len(validates) == 0 {
		validates = Validates
	}
	for _, validate := range validates {
		if err := validate(cfg); err != nil {
			return Config{}, errors.Wrap(err, "failed to validate config")
		}
	}
	return cfg, nil
}

// AuthorityPrivateKeys returns the keys finalizing the local blocks
func (c Chain) AuthorityPrivateKeys() []crypto.PrivateKey {
	keys := make([]crypto.PrivateKey, 0, len(c.AuthorityKeys))
	for _, k := range c.AuthorityKeys {
		sk, err := crypto.HexStringToPrivateKey(k)
		if err != nil {
			log.L().Panic("Error when decoding authority key", zap.Error(err))
		}
		keys = append(keys, sk)
	}
	return keys
}

// Authorities returns the serialized public keys of the authority set
func (c Chain) Authorities() [][]byte {
	keys := c.AuthorityPrivateKeys()
	authorities := make([][]byte, len(keys))
	for i, sk := range keys {
		authorities[i] = sk.PublicKey().Bytes()
	}
	return authorities
}

// OwnerAddress returns the owner address, nil if no owner is configured
func (c Chain) OwnerAddress() address.Address {
	if c.Owner == "" {
		return nil
	}
	addr, err := address.FromString(c.Owner)
	if err != nil {
		log.L().Panic("Error when decoding owner address", zap.Error(err))
	}
	return addr
}

// DeliveryFeeValue returns the fee charged per message and paid to the delivering relayer
func (b Bridge) DeliveryFeeValue() *uint256.Int {
	return mustParseAmount(b.DeliveryFee)
}

// ConfirmationFeeValue returns the cut of a delivery reward paid to the confirming relayer
func (b Bridge) ConfirmationFeeValue() *uint256.Int {
	return mustParseAmount(b.ConfirmationFee)
}

// LaneIDs returns the configured lanes
func (b Bridge) LaneIDs() []action.LaneID {
	return mustParseLanes(b.Lanes)
}

// LaneIDs returns the lanes the relayer serves
func (r Relay) LaneIDs() []action.LaneID {
	return mustParseLanes(r.Lanes)
}

// SignerPrivateKey returns the relayer key on the chain
func (rc RelayChain) SignerPrivateKey() crypto.PrivateKey {
	sk, err := crypto.HexStringToPrivateKey(rc.SignerKey)
	if err != nil {
		log.L().Panic("Error when decoding signer key", zap.String("chain", rc.Name), zap.Error(err))
	}
	return sk
}

// ParseAmount parses a decimal amount into a uint256
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return uint256.NewInt(0), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidCfg, "invalid amount %s: %v", s, err)
	}
	return v, nil
}

func mustParseAmount(s string) *uint256.Int {
	v, err := ParseAmount(s)
	if err != nil {
		log.L().Panic("Error when parsing amount", zap.Error(err))
	}
	return v
}

func mustParseLanes(lanes []string) []action.LaneID {
	ids := make([]action.LaneID, 0, len(lanes))
	for _, l := range lanes {
		id, err := action.LaneIDFromString(l)
		if err != nil {
			log.L().Panic("Error when parsing lane", zap.Error(err))
		}
		ids = append(ids, id)
	}
	return ids
}

// ValidateChain validates the chain configs
func ValidateChain(cfg Config) error {
	if len(cfg.Chain.AuthorityKeys) == 0 {
		return errors.Wrap(ErrInvalidCfg, "at least one authority key is required")
	}
	for _, k := range cfg.Chain.AuthorityKeys {
		if _, err := crypto.HexStringToPrivateKey(k); err != nil {
			return errors.Wrapf(ErrInvalidCfg, "invalid authority key: %v", err)
		}
	}
	if cfg.Chain.Owner != "" {
		if _, err := address.FromString(cfg.Chain.Owner); err != nil {
			return errors.Wrapf(ErrInvalidCfg, "invalid owner %s", cfg.Chain.Owner)
		}
	}
	for addr, balance := range cfg.Chain.GenesisBalances {
		if _, err := address.FromString(addr); err != nil {
			return errors.Wrapf(ErrInvalidCfg, "invalid genesis account %s", addr)
		}
		if _, err := ParseAmount(balance); err != nil {
			return err
		}
	}
	if _, err := ParseAmount(cfg.Chain.FundBalance); err != nil {
		return err
	}
	if cfg.Chain.BlockInterval <= 0 {
		return errors.Wrap(ErrInvalidCfg, "block interval should be positive")
	}
	return nil
}

// ValidateBridge validates the bridge pair configs
func ValidateBridge(cfg Config) error {
	b := cfg.Bridge
	if b.HeadersToKeep == 0 || b.RootsToKeep == 0 || b.ChildHeadsToKeep == 0 {
		return errors.Wrap(ErrInvalidCfg, "ring sizes should be greater than 0")
	}
	if _, err := ParseAmount(b.DeliveryFee); err != nil {
		return err
	}
	if _, err := ParseAmount(b.ConfirmationFee); err != nil {
		return err
	}
	if b.MaxUnconfirmedMessages == 0 || b.MaxUnrewardedRelayerEntries == 0 || b.MaxMessagesInDeliveryTx == 0 {
		return errors.Wrap(ErrInvalidCfg, "lane limits should be greater than 0")
	}
	if err := validateLanes(b.Lanes); err != nil {
		return err
	}
	switch b.BridgedChain.Kind {
	case DirectBridgedChain, ChildBridgedChain:
	default:
		return errors.Wrapf(ErrInvalidCfg, "unknown bridged chain kind %s", b.BridgedChain.Kind)
	}
	return nil
}

// ValidateAPI validates the api configs
func ValidateAPI(cfg Config) error {
	if cfg.API.Port <= 0 || cfg.API.RangeQueryLimit == 0 || cfg.API.MaxConcurrentRequests <= 0 {
		return errors.Wrap(ErrInvalidCfg, "api port, range query limit and concurrency should be positive")
	}
	return nil
}

// ValidateRelay validates the relayer configs
func ValidateRelay(cfg Config) error {
	r := cfg.Relay
	for _, c := range []RelayChain{r.ChainA, r.ChainB} {
		if c.Endpoint == "" {
			return errors.Wrapf(ErrInvalidCfg, "missing endpoint of chain %s", c.Name)
		}
		if _, err := crypto.HexStringToPrivateKey(c.SignerKey); err != nil {
			return errors.Wrapf(ErrInvalidCfg, "invalid signer key of chain %s", c.Name)
		}
	}
	if err := validateLanes(r.Lanes); err != nil {
		return err
	}
	if r.PollInterval <= 0 || r.StallTimeout <= r.PollInterval {
		return errors.Wrap(ErrInvalidCfg, "stall timeout should be longer than the poll interval")
	}
	s := r.Strategy
	if s.MaxMessagesInBatch == 0 || s.MaxBatchWeight == 0 {
		return errors.Wrap(ErrInvalidCfg, "batch limits should be greater than 0")
	}
	if s.MaxMessagesInFlight < s.MaxMessagesInBatch {
		return errors.Wrap(ErrInvalidCfg, "max messages in flight should not be less than max messages in batch")
	}
	if s.MaxUnconfirmedMessages < s.MaxMessagesInFlight {
		return errors.Wrap(ErrInvalidCfg, "max unconfirmed messages should not be less than max messages in flight")
	}
	if r.RelayFinality && r.HeadersPerPoll == 0 {
		return errors.Wrap(ErrInvalidCfg, "headers per poll should be greater than 0")
	}
	if r.SubmitRateLimit <= 0 || r.SubmitBurst <= 0 {
		return errors.Wrap(ErrInvalidCfg, "submit rate limit and burst should be positive")
	}
	if r.RestartBackoff.InitialInterval <= 0 || r.RestartBackoff.MaxInterval < r.RestartBackoff.InitialInterval {
		return errors.Wrap(ErrInvalidCfg, "invalid restart backoff")
	}
	return nil
}

func validateLanes(lanes []string) error {
	seen := make(map[action.LaneID]struct{}, len(lanes))
	for _, l := range lanes {
		id, err := action.LaneIDFromString(l)
		if err != nil {
			return errors.Wrapf(ErrInvalidCfg, "invalid lane: %v", err)
		}
		if _, ok := seen[id]; ok {
			return errors.Wrapf(ErrInvalidCfg, "duplicate lane %s", l)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// DoNotValidate validates the given config
func DoNotValidate(cfg Config) error { return nil }
