package program

import (
	"github.com/storymint/storymint-server/pkg/config"
	"github.com/storymint/storymint-server/pkg/config/env"
	"github.com/storymint/storymint-server/pkg/config/memory"
	"github.com/storymint/storymint-server/pkg/config/wrapper"
)

const (
	envConfigPrefix = "STORYMINT_PROGRAM_"

	ProgramAddressConfigEnvName = envConfigPrefix + "PROGRAM_ADDRESS"
	defaultProgramAddress       = "3kLyy6249ZFsZyG74b6eSwuvDUVndkFM54cvK8gnietr"

	// ServerAuthorityConfigEnvName selects the fixed server authority per
	// deployment environment. Test, staging and production differ by this
	// value, never by recompilation.
	ServerAuthorityConfigEnvName = envConfigPrefix + "SERVER_AUTHORITY"
	defaultServerAuthority       = "EiLANmnffXVXczyimnGEKSZpzwQ4TyuQXVAviqBji8TF"

	MaxSupplyConfigEnvName = envConfigPrefix + "MAX_SUPPLY"
	defaultMaxSupply       = 10_000

	LockedAmountConfigEnvName = envConfigPrefix + "LOCKED_AMOUNT"
	defaultLockedAmount       = 1_000_000_000 // 1 SOL

	// MintingEnabledConfigEnvName is an operational kill switch for minting.
	// Burns are never gated, so owners can always exit.
	MintingEnabledConfigEnvName = envConfigPrefix + "MINTING_ENABLED"
	defaultMintingEnabled       = true
)

type conf struct {
	programAddress  config.String
	serverAuthority config.String
	maxSupply       config.Uint64
	lockedAmount    config.Uint64
	mintingEnabled  config.Bool
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			programAddress:  env.NewStringConfig(ProgramAddressConfigEnvName, defaultProgramAddress),
			serverAuthority: env.NewStringConfig(ServerAuthorityConfigEnvName, defaultServerAuthority),
			maxSupply:       env.NewUint64Config(MaxSupplyConfigEnvName, defaultMaxSupply),
			lockedAmount:    env.NewUint64Config(LockedAmountConfigEnvName, defaultLockedAmount),
			mintingEnabled:  env.NewBoolConfig(MintingEnabledConfigEnvName, defaultMintingEnabled),
		}
	}
}

type testOverrides struct {
	serverAuthority string
	maxSupply       uint64
	lockedAmount    uint64
	mintingDisabled bool
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		maxSupply := overrides.maxSupply
		if maxSupply == 0 {
			maxSupply = defaultMaxSupply
		}

		lockedAmount := overrides.lockedAmount
		if lockedAmount == 0 {
			lockedAmount = defaultLockedAmount
		}

		return &conf{
			programAddress:  wrapper.NewStringConfig(memory.NewConfig(defaultProgramAddress), defaultProgramAddress),
			serverAuthority: wrapper.NewStringConfig(memory.NewConfig(overrides.serverAuthority), defaultServerAuthority),
			maxSupply:       wrapper.NewUint64Config(memory.NewConfig(maxSupply), defaultMaxSupply),
			lockedAmount:    wrapper.NewUint64Config(memory.NewConfig(lockedAmount), defaultLockedAmount),
			mintingEnabled:  wrapper.NewBoolConfig(memory.NewConfig(!overrides.mintingDisabled), defaultMintingEnabled),
		}
	}
}
