// Package program orchestrates the custodial NFT escrow: minting an asset
// locks a fixed amount of native currency in a per-asset vault, and burning
// the asset is the only path to releasing it. Every operation executes as a
// single all-or-nothing ledger transaction.
package program

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/storymint/storymint-server/pkg/metrics"
	"github.com/storymint/storymint-server/pkg/rate"
	"github.com/storymint/storymint-server/pkg/solana/rent"
	"github.com/storymint/storymint-server/pkg/storymint/auth"
	"github.com/storymint/storymint-server/pkg/storymint/balance"
	"github.com/storymint/storymint-server/pkg/storymint/common"
	"github.com/storymint/storymint-server/pkg/storymint/ledger"
	"github.com/storymint/storymint-server/pkg/storymint/nft"
	"github.com/storymint/storymint-server/pkg/storymint/state"
)

const (
	metricsStructName = "storymint.program"

	mintCountMetricName = "Custom/storymint/mints"
	burnCountMetricName = "Custom/storymint/burns"

	mintDurationMetricName = "Custom/storymint/mint_duration"
	burnDurationMetricName = "Custom/storymint/burn_duration"

	mintEventName = "StorymintMint"
	burnEventName = "StorymintBurn"
)

type Program struct {
	log      *logrus.Entry
	conf     *conf
	accounts ledger.Store
	nft      nft.Client
	rent     rent.Calculator
	auth     *auth.Verifier
	limiter  rate.Limiter
}

func New(
	accounts ledger.Store,
	nftClient nft.Client,
	rentCalculator rent.Calculator,
	mintLimiter rate.Limiter,
	configProvider ConfigProvider,
) *Program {
	return &Program{
		log:      logrus.StandardLogger().WithField("type", "storymint/program"),
		conf:     configProvider(),
		accounts: accounts,
		nft:      nftClient,
		rent:     rentCalculator,
		auth:     auth.NewVerifier(),
		limiter:  mintLimiter,
	}
}

func (p *Program) getProgramAccount(ctx context.Context) (*common.Account, error) {
	account, err := common.NewAccountFromPublicKeyString(p.conf.programAddress.Get(ctx))
	return account, errors.Wrap(err, "invalid program address config")
}

func (p *Program) getServerAuthority(ctx context.Context) (*common.Account, error) {
	account, err := common.NewAccountFromPublicKeyString(p.conf.serverAuthority.Get(ctx))
	return account, errors.Wrap(err, "invalid server authority config")
}

func (p *Program) getBalanceCalculator(ctx context.Context) *balance.Calculator {
	return balance.NewCalculator(p.rent, p.conf.lockedAmount.Get(ctx))
}

type InitializeCollectionArgs struct {
	// Collection is the address the new collection is created at.
	Collection *common.Account

	// UpdateAuthority must be the configured server authority, proven by
	// Signature over the canonical initialize message.
	UpdateAuthority *common.Account

	// Payer funds every account created by the operation.
	Payer *common.Account

	Name string
	URI  string

	Signature []byte
}

type InitializeCollectionResult struct {
	MasterState   *common.Account
	MintAuthority *common.Account
}

// InitializeCollection creates a collection, its master state record and its
// keyless mint authority. A collection is initialized at most once; the master
// state's deterministic address is the guard.
func (p *Program) InitializeCollection(ctx context.Context, args *InitializeCollectionArgs) (*InitializeCollectionResult, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "InitializeCollection")
	defer tracer.End()

	log := p.log.WithFields(logrus.Fields{
		"method":     "InitializeCollection",
		"collection": args.Collection.PublicKey().ToBase58(),
	})

	result, err := func() (*InitializeCollectionResult, error) {
		program, err := p.getProgramAccount(ctx)
		if err != nil {
			return nil, err
		}

		serverAuthority, err := p.getServerAuthority(ctx)
		if err != nil {
			return nil, err
		}

		message := GetInitializeCollectionMessage(args.Collection, args.Name, args.URI)
		if err := p.auth.RequireServerAuthority(serverAuthority, args.UpdateAuthority, message, args.Signature); err != nil {
			return nil, ErrInvalidUpdateAuthority
		}

		masterState, err := state.GetMasterStateAddress(program, args.Collection)
		if err != nil {
			return nil, errors.Wrap(err, "error deriving master state address")
		}

		mintAuthority, err := state.GetMintAuthorityAddress(program, args.Collection)
		if err != nil {
			return nil, errors.Wrap(err, "error deriving mint authority address")
		}

		err = p.accounts.ExecuteTx(ctx, func(ctx context.Context) error {
			master := state.MasterState{
				Collection:  args.Collection.PublicKey().ToBytes(),
				TotalMinted: 0,
			}

			record := &ledger.Account{
				Address:  masterState.PublicKey().ToBase58(),
				Owner:    program.PublicKey().ToBase58(),
				Lamports: p.rent.MinimumBalance(state.MasterStateSize),
				Data:     master.Marshal(),
			}

			err := p.accounts.Create(ctx, record, args.Payer.PublicKey().ToBase58())
			switch err {
			case nil:
			case ledger.ErrAccountExists:
				return ErrAlreadyInitialized
			case ledger.ErrAccountNotFound, ledger.ErrInsufficientLamports:
				return ErrInsufficientFunds
			default:
				return errors.Wrap(err, "error creating master state account")
			}

			// The mint authority is keyless, but holds a data-less
			// rent-exempt account so its existence can be checked at mint
			// time.
			authorityRecord := &ledger.Account{
				Address:  mintAuthority.PublicKey().ToBase58(),
				Owner:    program.PublicKey().ToBase58(),
				Lamports: p.rent.MinimumBalance(0),
			}

			err = p.accounts.Create(ctx, authorityRecord, args.Payer.PublicKey().ToBase58())
			switch err {
			case nil:
			case ledger.ErrAccountExists:
				return ErrAlreadyInitialized
			case ledger.ErrInsufficientLamports:
				return ErrInsufficientFunds
			default:
				return errors.Wrap(err, "error creating mint authority account")
			}

			err = p.nft.CreateCollection(ctx, &nft.Collection{
				Address:         args.Collection.PublicKey().ToBase58(),
				UpdateAuthority: serverAuthority.PublicKey().ToBase58(),
				MintDelegate:    mintAuthority.PublicKey().ToBase58(),
				Name:            args.Name,
				URI:             args.URI,
			}, args.Payer.PublicKey().ToBase58())
			if err == nft.ErrCollectionExists {
				return ErrAlreadyInitialized
			}
			return err
		})
		if err != nil {
			return nil, err
		}

		return &InitializeCollectionResult{
			MasterState:   masterState,
			MintAuthority: mintAuthority,
		}, nil
	}()

	if err != nil {
		tracer.OnError(err)
		log.WithError(err).Warn("collection initialization failed")
	}
	return result, err
}

type MintAssetArgs struct {
	// Asset is the address the new asset is created at. The payer becomes its
	// owner.
	Asset *common.Account

	Collection *common.Account

	// MintAuthority is the keyless authority for the collection. It is
	// validated against its deterministic derivation, never by signature.
	MintAuthority *common.Account

	// Payer funds the vault's full required balance plus the rent for every
	// account created by the operation.
	Payer *common.Account
}

type MintAssetResult struct {
	Vault       *common.Account
	TotalMinted uint64
}

// MintAsset creates an asset and locks the configured amount in a freshly
// created per-asset vault. Supply accounting, vault creation and asset
// creation all commit together or not at all.
func (p *Program) MintAsset(ctx context.Context, args *MintAssetArgs) (*MintAssetResult, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "MintAsset")
	defer tracer.End()

	start := time.Now()

	log := p.log.WithFields(logrus.Fields{
		"method":     "MintAsset",
		"collection": args.Collection.PublicKey().ToBase58(),
		"asset":      args.Asset.PublicKey().ToBase58(),
	})

	result, err := func() (*MintAssetResult, error) {
		if !p.conf.mintingEnabled.Get(ctx) {
			return nil, ErrMintingDisabled
		}

		allowed, err := p.limiter.Allow(args.Payer.PublicKey().ToBase58())
		if err != nil {
			return nil, errors.Wrap(err, "error checking rate limit")
		} else if !allowed {
			return nil, ErrRateLimited
		}

		program, err := p.getProgramAccount(ctx)
		if err != nil {
			return nil, err
		}

		if err := p.auth.RequireProgramAuthority(args.MintAuthority, program, state.GetMintAuthoritySeeds(args.Collection)...); err != nil {
			return nil, err
		}

		masterState, err := state.GetMasterStateAddress(program, args.Collection)
		if err != nil {
			return nil, errors.Wrap(err, "error deriving master state address")
		}

		calc := p.getBalanceCalculator(ctx)
		maxSupply := p.conf.maxSupply.Get(ctx)
		payer := args.Payer.PublicKey().ToBase58()

		var result MintAssetResult
		err = p.accounts.ExecuteTx(ctx, func(ctx context.Context) error {
			masterRecord, err := p.accounts.Get(ctx, masterState.PublicKey().ToBase58())
			if err == ledger.ErrAccountNotFound {
				return ErrInvalidCollection
			} else if err != nil {
				return errors.Wrap(err, "error getting master state account")
			}

			var master state.MasterState
			if err := master.Unmarshal(masterRecord.Data); err != nil {
				return ErrInvalidCollection
			}

			if !bytes.Equal(master.Collection, args.Collection.PublicKey().ToBytes()) {
				return ErrInvalidCollection
			}

			if master.TotalMinted >= maxSupply {
				return ErrMaxSupplyReached
			}

			authorityRecord, err := p.accounts.Get(ctx, args.MintAuthority.PublicKey().ToBase58())
			if err == ledger.ErrAccountNotFound {
				return ErrInvalidAuthority
			} else if err != nil {
				return errors.Wrap(err, "error getting mint authority account")
			} else if authorityRecord.Lamports == 0 {
				return ErrInvalidAuthority
			}

			collection, err := p.nft.GetCollection(ctx, args.Collection.PublicKey().ToBase58())
			if err == nft.ErrCollectionNotFound {
				return ErrInvalidCollection
			} else if err != nil {
				return errors.Wrap(err, "error getting collection")
			}

			asset := &nft.Asset{
				Address:    args.Asset.PublicKey().ToBase58(),
				Collection: collection.Address,
				Owner:      payer,
				Name:       collection.Name,
				URI:        collection.URI,
			}

			// The payer funds the vault's full balance plus the asset record's
			// rent, so the precheck must account for both.
			required, err := calc.RequiredMintTransfer(state.TokenVaultSize, p.nft.GetAssetSize(asset))
			if err != nil {
				return err
			}

			payerRecord, err := p.accounts.Get(ctx, payer)
			if err == ledger.ErrAccountNotFound {
				return ErrInsufficientFunds
			} else if err != nil {
				return errors.Wrap(err, "error getting payer account")
			} else if payerRecord.Lamports < required {
				return ErrInsufficientFunds
			}

			vault, err := p.createVault(ctx, calc, program, args.Asset, payer)
			if err != nil {
				return err
			}

			err = p.nft.CreateAsset(ctx, asset, args.MintAuthority.PublicKey().ToBase58(), payer)
			switch err {
			case nil:
			case nft.ErrInvalidAuthority:
				return ErrInvalidAuthority
			case ledger.ErrInsufficientLamports:
				return ErrInsufficientFunds
			default:
				return errors.Wrap(err, "error creating asset")
			}

			// The counter moves only after everything else in the transaction
			// has succeeded.
			if err := master.IncrementMinted(maxSupply); err != nil {
				return err
			}

			err = p.accounts.SetData(ctx, masterState.PublicKey().ToBase58(), master.Marshal())
			if err != nil {
				return errors.Wrap(err, "error updating master state account")
			}

			result.Vault = vault
			result.TotalMinted = master.TotalMinted
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &result, nil
	}()

	if err != nil {
		tracer.OnError(err)
		log.WithError(err).Warn("asset minting failed")
	} else {
		metrics.RecordCount(ctx, mintCountMetricName, 1)
		metrics.RecordDuration(ctx, mintDurationMetricName, time.Since(start))
		metrics.RecordEvent(ctx, mintEventName, map[string]interface{}{
			"collection":   args.Collection.PublicKey().ToBase58(),
			"asset":        args.Asset.PublicKey().ToBase58(),
			"total_minted": result.TotalMinted,
		})
	}
	return result, err
}

type UpdateMetadataArgs struct {
	Asset *common.Account

	// Authority must be the configured server authority, proven by Signature
	// over the canonical update message.
	Authority *common.Account

	// NewName is optional; the current name is kept when nil.
	NewName *string
	NewURI  string

	Signature []byte
}

// UpdateMetadata rewrites an asset's descriptive metadata. Only the server
// authority may update, and the escrowed balance is never touched.
func (p *Program) UpdateMetadata(ctx context.Context, args *UpdateMetadataArgs) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "UpdateMetadata")
	defer tracer.End()

	log := p.log.WithFields(logrus.Fields{
		"method": "UpdateMetadata",
		"asset":  args.Asset.PublicKey().ToBase58(),
	})

	err := func() error {
		if len(args.NewURI) == 0 {
			return ErrInvalidMetadataUpdate
		}

		serverAuthority, err := p.getServerAuthority(ctx)
		if err != nil {
			return err
		}

		message := GetUpdateMetadataMessage(args.Asset, args.NewName, args.NewURI)
		if err := p.auth.RequireServerAuthority(serverAuthority, args.Authority, message, args.Signature); err != nil {
			return err
		}

		return p.accounts.ExecuteTx(ctx, func(ctx context.Context) error {
			err := p.nft.UpdateAsset(
				ctx,
				args.Asset.PublicKey().ToBase58(),
				serverAuthority.PublicKey().ToBase58(),
				args.NewName,
				args.NewURI,
			)
			if err == nft.ErrInvalidAuthority {
				return ErrUnauthorizedUpdate
			}
			return err
		})
	}()

	if err != nil {
		tracer.OnError(err)
		log.WithError(err).Warn("metadata update failed")
	}
	return err
}

type BurnAndWithdrawArgs struct {
	Asset *common.Account

	// Owner must match the asset's verified owner, proven by Signature over
	// the canonical burn message. The owner receives the withdrawal.
	Owner *common.Account

	Signature []byte
}

type BurnAndWithdrawResult struct {
	// Withdrawn is the full vault balance swept to the owner: the escrowed
	// amount plus the vault record's rent-exempt minimum.
	Withdrawn   uint64
	TotalMinted uint64
}

// BurnAndWithdraw destroys an asset and releases its vault's entire balance
// to the owner. The vault balance is validated against the exact required
// amount before any mutation; burn, withdrawal and supply accounting commit
// together or not at all.
func (p *Program) BurnAndWithdraw(ctx context.Context, args *BurnAndWithdrawArgs) (*BurnAndWithdrawResult, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "BurnAndWithdraw")
	defer tracer.End()

	start := time.Now()

	log := p.log.WithFields(logrus.Fields{
		"method": "BurnAndWithdraw",
		"asset":  args.Asset.PublicKey().ToBase58(),
	})

	result, err := func() (*BurnAndWithdrawResult, error) {
		program, err := p.getProgramAccount(ctx)
		if err != nil {
			return nil, err
		}

		calc := p.getBalanceCalculator(ctx)
		owner := args.Owner.PublicKey().ToBase58()
		asset := args.Asset.PublicKey().ToBase58()

		var result BurnAndWithdrawResult
		err = p.accounts.ExecuteTx(ctx, func(ctx context.Context) error {
			assetRecord, err := p.nft.GetAsset(ctx, asset)
			if err != nil {
				return err
			}

			recordedOwner, err := common.NewAccountFromPublicKeyString(assetRecord.Owner)
			if err != nil {
				return errors.Wrap(err, "invalid recorded asset owner")
			}

			message := GetBurnAndWithdrawMessage(args.Asset)
			if err := p.auth.RequireOwner(recordedOwner, args.Owner, message, args.Signature); err != nil {
				return err
			}

			collection, err := common.NewAccountFromPublicKeyString(assetRecord.Collection)
			if err != nil {
				return errors.Wrap(err, "invalid recorded asset collection")
			}

			masterState, err := state.GetMasterStateAddress(program, collection)
			if err != nil {
				return errors.Wrap(err, "error deriving master state address")
			}

			masterRecord, err := p.accounts.Get(ctx, masterState.PublicKey().ToBase58())
			if err == ledger.ErrAccountNotFound {
				return ErrInvalidCollection
			} else if err != nil {
				return errors.Wrap(err, "error getting master state account")
			}

			var master state.MasterState
			if err := master.Unmarshal(masterRecord.Data); err != nil {
				return ErrInvalidCollection
			}

			if !bytes.Equal(master.Collection, collection.PublicKey().ToBytes()) {
				return ErrInvalidCollection
			}

			vault, vaultRecord, err := p.getVault(ctx, program, args.Asset)
			if err != nil {
				return err
			}

			if err := p.validateVaultBalance(calc, vaultRecord); err != nil {
				return err
			}

			err = p.nft.BurnAsset(ctx, asset, owner)
			if err == nft.ErrNotOwner {
				return ErrInvalidOwner
			} else if err != nil {
				return errors.Wrap(err, "error burning asset")
			}

			// The burn must leave nothing behind at the asset's address before
			// any funds move.
			_, err = p.accounts.Get(ctx, asset)
			if err == nil {
				return ErrTokenAccountNotClosed
			} else if err != ledger.ErrAccountNotFound {
				return errors.Wrap(err, "error checking asset account closure")
			}

			err = p.accounts.Close(ctx, vault.PublicKey().ToBase58(), owner)
			if err != nil {
				return errors.Wrap(err, "error closing vault account")
			}

			// The counter moves only after everything else in the transaction
			// has succeeded.
			if err := master.DecrementMinted(); err != nil {
				return err
			}

			err = p.accounts.SetData(ctx, masterState.PublicKey().ToBase58(), master.Marshal())
			if err != nil {
				return errors.Wrap(err, "error updating master state account")
			}

			result.Withdrawn = vaultRecord.Lamports
			result.TotalMinted = master.TotalMinted
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &result, nil
	}()

	if err != nil {
		tracer.OnError(err)
		log.WithError(err).Warn("burn and withdraw failed")
	} else {
		metrics.RecordCount(ctx, burnCountMetricName, 1)
		metrics.RecordDuration(ctx, burnDurationMetricName, time.Since(start))
		metrics.RecordEvent(ctx, burnEventName, map[string]interface{}{
			"asset":        args.Asset.PublicKey().ToBase58(),
			"withdrawn":    result.Withdrawn,
			"total_minted": result.TotalMinted,
		})
	}
	return result, err
}
