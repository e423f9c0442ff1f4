// Package initializer builds the full dependency graph: database, stores,
// remote clients, sync engines, services, and the logger they all share.
package initializer

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pocketledger/pocketledger/infra"
	infraconnectivity "github.com/pocketledger/pocketledger/infra/connectivity"
	infraprovider "github.com/pocketledger/pocketledger/infra/provider"
	infraremote "github.com/pocketledger/pocketledger/infra/remote"
	infrarepository "github.com/pocketledger/pocketledger/infra/repository"
	"github.com/pocketledger/pocketledger/pkg/config"
	"github.com/pocketledger/pocketledger/pkg/connectivity"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/exchange"
	"github.com/pocketledger/pocketledger/pkg/service/ledger"
	"github.com/pocketledger/pocketledger/pkg/service/loan"
	"github.com/pocketledger/pocketledger/pkg/service/planned"
	"github.com/pocketledger/pocketledger/pkg/service/wallet"
	"github.com/pocketledger/pocketledger/pkg/syncer"
)

// Deps holds every wired dependency the app needs.
type Deps struct {
	Config *config.App
	Logger *slog.Logger
	DB     *gorm.DB
	Uow    *infrarepository.UoW

	Owner  uuid.UUID
	Prober *infraconnectivity.Prober
	Rates  *exchange.Cache
	Runner *syncer.Runner

	Ledger  *ledger.Service
	Wallets *wallet.Service
	Loans   *loan.Service
	Planned *planned.Service
}

// InitializeDependencies wires the application from config. It does not start
// background work; the caller starts the prober and the sync runner.
func InitializeDependencies(cfg *config.App) (*Deps, error) {
	deps := &Deps{Config: cfg}

	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	owner, err := resolveOwner(cfg, logger)
	if err != nil {
		return nil, err
	}
	deps.Owner = owner

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		return nil, err
	}
	deps.DB = db
	deps.Uow = infrarepository.NewUoW(db)

	deps.Prober = infraconnectivity.NewProber(cfg.Remote, cfg.Connectivity, logger)

	rateSource := infraprovider.NewExchangeRateAPISource(cfg.Exchange, logger)
	deps.Rates = exchange.New(rateSource, logger, cfg.Exchange.BaseCurrency, cfg.Exchange.CacheTTL)

	deps.Runner = syncer.NewRunner(owner, deps.Prober, logger,
		newEngine[domain.Wallet]("wallets", db, cfg.Remote, deps.Prober, logger),
		newEngine[domain.Transaction]("transactions", db, cfg.Remote, deps.Prober, logger),
		newEngine[domain.Loan]("loans", db, cfg.Remote, deps.Prober, logger),
		newEngine[domain.LoanEntry]("loan-entries", db, cfg.Remote, deps.Prober, logger),
		newEngine[domain.PlannedPayment]("planned-payments", db, cfg.Remote, deps.Prober, logger),
		newEngine[domain.Category]("categories", db, cfg.Remote, deps.Prober, logger),
		newEngine[domain.Goal]("goals", db, cfg.Remote, deps.Prober, logger),
		newEngine[domain.Portfolio]("portfolios", db, cfg.Remote, deps.Prober, logger),
		newEngine[domain.PortfolioInstrument]("portfolio-instruments", db, cfg.Remote, deps.Prober, logger),
	)

	deps.Ledger = ledger.New(deps.Uow, deps.Rates, logger)
	deps.Wallets = wallet.New(deps.Uow, deps.Rates, logger)
	deps.Loans = loan.New(deps.Uow, logger)
	deps.Planned = planned.New(deps.Uow, deps.Ledger, logger)

	return deps, nil
}

// newEngine wires one entity family end to end: its local store, its remote
// collection client, and the sync engine holding the push-then-pull contract.
func newEngine[T domain.Syncable[T]](
	entity string,
	db *gorm.DB,
	cfg config.Remote,
	conn connectivity.Monitor,
	logger *slog.Logger,
) *syncer.Engine[T] {
	local := infrarepository.NewStore[T](db)
	rem := infraremote.NewClient[T](cfg, entity, logger)
	return syncer.NewEngine[T](entity, local, rem, conn, logger, cfg.Timeout)
}

func resolveOwner(cfg *config.App, logger *slog.Logger) (uuid.UUID, error) {
	if cfg.OwnerID == "" {
		owner := uuid.New()
		logger.Warn("OWNER_ID not set, generated ephemeral owner", "owner", owner)
		return owner, nil
	}
	owner, err := uuid.Parse(cfg.OwnerID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid OWNER_ID: %w", err)
	}
	return owner, nil
}
