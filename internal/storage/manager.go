package storage

import (
	"fmt"

	"github.com/khtseng/folio/internal/clients/gsheet"
	"github.com/khtseng/folio/internal/common"
	"github.com/khtseng/folio/internal/interfaces"
)

// Manager bundles the concrete stores behind the StorageManager contract.
type Manager struct {
	assets       interfaces.AssetStore
	transactions interfaces.TransactionStore
	history      interfaces.PriceHistoryStore
	settings     interfaces.SettingsStore
	db           *BadgerDB
	logger       *common.Logger
}

// NewManager builds the storage manager for the configured backend.
//
// "local" keeps everything in BadgerDB. "sheet" delegates assets,
// transactions and price history to the spreadsheet script; settings stay
// local because the script has no settings sheet.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	db, err := NewBadgerDB(logger, config.Storage.Path)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		db:       db,
		logger:   logger,
		settings: &localSettingsStore{db: db},
	}

	switch config.Storage.Backend {
	case "", "local":
		m.assets = &localAssetStore{db: db, logger: logger}
		m.transactions = &localTransactionStore{db: db, logger: logger}
		m.history = &localHistoryStore{db: db, logger: logger}

	case "sheet":
		client, err := gsheet.NewClient(config.Clients.Sheet.ScriptURL,
			gsheet.WithLogger(logger),
			gsheet.WithTimeout(config.Clients.Sheet.GetTimeout()),
		)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("sheet backend: %w", err)
		}
		m.assets = client.AssetStore()
		m.transactions = client.TransactionStore()
		m.history = client.PriceHistoryStore()

	default:
		db.Close()
		return nil, fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}

	logger.Info().Str("backend", config.Storage.Backend).Str("path", config.Storage.Path).Msg("Storage initialized")
	return m, nil
}

// NewLocalManager wires every store to the given BadgerDB. Used by tests and
// tooling that already hold an open database.
func NewLocalManager(logger *common.Logger, db *BadgerDB) *Manager {
	return &Manager{
		assets:       &localAssetStore{db: db, logger: logger},
		transactions: &localTransactionStore{db: db, logger: logger},
		history:      &localHistoryStore{db: db, logger: logger},
		settings:     &localSettingsStore{db: db},
		db:           db,
		logger:       logger,
	}
}

func (m *Manager) Assets() interfaces.AssetStore              { return m.assets }
func (m *Manager) Transactions() interfaces.TransactionStore  { return m.transactions }
func (m *Manager) PriceHistory() interfaces.PriceHistoryStore { return m.history }
func (m *Manager) Settings() interfaces.SettingsStore         { return m.settings }

// Close releases the local database. Sheet-backed stores hold no resources.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
