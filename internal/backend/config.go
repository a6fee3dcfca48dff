package backend

import (
	"fmt"

	"warikan/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Source: SourceType(appConfig.DataBackend),
		Store:  StoreType(appConfig.StoreBackend),

		GASURL:       appConfig.GASURL,
		FetchTimeout: appConfig.FetchTimeout,

		FixtureFile: appConfig.FixtureFile,

		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleSheetName:     appConfig.GoogleSheetName,

		SQLiteDBPath: appConfig.SQLiteDBPath,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Source.IsValid() {
		return fmt.Errorf("invalid source type: %s", c.Source)
	}
	if !c.Store.IsValid() {
		return fmt.Errorf("invalid store type: %s", c.Store)
	}

	switch c.Source {
	case SheetsSource:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets source")
		}
	case GASSource:
		// GAS URL may be saved from the dashboard later
	case MemorySource:
		// a missing fixture file is an empty ledger
	}

	if c.Store == SQLiteStore && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite store")
	}
	return nil
}

// GetSourceTypeStrings returns all valid source type strings
func GetSourceTypeStrings() []string {
	types := []SourceType{GASSource, SheetsSource, MemorySource}
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
