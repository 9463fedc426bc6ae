package backend

import (
	"errors"
	"fmt"

	"gastos/internal/config"
	"gastos/internal/export"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	cfg := Config{
		Type:           BackendType(appConfig.DataBackend),
		SQLiteDBPath:   appConfig.SQLiteDBPath,
		MemorySeedFile: appConfig.MemorySeedFile,

		ExportTarget: ExportTarget(appConfig.ExportTarget),
		ExportDir:    appConfig.ExportDir,
		ExportFormat: appConfig.ExportFormat,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}
	if appConfig.ExportTarget == config.ExportNone {
		cfg.ExportTarget = ""
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return errors.New("SQLite database path is required for sqlite backend")
	}

	switch c.ExportTarget {
	case ExportToFile:
		if c.ExportDir == "" {
			return errors.New("export directory is required for file export")
		}
		if _, err := export.ParseFormat(c.ExportFormat); err != nil {
			return err
		}
	case ExportToSheets:
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets export")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return errors.New("either GoogleServiceAccountJSON or GoogleServiceAccountFile must be provided for sheets export")
		}
	case "":
		// Exports disabled.
	default:
		return fmt.Errorf("invalid export target: %s", c.ExportTarget)
	}
	return nil
}
