package model

// VersionInfo contains the application version and the state of the schema.
type VersionInfo struct {
	AppVersion       string  `json:"app_version"`
	DbVersion        int64   `json:"db_version"`
	MigrationNeeded  bool    `json:"migration_needed"`
	MigrationMessage *string `json:"migration_message,omitempty"`
}
