package dynamostore

import "github.com/roach88/schemata/internal/ident"

// Config holds configuration for a Store.
type Config struct {
	// TableName is the DynamoDB table holding the records.
	// Default: "schemata_records"
	TableName string

	// Key is the record field used as the table's string partition key.
	// Default: "id"
	Key string

	// Profile selects a shared AWS config profile for NewFromConfig.
	// Default: "" (the SDK's default chain)
	Profile string

	// Generator assigns identifiers to records saved without one.
	// Default: ident.UUIDv7
	Generator ident.Generator
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TableName: "schemata_records",
		Key:       "id",
		Generator: ident.UUIDv7{},
	}
}

// validate fills zero values with defaults.
func (c *Config) validate() {
	if c.TableName == "" {
		c.TableName = "schemata_records"
	}
	if c.Key == "" {
		c.Key = "id"
	}
	if c.Generator == nil {
		c.Generator = ident.UUIDv7{}
	}
}
