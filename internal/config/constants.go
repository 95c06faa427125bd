package config

const (
	// DefaultDatabasePath is the default location of the local user database.
	DefaultDatabasePath = "./authgate.db"

	// DefaultCredentialsPath is the default location of the identity
	// provider credentials file.
	DefaultCredentialsPath = "./identity-credentials.json"

	// DefaultProfileKeyPrefix namespaces profile documents in the
	// document store.
	DefaultProfileKeyPrefix = "profiles"

	// DefaultBcryptCost matches bcrypt.DefaultCost.
	DefaultBcryptCost = 10
)
