package server

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/chomsky/server/dao"
	"github.com/dekarrin/chomsky/server/dao/inmem"
	"github.com/dekarrin/chomsky/server/dao/sqlite"
)

// DBType is the type of a Database connection.
type DBType string

func (dbt DBType) String() string {
	return string(dbt)
}

const (
	DatabaseNone     DBType = "none"
	DatabaseSQLite   DBType = "sqlite"
	DatabaseInMemory DBType = "inmem"
)

const (
	DefaultListenAddress  = "localhost:8080"
	DefaultMaxRules       = 1000
	DefaultIterationLimit = 10000
	DefaultMaxBodyBytes   = 1 << 20
)

// ParseDBType parses a string found in a connection string into a DBType.
func ParseDBType(s string) (DBType, error) {
	sLower := strings.ToLower(s)

	switch sLower {
	case DatabaseSQLite.String():
		return DatabaseSQLite, nil
	case DatabaseInMemory.String():
		return DatabaseInMemory, nil
	default:
		return DatabaseNone, fmt.Errorf("DB type not one of 'sqlite' or 'inmem': %q", s)
	}
}

// Database contains configuration settings for connecting to a persistence
// layer.
type Database struct {
	// Type is the type of database the config refers to. It also determines
	// which of its other fields are valid.
	Type DBType

	// DataDir is the path on disk to a directory to use to store data in. This
	// is only applicable for certain DB types: SQLite.
	DataDir string
}

// Connect performs all logic needed to connect to the configured DB and
// initialize the store for use.
func (db Database) Connect() (dao.Store, error) {
	switch db.Type {
	case DatabaseInMemory:
		return inmem.NewDatastore(), nil
	case DatabaseSQLite:
		err := os.MkdirAll(db.DataDir, 0770)
		if err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}

		store, err := sqlite.NewDatastore(db.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite: %w", err)
		}

		return store, nil
	case DatabaseNone:
		return nil, fmt.Errorf("cannot connect to 'none' DB")
	default:
		return nil, fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// Validate returns an error if the Database does not have the correct fields
// set. Its type will be checked to ensure that it is a valid type to use and
// any fields necessary for connecting to that type of DB are also checked.
func (db Database) Validate() error {
	switch db.Type {
	case DatabaseInMemory:
		// nothing else to check
		return nil
	case DatabaseSQLite:
		if db.DataDir == "" {
			return fmt.Errorf("DataDir not set to path")
		}
		return nil
	case DatabaseNone:
		return fmt.Errorf("'none' DB is not valid")
	default:
		return fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// ParseDBConnString parses a database connection string of the form
// "engine:params" (or just "engine" if no other params are required) into a
// valid Database config object. For example, "sqlite:/data" would give the DB
// type of DatabaseSQLite that stores persistence in files located in the given
// dir, and "inmem" would give the DB type of DatabaseInMemory.
func ParseDBConnString(s string) (Database, error) {
	var paramStr string
	dbParts := strings.SplitN(s, ":", 2)

	if len(dbParts) == 2 {
		paramStr = strings.TrimSpace(dbParts[1])
	}

	dbEng, err := ParseDBType(strings.TrimSpace(dbParts[0]))
	if err != nil {
		return Database{}, fmt.Errorf("unsupported DB engine: %w", err)
	}

	switch dbEng {
	case DatabaseInMemory:
		if paramStr != "" {
			return Database{}, fmt.Errorf("unsupported param(s) for in-memory DB engine: %s", paramStr)
		}

		return Database{Type: DatabaseInMemory}, nil
	case DatabaseSQLite:
		if paramStr == "" {
			return Database{}, fmt.Errorf("sqlite DB engine requires path to data directory after ':'")
		}

		return Database{Type: DatabaseSQLite, DataDir: paramStr}, nil
	default:
		return Database{}, fmt.Errorf("unknown DB engine: %q", dbEng.String())
	}
}

// Config is a configuration for a server. It contains all parameters that can
// be used to configure the operation of a Server.
type Config struct {
	// DB is the configuration to use for connecting to the database. If not
	// provided, it will be set to a configuration for using an in-memory
	// persistence layer.
	DB Database

	// ListenAddress is the host:port to listen on. Defaults to
	// DefaultListenAddress.
	ListenAddress string

	// MaxRules is the most productions a submitted grammar may have. If not
	// set it defaults to DefaultMaxRules. Set it to any negative number for no
	// limit.
	MaxRules int

	// IterationLimit bounds each normalization stage. If not set it defaults
	// to DefaultIterationLimit. Set it to any negative number for no limit.
	IterationLimit int

	// MaxBodyBytes is the largest request body that will be read. If not set
	// it defaults to DefaultMaxBodyBytes. Set it to any negative number for no
	// limit.
	MaxBodyBytes int64
}

// fileConfig is the layout of a server config file.
type fileConfig struct {
	Listen         string `toml:"listen"`
	DB             string `toml:"db"`
	MaxRules       int    `toml:"max_rules"`
	IterationLimit int    `toml:"iteration_limit"`
	MaxBodyBytes   int64  `toml:"max_body_bytes"`
}

// LoadConfigFile reads a Config from the TOML file at path. Keys that are not
// in the file are left unset.
func LoadConfigFile(path string) (Config, error) {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undec[0].String())
	}

	cfg := Config{
		ListenAddress:  fc.Listen,
		MaxRules:       fc.MaxRules,
		IterationLimit: fc.IterationLimit,
		MaxBodyBytes:   fc.MaxBodyBytes,
	}
	if fc.DB != "" {
		cfg.DB, err = ParseDBConnString(fc.DB)
		if err != nil {
			return Config{}, fmt.Errorf("%s: db: %w", path, err)
		}
	}

	return cfg, nil
}

// FillDefaults returns a new Config identitical to cfg but with unset values
// set to their defaults.
func (cfg Config) FillDefaults() Config {
	newCFG := cfg

	if newCFG.DB.Type == "" || newCFG.DB.Type == DatabaseNone {
		newCFG.DB = Database{Type: DatabaseInMemory}
	}
	if newCFG.ListenAddress == "" {
		newCFG.ListenAddress = DefaultListenAddress
	}
	if newCFG.MaxRules == 0 {
		newCFG.MaxRules = DefaultMaxRules
	}
	if newCFG.IterationLimit == 0 {
		newCFG.IterationLimit = DefaultIterationLimit
	}
	if newCFG.MaxBodyBytes == 0 {
		newCFG.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return newCFG
}

// Validate returns an error if the Config has invalid field values set. Empty
// and unset values are considered invalid; if defaults are intended to be used,
// call Validate on the return value of FillDefaults.
func (cfg Config) Validate() error {
	if err := cfg.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if cfg.ListenAddress == "" {
		return fmt.Errorf("listen address: not set")
	}
	if !strings.Contains(cfg.ListenAddress, ":") {
		return fmt.Errorf("listen address: must be of the form HOST:PORT but is %q", cfg.ListenAddress)
	}

	// negative limits mean unlimited, so any value is valid for those

	return nil
}

// limit converts a config limit, where negative means unlimited, to the form
// the service takes, where 0 means unlimited.
func limit(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
