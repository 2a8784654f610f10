/*
Cnfserver starts a Chomsky Normal Form server and begins listening for new
connections.

Usage:

	cnfserver [flags]
	cnfserver [flags] -l [[ADDRESS]:PORT]

Once started, the server will listen for HTTP requests and respond to them using
REST protocol. By default, it will listen on localhost:8080. This can be changed
with the --listen/-l flag (or config via environment var). The flag argument
must be either a full address with port, such as "192.168.0.2:6001", or just the
port preceeded by a colon, such as ":6001".

Settings are taken from, in order of priority: the flags, the environment
variables, the config file, and the built-in defaults.

The flags are:

	-v, --version
		Give the current version of the server and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment variable
		CHOMSKY_LISTEN_ADDRESS, and if that is not given, will default to
		localhost:8080.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the following:
		inmem, sqlite. inmem has no further params. sqlite needs the path to the
		data director such as sqlite:path/to/db_dir. If not given, will default
		to the value of environment variable CHOMSKY_DATABASE. If no DB driver
		is specified or an empty is given, an in-memory database is
		automatically selected.

	-c, --config FILE
		Read settings from the given TOML file. It may set the keys listen, db,
		max_rules, iteration_limit, and max_body_bytes. If not given, will
		default to the value of environment variable CHOMSKY_CONFIG.

	--max-rules N
		Refuse grammars with more than N productions. A negative number
		removes the limit. Defaults to 1000.

	--iteration-limit N
		Give up on a conversion stage after N passes. A negative number removes
		the limit. Defaults to 10000.
*/
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dekarrin/chomsky/internal/version"
	"github.com/dekarrin/chomsky/server"
	"github.com/spf13/pflag"
)

const (
	EnvListen = "CHOMSKY_LISTEN_ADDRESS"
	EnvDB     = "CHOMSKY_DATABASE"
	EnvConfig = "CHOMSKY_CONFIG"
)

var (
	flagVersion   = pflag.BoolP("version", "v", false, "Give the current version of the server and then exit.")
	flagListen    = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagDB        = pflag.String("db", "", "Use the given DB connection string.")
	flagConfig    = pflag.StringP("config", "c", "", "Read settings from the given TOML file.")
	flagMaxRules  = pflag.Int("max-rules", 0, "Refuse grammars with more than this many productions.")
	flagIterLimit = pflag.Int("iteration-limit", 0, "Give up on a conversion stage after this many passes.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (Chomsky v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	args := pflag.Args()

	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	// assemble a server config, starting from the file if there is one
	var cfg server.Config

	cfgPath := os.Getenv(EnvConfig)
	if pflag.Lookup("config").Changed {
		cfgPath = *flagConfig
	}
	if cfgPath != "" {
		var err error
		cfg, err = server.LoadConfigFile(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not read config: %s\n", err)
			os.Exit(1)
		}
	}

	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr != "" {
		cfg.ListenAddress = listenAddr
	}

	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr != "" {
		db, err := server.ParseDBConnString(dbConnStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Not a valid DB string: %s\nDo -h for help.\n", err)
			os.Exit(1)
		}
		cfg.DB = db
	}

	if pflag.Lookup("max-rules").Changed {
		cfg.MaxRules = *flagMaxRules
	}
	if pflag.Lookup("iteration-limit").Changed {
		cfg.IterationLimit = *flagIterLimit
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("FATAL could not start server: %s", err.Error())
	}
	log.Printf("DEBUG Server initialized with %s DB", srv.Config().DB.Type)

	sigs := make(chan os.Signal, 1)
	stopped := make(chan struct{})
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer close(stopped)
		sig := <-sigs
		log.Printf("INFO  Got %s; shutting down", sig)
		if err := srv.Close(); err != nil {
			log.Printf("ERROR shutdown: %v", err)
		}
	}()

	// okay, now actually launch it
	log.Printf("INFO  Starting Chomsky server %s...", version.ServerCurrent)
	if err := srv.ServeForever(); err != nil {
		log.Fatalf("FATAL %v", err)
	}
	<-stopped
	log.Printf("INFO  Server stopped")
}
