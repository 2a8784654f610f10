/*
Cnfc converts the context-free grammar in a CFG file to Chomsky Normal Form and
prints the result.

Usage:

	cnfc [flags] FILE

FILE is a CFG file of type GRAMMAR or MANIFEST. If it is a manifest, every file
it lists is loaded and merged into one grammar before it is normalized.

By default, every production of the normalized grammar is printed to stdout,
one per line. The flags are:

	--version
		Give the current version of Chomsky and then exit.

	-t, --table
		Print a summary of the conversion and a table of the normalized rules
		instead of the plain listing.

	-v, --verbose
		Log a line to stderr after each stage of the conversion.

	-o, --output FILE
		Also write the normalized grammar to FILE as a CFG file.

	-w, --width COLUMNS
		Lay out output for a console of the given width. Defaults to 80.

	-n, --iteration-limit N
		Give up on a conversion stage after N passes. Defaults to no limit.

	--db DRIVER[:PARAMS]
		Also store the original and normalized grammar in the given DB so a
		cnfserver using the same DB can serve it. DRIVER must be one of inmem
		or sqlite; sqlite needs the path to the data directory, such as
		sqlite:path/to/db_dir. If not given, will default to the value of
		environment variable CHOMSKY_DATABASE, and if that is not set the
		grammar is not stored.
*/
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dekarrin/chomsky"
	"github.com/dekarrin/chomsky/internal/version"
	"github.com/dekarrin/chomsky/server"
	"github.com/dekarrin/chomsky/server/cnfs"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates the program was called incorrectly.
	ExitUsageError

	// ExitLoadError indicates the grammar file could not be read.
	ExitLoadError

	// ExitNormalizeError indicates the grammar could not be converted.
	ExitNormalizeError

	// ExitOutputError indicates the result could not be written or stored.
	ExitOutputError
)

const (
	EnvDB = "CHOMSKY_DATABASE"
)

var (
	returnCode = ExitSuccess

	flagVersion   = pflag.Bool("version", false, "Give the current version of Chomsky and then exit.")
	flagTable     = pflag.BoolP("table", "t", false, "Print a summary and rule table instead of a plain listing.")
	flagVerbose   = pflag.BoolP("verbose", "v", false, "Log each conversion stage to stderr.")
	flagOutput    = pflag.StringP("output", "o", "", "Also write the normalized grammar to the given CFG file.")
	flagWidth     = pflag.IntP("width", "w", 80, "Width of the console to lay output out for.")
	flagIterLimit = pflag.IntP("iteration-limit", "n", 0, "Give up on a stage after this many passes; 0 is no limit.")
	flagDB        = pflag.String("db", "", "Also store the result in the given DB.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(panicErr)
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	args := pflag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Need exactly one grammar file\nDo -h for help.\n")
		returnCode = ExitUsageError
		return
	}

	var db server.Database
	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr != "" {
		var err error
		db, err = server.ParseDBConnString(dbConnStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Not a valid DB string: %s\nDo -h for help.\n", err)
			returnCode = ExitUsageError
			return
		}
	}

	n, err := chomsky.LoadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitLoadError
		return
	}

	n.IterationLimit = *flagIterLimit
	if *flagVerbose {
		n.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	if err := n.Normalize(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitNormalizeError
		return
	}
	res := n.Result()

	if *flagTable {
		fmt.Printf("%s\n\n%s\n", res.Summary(*flagWidth), res.Table(*flagWidth))
	} else {
		fmt.Print(res.Dump(*flagWidth))
	}

	if *flagOutput != "" {
		data, err := res.MarshalTOML()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: encode result: %s\n", err.Error())
			returnCode = ExitOutputError
			return
		}
		if err := os.WriteFile(*flagOutput, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitOutputError
			return
		}
	}

	if db.Type != "" {
		if err := store(db, res); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitOutputError
			return
		}
	}
}

func store(db server.Database, res chomsky.Result) error {
	st, err := db.Connect()
	if err != nil {
		return fmt.Errorf("connect to DB: %w", err)
	}
	defer st.Close()

	svc := cnfs.Service{DB: st}
	saved, err := svc.SaveResult(context.Background(), res)
	if err != nil {
		return fmt.Errorf("store grammar: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Stored as %s\n", saved.ID)
	return nil
}
