// Package sqlite has a dao.Store that keeps its data in a SQLite database file
// on disk.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dekarrin/chomsky/server/dao"
	"modernc.org/sqlite"
)

type store struct {
	dbFilename string

	db *sql.DB

	grammars *GrammarsDB
}

// NewDatastore opens (creating if needed) the database in storageDir and makes
// sure its tables exist.
func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{
		dbFilename: "grammars.db",
	}

	fileName := filepath.Join(storageDir, st.dbFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.grammars = &GrammarsDB{db: st.db}
	if err := st.grammars.init(); err != nil {
		st.db.Close()
		return nil, err
	}

	return st, nil
}

func (s *store) Grammars() dao.GrammarRepository {
	return s.grammars
}

func (s *store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%s: %w", s.dbFilename, err)
	}
	return nil
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}
