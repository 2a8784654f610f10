package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dekarrin/chomsky/server/dao"
	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
)

// NewGrammarsDBConn opens a GrammarsDB on its own database file.
func NewGrammarsDBConn(file string) (*GrammarsDB, error) {
	repo := &GrammarsDB{}

	var err error
	repo.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return repo, repo.init()
}

type GrammarsDB struct {
	db *sql.DB
}

func (repo *GrammarsDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS grammars (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		normalized TEXT NOT NULL,
		created INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *GrammarsDB) Create(ctx context.Context, g dao.Grammar) (dao.Grammar, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Grammar{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO grammars (id, name, source, normalized, created) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}
	defer stmt.Close()

	now := time.Now()

	_, err = stmt.ExecContext(ctx, newUUID.String(), g.Name, encRuleSet(g.Source), encRuleSet(g.Normalized), now.Unix())
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *GrammarsDB) GetAll(ctx context.Context) ([]dao.Grammar, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, name, source, normalized, created FROM grammars ORDER BY created, id;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Grammar

	for rows.Next() {
		var g dao.Grammar
		var id string
		var source string
		var normalized string
		var created int64
		err = rows.Scan(
			&id,
			&g.Name,
			&source,
			&normalized,
			&created,
		)
		if err != nil {
			return nil, wrapDBError(err)
		}

		g.ID, err = uuid.Parse(id)
		if err != nil {
			return all, fmt.Errorf("stored UUID %q is invalid", id)
		}
		if err := decRuleSet(source, &g.Source); err != nil {
			return all, fmt.Errorf("grammar %s: source: %w", id, err)
		}
		if err := decRuleSet(normalized, &g.Normalized); err != nil {
			return all, fmt.Errorf("grammar %s: normalized: %w", id, err)
		}
		g.Created = time.Unix(created, 0)

		all = append(all, g)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *GrammarsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	g := dao.Grammar{ID: id}
	var source string
	var normalized string
	var created int64

	row := repo.db.QueryRowContext(ctx, `SELECT name, source, normalized, created FROM grammars WHERE id = ?;`, id.String())
	err := row.Scan(
		&g.Name,
		&source,
		&normalized,
		&created,
	)
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}

	if err := decRuleSet(source, &g.Source); err != nil {
		return dao.Grammar{}, fmt.Errorf("source: %w", err)
	}
	if err := decRuleSet(normalized, &g.Normalized); err != nil {
		return dao.Grammar{}, fmt.Errorf("normalized: %w", err)
	}
	g.Created = time.Unix(created, 0)

	return g, nil
}

func (repo *GrammarsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM grammars WHERE id = ?`, id.String())
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

func (repo *GrammarsDB) Close() error {
	return repo.db.Close()
}

func encRuleSet(rs dao.RuleSet) string {
	return base64.StdEncoding.EncodeToString(rezi.EncBinary(rs))
}

func decRuleSet(s string, rs *dao.RuleSet) error {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %v", dao.ErrDecodingFailure, err)
	}
	if _, err := rezi.DecBinary(data, rs); err != nil {
		return fmt.Errorf("%w: %v", dao.ErrDecodingFailure, err)
	}
	return nil
}
