package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/rexlex/internal/server/dao"
)

type RuleSetsDB struct {
	db *sql.DB
}

func (repo *RuleSetsDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS rulesets (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		start_state TEXT NOT NULL,
		no_case INTEGER NOT NULL,
		rules TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *RuleSetsDB) Create(ctx context.Context, rs dao.RuleSet) (dao.RuleSet, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.RuleSet{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO rulesets (id, name, start_state, no_case, rules, created, modified) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.RuleSet{}, wrapDBError(err)
	}

	now := time.Now()
	noCase := 0
	if rs.NoCase {
		noCase = 1
	}

	_, err = stmt.ExecContext(ctx,
		newUUID.String(),
		rs.Name,
		rs.StartState,
		noCase,
		convertToDB_RuleEntries(rs.Rules),
		now.Unix(),
		now.Unix(),
	)
	if err != nil {
		return dao.RuleSet{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *RuleSetsDB) scanRow(row interface{ Scan(...interface{}) error }) (dao.RuleSet, error) {
	var rs dao.RuleSet
	var id string
	var noCase int64
	var rules string
	var created int64
	var modified int64

	err := row.Scan(&id, &rs.Name, &rs.StartState, &noCase, &rules, &created, &modified)
	if err != nil {
		return rs, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &rs.ID); err != nil {
		return rs, err
	}
	rs.NoCase = noCase != 0
	if err := convertFromDB_RuleEntries(rules, &rs.Rules); err != nil {
		return rs, err
	}
	if err := convertFromDB_Time(created, &rs.Created); err != nil {
		return rs, err
	}
	if err := convertFromDB_Time(modified, &rs.Modified); err != nil {
		return rs, err
	}

	return rs, nil
}

func (repo *RuleSetsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.RuleSet, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, name, start_state, no_case, rules, created, modified FROM rulesets WHERE id = ?;`, id.String())
	return repo.scanRow(row)
}

func (repo *RuleSetsDB) GetByName(ctx context.Context, name string) (dao.RuleSet, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, name, start_state, no_case, rules, created, modified FROM rulesets WHERE name = ?;`, name)
	return repo.scanRow(row)
}

func (repo *RuleSetsDB) GetAll(ctx context.Context) ([]dao.RuleSet, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, name, start_state, no_case, rules, created, modified FROM rulesets ORDER BY created;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.RuleSet
	for rows.Next() {
		rs, err := repo.scanRow(rows)
		if err != nil {
			return all, err
		}
		all = append(all, rs)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *RuleSetsDB) Update(ctx context.Context, id uuid.UUID, rs dao.RuleSet) (dao.RuleSet, error) {
	noCase := 0
	if rs.NoCase {
		noCase = 1
	}

	res, err := repo.db.ExecContext(ctx, `UPDATE rulesets SET name=?, start_state=?, no_case=?, rules=?, modified=? WHERE id=?;`,
		rs.Name,
		rs.StartState,
		noCase,
		convertToDB_RuleEntries(rs.Rules),
		time.Now().Unix(),
		id.String(),
	)
	if err != nil {
		return dao.RuleSet{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.RuleSet{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.RuleSet{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, id)
}

func (repo *RuleSetsDB) Delete(ctx context.Context, id uuid.UUID) (dao.RuleSet, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM rulesets WHERE id = ?`, id.String())
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

func (repo *RuleSetsDB) Close() error {
	return repo.db.Close()
}
