// Package sqlite provides a sqlite-backed implementation of dao.Store for
// cmd/lexserve.
package sqlite

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/dekarrin/rexlex/internal/server/dao"
	"github.com/dekarrin/rexlex/internal/server/serr"
)

type store struct {
	dbFilename string

	db *sql.DB

	rulesets *RuleSetsDB
}

// NewDatastore opens (creating if necessary) a sqlite database rooted at
// storageDir and initializes the schema for every repository it serves.
func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{
		dbFilename: "rulesets.db",
	}

	fileName := filepath.Join(storageDir, st.dbFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.rulesets = &RuleSetsDB{db: st.db}
	if err := st.rulesets.init(); err != nil {
		return nil, err
	}

	return st, nil
}

func (s *store) RuleSets() dao.RuleSetRepository {
	return s.rulesets
}

func (s *store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%s: %w", s.dbFilename, err)
	}
	return nil
}

// entriesEnvelope exists only so a bare []dao.RuleEntry (which has no
// exported-field struct of its own to hang REZI's reflection off of) can be
// REZI-encoded the same way progcache wraps a cached program: one exported
// field holding the slice.
type entriesEnvelope struct {
	Entries []dao.RuleEntry
}

// convertToDB_RuleEntries converts a []dao.RuleEntry to storage DB format,
// the same REZI-encode-then-base64 approach tunaq used for *game.State.
func convertToDB_RuleEntries(entries []dao.RuleEntry) string {
	env := entriesEnvelope{Entries: entries}
	data := rezi.EncBinary(&env)
	return convertToDB_ByteSlice(data)
}

// convertFromDB_RuleEntries converts a storage DB format value to a
// []dao.RuleEntry and stores it at the address pointed to by target. If
// there is a problem with the decoding, the returned error will be of type
// serr.Error, and will wrap dao.ErrDecodingFailure.
func convertFromDB_RuleEntries(s string, target *[]dao.RuleEntry) error {
	var data []byte
	if err := convertFromDB_ByteSlice(s, &data); err != nil {
		return serr.New("decode stored to bytes", err)
	}

	var env entriesEnvelope
	n, err := rezi.DecBinary(data, &env)
	if err != nil {
		return serr.New("REZI decode", err, dao.ErrDecodingFailure)
	}
	if n != len(data) {
		return serr.New(fmt.Sprintf("REZI decoded byte count mismatch; only consumed %d/%d bytes", n, len(data)), dao.ErrDecodingFailure)
	}

	*target = env.Entries
	return nil
}

// convertToDB_UUID converts a uuid.UUID to storage DB format on disk.
func convertToDB_UUID(u uuid.UUID) string {
	return u.String()
}

// convertToDB_Time converts a time.Time to storage DB format on disk.
func convertToDB_Time(t time.Time) int64 {
	return t.Unix()
}

// convertToDB_ByteSlice converts bytes to storage DB format on disk.
func convertToDB_ByteSlice(b []byte) string {
	if len(b) < 1 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

// convertFromDB_UUID converts a storage DB format value to a uuid.UUID and
// stores it at the address pointed to by target.
func convertFromDB_UUID(s string, target *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return serr.New("", err, dao.ErrDecodingFailure)
	}
	*target = u
	return nil
}

// convertFromDB_Time converts a storage DB format value to a time.Time and
// stores it at the address pointed to by target.
func convertFromDB_Time(i int64, target *time.Time) error {
	*target = time.Unix(i, 0)
	return nil
}

// convertFromDB_ByteSlice converts a storage DB format string to an actual
// byte slice and stores it at the address pointed to by target.
func convertFromDB_ByteSlice(s string, target *[]byte) error {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return serr.New("", err, dao.ErrDecodingFailure)
	}
	*target = decoded
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
