package identity

import (
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/risunCode/SurfManager/internal/errs"
)

// MutateStore introspects every table of an embedded sqlite store. Columns
// in the identity key set get all non-null values bulk-updated to the pass
// token; columns in the session key set get their non-null rows deleted.
func (m *Mutator) MutateStore(path, token string) (Result, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	tables, err := listTables(db)
	if err != nil {
		return Result{}, fmt.Errorf("%w: cannot introspect store %s: %v", errs.ErrCorruption, path, err)
	}

	var res Result
	for _, table := range tables {
		columns, err := tableColumns(db, table)
		if err != nil {
			continue
		}

		for _, col := range columns {
			if m.identityKeys[col] {
				q := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE %s IS NOT NULL`,
					quoteIdent(table), quoteIdent(col), quoteIdent(col))
				if r, err := db.Exec(q, token); err == nil {
					if n, err := r.RowsAffected(); err == nil {
						res.Updated += int(n)
					}
				}
			}
			if m.sessionKeys[col] {
				q := fmt.Sprintf(`DELETE FROM %s WHERE %s IS NOT NULL`,
					quoteIdent(table), quoteIdent(col))
				if r, err := db.Exec(q); err == nil {
					if n, err := r.RowsAffected(); err == nil {
						res.Deleted += int(n)
					}
				}
			}
		}
	}

	return res, nil
}

// WipeDatabases empties every user table of every sqlite store found under
// root. Returns the number of stores wiped and rows deleted; per-store
// failures are tolerated and counted.
func WipeDatabases(root string) (wiped, records, failed int) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		if !storeExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		n, wipeErr := wipeDatabase(path)
		if wipeErr != nil {
			failed++
			return nil
		}
		wiped++
		records += n
		return nil
	})
	return wiped, records, failed
}

func wipeDatabase(path string) (int, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tables, err := listTables(db)
	if err != nil {
		return 0, err
	}

	records := 0
	for _, table := range tables {
		r, err := db.Exec(fmt.Sprintf(`DELETE FROM %s`, quoteIdent(table)))
		if err != nil {
			continue
		}
		if n, err := r.RowsAffected(); err == nil {
			records += int(n)
		}
	}
	return records, nil
}

// listTables returns user tables, skipping sqlite's own bookkeeping tables.
func listTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if strings.HasPrefix(name, "sqlite_") {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func tableColumns(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

// quoteIdent quotes a sqlite identifier; table and column names come from
// introspection of untrusted files.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
