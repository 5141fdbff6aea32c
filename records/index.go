package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/reusee/sublingual/storages"
)

var ErrNotFound = errors.New("record not found")

const indexSchema = `
create table if not exists records (
	request_id text primary key,
	time integer not null,
	function text not null,
	file text not null,
	line integer not null,
	content text not null
);
create index if not exists records_time on records (time);
`

// Index is a sqlite table of records keyed by request id
type Index struct {
	db *storages.DB
}

func OpenIndex(ctx context.Context, path string) (*Index, error) {
	db, err := storages.Open(ctx, path, indexSchema)
	if err != nil {
		return nil, err
	}
	return &Index{
		db: db,
	}, nil
}

func (i *Index) Close() error {
	return i.db.Close()
}

func (i *Index) Add(ctx context.Context, record Record) error {
	return i.db.Update(ctx, func(tx storages.Tx) error {
		return add(ctx, tx, record)
	})
}

func add(ctx context.Context, tx storages.Tx, record Record) error {
	content, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		insert or replace into records (request_id, time, function, file, line, content)
		values (?, ?, ?, ?, ?, ?)`,
		record.RequestID.String(),
		record.Time.UnixNano(),
		record.Function,
		record.File,
		record.Line,
		string(content),
	)
	return err
}

// Import adds every record of a log file in one transaction
func (i *Index) Import(ctx context.Context, path string) (n int, err error) {
	err = i.db.Update(ctx, func(tx storages.Tx) error {
		for record, err := range Read(path) {
			if err != nil {
				return err
			}
			if err := add(ctx, tx, record); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", path, err)
	}
	return n, nil
}

func (i *Index) Get(ctx context.Context, id uuid.UUID) (ret Record, err error) {
	err = i.db.View(ctx, func(tx storages.Tx) error {
		var content string
		if err := tx.QueryRow(ctx,
			`select content from records where request_id = ?`,
			id.String(),
		).Scan(&content); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%s: %w", id, ErrNotFound)
			}
			return err
		}
		return json.Unmarshal([]byte(content), &ret)
	})
	return
}

// Recent returns at most n records, newest first
func (i *Index) Recent(ctx context.Context, n int) (ret []Record, err error) {
	err = i.db.View(ctx, func(tx storages.Tx) error {
		rows, err := tx.Query(ctx,
			`select content from records order by time desc limit ?`,
			n,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var content string
			if err := rows.Scan(&content); err != nil {
				return err
			}
			var record Record
			if err := json.Unmarshal([]byte(content), &record); err != nil {
				return err
			}
			ret = append(ret, record)
		}
		return rows.Err()
	})
	return
}
