package store

import (
	"context"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/buildstation/voidmap/pkg/constants"
	"github.com/buildstation/voidmap/pkg/elements"
	"github.com/buildstation/voidmap/pkg/errors"
	"github.com/buildstation/voidmap/pkg/logging"
)

// SQLite is the production Store backed by a sqlite database file, one
// table per element type.
type SQLite struct {
	db   *gorm.DB
	path string
}

// Open opens (and if needed creates) the sqlite database at path and
// migrates the per-type tables.
func Open(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.NewValidationError("path", path, "database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("mkdir", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.WrapStorage("open", path, err)
	}

	for _, typ := range elements.Types() {
		if err := db.Table(typ.Table()).AutoMigrate(&record{}); err != nil {
			return nil, errors.WrapStorage("migrate", typ.Table(), err)
		}
	}

	logging.Debug().Str("path", path).Msg("sqlite store opened")
	return &SQLite{db: db, path: path}, nil
}

// Load implements the Store interface.
func (s *SQLite) Load(ctx context.Context) (*elements.Set, error) {
	set := elements.NewSet()
	for _, typ := range elements.Types() {
		var rows []record
		err := s.db.WithContext(ctx).Table(typ.Table()).Find(&rows).Error
		if err != nil {
			return nil, errors.WrapStorage("load", typ.Table(), err)
		}
		for i := range rows {
			e, err := rows[i].element(typ)
			if err != nil {
				return nil, err
			}
			set.Set(e)
		}
	}
	return set, nil
}

// Save implements the Store interface. The previous population is
// replaced inside a single transaction; on error nothing is changed.
func (s *SQLite) Save(ctx context.Context, set *elements.Set) error {
	if set == nil {
		return errors.NewValidationError("set", nil, "set is nil")
	}

	byType := make(map[elements.Type][]record)
	for _, e := range set.List() {
		r, err := newRecord(&e)
		if err != nil {
			return err
		}
		byType[e.Type] = append(byType[e.Type], *r)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, typ := range elements.Types() {
			if err := tx.Table(typ.Table()).Where("1 = 1").Delete(&record{}).Error; err != nil {
				return err
			}
			rows := byType[typ]
			if len(rows) == 0 {
				continue
			}
			if err := tx.Table(typ.Table()).CreateInBatches(rows, constants.DefaultPageSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.WrapStorage("save", s.path, err)
	}
	return nil
}

// PurgeDeleted implements the Store interface.
func (s *SQLite) PurgeDeleted(ctx context.Context) (int, error) {
	var purged int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, typ := range elements.Types() {
			res := tx.Table(typ.Table()).
				Where("status = ?", string(elements.StatusDeleted)).
				Delete(&record{})
			if res.Error != nil {
				return res.Error
			}
			purged += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, errors.WrapStorage("purge", s.path, err)
	}
	return int(purged), nil
}

// Snapshot implements the Store interface using sqlite's VACUUM INTO,
// which produces a consistent copy without blocking readers.
func (s *SQLite) Snapshot(ctx context.Context, path string) error {
	if path == "" {
		return errors.NewValidationError("path", path, "snapshot path is required")
	}
	if _, err := os.Stat(path); err == nil {
		return errors.WrapIO("snapshot", path, os.ErrExist)
	}
	if err := s.db.WithContext(ctx).Exec("VACUUM INTO ?", path).Error; err != nil {
		return errors.WrapStorage("snapshot", path, err)
	}
	return nil
}

// Close implements the Store interface.
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.WrapStorage("close", s.path, err)
	}
	return sqlDB.Close()
}
