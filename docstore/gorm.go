package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// DocumentRecord is the row layout of the documents table.
type DocumentRecord struct {
	Collection string    `gorm:"primaryKey;size:100"`
	DocId      string    `gorm:"primaryKey;size:128"`
	Data       string    `gorm:"type:json;not null"`
	Version    int64     `gorm:"not null;default:1"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (DocumentRecord) TableName() string {
	return "documents"
}

type gormEngine struct {
	db *gorm.DB
}

// Migrate creates or updates the documents table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&DocumentRecord{})
}

// NewGormStore stores documents as JSON rows; optimistic concurrency uses the
// version column. Run Migrate first.
func NewGormStore(db *gorm.DB, opts ...Option) (Store, error) {
	if db == nil {
		return nil, errors.New("docstore: database is not connected")
	}
	return newStore("gorm", &gormEngine{db: db}, opts...), nil
}

func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (e *gormEngine) toDocument(rec DocumentRecord) (*Document, error) {
	var data Data
	if err := json.Unmarshal([]byte(rec.Data), &data); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", rec.Collection, rec.DocId, err)
	}
	if data == nil {
		data = Data{}
	}
	return &Document{
		Collection: rec.Collection,
		ID:         rec.DocId,
		Data:       data,
		Version:    rec.Version,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}

func (e *gormEngine) get(ctx context.Context, key docKey) (*Document, error) {
	var recs []DocumentRecord
	err := e.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", key.collection, key.id).
		Limit(1).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return e.toDocument(recs[0])
}

func (e *gormEngine) getAll(ctx context.Context, collection string, ids []string) ([]*Document, error) {
	var recs []DocumentRecord
	err := e.db.WithContext(ctx).
		Where("collection = ? AND doc_id IN ?", collection, ids).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return e.toDocuments(recs)
}

func (e *gormEngine) list(ctx context.Context, collection string) ([]*Document, error) {
	var recs []DocumentRecord
	err := e.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at, doc_id").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return e.toDocuments(recs)
}

func (e *gormEngine) toDocuments(recs []DocumentRecord) ([]*Document, error) {
	out := make([]*Document, 0, len(recs))
	for _, rec := range recs {
		doc, err := e.toDocument(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func conflict(key docKey) error {
	return fmt.Errorf("%s/%s: %w", key.collection, key.id, ErrConflict)
}

func (e *gormEngine) commit(ctx context.Context, reads map[docKey]int64, writes []pendingWrite) error {
	written := make(map[docKey]bool, len(writes))
	for _, w := range writes {
		written[w.key] = true
	}
	now := time.Now()

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, expected := range reads {
			if written[key] {
				continue
			}
			var current int64
			err := tx.Model(&DocumentRecord{}).
				Select("version").
				Where("collection = ? AND doc_id = ?", key.collection, key.id).
				Scan(&current).Error
			if err != nil {
				return err
			}
			if current != expected {
				return conflict(key)
			}
		}

		for _, w := range writes {
			where := tx.Where("collection = ? AND doc_id = ?", w.key.collection, w.key.id)
			if w.deleted {
				if w.expected > 0 {
					where = where.Where("version = ?", w.expected)
				}
				res := where.Delete(&DocumentRecord{})
				if res.Error != nil {
					return res.Error
				}
				if (w.expected > 0 && res.RowsAffected == 0) || (w.expected == 0 && res.RowsAffected > 0) {
					return conflict(w.key)
				}
				continue
			}

			payload, err := json.Marshal(w.data)
			if err != nil {
				return err
			}
			if w.expected != 0 {
				q := tx.Model(&DocumentRecord{}).Where("collection = ? AND doc_id = ?", w.key.collection, w.key.id)
				if w.expected > 0 {
					q = q.Where("version = ?", w.expected)
				}
				res := q.Updates(map[string]interface{}{
					"data":       string(payload),
					"version":    gorm.Expr("version + 1"),
					"updated_at": now,
				})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected > 0 {
					continue
				}
				if w.expected > 0 {
					return conflict(w.key)
				}
			}
			rec := DocumentRecord{
				Collection: w.key.collection,
				DocId:      w.key.id,
				Data:       string(payload),
				Version:    1,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.Create(&rec).Error; err != nil {
				if isDuplicateKeyErr(err) {
					return conflict(w.key)
				}
				return err
			}
		}
		return nil
	})
}

// the connection pool belongs to config
func (e *gormEngine) close() error {
	return nil
}
