package store

import (
	"context"
	"errors"
	"time"

	"github.com/pipeos/pipes/src/utils/logger"
	"github.com/pipeos/pipes/src/utils/model"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository backed by a SQL database
type Gorm[T any, PT entity[T]] struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewGorm[T any, PT entity[T]](db *gorm.DB, name string) *Gorm[T, PT] {
	return &Gorm[T, PT]{
		db:  db,
		log: logger.NewSublogger("store-" + name),
	}
}

func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Containers: NewGorm[model.PipeContainer](db, "containers"),
		Functions:  NewGormFunctions(db),
		Tags:       NewGorm[model.Tag](db, "tags"),
	}
}

func (self *Gorm[T, PT]) query(ctx context.Context, filter *Filter, paginate bool) (tx *gorm.DB, err error) {
	columns, err := filter.columns(PT(new(T)).Fields())
	if err != nil {
		return
	}

	tx = self.db.WithContext(ctx).Model(new(T))
	if filter != nil {
		for _, field := range sortedKeys(filter.Where) {
			tx = tx.Where(clause.Eq{Column: clause.Column{Name: columns[field]}, Value: filter.Where[field]})
		}

		for _, field := range sortedKeys(filter.Like) {
			tx = tx.Where(columns[field]+` LIKE ? ESCAPE '\'`, filter.Like[field])
		}
	}

	if !paginate {
		return
	}

	if filter != nil {
		for _, order := range filter.Order {
			tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: columns[order.Field]}, Desc: order.Descending})
		}
		if filter.Limit > 0 {
			tx = tx.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			tx = tx.Offset(filter.Offset)
		}
	}

	// Ids are sortable by creation time
	tx = tx.Order("id")
	return
}

func (self *Gorm[T, PT]) Create(ctx context.Context, entity *T) (out *T, err error) {
	err = PT(entity).Validate()
	if err != nil {
		return
	}

	PT(entity).SetId(xid.New().String())
	PT(entity).SetDefaults(time.Now().UTC())

	err = self.db.WithContext(ctx).Create(entity).Error
	if err != nil {
		self.log.WithError(err).Error("Failed to insert record")
		return
	}
	return entity, nil
}

func (self *Gorm[T, PT]) FindById(ctx context.Context, id string) (out *T, err error) {
	out = new(T)
	err = self.db.WithContext(ctx).Where("id = ?", id).Take(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return
}

func (self *Gorm[T, PT]) Find(ctx context.Context, filter *Filter) (out []*T, err error) {
	tx, err := self.query(ctx, filter, true)
	if err != nil {
		return
	}

	out = make([]*T, 0)
	err = tx.Find(&out).Error
	return
}

func (self *Gorm[T, PT]) UpdateById(ctx context.Context, id string, patch map[string]any) (err error) {
	return self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		current := new(T)
		err = tx.Where("id = ?", id).Take(current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return
		}

		updated, err := applyPatch[T, PT](current, patch)
		if err != nil {
			return
		}

		return tx.Save(updated).Error
	})
}

func (self *Gorm[T, PT]) UpdateAll(ctx context.Context, patch map[string]any, filter *Filter) (count int64, err error) {
	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		query, err := (&Gorm[T, PT]{db: tx, log: self.log}).query(ctx, filter, true)
		if err != nil {
			return
		}

		var records []*T
		err = query.Find(&records).Error
		if err != nil {
			return
		}

		for _, current := range records {
			var updated *T
			updated, err = applyPatch[T, PT](current, patch)
			if err != nil {
				return
			}

			err = tx.Save(updated).Error
			if err != nil {
				return
			}
			count++
		}
		return
	})
	if err != nil {
		count = 0
	}
	return
}

func (self *Gorm[T, PT]) DeleteById(ctx context.Context, id string) (err error) {
	res := self.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return
}

func (self *Gorm[T, PT]) Delete(ctx context.Context, filter *Filter) (count int64, err error) {
	tx, err := self.query(ctx, filter, false)
	if err != nil {
		return
	}

	if filter == nil || len(filter.Where)+len(filter.Like) == 0 {
		tx = tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	}

	res := tx.Delete(new(T))
	return res.RowsAffected, res.Error
}

func (self *Gorm[T, PT]) Count(ctx context.Context, filter *Filter) (count int64, err error) {
	tx, err := self.query(ctx, filter, false)
	if err != nil {
		return
	}

	err = tx.Count(&count).Error
	return
}

type GormFunctions struct {
	*Gorm[model.PipeFunction, *model.PipeFunction]
}

func NewGormFunctions(db *gorm.DB) *GormFunctions {
	return &GormFunctions{
		Gorm: NewGorm[model.PipeFunction](db, "functions"),
	}
}

func (self *GormFunctions) Children(containerId string) Repository[model.PipeFunction] {
	return newChildren(self, containerId)
}
