package history

import (
	"fmt"
	"time"

	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type SessionRecordDO struct {
	gorm.Model
	Exercise string    `gorm:"index;type:VARCHAR(256)"`
	Name     string    `gorm:"type:VARCHAR(256)"`
	Date     time.Time `gorm:"index"`
	Rows     int
	Accuracy float64
}

func (do *SessionRecordDO) toRecord() *core.SessionRecord {
	return &core.SessionRecord{
		ID:       do.ID,
		Exercise: do.Exercise,
		Name:     do.Name,
		Date:     do.Date,
		Rows:     do.Rows,
		Accuracy: do.Accuracy,
	}
}

// NewGormRepository 使用数据库保存记录，数据库连接由调用者关闭
func NewGormRepository(db *gorm.DB) (Repository, error) {
	if err := db.AutoMigrate(&SessionRecordDO{}); err != nil {
		return nil, errors.Wrap(err, "创建表格时出现异常")
	}
	return &gormRepository{db: db}, nil
}

type gormRepository struct {
	db *gorm.DB
}

var _ Repository = &gormRepository{}

func (g *gormRepository) Add(record *core.SessionRecord) error {
	do := &SessionRecordDO{
		Exercise: record.Exercise,
		Name:     record.Name,
		Date:     record.Date,
		Rows:     record.Rows,
		Accuracy: record.Accuracy,
	}
	if err := g.db.Create(do).Error; err != nil {
		return errors.Wrap(err, fmt.Sprintf("保存%s的会话记录出错", record.Exercise))
	}
	record.ID = do.ID
	return nil
}

func (g *gormRepository) ListByExercise(exercise string) ([]*core.SessionRecord, error) {
	dos := make([]*SessionRecordDO, 0)
	err := g.db.Where(&SessionRecordDO{Exercise: exercise}).Order("date, id").Find(&dos).Error
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("查询%s的会话记录出错", exercise))
	}
	result := make([]*core.SessionRecord, len(dos))
	for i, do := range dos {
		result[i] = do.toRecord()
	}
	return result, nil
}

func (g *gormRepository) Close() error {
	return nil
}
