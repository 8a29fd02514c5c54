package store

import (
	"fmt"

	"github.com/packagewjx/form-classifier/internal/classify"
	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ModelDO struct {
	gorm.Model
	Exercise  string `gorm:"uniqueIndex;type:VARCHAR(256)"`
	Algorithm string `gorm:"type:VARCHAR(64)"`
	Payload   []byte `gorm:"type:LONGBLOB"`
}

// NewMysqlStore 将模型保存在数据库中，每个运动一行
func NewMysqlStore(db *gorm.DB) (ClassifierStore, error) {
	if err := db.AutoMigrate(&ModelDO{}); err != nil {
		return nil, errors.Wrap(err, "创建表格时出现异常")
	}
	return &mysqlStore{
		db:     db,
		locks:  newKeyedLock(),
		logger: log.WithField("component", "mysqlstore"),
	}, nil
}

type mysqlStore struct {
	db     *gorm.DB
	locks  *keyedLock
	logger *log.Entry
}

var _ ClassifierStore = &mysqlStore{}

func (m *mysqlStore) Location(exercise string) string {
	return fmt.Sprintf("mysql:%s/%s", m.db.Migrator().CurrentDatabase(), exercise)
}

// Save 在事务中覆盖旧模型
func (m *mysqlStore) Save(model *classify.Model) error {
	if err := core.ValidateExercise(model.Exercise); err != nil {
		return errors.Wrap(err, model.Exercise)
	}
	data, err := classify.EncodeModel(model)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("序列化模型%s出错", model.Exercise))
	}

	lock := m.locks.get(model.Exercise)
	lock.Lock()
	defer lock.Unlock()

	err = m.db.Transaction(func(tx *gorm.DB) error {
		do := &ModelDO{}
		err := tx.Where(&ModelDO{Exercise: model.Exercise}).First(do).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		do.Exercise = model.Exercise
		do.Algorithm = string(model.Algorithm)
		do.Payload = data
		return tx.Save(do).Error
	})
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("保存模型%s出错", model.Exercise))
	}

	m.logger.Infof("模型%s已保存到数据库，共%d字节", model.Exercise, len(data))
	return nil
}

func (m *mysqlStore) Load(exercise string) (*classify.Model, error) {
	if err := core.ValidateExercise(exercise); err != nil {
		return nil, errors.Wrap(err, exercise)
	}

	lock := m.locks.get(exercise)
	lock.RLock()
	defer lock.RUnlock()

	do := &ModelDO{}
	err := m.db.Where(&ModelDO{Exercise: exercise}).First(do).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.Wrap(core.ErrModelNotFound, exercise)
	} else if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("查询模型%s出错", exercise))
	}

	return classify.DecodeModel(do.Payload)
}

func (m *mysqlStore) Exists(exercise string) (bool, error) {
	if err := core.ValidateExercise(exercise); err != nil {
		return false, errors.Wrap(err, exercise)
	}
	var count int64
	err := m.db.Model(&ModelDO{}).Where(&ModelDO{Exercise: exercise}).Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, fmt.Sprintf("查询模型%s出错", exercise))
	}
	return count > 0, nil
}

// Close 不关闭数据库连接，连接由创建者负责关闭
func (m *mysqlStore) Close() error {
	return nil
}
