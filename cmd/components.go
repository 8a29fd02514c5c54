/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"github.com/packagewjx/form-classifier/internal/config"
	"github.com/packagewjx/form-classifier/internal/datasource"
	"github.com/packagewjx/form-classifier/internal/history"
	"github.com/packagewjx/form-classifier/internal/store"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// components 命令共用的组件。使用mysql存储时模型与历史记录共用同一个数据库连接
type components struct {
	fs      afero.Fs
	source  datasource.SessionSource
	store   store.ClassifierStore
	history history.Repository
	db      *gorm.DB
}

func openComponents(c *config.Config) (*components, error) {
	backend, err := store.ParseBackend(c.Store)
	if err != nil {
		return nil, err
	}

	result := &components{fs: afero.NewOsFs()}
	result.source = datasource.NewDirSource(result.fs, c.DataDir)

	switch backend {
	case store.BackendMysql:
		result.db, err = store.OpenMysql(c.MysqlDSN())
		if err != nil {
			return nil, err
		}
		if result.store, err = store.NewMysqlStore(result.db); err != nil {
			return nil, multierr.Append(err, result.closeDB())
		}
		if result.history, err = history.NewGormRepository(result.db); err != nil {
			return nil, multierr.Append(err, result.closeDB())
		}
	default:
		if result.store, err = store.NewFileStore(result.fs, c.ModelDir); err != nil {
			return nil, err
		}
		result.history = history.NewMemoryRepository()
	}
	return result, nil
}

func (c *components) closeDB() error {
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *components) Close() error {
	return multierr.Combine(c.store.Close(), c.history.Close(), c.closeDB())
}
