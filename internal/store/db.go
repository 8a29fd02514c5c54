package store

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultDatabase = "form_classifier"

// MysqlDSN 根据主机端口生成连接串。host为空时读取环境变量MYSQL_SERVICE_HOST与MYSQL_SERVICE_PORT
func MysqlDSN(host, user, password string) string {
	if host == "" {
		host = fmt.Sprintf("%s:%s", os.Getenv("MYSQL_SERVICE_HOST"), os.Getenv("MYSQL_SERVICE_PORT"))
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, defaultDatabase)
}

// OpenMysql 连接数据库，gorm的日志输出到logrus
func OpenMysql(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.New(log.WithField("component", "gorm"), logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "连接数据库错误")
	}
	return db, nil
}
