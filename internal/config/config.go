package config

import (
	"fmt"
	"strings"

	"github.com/packagewjx/form-classifier/internal/features"
	"github.com/packagewjx/form-classifier/internal/store"
	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "FORM_CLASSIFIER"

// 配置键，与命令行参数名一致
const (
	KeyDataDir       = "dataDir"
	KeyModelDir      = "modelDir"
	KeyStore         = "store"
	KeyMysqlHost     = "mysql.host"
	KeyMysqlUser     = "mysql.user"
	KeyMysqlPassword = "mysql.password"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyLogFile       = "log.file"
	KeyLogStdout     = "log.stdout"
	KeyServerPort    = "server.port"
	KeyExercises     = "exercises"
)

const (
	DefaultDataDir  = "data"
	DefaultModelDir = "models"
	DefaultPort     = 2000
)

// 系统默认支持的运动
var DefaultExercises = []string{
	"Lateral raises",
	"Sidearm extensions",
	"Bicep curls",
	"Hammer curls",
	"Single arm tricep extensions",
}

type ExerciseConfig struct {
	Name       string `mapstructure:"name"`
	WindowSize int    `mapstructure:"windowSize"`
}

type MysqlConfig struct {
	Host     string `mapstructure:"host"` // 为空时读取环境变量MYSQL_SERVICE_HOST与MYSQL_SERVICE_PORT
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text或json
	File   string `mapstructure:"file"`
	Stdout bool   `mapstructure:"stdout"`
}

type ServerConfig struct {
	Port uint16 `mapstructure:"port"`
}

type Config struct {
	DataDir   string           `mapstructure:"dataDir"`
	ModelDir  string           `mapstructure:"modelDir"`
	Store     string           `mapstructure:"store"`
	Mysql     MysqlConfig      `mapstructure:"mysql"`
	Log       LogConfig        `mapstructure:"log"`
	Server    ServerConfig     `mapstructure:"server"`
	Exercises []ExerciseConfig `mapstructure:"exercises"`
}

// SetDefaults 设置默认值，并允许以FORM_CLASSIFIER_为前缀的环境变量覆盖，例如FORM_CLASSIFIER_MYSQL_HOST
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDataDir, DefaultDataDir)
	v.SetDefault(KeyModelDir, DefaultModelDir)
	v.SetDefault(KeyStore, string(store.BackendFile))
	v.SetDefault(KeyMysqlHost, "")
	v.SetDefault(KeyMysqlUser, "root")
	v.SetDefault(KeyMysqlPassword, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogStdout, true)
	v.SetDefault(KeyServerPort, DefaultPort)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load 从viper中读取配置。没有配置运动时使用DefaultExercises，窗口大小为features.DefaultWindowSize
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "解析配置出错")
	}
	if len(c.Exercises) == 0 {
		c.Exercises = make([]ExerciseConfig, len(DefaultExercises))
		for i, name := range DefaultExercises {
			c.Exercises[i] = ExerciseConfig{Name: name, WindowSize: features.DefaultWindowSize}
		}
	}
	for i := range c.Exercises {
		if c.Exercises[i].WindowSize == 0 {
			c.Exercises[i].WindowSize = features.DefaultWindowSize
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if _, err := store.ParseBackend(c.Store); err != nil {
		return err
	}
	seen := make(map[string]struct{})
	for _, e := range c.Exercises {
		if err := core.ValidateExercise(e.Name); err != nil {
			return errors.Wrap(err, fmt.Sprintf("运动%q", e.Name))
		}
		if _, ok := seen[e.Name]; ok {
			return fmt.Errorf("运动%s重复配置", e.Name)
		}
		seen[e.Name] = struct{}{}
		if e.WindowSize < 1 {
			return fmt.Errorf("运动%s的窗口大小必须为正数，现在为%d", e.Name, e.WindowSize)
		}
	}
	return nil
}

// WindowSize 返回运动配置的窗口大小，未配置的运动使用features.DefaultWindowSize
func (c *Config) WindowSize(exercise string) int {
	for _, e := range c.Exercises {
		if e.Name == exercise {
			return e.WindowSize
		}
	}
	return features.DefaultWindowSize
}

func (c *Config) ExerciseNames() []string {
	names := make([]string, len(c.Exercises))
	for i, e := range c.Exercises {
		names[i] = e.Name
	}
	return names
}

// MysqlDSN 生成数据库连接串
func (c *Config) MysqlDSN() string {
	return store.MysqlDSN(c.Mysql.Host, c.Mysql.User, c.Mysql.Password)
}
