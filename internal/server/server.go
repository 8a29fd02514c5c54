package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/packagewjx/form-classifier/internal/history"
	"github.com/packagewjx/form-classifier/internal/metrics"
	"github.com/packagewjx/form-classifier/internal/predictor"
	"github.com/packagewjx/form-classifier/internal/trainer"
	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/packagewjx/form-classifier/pkg/server"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

const (
	DefaultPort            = 2000
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxUploadSize   = 32 << 20
)

type ServerConfig struct {
	Port            uint16        // 本服务器监听端口
	Exercises       []string      // 支持的运动
	DataDir         string        // 训练数据目录，标准会话为<DataDir>/<exercise>/golden.csv
	ShutdownTimeout time.Duration // 收到退出信号后等待请求结束的时间
	MaxUploadSize   int64         // 上传会话的最大字节数
}

func (s ServerConfig) String() string {
	marshal, _ := json.Marshal(s)
	return string(marshal)
}

func (config *ServerConfig) Complete() error {
	if config.Port < 1024 {
		return fmt.Errorf("端口号应该在1024到65535之间，现在为%d", config.Port)
	}

	if len(config.Exercises) == 0 {
		return fmt.Errorf("至少需要一个运动")
	}
	for _, exercise := range config.Exercises {
		if err := core.ValidateExercise(exercise); err != nil {
			return errors.Wrap(err, fmt.Sprintf("运动%q", exercise))
		}
	}

	if config.ShutdownTimeout < 0 {
		return fmt.Errorf("退出等待时间不能为负数，现在为%v", config.ShutdownTimeout)
	} else if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}

	if config.MaxUploadSize <= 0 {
		config.MaxUploadSize = DefaultMaxUploadSize
	}

	return nil
}

// Dependencies 服务器使用的组件，均由调用者创建与关闭
type Dependencies struct {
	Trainer   *trainer.Trainer
	Predictor *predictor.Predictor
	History   history.Repository
	Fs        afero.Fs // 读取标准会话
	Metrics   *metrics.Manager
	Gatherer  prometheus.Gatherer
}

type Server interface {
	server.API
	Handler() http.Handler
	Start() error
}

func NewServer(config *ServerConfig, deps *Dependencies) (Server, error) {
	if err := config.Complete(); err != nil {
		return nil, err
	}
	if deps.Trainer == nil || deps.Predictor == nil || deps.History == nil {
		return nil, fmt.Errorf("缺少训练器、预测器或历史记录")
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Metrics == nil {
		reg := prometheus.NewRegistry()
		deps.Metrics = metrics.NewManager("form_classifier", "server", reg)
		deps.Gatherer = reg
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	exercises := make(map[string]struct{}, len(config.Exercises))
	for _, e := range config.Exercises {
		exercises[e] = struct{}{}
	}

	return &serverImpl{
		config:    config,
		deps:      deps,
		exercises: exercises,
		logger:    log.WithField("component", "server"),
	}, nil
}

type serverImpl struct {
	config    *ServerConfig
	deps      *Dependencies
	exercises map[string]struct{}
	logger    *log.Entry
}

var _ Server = &serverImpl{}

func (s *serverImpl) Start() error {
	s.logger.Infof("服务器启动。配置：%v", s.config)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}
	errCh := make(chan error, 1)
	go s.serve(srv, errCh)

	// 注册信号接收器
	termSigChan := make(chan os.Signal, 1)
	signal.Notify(termSigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(termSigChan)

	select {
	case err := <-errCh:
		return errors.Wrap(err, "HTTP服务器异常退出")
	case sig := <-termSigChan:
		s.logger.Infof("收到信号%v，正在关闭", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(ctx)
	if shutdownErr != nil {
		shutdownErr = errors.Wrap(shutdownErr, "关闭HTTP服务器失败")
	}

	// 等待HTTP服务器结束
	return multierr.Append(shutdownErr, <-errCh)
}

func (s *serverImpl) serve(srv *http.Server, errCh chan<- error) {
	s.logger.Infof("API服务器在%s监听", srv.Addr)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		errCh <- err
		return
	}

	s.logger.Info("API服务器结束")
	errCh <- nil
}
