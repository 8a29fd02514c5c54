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
	"time"

	"github.com/packagewjx/form-classifier/internal/config"
	"github.com/packagewjx/form-classifier/internal/metrics"
	"github.com/packagewjx/form-classifier/internal/predictor"
	"github.com/packagewjx/form-classifier/internal/server"
	"github.com/packagewjx/form-classifier/internal/trainer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	FlagPort            = "port"
	FlagShutdownTimeout = "shutdown-timeout"
	FlagMaxUploadSize   = "max-upload-size"
)

var (
	shutdownTimeout time.Duration
	maxUploadSize   int64
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "运动动作评分服务器",
	Long: "提供HTTP接口：上传会话CSV并评分，查看某个运动的历史记录、进步情况与标准动作对比，以及重新训练模型。\n" +
		"评分记录仅保存在本进程中（store为mysql时保存在数据库中）。\n",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		c, err := openComponents(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := c.Close(); err == nil {
				err = closeErr
			}
		}()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		srv, err := server.NewServer(&server.ServerConfig{
			Port:            cfg.Server.Port,
			Exercises:       cfg.ExerciseNames(),
			DataDir:         cfg.DataDir,
			ShutdownTimeout: shutdownTimeout,
			MaxUploadSize:   maxUploadSize,
		}, &server.Dependencies{
			Trainer:   trainer.NewTrainer(c.source, c.store, cfg.WindowSize),
			Predictor: predictor.NewPredictor(c.store),
			History:   c.history,
			Fs:        c.fs,
			Metrics:   metrics.NewManager("form_classifier", "server", reg),
			Gatherer:  reg,
		})
		if err != nil {
			return err
		}

		return srv.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().Uint16P(FlagPort, "p", config.DefaultPort, "服务端口号")
	_ = viper.BindPFlag(config.KeyServerPort, serverCmd.Flags().Lookup(FlagPort))
	serverCmd.Flags().DurationVarP(&shutdownTimeout, FlagShutdownTimeout, "t", server.DefaultShutdownTimeout,
		"收到退出信号后等待请求结束的时间")
	serverCmd.Flags().Int64Var(&maxUploadSize, FlagMaxUploadSize, server.DefaultMaxUploadSize,
		"上传会话的最大字节数")
}
