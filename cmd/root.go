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
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/packagewjx/form-classifier/internal/config"
	"github.com/packagewjx/form-classifier/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFileName = ".form-classifier"

// 全局参数
const (
	FlagConfig    = "config"
	FlagDataDir   = "data-dir"
	FlagModelDir  = "model-dir"
	FlagStore     = "store"
	FlagMysqlHost = "mysql-host"
	FlagLogLevel  = "log-level"
	FlagLogFile   = "log-file"
)

var cfgFile string

// cfg 在PersistentPreRunE中读取
var cfg *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "form-classifier",
	Short: "根据可穿戴传感器数据判断运动动作是否标准",
	Long: "读取每个运动的标准动作与错误动作会话，训练决策树分类器并保存。\n" +
		"之后可对新会话逐行判断动作是否标准，得到标准动作所占比例。\n",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = c

		logging.Setup(logging.SetupParams{
			Level:       cfg.Log.Level,
			FormatJSON:  cfg.Log.Format == "json",
			FileName:    cfg.Log.File,
			LogToStdout: cfg.Log.Stdout,
		})
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, FlagConfig, "", "配置文件（默认为$HOME/.form-classifier.yaml）")
	flags.String(FlagDataDir, config.DefaultDataDir,
		"训练数据目录，结构为<data-dir>/<运动>/proper_form/*.csv与<data-dir>/<运动>/improper_form/*.csv")
	flags.String(FlagModelDir, config.DefaultModelDir, "模型文件目录，store为file时使用")
	flags.String(FlagStore, "file", "模型存储方式，可选file、mysql")
	flags.String(FlagMysqlHost, "",
		"Mysql服务器主机端口，格式为：host:port。若为空，则读取环境变量MYSQL_SERVICE_HOST与MYSQL_SERVICE_PORT取得")
	flags.String(FlagLogLevel, "info", "日志级别")
	flags.String(FlagLogFile, "", "日志文件，为空时只输出到标准输出")

	bindFlag(config.KeyDataDir, FlagDataDir)
	bindFlag(config.KeyModelDir, FlagModelDir)
	bindFlag(config.KeyStore, FlagStore)
	bindFlag(config.KeyMysqlHost, FlagMysqlHost)
	bindFlag(config.KeyLogLevel, FlagLogLevel)
	bindFlag(config.KeyLogFile, FlagLogFile)
}

func bindFlag(key, flag string) {
	_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".form-classifier" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(configFileName)
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
