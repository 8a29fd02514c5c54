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
	"io"
	"os"

	"github.com/packagewjx/form-classifier/internal/datasource"
	"github.com/packagewjx/form-classifier/internal/predictor"
	"github.com/packagewjx/form-classifier/internal/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	FlagOutputPrecision = "outputPrecision"
)

var outputPrecision int

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict exercise sessionFile [outputFile]",
	Short: "使用已训练的模型逐行判断会话的动作是否标准",
	Long: "读取CSV格式的会话文件，输出每行的判断结果，并打印标准动作所占的比例。\n" +
		"不指定outputFile时输出到标准输出。\n",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("参数错误")
		} else if len(args) == 3 && args[1] == args[2] {
			return fmt.Errorf("sessionFile与outputFile不能一致")
		} else if outputPrecision < 0 {
			return fmt.Errorf("输出精度不能为负数")
		}
		return nil
	},
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

		inFile, err := os.Open(args[1])
		if err != nil {
			return errors.Wrap(err, "打开输入文件错误")
		}
		defer func() {
			_ = inFile.Close()
		}()
		session, err := datasource.ReadSession(inFile, args[1])
		if err != nil {
			return errors.Wrap(err, "读取错误")
		}

		prediction, err := predictor.NewPredictor(c.store).Predict(args[0], session)
		if err != nil {
			return err
		}

		var out io.Writer = os.Stdout
		if len(args) == 3 {
			fout, err := os.Create(args[2])
			if err != nil {
				return errors.Wrap(err, "创建输出文件错误")
			}
			defer func() {
				_ = fout.Close()
			}()
			out = fout
		}
		if err := utils.WritePredictions(out, session, prediction, outputPrecision); err != nil {
			return errors.Wrap(err, "输出文件错误")
		}

		_, _ = fmt.Fprintf(os.Stderr, "共%d行，标准动作比例：%.2f%%\n", len(prediction.Verdicts), prediction.Accuracy*100)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().IntVarP(&outputPrecision, FlagOutputPrecision, "p", utils.DefaultPrecision,
		"输出时间列的小数位数")
}
