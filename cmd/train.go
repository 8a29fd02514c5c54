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
	"encoding/json"
	"fmt"
	"os"

	"github.com/packagewjx/form-classifier/internal/trainer"
	"github.com/spf13/cobra"
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train [exercise...]",
	Short: "训练运动的分类器并保存",
	Long: "从数据目录读取每个运动的标准动作与错误动作会话，留出20%的数据计算准确率，训练决策树分类器并覆盖保存。\n" +
		"不指定运动时训练配置中的所有运动。所有运动都训练过后才返回错误。\n",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		exercises := args
		if len(exercises) == 0 {
			exercises = cfg.ExerciseNames()
		}

		c, err := openComponents(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := c.Close(); err == nil {
				err = closeErr
			}
		}()

		t := trainer.NewTrainer(c.source, c.store, cfg.WindowSize)
		reports, trainErr := t.TrainAll(exercises)

		encoder := json.NewEncoder(os.Stdout)
		for _, report := range reports {
			if report == nil {
				continue
			}
			if err := encoder.Encode(report); err != nil {
				return err
			}
		}
		if trainErr != nil {
			return fmt.Errorf("部分运动训练失败：%v", trainErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

