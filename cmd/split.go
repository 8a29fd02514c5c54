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
	"path/filepath"
	"strings"

	"github.com/packagewjx/form-classifier/internal/datasource"
	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// splitCmd represents the split command
var splitCmd = &cobra.Command{
	Use:   "split exercise labeledFile",
	Short: "按label列将带标签的会话拆分到训练数据目录中",
	Long: "label列的值为proper_form/correct_form的行写入<data-dir>/<exercise>/proper_form，\n" +
		"其余行写入<data-dir>/<exercise>/improper_form，文件名与输入文件相同。\n",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		name := strings.TrimSuffix(filepath.Base(args[1]), filepath.Ext(args[1]))
		counts, err := datasource.SplitLabeled(afero.NewOsFs(), cfg.DataDir, args[0], name, session)
		if err != nil {
			return errors.Wrap(err, "拆分出错")
		}
		fmt.Printf("标准动作%d行，错误动作%d行\n", counts[core.ProperFormGroup], counts[core.ImproperFormGroup])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)
}
