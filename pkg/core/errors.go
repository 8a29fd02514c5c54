package core

import (
	"fmt"
	"strings"
)

var ErrModelNotFound = fmt.Errorf("没有找到该运动的模型")

var ErrMalformedModel = fmt.Errorf("模型数据损坏")

var ErrSchemaMismatch = fmt.Errorf("传感器通道与模型不一致")

var ErrEmptyTrainingClass = fmt.Errorf("训练类别为空")

var ErrDegenerateFit = fmt.Errorf("训练数据无法拟合")

var ErrInvalidExercise = fmt.Errorf("运动名称不合法")

// ValidateExercise 拒绝无法作为存储键的运动名称
func ValidateExercise(exercise string) error {
	if strings.TrimSpace(exercise) == "" || exercise == "." || exercise == ".." ||
		strings.ContainsAny(exercise, "/\\\x00") {
		return ErrInvalidExercise
	}
	return nil
}
