package server

import (
	"fmt"
	"io"
	"time"

	"github.com/packagewjx/form-classifier/pkg/core"
)

// DateLayout 上传会话时date参数的格式
const DateLayout = "2006-01-02"

var ErrExerciseNotFound = fmt.Errorf("不存在该运动")

var ErrNoSessions = fmt.Errorf("该运动还没有会话记录")

var ErrBadSession = fmt.Errorf("会话数据有误")

var ErrUploadTooLarge = fmt.Errorf("上传的会话过大")

type ExerciseSummary struct {
	Name     string `json:"name"`
	Sessions int    `json:"sessions"`
	HasData  bool   `json:"hasData"`
}

type ScoreResult struct {
	Record   *core.SessionRecord `json:"record"`
	Verdicts []core.Label        `json:"verdicts"`
}

// GoldenComparison 标准动作的准确率。没有标准会话时按全部正确计算
type GoldenComparison struct {
	Accuracy float64 `json:"accuracy"`
	Scored   bool    `json:"scored"`
}

type Dashboard struct {
	Exercise string                `json:"exercise"`
	Records  []*core.SessionRecord `json:"records"`
	// 最后一次与第一次的准确率之差，少于两条记录时为空
	Progress *float64         `json:"progress,omitempty"`
	Golden   GoldenComparison `json:"golden"`
}

// 错误响应中的错误码
const (
	CodeExerciseNotFound   = "exercise_not_found"
	CodeNoSessions         = "no_sessions"
	CodeModelNotFound      = "model_not_found"
	CodeSchemaMismatch     = "schema_mismatch"
	CodeBadSession         = "bad_session"
	CodeUploadTooLarge     = "upload_too_large"
	CodeEmptyTrainingClass = "empty_training_class"
	CodeDegenerateFit      = "degenerate_fit"
	CodeBadRequest         = "bad_request"
	CodeInternal           = "internal"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type API interface {
	ListExercises() ([]*ExerciseSummary, error)

	// ScoreSession 用运动的模型为上传的CSV会话评分，并记录到历史中
	ScoreSession(exercise, name string, date time.Time, in io.Reader) (*ScoreResult, error)

	Dashboard(exercise string) (*Dashboard, error)

	Train(exercise string) (*core.TrainingReport, error)
}
