package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
)

const (
	PredictionColumn = "prediction"
	DefaultPrecision = 3
)

// WritePredictions 按输入行顺序输出每行的预测结果。会话有时间列时同时输出时间。
func WritePredictions(out io.Writer, session *core.Session, prediction *core.Prediction, precision int) error {
	if len(prediction.Verdicts) != session.NumRows() {
		return fmt.Errorf("预测结果%d行与会话%d行不一致", len(prediction.Verdicts), session.NumRows())
	}

	writer := csv.NewWriter(out)
	withTime := session.Time != nil

	header := []string{PredictionColumn}
	if withTime {
		header = []string{core.TimeColumn, PredictionColumn}
	}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "写入表头错误")
	}

	for i, verdict := range prediction.Verdicts {
		record := []string{verdict.String()}
		if withTime {
			record = []string{strconv.FormatFloat(session.Time[i], 'f', precision, 64), verdict.String()}
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, fmt.Sprintf("写入第%d行数据错误", i))
		}
	}

	writer.Flush()
	return writer.Error()
}
