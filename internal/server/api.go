package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/packagewjx/form-classifier/internal/datasource"
	"github.com/packagewjx/form-classifier/internal/history"
	"github.com/packagewjx/form-classifier/internal/utils"
	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/packagewjx/form-classifier/pkg/server"
	"github.com/pkg/errors"
)

func (s *serverImpl) checkExercise(exercise string) error {
	if _, ok := s.exercises[exercise]; !ok {
		return errors.Wrap(server.ErrExerciseNotFound, exercise)
	}
	return nil
}

func (s *serverImpl) ListExercises() ([]*server.ExerciseSummary, error) {
	result := make([]*server.ExerciseSummary, 0, len(s.config.Exercises))
	for _, exercise := range s.config.Exercises {
		records, err := s.deps.History.ListByExercise(exercise)
		if err != nil {
			return nil, err
		}
		result = append(result, &server.ExerciseSummary{
			Name:     exercise,
			Sessions: len(records),
			HasData:  len(records) > 0,
		})
	}
	return result, nil
}

// ScoreSession name为空时使用“运动_日期”作为会话名称
func (s *serverImpl) ScoreSession(exercise, name string, date time.Time, in io.Reader) (*server.ScoreResult, error) {
	if err := s.checkExercise(exercise); err != nil {
		return nil, err
	}
	if name == "" {
		name = fmt.Sprintf("%s_%s", exercise, date.Format("20060102"))
	}
	logger := s.logger.WithField("exercise", exercise)
	counter := &utils.ReadCounter{Reader: in}
	session, err := datasource.ReadSession(counter, name)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.Wrap(server.ErrUploadTooLarge, fmt.Sprintf("上限为%d字节", tooLarge.Limit))
		}
		return nil, errors.Wrap(server.ErrBadSession, err.Error())
	}
	logger.Infof("接收到会话%s，日期%s，共%d字节", name, date.Format(server.DateLayout), counter.Count)

	prediction, err := s.deps.Predictor.Predict(exercise, session)
	if err != nil {
		logger.Warnf("会话%s评分失败：%v", name, err)
		return nil, err
	}

	record := &core.SessionRecord{
		Exercise: exercise,
		Name:     name,
		Date:     date,
		Rows:     len(prediction.Verdicts),
		Accuracy: prediction.Accuracy,
	}
	if err := s.deps.History.Add(record); err != nil {
		return nil, err
	}

	s.deps.Metrics.CounterPredictions.WithLabelValues(exercise).Inc()
	s.deps.Metrics.HistSessionAccuracy.WithLabelValues(exercise).Observe(prediction.Accuracy)
	logger.Infof("会话%s共%d行，标准动作比例%.4f", name, record.Rows, record.Accuracy)

	return &server.ScoreResult{
		Record:   record,
		Verdicts: prediction.Verdicts,
	}, nil
}

func (s *serverImpl) Dashboard(exercise string) (*server.Dashboard, error) {
	if err := s.checkExercise(exercise); err != nil {
		return nil, err
	}
	records, err := s.deps.History.ListByExercise(exercise)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.Wrap(server.ErrNoSessions, exercise)
	}

	result := &server.Dashboard{
		Exercise: exercise,
		Records:  records,
		Golden:   s.golden(exercise),
	}
	if delta, ok := history.Progress(records); ok {
		result.Progress = &delta
	}
	return result, nil
}

// golden 有标准会话且能评分时使用其准确率，否则视为全部正确
func (s *serverImpl) golden(exercise string) server.GoldenComparison {
	assumed := server.GoldenComparison{Accuracy: 1}
	session, ok, err := datasource.LoadGolden(s.deps.Fs, s.config.DataDir, exercise)
	if err != nil {
		s.logger.Warnf("读取%s的标准会话出错：%v", exercise, err)
		return assumed
	} else if !ok {
		return assumed
	}

	prediction, err := s.deps.Predictor.Predict(exercise, session)
	if err != nil {
		s.logger.Warnf("为%s的标准会话评分出错：%v", exercise, err)
		return assumed
	}
	return server.GoldenComparison{Accuracy: prediction.Accuracy, Scored: true}
}

func (s *serverImpl) Train(exercise string) (*core.TrainingReport, error) {
	if err := s.checkExercise(exercise); err != nil {
		return nil, err
	}
	_, report, err := s.deps.Trainer.Train(exercise)
	if err != nil {
		s.deps.Metrics.CounterTrainings.WithLabelValues(exercise, "failure").Inc()
		return nil, err
	}
	s.deps.Metrics.CounterTrainings.WithLabelValues(exercise, "success").Inc()
	return report, nil
}
