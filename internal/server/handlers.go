package server

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/packagewjx/form-classifier/pkg/server"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const exerciseVar = "exercise"

func (s *serverImpl) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/exercises", s.handleListExercises).Methods("GET").Name("list-exercises")
	router.HandleFunc("/exercises/{exercise}/sessions", s.handleScoreSession).Methods("POST").Name("score-session")
	router.HandleFunc("/exercises/{exercise}/sessions", s.handleDashboard).Methods("GET").Name("dashboard")
	router.HandleFunc("/exercises/{exercise}/train", s.handleTrain).Methods("POST").Name("train")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET").Name("healthz")
	router.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})).Methods("GET").Name("metrics")

	router.Use(s.panicRecovery, s.requestMetrics)
	return router
}

func (s *serverImpl) handleListExercises(w http.ResponseWriter, r *http.Request) {
	result, err := s.ListExercises()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, result)
}

func (s *serverImpl) handleScoreSession(w http.ResponseWriter, r *http.Request) {
	exercise := mux.Vars(r)[exerciseVar]
	query := r.URL.Query()

	date := time.Now()
	if dateStr := query.Get("date"); dateStr != "" {
		parsed, err := time.ParseInLocation(server.DateLayout, dateStr, time.Local)
		if err != nil {
			s.writeJson(w, http.StatusBadRequest, &server.ErrorResponse{
				Code:    server.CodeBadRequest,
				Message: "date参数格式应为" + server.DateLayout,
			})
			return
		}
		date = parsed
	}

	body := http.MaxBytesReader(w, r.Body, s.config.MaxUploadSize)
	defer func() {
		_ = body.Close()
	}()

	result, err := s.ScoreSession(exercise, query.Get("name"), date, body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, result)
}

func (s *serverImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := s.Dashboard(mux.Vars(r)[exerciseVar])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, result)
}

func (s *serverImpl) handleTrain(w http.ResponseWriter, r *http.Request) {
	report, err := s.Train(mux.Vars(r)[exerciseVar])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJson(w, http.StatusOK, report)
}

// errorStatus 将错误映射为HTTP状态码与错误码
func errorStatus(err error) (int, string) {
	switch errors.Cause(err) {
	case server.ErrExerciseNotFound:
		return http.StatusNotFound, server.CodeExerciseNotFound
	case server.ErrNoSessions:
		return http.StatusNotFound, server.CodeNoSessions
	case core.ErrModelNotFound:
		return http.StatusNotFound, server.CodeModelNotFound
	case core.ErrSchemaMismatch:
		return http.StatusUnprocessableEntity, server.CodeSchemaMismatch
	case server.ErrBadSession:
		return http.StatusUnprocessableEntity, server.CodeBadSession
	case server.ErrUploadTooLarge:
		return http.StatusRequestEntityTooLarge, server.CodeUploadTooLarge
	case core.ErrEmptyTrainingClass:
		return http.StatusUnprocessableEntity, server.CodeEmptyTrainingClass
	case core.ErrDegenerateFit:
		return http.StatusUnprocessableEntity, server.CodeDegenerateFit
	case core.ErrInvalidExercise:
		return http.StatusBadRequest, server.CodeBadRequest
	default:
		return http.StatusInternalServerError, server.CodeInternal
	}
}

func (s *serverImpl) writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Errorf("处理请求出错：%v", err)
	}
	s.writeJson(w, status, &server.ErrorResponse{Code: code, Message: err.Error()})
}

func (s *serverImpl) writeJson(w http.ResponseWriter, status int, v interface{}) {
	marshal, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(marshal); err != nil {
		s.logger.Warnf("写入响应出错：%v", err)
	}
}

func (s *serverImpl) panicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				log.Errorf("http: panic serving %s: %v\n%s", r.URL.Path, p, debug.Stack())
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *serverImpl) requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.deps.Metrics.GaugeRequests.Inc()
		defer func(begin time.Time) {
			s.deps.Metrics.GaugeRequests.Dec()
			s.deps.Metrics.HistRequestDuration.Observe(time.Since(begin).Seconds())
		}(time.Now())

		resp := &responseWriter{w, http.StatusOK}
		next.ServeHTTP(resp, r)

		s.deps.Metrics.CounterRequests.With(prometheus.Labels{
			"method": r.Method,
			"status": strconv.Itoa(resp.statusCode),
		}).Inc()
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.statusCode = statusCode
}
