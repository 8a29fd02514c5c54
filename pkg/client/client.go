package client

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/packagewjx/form-classifier/pkg/server"
	"github.com/pkg/errors"
)

const DefaultApiHostBaseUrl = "http://localhost:2000"

// NewApiClient baseUrl为空时使用DefaultApiHostBaseUrl，httpClient为空时使用http.DefaultClient
func NewApiClient(baseUrl string, httpClient *http.Client) server.API {
	if baseUrl == "" {
		baseUrl = DefaultApiHostBaseUrl
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &apiClient{
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		client:  httpClient,
	}
}

var _ server.API = &apiClient{}

type apiClient struct {
	baseUrl string
	client  *http.Client
}

func (a *apiClient) exerciseUrl(exercise, suffix string) string {
	return fmt.Sprintf("%s/exercises/%s%s", a.baseUrl, url.PathEscape(exercise), suffix)
}

func (a *apiClient) ListExercises() ([]*server.ExerciseSummary, error) {
	dest := make([]*server.ExerciseSummary, 0)
	err := a.do(http.MethodGet, a.baseUrl+"/exercises", "", nil, &dest)
	if err != nil {
		return nil, err
	}
	return dest, nil
}

func (a *apiClient) ScoreSession(exercise, name string, date time.Time, in io.Reader) (*server.ScoreResult, error) {
	query := url.Values{}
	query.Set("date", date.Format(server.DateLayout))
	if name != "" {
		query.Set("name", name)
	}
	dest := &server.ScoreResult{}
	err := a.do(http.MethodPost, a.exerciseUrl(exercise, "/sessions")+"?"+query.Encode(), "text/csv", in, dest)
	if err != nil {
		return nil, err
	}
	return dest, nil
}

func (a *apiClient) Dashboard(exercise string) (*server.Dashboard, error) {
	dest := &server.Dashboard{}
	if err := a.do(http.MethodGet, a.exerciseUrl(exercise, "/sessions"), "", nil, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

func (a *apiClient) Train(exercise string) (*core.TrainingReport, error) {
	dest := &core.TrainingReport{}
	if err := a.do(http.MethodPost, a.exerciseUrl(exercise, "/train"), "", nil, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

func (a *apiClient) do(method, target, contentType string, body io.Reader, dest interface{}) error {
	request, err := http.NewRequest(method, target, body)
	if err != nil {
		return errors.Wrap(err, "创建请求时出现异常")
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}

	response, err := a.client.Do(request)
	if err != nil {
		return errors.Wrap(err, "请求时出现异常")
	}
	defer func() {
		_ = response.Body.Close()
	}()

	data, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return errors.Wrap(err, "读取时出现异常")
	}

	if response.StatusCode != http.StatusOK {
		return decodeError(response.StatusCode, data)
	}

	err = json.Unmarshal(data, dest)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("解析json异常，json为\n%s", string(data)))
	}
	return nil
}

// decodeError 将服务器的错误码还原为对应的错误
func decodeError(status int, data []byte) error {
	resp := &server.ErrorResponse{}
	if err := json.Unmarshal(data, resp); err != nil || resp.Code == "" {
		return fmt.Errorf("服务器返回%d：%s", status, strings.TrimSpace(string(data)))
	}

	var cause error
	switch resp.Code {
	case server.CodeExerciseNotFound:
		cause = server.ErrExerciseNotFound
	case server.CodeNoSessions:
		cause = server.ErrNoSessions
	case server.CodeModelNotFound:
		cause = core.ErrModelNotFound
	case server.CodeSchemaMismatch:
		cause = core.ErrSchemaMismatch
	case server.CodeBadSession:
		cause = server.ErrBadSession
	case server.CodeUploadTooLarge:
		cause = server.ErrUploadTooLarge
	case server.CodeEmptyTrainingClass:
		cause = core.ErrEmptyTrainingClass
	case server.CodeDegenerateFit:
		cause = core.ErrDegenerateFit
	default:
		return fmt.Errorf("服务器返回%d：%s", status, resp.Message)
	}
	return errors.Wrap(cause, resp.Message)
}
