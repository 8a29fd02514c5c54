package datasource

import (
	"io"

	"github.com/packagewjx/form-classifier/pkg/core"
)

// SessionSource 提供某个运动的训练会话
type SessionSource interface {
	// 读取一组会话。该组不存在时返回空列表而不是错误
	Sessions(exercise string, group core.FormGroup) ([]*core.Session, error)
}

type DataFormat string

const (
	CSV = DataFormat("csv")
)

type SessionLoader interface {
	Load(in io.Reader, name string) (*core.Session, error)
}

func NewSessionLoader(format DataFormat) SessionLoader {
	switch format {
	case CSV:
		return &csvLoader{}
	default:
		return nil
	}
}
