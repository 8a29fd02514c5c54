package preprocess

import (
	"github.com/packagewjx/form-classifier/pkg/core"
)

// Preprocessor 在特征提取前就地修改会话。训练与预测必须使用相同的预处理链。
type Preprocessor interface {
	Preprocess(session *core.Session)
}

type defaultPreprocess struct {
	chain []Preprocessor
}

func (d *defaultPreprocess) Preprocess(session *core.Session) {
	for _, processor := range d.chain {
		processor.Preprocess(session)
	}
}

func Default() Preprocessor {
	return &defaultPreprocess{chain: []Preprocessor{Impute()}}
}
