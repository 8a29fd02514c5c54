package preprocess

import (
	"math"

	"github.com/packagewjx/form-classifier/pkg/core"
)

func Impute() Preprocessor {
	return &imputePreProcessor{}
}

// imputePreProcessor 填充各通道中的NaN。中间缺失段使用两端有效值线性填充；开头或结尾的缺失段使用最近的有效值。
// 整个通道都是NaN时不做处理，由训练阶段报告。
type imputePreProcessor struct {
}

func (i imputePreProcessor) Preprocess(session *core.Session) {
	data := session.Data
	for ci := 0; ci < len(session.Channels); ci++ {
		invalidLeft := -1
		lastValid := -1
		for ri := 0; ri < len(data); ri++ {
			f := data[ri][ci]
			if math.IsNaN(f) {
				if invalidLeft == -1 {
					invalidLeft = ri
				}
				continue
			}

			if invalidLeft != -1 {
				if invalidLeft == 0 {
					// 开头缺失
					for k := 0; k < ri; k++ {
						data[k][ci] = f
					}
				} else {
					// 线性填充
					startVal := data[invalidLeft-1][ci]
					step := (f - startVal) / float64(ri-invalidLeft+1)
					for k := invalidLeft; k < ri; k++ {
						data[k][ci] = startVal + step*float64(k-(invalidLeft-1))
					}
				}
				invalidLeft = -1
			}
			lastValid = ri
		}

		if invalidLeft > 0 && lastValid != -1 {
			for k := invalidLeft; k < len(data); k++ {
				data[k][ci] = data[lastValid][ci]
			}
		}
	}
}
