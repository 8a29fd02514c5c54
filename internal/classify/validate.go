package classify

import (
	"fmt"
	"math"

	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
)

// CheckFinite 检查所有特征值均为有限数。columns不为空时错误信息中给出列名。
func CheckFinite(columns []string, x [][]float64) error {
	for i, row := range x {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				name := fmt.Sprintf("第%d列", j)
				if j < len(columns) {
					name = columns[j]
				}
				return errors.Wrap(core.ErrDegenerateFit, fmt.Sprintf("特征%s第%d行的值为%v", name, i, v))
			}
		}
	}
	return nil
}
