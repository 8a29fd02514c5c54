package features

import (
	"fmt"
	"math"
	"sync"

	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
)

const DefaultWindowSize = 5

const (
	lagSuffix          = "_lag%d"
	rollingMeanSuffix  = "_rolling_mean"
	rollingStdSuffix   = "_rolling_std"
	featuresPerChannel = 3 // 原值、滚动均值、滚动标准差，不含滞后列
)

// Columns 返回给定通道与窗口大小对应的特征列名，顺序为：各通道原值，各通道的滞后列，各通道的滚动均值与标准差。
// 列集合只取决于通道列表与窗口大小。
func Columns(channels []string, windowSize int) []string {
	columns := make([]string, 0, len(channels)*(featuresPerChannel+windowSize))
	columns = append(columns, channels...)
	for _, c := range channels {
		for lag := 1; lag <= windowSize; lag++ {
			columns = append(columns, c+fmt.Sprintf(lagSuffix, lag))
		}
	}
	for _, c := range channels {
		columns = append(columns, c+rollingMeanSuffix, c+rollingStdSuffix)
	}
	return columns
}

// Extract 将会话转换为特征表。行数与行顺序不变，time列不参与特征，标签作为目标值保留。
//
// 滞后列在没有更早的行时取0；滚动统计在历史不足windowSize行时取0，窗口为1时标准差取0。
func Extract(session *core.Session, windowSize int) (*core.FeatureTable, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("窗口大小必须为正数，现在为%d", windowSize)
	}
	if err := session.Validate(); err != nil {
		return nil, errors.Wrap(err, "会话数据有误")
	}

	numChannels := len(session.Channels)
	numRows := session.NumRows()
	columns := Columns(session.Channels, windowSize)

	rows := make([][]float64, numRows)
	for i := range rows {
		rows[i] = make([]float64, len(columns))
	}

	lagOffset := numChannels
	rollingOffset := numChannels + numChannels*windowSize

	// 每个通道写入互不重叠的列，可以并行计算
	wg := sync.WaitGroup{}
	for ci := 0; ci < numChannels; ci++ {
		wg.Add(1)
		go func(ci int) {
			defer wg.Done()
			values := session.Column(ci)
			means, stds := rolling(values, windowSize)
			for i := 0; i < numRows; i++ {
				row := rows[i]
				row[ci] = values[i]
				for lag := 1; lag <= windowSize; lag++ {
					if i-lag >= 0 {
						row[lagOffset+ci*windowSize+lag-1] = values[i-lag]
					}
				}
				row[rollingOffset+2*ci] = means[i]
				row[rollingOffset+2*ci+1] = stds[i]
			}
		}(ci)
	}
	wg.Wait()

	table := &core.FeatureTable{
		Channels: append([]string{}, session.Channels...),
		Columns:  columns,
		Rows:     rows,
	}
	if session.Labeled() {
		table.Labels = make([]core.Label, numRows)
		copy(table.Labels, session.Labels)
	}
	return table, nil
}

// rolling 计算包含当前行在内的最近windowSize行的均值与样本标准差，无定义的值为0
func rolling(values []float64, windowSize int) (means, stds []float64) {
	means = make([]float64, len(values))
	stds = make([]float64, len(values))
	for i := windowSize - 1; i < len(values); i++ {
		window := values[i-windowSize+1 : i+1]
		sum := 0.0
		for _, v := range window {
			sum += v
		}
		mean := sum / float64(windowSize)
		means[i] = zeroIfUndefined(mean)

		if windowSize > 1 {
			sq := 0.0
			for _, v := range window {
				sq += (v - mean) * (v - mean)
			}
			stds[i] = zeroIfUndefined(math.Sqrt(sq / float64(windowSize-1)))
		}
	}
	return means, stds
}

func zeroIfUndefined(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}
