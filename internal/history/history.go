package history

import (
	"sort"
	"sync"

	"github.com/packagewjx/form-classifier/pkg/core"
)

// Repository 保存服务进程中已评分的会话记录
type Repository interface {
	// Add 保存记录，并回填记录的ID
	Add(record *core.SessionRecord) error
	// ListByExercise 按日期先后返回某个运动的所有记录，日期相同时按添加顺序
	ListByExercise(exercise string) ([]*core.SessionRecord, error)
	Close() error
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		records: make(map[string][]*core.SessionRecord),
	}
}

type memoryRepository struct {
	mu      sync.RWMutex
	nextId  uint
	records map[string][]*core.SessionRecord
}

var _ Repository = &memoryRepository{}

func (m *memoryRepository) Add(record *core.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextId++
	record.ID = m.nextId
	copied := *record
	m.records[record.Exercise] = append(m.records[record.Exercise], &copied)
	return nil
}

func (m *memoryRepository) ListByExercise(exercise string) ([]*core.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.records[exercise]
	result := make([]*core.SessionRecord, len(list))
	for i, record := range list {
		copied := *record
		result[i] = &copied
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (m *memoryRepository) Close() error {
	return nil
}

// Progress 返回最后一次记录与第一次记录的准确率之差。少于两条记录时ok为false
func Progress(records []*core.SessionRecord) (delta float64, ok bool) {
	if len(records) < 2 {
		return 0, false
	}
	return records[len(records)-1].Accuracy - records[0].Accuracy, true
}
