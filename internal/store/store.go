package store

import (
	"fmt"
	"sync"

	"github.com/packagewjx/form-classifier/internal/classify"
)

// ClassifierStore 按运动名称保存每个运动唯一的分类器，后写覆盖先写。
// 同一运动的写入互斥，读取只会看到旧模型或完整的新模型。
type ClassifierStore interface {
	Save(model *classify.Model) error
	// 不存在时返回core.ErrModelNotFound，数据损坏时返回core.ErrMalformedModel
	Load(exercise string) (*classify.Model, error)
	Exists(exercise string) (bool, error)
	// 模型的持久化位置，用于训练报告
	Location(exercise string) string
	Close() error
}

type Backend string

const (
	BackendFile  = Backend("file")
	BackendMysql = Backend("mysql")
)

func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendFile, BackendMysql:
		return Backend(s), nil
	default:
		return "", fmt.Errorf("未知的模型存储方式%q，可选值：file、mysql", s)
	}
}

// keyedLock 为每个运动提供一把读写锁
type keyedLock struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func newKeyedLock() *keyedLock {
	return &keyedLock{locks: make(map[string]*sync.RWMutex)}
}

func (k *keyedLock) get(key string) *sync.RWMutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.RWMutex{}
		k.locks[key] = l
	}
	return l
}
