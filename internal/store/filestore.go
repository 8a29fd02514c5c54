package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/packagewjx/form-classifier/internal/classify"
	"github.com/packagewjx/form-classifier/internal/utils"
	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const modelFileSuffix = "_model.json"

// NewFileStore 将模型保存为dir目录下的<exercise>_model.json
func NewFileStore(fs afero.Fs, dir string) (ClassifierStore, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("创建模型目录%s出错", dir))
	}
	return &fileStore{
		fs:     fs,
		dir:    dir,
		locks:  newKeyedLock(),
		logger: log.WithField("component", "filestore"),
	}, nil
}

type fileStore struct {
	fs     afero.Fs
	dir    string
	locks  *keyedLock
	logger *log.Entry
}

var _ ClassifierStore = &fileStore{}

func (f *fileStore) Location(exercise string) string {
	return filepath.Join(f.dir, exercise+modelFileSuffix)
}

// Save 先写入临时文件再重命名，读取方不会看到写了一半的模型
func (f *fileStore) Save(model *classify.Model) error {
	if err := core.ValidateExercise(model.Exercise); err != nil {
		return errors.Wrap(err, model.Exercise)
	}
	data, err := classify.EncodeModel(model)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("序列化模型%s出错", model.Exercise))
	}

	lock := f.locks.get(model.Exercise)
	lock.Lock()
	defer lock.Unlock()

	tmp, err := afero.TempFile(f.fs, f.dir, ".model-")
	if err != nil {
		return errors.Wrap(err, "创建临时文件出错")
	}
	tmpName := tmp.Name()
	counter := &utils.WriterCounter{Writer: tmp}
	_, err = counter.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = f.fs.Remove(tmpName)
		return errors.Wrap(err, "写入模型文件出错")
	}

	path := f.Location(model.Exercise)
	if err := f.fs.Rename(tmpName, path); err != nil {
		_ = f.fs.Remove(tmpName)
		return errors.Wrap(err, fmt.Sprintf("替换模型文件%s出错", path))
	}

	f.logger.Infof("模型%s已保存到%s，共%d字节", model.Exercise, path, counter.Count)
	return nil
}

func (f *fileStore) Load(exercise string) (*classify.Model, error) {
	if err := core.ValidateExercise(exercise); err != nil {
		return nil, errors.Wrap(err, exercise)
	}

	lock := f.locks.get(exercise)
	lock.RLock()
	defer lock.RUnlock()

	path := f.Location(exercise)
	data, err := afero.ReadFile(f.fs, path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(core.ErrModelNotFound, exercise)
	} else if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("读取模型文件%s出错", path))
	}

	model, err := classify.DecodeModel(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return model, nil
}

func (f *fileStore) Exists(exercise string) (bool, error) {
	if err := core.ValidateExercise(exercise); err != nil {
		return false, errors.Wrap(err, exercise)
	}
	return afero.Exists(f.fs, f.Location(exercise))
}

func (f *fileStore) Close() error {
	return nil
}
