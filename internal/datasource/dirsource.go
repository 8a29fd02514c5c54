package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/packagewjx/form-classifier/pkg/core"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	sessionFileExt = ".csv"
	goldenFileName = "golden.csv"
)

// NewDirSource 返回按目录组织的训练数据源：<root>/<exercise>/proper_form/*.csv 与 <root>/<exercise>/improper_form/*.csv
func NewDirSource(fs afero.Fs, root string) SessionSource {
	return &dirSource{
		fs:     fs,
		root:   root,
		loader: NewSessionLoader(CSV),
		logger: log.WithField("component", "datasource"),
	}
}

type dirSource struct {
	fs     afero.Fs
	root   string
	loader SessionLoader
	logger *log.Entry
}

var _ SessionSource = &dirSource{}

func (d *dirSource) Sessions(exercise string, group core.FormGroup) ([]*core.Session, error) {
	if err := core.ValidateExercise(exercise); err != nil {
		return nil, errors.Wrap(err, exercise)
	}

	dir := filepath.Join(d.root, exercise, string(group))
	infos, err := afero.ReadDir(d.fs, dir)
	if os.IsNotExist(err) {
		d.logger.Warnf("目录%s不存在", dir)
		return []*core.Session{}, nil
	} else if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("读取目录%s出错", dir))
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() || !strings.EqualFold(filepath.Ext(info.Name()), sessionFileExt) {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)

	result := make([]*core.Session, 0, len(names))
	for _, name := range names {
		session, err := d.readFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		result = append(result, session)
	}

	d.logger.Debugf("从%s读取了%d个会话", dir, len(result))
	return result, nil
}

func (d *dirSource) readFile(path string) (*core.Session, error) {
	fin, err := d.fs.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("打开文件%s出错", path))
	}
	defer func() {
		_ = fin.Close()
	}()
	return d.loader.Load(fin, path)
}

// LoadGolden 读取某个运动的标准会话。没有标准会话时ok为false，与内容为空的标准会话区分开。
func LoadGolden(fs afero.Fs, root, exercise string) (session *core.Session, ok bool, err error) {
	if err := core.ValidateExercise(exercise); err != nil {
		return nil, false, errors.Wrap(err, exercise)
	}

	path := filepath.Join(root, exercise, goldenFileName)
	fin, err := fs.Open(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Wrap(err, fmt.Sprintf("打开文件%s出错", path))
	}
	defer func() {
		_ = fin.Close()
	}()

	session, err = ReadSession(fin, path)
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}
