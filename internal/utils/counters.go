package utils

import "io"

// ReadCounter 统计经过的字节数，用于记录上传的会话大小
type ReadCounter struct {
	Count  int64
	Reader io.Reader
}

func (r *ReadCounter) Read(p []byte) (n int, err error) {
	n, err = r.Reader.Read(p)
	r.Count += int64(n)
	return
}

// WriterCounter 统计写出的字节数，用于记录模型文件大小
type WriterCounter struct {
	Writer io.Writer
	Count  uint64
}

func (w *WriterCounter) Write(p []byte) (n int, err error) {
	n, err = w.Writer.Write(p)
	w.Count += uint64(n)
	return
}
