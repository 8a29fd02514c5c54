package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type SetupParams struct {
	Level       string
	FormatJSON  bool
	FileName    string // 为空时只输出到标准输出
	LogToStdout bool
}

// Setup 设置全局logrus。指定了文件时使用lumberjack按大小轮转
func Setup(params SetupParams) {
	if params.FormatJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetLevel(GetLevel(params.Level))

	if params.FileName == "" {
		log.SetOutput(os.Stdout)
		return
	}

	if !strings.HasSuffix(params.FileName, ".log") {
		params.FileName += ".log"
	}
	fileLogger := &lumberjack.Logger{
		Filename: params.FileName,
		MaxSize:  50, // MB
		Compress: true,
	}
	if params.LogToStdout {
		log.SetOutput(io.MultiWriter(os.Stdout, fileLogger))
	} else {
		log.SetOutput(fileLogger)
	}
	log.Debugf("日志输出到%s", params.FileName)
}

// GetLevel 未知的级别按info处理
func GetLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}
