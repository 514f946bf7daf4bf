package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 全局日志实例，Init 之前默认静默，测试中无需初始化
var global = zap.NewNop().Sugar()

// Init 初始化全局日志
// debug: 开发模式下输出彩色日志并降低日志级别
func Init(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	global = l.Sugar()
	return nil
}

// L 获取全局日志实例
func L() *zap.SugaredLogger {
	return global
}

// Sync 刷新日志缓冲区，程序退出前调用
func Sync() {
	_ = global.Sync()
}
