// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package log

import (
	"encoding/hex"
	"log"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GlobalConfig defines the global logger configurations.
type GlobalConfig struct {
	Zap            *zap.Config `json:"zap" yaml:"zap"`
	RedirectStdLog bool        `json:"stdLogRedirect" yaml:"stdLogRedirect"`
}

var (
	_subLoggers = make(map[string]*zap.Logger)
	_logMu      sync.RWMutex
)

func init() {
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapCfg.Level.SetLevel(zap.InfoLevel)
	l, err := zapCfg.Build()
	if err != nil {
		log.Println("Failed to init zap global logger, no zap log will be shown till zap is properly initialized: ", err)
		return
	}
	zap.ReplaceGlobals(l)
}

// L wraps zap.L().
func L() *zap.Logger { return zap.L() }

// S wraps zap.S().
func S() *zap.SugaredLogger { return zap.S() }

// Logger returns logger of the given name
func Logger(name string) *zap.Logger {
	_logMu.RLock()
	logger, ok := _subLoggers[name]
	_logMu.RUnlock()
	if !ok {
		return L().With(zap.String("module", name))
	}
	return logger
}

// Hex creates a zap field which convert binary to hex.
func Hex(k string, d []byte) zap.Field {
	return zap.String(k, hex.EncodeToString(d))
}

// InitLoggers initializes the global logger and other sub loggers.
func InitLoggers(globalCfg GlobalConfig, subCfgs map[string]GlobalConfig) error {
	logger, err := buildLogger(globalCfg)
	if err != nil {
		return err
	}
	if globalCfg.RedirectStdLog {
		zap.RedirectStdLog(logger)
	}
	zap.ReplaceGlobals(logger)

	_logMu.Lock()
	defer _logMu.Unlock()
	for name, cfg := range subCfgs {
		sub, err := buildLogger(cfg)
		if err != nil {
			return err
		}
		_subLoggers[name] = sub.With(zap.String("module", name))
	}
	return nil
}

func buildLogger(cfg GlobalConfig) (*zap.Logger, error) {
	if cfg.Zap == nil {
		zapCfg := zap.NewProductionConfig()
		cfg.Zap = &zapCfg
	} else {
		cfg.Zap.EncoderConfig = zap.NewProductionEncoderConfig()
	}
	return cfg.Zap.Build()
}
