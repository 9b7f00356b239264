package logger

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLogger() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger)
	suite.NotNil(logger.Logger)
	suite.True(logger.Core().Enabled(zapcore.InfoLevel))
	suite.False(logger.Core().Enabled(zapcore.DebugLevel))
}

func (suite *LoggerTestSuite) TestNewLoggerWithLevel() {
	logger, err := NewLoggerWithLevel(zapcore.DebugLevel)
	suite.NoError(err)
	suite.True(logger.Core().Enabled(zapcore.DebugLevel))
}

func (suite *LoggerTestSuite) TestLoggerSyncNilLogger() {
	logger := &Logger{Logger: nil}

	err := logger.Sync()
	suite.NoError(err)
}

func (suite *LoggerTestSuite) TestNopLogger() {
	logger := NewNopLogger()
	suite.NotNil(logger.Logger)

	// should not panic
	logger.Info("discarded", zap.Int("bar", 1))
	suite.NoError(logger.Sync())
}

func (suite *LoggerTestSuite) TestNamedAndWithFields() {
	logger := NewNopLogger()

	named := logger.Named("backtest")
	suite.NotNil(named.Logger)

	child := named.WithFields(zap.String("run_id", "abc"))
	suite.NotNil(child.Logger)
	child.Info("test message with fields")
}

func (suite *LoggerTestSuite) TestNamedOnNilLogger() {
	var logger *Logger

	suite.NotNil(logger.Named("x").Logger)
	suite.NotNil(logger.WithFields().Logger)
}
