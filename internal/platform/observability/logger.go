package observability

import (
	"os"

	"inventoryapi/internal/config"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const instrumentationScopeName = "inventory-service.manual"

// NewBootstrapLogger is used until the OTel log provider is configured.
func NewBootstrapLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

// NewLogger tees JSON console output with the OTel bridge. When the log SDK
// was never configured the global provider is a no-op and only the console
// core emits.
func NewLogger() *zap.Logger {
	otelZapCore := otelzap.NewCore(instrumentationScopeName,
		otelzap.WithLoggerProvider(global.GetLoggerProvider()),
	)

	consoleEncoderConfig := zap.NewProductionEncoderConfig()
	consoleEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(consoleEncoderConfig),
		zapcore.Lock(os.Stdout),
		zap.InfoLevel,
	)

	return zap.New(zapcore.NewTee(otelZapCore, consoleCore),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service.name", config.ServiceName)),
	)
}
