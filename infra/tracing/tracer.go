package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// InitGlobalTracer installs a jaeger tracer configured by JAEGER_* environment variables.
// Tracing is left as the noop tracer when JAEGER_DISABLED=true.
func InitGlobalTracer(serviceName string) (io.Closer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}
	if cfg.Disabled {
		logrus.Info("tracing is disabled")
		return io.NopCloser(nil), nil
	}

	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(jaegerLogger{}))
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	logrus.Infof("tracing enabled for service %s", cfg.ServiceName)
	return closer, nil
}

type jaegerLogger struct{}

var _ jaeger.Logger = jaegerLogger{}

func (jaegerLogger) Error(msg string) {
	logrus.WithField("component", "jaeger").Error(msg)
}

func (jaegerLogger) Infof(msg string, args ...interface{}) {
	logrus.WithField("component", "jaeger").Debugf(msg, args...)
}
