// Package tracing provides AWS X-Ray distributed tracing integration.
package tracing

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/aws/aws-xray-sdk-go/xraylog"
	"github.com/sirupsen/logrus"
)

// Config contains X-Ray configuration.
type Config struct {
	ServiceName  string
	Enabled      bool
	SamplingRate float64
	DaemonAddr   string
}

var enabled bool

// Logger adapter for X-Ray SDK.
type xrayLoggerAdapter struct {
	logger *logrus.Logger
}

func (l *xrayLoggerAdapter) Log(level xraylog.LogLevel, msg fmt.Stringer) {
	switch level {
	case xraylog.LogLevelDebug:
		l.logger.Debug(msg)
	case xraylog.LogLevelInfo:
		l.logger.Info(msg)
	case xraylog.LogLevelWarn:
		l.logger.Warn(msg)
	case xraylog.LogLevelError:
		l.logger.Error(msg)
	}
}

// Initialize initializes AWS X-Ray with the given configuration.
func Initialize(cfg Config, logger *logrus.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	xray.SetLogger(&xrayLoggerAdapter{logger: logger})

	xray.Configure(xray.Config{
		DaemonAddr: cfg.DaemonAddr,
	})

	enabled = true
	logger.WithFields(logrus.Fields{
		"daemon_addr":   cfg.DaemonAddr,
		"sampling_rate": cfg.SamplingRate,
		"service_name":  cfg.ServiceName,
	}).Info("AWS X-Ray initialized")

	return nil
}

// StartSegment starts a new X-Ray segment. Returns a nil segment when
// tracing is disabled; CloseSegment tolerates that.
func StartSegment(ctx context.Context, segmentName string) (context.Context, *xray.Segment) {
	if !enabled {
		return ctx, nil
	}
	return xray.BeginSegment(ctx, segmentName)
}

// CloseSegment closes a segment started with StartSegment.
func CloseSegment(seg *xray.Segment, err error) {
	if seg != nil {
		seg.Close(err)
	}
}

// Capture runs fn inside a traced segment or subsegment. When tracing is
// disabled fn runs untraced.
func Capture(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if !enabled {
		return fn(ctx)
	}
	if xray.GetSegment(ctx) == nil {
		ctx, seg := xray.BeginSegment(ctx, name)
		err := fn(ctx)
		seg.Close(err)
		return err
	}
	return xray.Capture(ctx, name, fn)
}

// AddAnnotation adds an annotation to the current segment.
func AddAnnotation(ctx context.Context, key string, value interface{}) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddAnnotation(key, value)
	}
}

// AddMetadata adds metadata to the current segment.
func AddMetadata(ctx context.Context, key string, value interface{}) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddMetadata(key, value)
	}
}

// AddError adds an error to the current segment.
func AddError(ctx context.Context, err error) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddError(err)
	}
}
