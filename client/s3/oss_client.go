package s3

import (
	"context"
	"io"
	"worksync/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/sirupsen/logrus"
)

var (
	ActiveBucket  *oss.Bucket
	GetObjectFunc = GetObject
	PutObjectFunc = PutObject
)

// Bootstrap connects the bucket of cfg, storage stays disabled when cfg is not complete
func Bootstrap(cfg *config.StorageConfig) error {
	if !cfg.Enabled() {
		logrus.Info("object storage is not configured")
		return nil
	}
	bucket, err := BuildBucket(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret, cfg.Bucket)
	if err != nil {
		return err
	}
	ActiveBucket = bucket
	logrus.Infof("object storage bucket %s on %s", cfg.Bucket, cfg.Endpoint)
	return nil
}

func Enabled() bool {
	return ActiveBucket != nil
}

func BuildBucket(endpoint, accessKey, secretKey, bucketName string) (*oss.Bucket, error) {
	// endpoint http://oss-cn-hangzhou.aliyuncs.com
	cli, err := oss.New(endpoint, accessKey, secretKey, oss.HTTPClient(nil))
	if err != nil {
		return nil, err
	}
	return cli.Bucket(bucketName)
}

func GetObject(ctx context.Context, key string, opts ...oss.Option) (io.ReadCloser, error) {
	span := startObjectSpan(ctx, "get-object", key)
	r, err := ActiveBucket.GetObject(key, opts...)
	finishObjectSpan(span, err)
	return r, err
}

func PutObject(ctx context.Context, key string, r io.Reader, opts ...oss.Option) error {
	span := startObjectSpan(ctx, "put-object", key)
	err := ActiveBucket.PutObject(key, r, opts...)
	finishObjectSpan(span, err)
	return err
}

func startObjectSpan(ctx context.Context, operation, key string) opentracing.Span {
	parentSpan := opentracing.SpanFromContext(ctx)
	if parentSpan == nil {
		return nil
	}
	span := parentSpan.Tracer().StartSpan(operation, opentracing.ChildOf(parentSpan.Context()))
	span.SetTag("object-key", key)
	ext.SpanKindRPCClient.Set(span)
	return span
}

func finishObjectSpan(span opentracing.Span, err error) {
	if span == nil {
		return
	}
	ext.Error.Set(span, err != nil)
	span.Finish()
}
