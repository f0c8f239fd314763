// Package s3 stores room images in an S3 compatible bucket and hands out their
// public URLs. A custom endpoint switches to path-style addressing for MinIO.
package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"roombook/config"
	"roombook/infras/otel"
	"roombook/shared/constant"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	otelAttrObjectKey = "s3.key"
	otelAttrBucket    = "s3.bucket"

	sniffLen = 512
)

type S3 interface {
	UploadFile(ctx context.Context, bucketName, directory string, file multipart.File, fileHeader *multipart.FileHeader, fileName string) (url string, err error)
	DeleteFile(ctx context.Context, bucketName, directory, objectName string) error
	GetObjectNameFromURL(directory, url string) (objectName string)
}

type s3Impl struct {
	client        *s3.Client
	defaultBucket string
	publicURL     string
	otel          otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) S3 {
	settings := cfg.External.S3

	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(settings.AccessKeyID, settings.SecretAccessKey, constant.Empty)),
		awsConfig.WithRegion(settings.Region),
	)
	if err != nil {
		log.Err(err).Msg("Error loading AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if settings.Endpoint != constant.Empty {
			o.BaseEndpoint = aws.String(settings.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Impl{
		client:        client,
		defaultBucket: settings.BucketName,
		publicURL:     strings.TrimRight(settings.PublicURL, "/"),
		otel:          otel,
	}
}

func (svc *s3Impl) bucket(name string) string {
	if name == constant.Empty {
		return svc.defaultBucket
	}

	return name
}

// UploadFile streams file to directory/fileName and returns its public URL.
// Without a declared Content-Type the type is sniffed from the content.
func (svc *s3Impl) UploadFile(ctx context.Context, bucketName, directory string, file multipart.File, fileHeader *multipart.FileHeader, fileName string) (url string, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".UploadFile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucket, key := svc.bucket(bucketName), path.Join(directory, fileName)

	scope.SetAttributes(map[string]any{
		otelAttrObjectKey: key,
		otelAttrBucket:    bucket,
	})

	contentType, err := detectContentType(file, fileHeader)
	if err != nil {
		return constant.Empty, err
	}

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(fileHeader.Size),
	})
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return svc.objectURL(key), nil
}

func (svc *s3Impl) DeleteFile(ctx context.Context, bucketName, directory, objectName string) (err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".DeleteFile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucket, key := svc.bucket(bucketName), path.Join(directory, objectName)

	scope.SetAttributes(map[string]any{
		otelAttrObjectKey: key,
		otelAttrBucket:    bucket,
	})

	_, err = svc.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete file from S3")

		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}

// GetObjectNameFromURL returns the object name under directory that url points
// to, or an empty string when url was not produced by this storage.
func (svc *s3Impl) GetObjectNameFromURL(directory, url string) (objectName string) {
	name, found := strings.CutPrefix(url, svc.objectURL(directory)+"/")
	if !found || name == constant.Empty || strings.Contains(name, "/") {
		return constant.Empty
	}

	return name
}

func (svc *s3Impl) objectURL(key string) string {
	return svc.publicURL + "/" + key
}

func detectContentType(file multipart.File, header *multipart.FileHeader) (string, error) {
	if declared := header.Header.Get(constant.RequestHeaderContentType); declared != constant.Empty {
		return declared, nil
	}

	head := make([]byte, sniffLen)

	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return constant.Empty, fmt.Errorf("failed to read file: %w", err)
	}

	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return constant.Empty, fmt.Errorf("failed to rewind file: %w", err)
	}

	return http.DetectContentType(head[:n]), nil
}
