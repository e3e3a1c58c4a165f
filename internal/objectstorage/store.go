package objectstorage

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/valyala/gozstd"

	"suimail/backend/internal/config"
)

// ErrBlobNotFound 对象不存在
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore 以 CID 为键的消息正文归档（S3 兼容存储，zstd 压缩）。
//
// 存入的内容已经是密文，对象存储层不接触明文。
type BlobStore struct {
	client *s3.S3
	bucket string
}

// NewBlobStore 创建对象存储客户端
func NewBlobStore(cfg *config.ObjectStorageConfig) (*BlobStore, error) {
	awsConfig := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.Endpoint != "" {
		awsConfig = awsConfig.
			WithEndpoint(cfg.Endpoint).
			WithS3ForcePathStyle(true)
	}
	if cfg.AccessKey != "" {
		awsConfig = awsConfig.WithCredentials(
			credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return &BlobStore{
		client: s3.New(sess),
		bucket: cfg.Bucket,
	}, nil
}

// Put 按 CID 归档密文正文（zstd 压缩后上传）
func (b *BlobStore) Put(cid string, data []byte) error {
	compressed := gozstd.Compress(nil, data)

	_, err := b.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(objectKey(cid)),
		Body:        bytes.NewReader(compressed),
		ContentType: aws.String("application/zstd"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", cid, err)
	}
	return nil
}

// Get 按 CID 取回并解压密文正文
func (b *BlobStore) Get(cid string) ([]byte, error) {
	resp, err := b.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey(cid)),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to download blob %s: %w", cid, err)
	}
	defer resp.Body.Close()

	compressed, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return gozstd.Decompress(nil, compressed)
}

// Delete 按 CID 删除归档对象
func (b *BlobStore) Delete(cid string) error {
	_, err := b.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey(cid)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", cid, err)
	}
	return nil
}

// Exists 检查 CID 对应的对象是否存在
func (b *BlobStore) Exists(cid string) (bool, error) {
	resp, err := b.client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey(cid)),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, err
	}
	return resp != nil, nil
}

func objectKey(cid string) string {
	return "blobs/" + cid + ".zstd"
}

func isNoSuchKey(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound"
	}
	return false
}
