package bbndk

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Client wraps the S3 client for Cloudflare R2 (or any S3-compatible
// endpoint the release zips get published to).
type R2Client struct {
	Client     *s3.Client
	BucketName string
}

// NewR2Client initializes a new R2 client using configuration values.
func NewR2Client(ctx context.Context, cfg *Config) (*R2Client, error) {
	accountID := cfg.Values["R2_ACCOUNT_ID"]
	accessKey := cfg.Values["R2_ACCESS_KEY_ID"]
	secretKey := cfg.Values["R2_SECRET_ACCESS_KEY"]
	bucketName := cfg.Values["R2_BUCKET_NAME"]

	if accountID == "" || accessKey == "" || secretKey == "" || bucketName == "" {
		return nil, fmt.Errorf("R2 credentials missing in configuration (R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME)")
	}

	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
		}, nil
	})

	options := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithEndpointResolverWithOptions(r2Resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		awsconfig.WithRegion("auto"),
	}

	if Debug {
		options = append(options, awsconfig.WithClientLogMode(aws.LogSigning|aws.LogRetries|aws.LogRequest|aws.LogResponse))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &R2Client{
		Client:     client,
		BucketName: bucketName,
	}, nil
}

// UploadFile uploads a file to R2.
func (r *R2Client) UploadFile(ctx context.Context, key string, body []byte) error {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(r.BucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	return err
}

// latestArtifact finds the most recently built module zip in the output
// directory.
func latestArtifact() (string, error) {
	matches, err := filepath.Glob(filepath.Join(OutDir, "android-busybox-ndk-v*.zip"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no build artifact found in %s, run 'bbndk build' first", OutDir)
	}
	sort.Slice(matches, func(i, j int) bool {
		fi, _ := os.Stat(matches[i])
		fj, _ := os.Stat(matches[j])
		if fi == nil || fj == nil {
			return matches[i] < matches[j]
		}
		return fi.ModTime().After(fj.ModTime())
	})
	return matches[0], nil
}

// runUpload pushes the artifact and its checksum sidecar to the bucket.
func runUpload(ctx context.Context, cfg *Config, file string) error {
	if file == "" {
		var err error
		file, err = latestArtifact()
		if err != nil {
			return err
		}
	}

	client, err := NewR2Client(ctx, cfg)
	if err != nil {
		return err
	}

	for _, path := range []string{file, file + ".b3"} {
		data, err := os.ReadFile(path)
		if err != nil {
			if filepath.Ext(path) == ".b3" {
				// Older artifacts may lack the sidecar; not worth failing over.
				cPrintf(colWarn, "No checksum sidecar for %s\n", file)
				continue
			}
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		key := filepath.Base(path)
		colArrow.Print("-> ")
		colSuccess.Printf("Uploading %s (%d bytes)\n", key, len(data))
		if err := client.UploadFile(ctx, key, data); err != nil {
			return fmt.Errorf("upload of %s failed: %w", key, err)
		}
	}

	colArrow.Print("-> ")
	colSuccess.Println("Upload complete")
	return nil
}
