package external

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	storageapi "google.golang.org/api/storage/v1"
)

const (
	uploadTimeout  = 180 * time.Second
	maxRetries     = 4
	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 30 * time.Second
)

// Uploader publishes a finished clip (and its caption sidecar) to a
// destination outside the local filesystem.
type Uploader interface {
	Upload(ctx context.Context, destPath string, data []byte, contentType string) error
}

// HTTPUploader PUTs a file to a generic HTTP storage endpoint, retrying
// transient failures with exponential backoff and jitter.
type HTTPUploader struct {
	baseURL string
	authKey string
	client  *http.Client
}

// NewHTTPUploader returns an HTTPUploader that PUTs to baseURL + destPath,
// authenticating with a bearer token when authKey is non-empty.
func NewHTTPUploader(baseURL, authKey string) *HTTPUploader {
	return &HTTPUploader{
		baseURL: baseURL,
		authKey: authKey,
		client: &http.Client{
			Timeout: uploadTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Upload PUTs data to baseURL/destPath, retrying on transient network
// errors and 408/429/502/503/504 responses.
func (u *HTTPUploader) Upload(ctx context.Context, destPath string, data []byte, contentType string) error {
	url := fmt.Sprintf("%s/%s", strings.TrimRight(u.baseURL, "/"), strings.TrimLeft(destPath, "/"))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay(attempt)
			select {
			case <-ctx.Done():
				return fmt.Errorf("upload cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
		req, err := http.NewRequestWithContext(reqCtx, http.MethodPut, url, bytes.NewReader(data))
		if err != nil {
			cancel()
			return fmt.Errorf("building upload request: %w", err)
		}
		if u.authKey != "" {
			req.Header.Set("Authorization", "Bearer "+u.authKey)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := u.client.Do(req)
		if err != nil {
			cancel()
			lastErr = err
			log.Printf("[external:http-upload] attempt %d failed: %v", attempt+1, err)
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
			return nil
		}
		lastErr = fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
		if !isRetryableStatus(resp.StatusCode) {
			return lastErr
		}
		log.Printf("[external:http-upload] attempt %d returned status %d (retryable)", attempt+1, resp.StatusCode)
	}

	return fmt.Errorf("upload failed after %d attempts: %w", maxRetries+1, lastErr)
}

// GCSUploader uploads finished clips to a Google Cloud Storage bucket
// using application-default or service-account credentials.
type GCSUploader struct {
	bucket          string
	credentialsFile string
}

// NewGCSUploader returns a GCSUploader targeting bucket. If
// credentialsFile is empty, application-default credentials are used.
func NewGCSUploader(bucket, credentialsFile string) *GCSUploader {
	return &GCSUploader{bucket: bucket, credentialsFile: credentialsFile}
}

// Upload writes data to gs://bucket/destPath.
func (u *GCSUploader) Upload(ctx context.Context, destPath string, data []byte, contentType string) error {
	var opts []option.ClientOption
	if u.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(u.credentialsFile))
	} else {
		creds, err := google.FindDefaultCredentials(ctx, storageapi.DevstorageReadWriteScope)
		if err != nil {
			return fmt.Errorf("resolving default GCS credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(creds.TokenSource))
	}

	svc, err := storageapi.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("creating GCS client: %w", err)
	}

	obj := &storageapi.Object{
		Name:        destPath,
		Bucket:      u.bucket,
		ContentType: contentType,
	}
	_, err = svc.Objects.Insert(u.bucket, obj).Media(bytes.NewReader(data)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("uploading to gs://%s/%s: %w", u.bucket, destPath, err)
	}
	return nil
}

// LocalUploader just copies the data to a path on disk; useful for
// --health-check mode and local test runs where no external destination
// is configured.
type LocalUploader struct {
	RootDir string
}

// Upload writes data to RootDir/destPath.
func (u *LocalUploader) Upload(ctx context.Context, destPath string, data []byte, contentType string) error {
	path := u.RootDir + "/" + destPath
	return os.WriteFile(path, data, 0o644)
}

func retryDelay(attempt int) time.Duration {
	delay := float64(baseRetryDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(maxRetryDelay) {
		delay = float64(maxRetryDelay)
	}
	jitter := delay * 0.25 * rand.Float64()
	return time.Duration(delay + jitter)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout ||
		status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout
}
