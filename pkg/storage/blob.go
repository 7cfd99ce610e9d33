// pkg/storage/blob.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"go.uber.org/zap"
)

// ObjectStore abstracts a remote object-storage container: listing the
// objects it holds and downloading an object's bytes.
type ObjectStore interface {
	ListObjects(ctx context.Context) ([]string, error)
	FetchObject(ctx context.Context, name string) ([]byte, error)
}

// AzureStore is the Azure Blob Storage implementation of ObjectStore,
// authenticated by a SAS token embedded in or appended to the container
// URL.
type AzureStore struct {
	client *container.Client
	logger *zap.Logger
}

var _ ObjectStore = (*AzureStore)(nil)

// ParseSASURL splits a container URL with an embedded SAS token into
// base URL and token.
func ParseSASURL(containerURL string) (string, string) {
	if base, token, found := strings.Cut(containerURL, "?"); found {
		return base, token
	}
	return containerURL, ""
}

// NewAzureStore creates an ObjectStore for an Azure Blob container. The
// SAS token may be supplied separately or embedded in the URL.
func NewAzureStore(containerURL, sasToken string, logger *zap.Logger) (*AzureStore, error) {
	if containerURL == "" {
		return nil, errors.New("container URL cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if sasToken == "" {
		containerURL, sasToken = ParseSASURL(containerURL)
	}
	fullURL := containerURL
	if sasToken != "" {
		fullURL = containerURL + "?" + sasToken
	}

	client, err := container.NewClientWithNoCredential(fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create container client: %w", err)
	}

	return &AzureStore{client: client, logger: logger}, nil
}

// ListObjects returns the names of all blobs in the container.
func (s *AzureStore) ListObjects(ctx context.Context) ([]string, error) {
	var names []string

	pager := s.client.NewListBlobsFlatPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}

	s.logger.Debug("Listed container objects", zap.Int("count", len(names)))
	return names, nil
}

// FetchObject downloads a single blob's content.
func (s *AzureStore) FetchObject(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.NewBlobClient(name).DownloadStream(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("download blob %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", name, err)
	}
	return data, nil
}
