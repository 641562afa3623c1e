package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

// AzureStorage implements Storage for Azure Blob Storage.
type AzureStorage struct {
	client    *azblob.Client
	container string
	prefix    string
}

// AzureConfig holds Azure-specific configuration.
type AzureConfig struct {
	StorageAccount string
	AccountKey     string
	Container      string
	Prefix         string // Optional prefix for all keys
}

// NewAzureStorage creates a new Azure Blob storage provider using shared key
// credentials.
func NewAzureStorage(cfg AzureConfig) (*AzureStorage, error) {
	cred, err := azblob.NewSharedKeyCredential(cfg.StorageAccount, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.StorageAccount)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure client: %w", err)
	}

	return &AzureStorage{
		client:    client,
		container: cfg.Container,
		prefix:    cfg.Prefix,
	}, nil
}

// Upload implements Storage.Upload.
func (a *AzureStorage) Upload(ctx context.Context, key string, reader io.Reader, metadata map[string]string) error {
	opts := &azblob.UploadStreamOptions{}
	if len(metadata) > 0 {
		opts.Metadata = make(map[string]*string, len(metadata))
		for k, v := range metadata {
			value := v
			opts.Metadata[k] = &value
		}
	}

	_, err := a.client.UploadStream(ctx, a.container, a.getFullKey(key), reader, opts)
	if err != nil {
		return fmt.Errorf("failed to upload to Azure Blob: %w", err)
	}
	return nil
}

// Delete implements Storage.Delete.
func (a *AzureStorage) Delete(ctx context.Context, key string) error {
	_, err := a.client.DeleteBlob(ctx, a.container, a.getFullKey(key), nil)
	if err != nil {
		return fmt.Errorf("failed to delete from Azure Blob: %w", err)
	}
	return nil
}

// List implements Storage.List.
func (a *AzureStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	fullPrefix := a.getFullKey(prefix)

	var objects []ObjectInfo
	pager := a.client.NewListBlobsFlatPager(a.container, &azblob.ListBlobsFlatOptions{
		Prefix:  &fullPrefix,
		Include: container.ListBlobsInclude{Metadata: true},
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list Azure blobs: %w", err)
		}

		for _, item := range page.Segment.BlobItems {
			info := ObjectInfo{
				Key:      a.stripPrefix(*item.Name),
				Metadata: make(map[string]string),
			}
			if item.Properties.ContentLength != nil {
				info.Size = *item.Properties.ContentLength
			}
			if item.Properties.LastModified != nil {
				info.LastModified = *item.Properties.LastModified
			}
			for k, v := range item.Metadata {
				if v != nil {
					info.Metadata[k] = *v
				}
			}
			objects = append(objects, info)
		}
	}

	return objects, nil
}

// GetLastBackupTime implements Storage.GetLastBackupTime.
func (a *AzureStorage) GetLastBackupTime(ctx context.Context) (time.Time, error) {
	objects, err := a.List(ctx, "")
	if err != nil {
		return time.Time{}, err
	}
	if len(objects) == 0 {
		return time.Time{}, nil
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})

	if timestamp, ok := objects[0].Metadata["backup-timestamp"]; ok {
		if t, err := time.Parse(time.RFC3339, timestamp); err == nil {
			return t, nil
		}
	}

	return objects[0].LastModified, nil
}

func (a *AzureStorage) getFullKey(key string) string {
	if a.prefix == "" {
		return key
	}
	return path.Join(a.prefix, key)
}

func (a *AzureStorage) stripPrefix(key string) string {
	if a.prefix == "" {
		return key
	}
	if len(key) > len(a.prefix) {
		return key[len(a.prefix)+1:]
	}
	return key
}
