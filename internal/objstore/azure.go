package objstore

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"lakeflow/internal/domain"
)

var _ domain.ObjectStore = (*AzureStore)(nil)

// AzureStore implements domain.ObjectStore on Azure Blob Storage using
// shared-key authentication. Buckets map to containers.
type AzureStore struct {
	client *azblob.Client
}

// NewAzureStore creates an Azure-backed object store.
func NewAzureStore(accountName, accountKey string) (*AzureStore, error) {
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &AzureStore{client: client}, nil
}

// List returns all blobs under the given prefix.
func (s *AzureStore) List(ctx context.Context, container, prefix string) ([]domain.ObjectInfo, error) {
	pager := s.client.NewListBlobsFlatPager(container, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	var objects []domain.ObjectInfo
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list az://%s/%s: %w", container, prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			info := domain.ObjectInfo{Key: *item.Name}
			if item.Properties != nil && item.Properties.ContentLength != nil {
				info.Size = *item.Properties.ContentLength
			}
			objects = append(objects, info)
		}
	}
	return objects, nil
}

// Copy performs a synchronous server-side blob copy.
func (s *AzureStore) Copy(ctx context.Context, srcContainer, srcKey, dstContainer, dstKey string) error {
	svc := s.client.ServiceClient()
	srcURL := svc.NewContainerClient(srcContainer).NewBlobClient(srcKey).URL()
	dst := svc.NewContainerClient(dstContainer).NewBlockBlobClient(dstKey)

	if _, err := dst.CopyFromURL(ctx, srcURL, nil); err != nil {
		return fmt.Errorf("copy az://%s/%s to az://%s/%s: %w",
			srcContainer, srcKey, dstContainer, dstKey, err)
	}
	return nil
}

// Read returns the full contents of a blob.
func (s *AzureStore) Read(ctx context.Context, container, key string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, container, key, nil)
	if err != nil {
		return nil, fmt.Errorf("download az://%s/%s: %w", container, key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read az://%s/%s: %w", container, key, err)
	}
	return data, nil
}
