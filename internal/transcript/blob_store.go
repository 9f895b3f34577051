package transcript

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/missioncontrol/mcagent/internal/models"
)

//go:generate go tool mockgen -source blob_store.go -destination mock_blob_api_test.go -package transcript

// BlobStoreOptions configures a BlobStore.
type BlobStoreOptions struct {
	// AccountURL is the blob service endpoint. A URL carrying a SAS query
	// string is used without any other credential.
	AccountURL string
	Container  string
	// Prefix narrows the listing, e.g. "agents/main/sessions/".
	Prefix string

	// Credential overrides the default Azure credential chain.
	Credential azcore.TokenCredential
	Logger     *slog.Logger

	// newBlobAPI is replaced in tests.
	newBlobAPI func(opts BlobStoreOptions) (blobAPI, error)
}

var _ Store = (*BlobStore)(nil)

// BlobStore finds transcripts uploaded to an Azure Storage container.
type BlobStore struct {
	api       blobAPI
	container string
	prefix    string
	logger    *slog.Logger
}

// NewBlobStore connects to the configured container. No network call is made
// until the first Locate.
func NewBlobStore(opts BlobStoreOptions) (*BlobStore, error) {
	if opts.AccountURL == "" {
		return nil, fmt.Errorf("blob transcript store requires an account URL")
	}
	if opts.Container == "" {
		return nil, fmt.Errorf("blob transcript store requires a container")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.newBlobAPI == nil {
		opts.newBlobAPI = newAzblobAPI
	}

	api, err := opts.newBlobAPI(opts)
	if err != nil {
		return nil, err
	}

	return &BlobStore{
		api:       api,
		container: opts.Container,
		prefix:    opts.Prefix,
		logger:    opts.Logger,
	}, nil
}

// Locate lists blobs under the prefix and keeps the ones matching label.
// A missing container is treated like an empty sessions directory.
func (s *BlobStore) Locate(ctx context.Context, label models.SessionLabel) ([]string, error) {
	names, err := s.api.ListBlobNames(ctx, s.container, s.prefix)
	if err != nil {
		if bloberror.HasCode(err, bloberror.ContainerNotFound) {
			s.logger.Warn("transcript container not found", "container", s.container)
			return nil, nil
		}
		return nil, fmt.Errorf("listing transcript blobs: %w", err)
	}

	taskID := label.TaskID()
	var ids []string
	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			continue
		}
		if Matches(name, taskID) {
			ids = append(ids, name)
		}
	}

	slices.Sort(ids)
	return ids, nil
}

// Open downloads the blob named id.
func (s *BlobStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	return s.api.Download(ctx, s.container, id)
}

// blobAPI is the subset of [*azblob.Client] the store needs.
type blobAPI interface {
	// ListBlobNames pages through [azblob.Client.NewListBlobsFlatPager]
	ListBlobNames(ctx context.Context, container, prefix string) ([]string, error)

	// Download maps to [azblob.Client.DownloadStream]
	Download(ctx context.Context, container, name string) (io.ReadCloser, error)
}

func newAzblobAPI(opts BlobStoreOptions) (blobAPI, error) {
	if strings.Contains(opts.AccountURL, "?") {
		client, err := azblob.NewClientWithNoCredential(opts.AccountURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating blob client: %w", err)
		}
		return &azblobWrapper{inner: client}, nil
	}

	cred := opts.Credential
	if cred == nil {
		defaultCred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("creating azure credential: %w", err)
		}
		cred = defaultCred
	}

	client, err := azblob.NewClient(opts.AccountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return &azblobWrapper{inner: client}, nil
}

type azblobWrapper struct {
	inner *azblob.Client
}

func (w *azblobWrapper) ListBlobNames(ctx context.Context, container, prefix string) ([]string, error) {
	opts := &azblob.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = &prefix
	}

	var names []string
	pager := w.inner.NewListBlobsFlatPager(container, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			if item != nil && item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	return names, nil
}

func (w *azblobWrapper) Download(ctx context.Context, container, name string) (io.ReadCloser, error) {
	resp, err := w.inner.DownloadStream(ctx, container, name, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
