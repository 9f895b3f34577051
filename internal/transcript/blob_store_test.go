package transcript

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/missioncontrol/mcagent/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestBlobStore(t *testing.T, api blobAPI) *BlobStore {
	t.Helper()
	store, err := NewBlobStore(BlobStoreOptions{
		AccountURL: "https://example.blob.core.windows.net",
		Container:  "sessions",
		Prefix:     "agents/main/",
		newBlobAPI: func(BlobStoreOptions) (blobAPI, error) { return api, nil },
	})
	require.NoError(t, err)
	return store
}

func TestNewBlobStore_RequiresLocation(t *testing.T) {
	_, err := NewBlobStore(BlobStoreOptions{Container: "sessions"})
	require.Error(t, err)

	_, err = NewBlobStore(BlobStoreOptions{AccountURL: "https://example.blob.core.windows.net"})
	require.Error(t, err)
}

func TestBlobStore_Locate(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockblobAPI(ctrl)

	api.EXPECT().ListBlobNames(gomock.Any(), "sessions", "agents/main/").Return([]string{
		"agents/main/b-T1.jsonl",
		"agents/main/a-T1.jsonl.gz",
		"agents/main/c-T2.jsonl",
		"agents/main/T1/",
		"agents/main/T1/meta.json",
	}, nil)

	store := newTestBlobStore(t, api)
	ids, err := store.Locate(context.Background(), models.NewSessionLabel("T1"))
	require.NoError(t, err)
	require.Equal(t, []string{"agents/main/a-T1.jsonl.gz", "agents/main/b-T1.jsonl"}, ids)
}

func TestBlobStore_ContainerNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockblobAPI(ctrl)

	notFound := &azcore.ResponseError{ErrorCode: string(bloberror.ContainerNotFound), StatusCode: 404}
	api.EXPECT().ListBlobNames(gomock.Any(), "sessions", "agents/main/").Return(nil, notFound)

	store := newTestBlobStore(t, api)
	ids, err := store.Locate(context.Background(), models.NewSessionLabel("T1"))
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestBlobStore_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockblobAPI(ctrl)

	api.EXPECT().ListBlobNames(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	store := newTestBlobStore(t, api)
	_, err := store.Locate(context.Background(), models.NewSessionLabel("T1"))
	require.ErrorContains(t, err, "boom")
}

func TestBlobStore_Load(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockblobAPI(ctrl)

	api.EXPECT().Download(gomock.Any(), "sessions", "agents/main/b-T1.jsonl").
		Return(io.NopCloser(strings.NewReader(sampleTranscript)), nil)

	store := newTestBlobStore(t, api)
	tr, err := Load(context.Background(), store, "agents/main/b-T1.jsonl")
	require.NoError(t, err)
	require.Len(t, tr.Entries, 4)
}
