package interactor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"userapi/internal/model"
	"userapi/internal/storage"
)

// DefaultExportExpiry is used when NewUserExporter receives a non-positive expiry.
const DefaultExportExpiry = 15 * time.Minute

var ErrExportDisabled = errors.New("export is disabled")

// ExportResult describes an uploaded snapshot.
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Count     int       `json:"count"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportUseCase snapshots the user store into object storage.
type ExportUseCase interface {
	// Export uploads all users as a JSON document and returns a pre-signed download URL.
	Export(ctx context.Context) (*ExportResult, error)
}

type userLister interface {
	GetAll(ctx context.Context) ([]model.User, error)
}

// UserExporter implements ExportUseCase.
type UserExporter struct {
	users  userLister
	store  storage.Storage
	expiry time.Duration
	now    func() time.Time
}

var _ ExportUseCase = (*UserExporter)(nil)

// NewUserExporter builds an exporter reading from users and writing to store.
// A nil store yields an exporter whose Export always fails with ErrExportDisabled.
func NewUserExporter(users userLister, store storage.Storage, expiry time.Duration) *UserExporter {
	if expiry <= 0 {
		expiry = DefaultExportExpiry
	}
	return &UserExporter{users: users, store: store, expiry: expiry, now: time.Now}
}

// Export writes the snapshot, then presigns it. If presigning fails the object is removed again.
func (e *UserExporter) Export(ctx context.Context) (*ExportResult, error) {
	if e.store == nil {
		return nil, ErrExportDisabled
	}

	users, err := e.users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	body, err := json.Marshal(exportDocument{Users: users, GeneratedAt: e.now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := "exports/users-" + uuid.NewString() + ".json"
	info, err := e.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata: map[string]string{
			"user-count": fmt.Sprint(len(users)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	url, err := e.store.PresignGet(ctx, info.Key, e.expiry)
	if err != nil {
		if delErr := e.store.Delete(ctx, info.Key); delErr != nil {
			return nil, fmt.Errorf("presign failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("presign failed: %w", err)
	}

	return &ExportResult{
		Key:       info.Key,
		URL:       url,
		Count:     len(users),
		ExpiresAt: e.now().Add(e.expiry).UTC(),
	}, nil
}

type exportDocument struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Users       []model.User `json:"users"`
}
