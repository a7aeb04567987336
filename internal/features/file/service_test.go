package file

import (
	"context"
	"os"
	"strings"
	"testing"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/config"
	"eduvibe/internal/features/access"
	"eduvibe/internal/features/audit"
	"eduvibe/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryFiles struct {
	byID map[string]*File
}

func (m *memoryFiles) Save(_ context.Context, f *File) error {
	cp := *f
	m.byID[f.ID.Hex()] = &cp
	return nil
}

func (m *memoryFiles) Get(_ context.Context, id string) (*File, error) {
	if f, ok := m.byID[id]; ok {
		return f, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *memoryFiles) ListByOwner(_ context.Context, ownerID string, _, _ int64) ([]File, int64, error) {
	var out []File
	for _, f := range m.byID {
		if f.OwnerID == ownerID {
			out = append(out, *f)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryFiles) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.byID, id.Hex())
	return nil
}

func (m *memoryFiles) EnsureIndexes(context.Context) error { return nil }

type nopAudit struct{}

func (nopAudit) LogChange(context.Context, common_models.AuditAction, string, string, map[string]common_models.Change) error {
	return nil
}

func (nopAudit) ListLogs(context.Context, audit.Filter, int64, int64) ([]common_models.AuditLog, int64, error) {
	return nil, 0, nil
}

const pdfBody = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n"

func newFileService(t *testing.T) (*FileServiceImpl, *LocalStorage) {
	t.Helper()
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	cfg := &config.Config{Uploads: config.UploadConfig{
		MaxSizeBytes: 1 << 10,
		AllowedMIMEs: []string{"image/png", "application/pdf"},
	}}
	repo := &memoryFiles{byID: map[string]*File{}}
	return NewFileService(repo, storage, nopAudit{}, cfg, zap.NewNop()).(*FileServiceImpl), storage
}

func student() access.AccessContext {
	return access.NewContext(primitive.NewObjectID().Hex(), access.RoleStudent)
}

func TestUploadStoresUnderGeneratedName(t *testing.T) {
	svc, storage := newFileService(t)
	owner := student()

	f, err := svc.Upload(context.Background(), owner, Upload{Filename: "../../notes.pdf", Size: int64(len(pdfBody))}, strings.NewReader(pdfBody))
	require.NoError(t, err)

	assert.Equal(t, "notes.pdf", f.OriginalFilename)
	assert.Equal(t, "application/pdf", f.MimeType)
	assert.True(t, strings.HasSuffix(f.StoredName, ".pdf"))
	assert.NotContains(t, f.StoredName, "notes")
	assert.Equal(t, "/api/files/"+f.ID.Hex()+"/download", f.URL)

	data, err := os.ReadFile(storage.Path(f.StoredName))
	require.NoError(t, err)
	assert.Equal(t, pdfBody, string(data))
}

func TestUploadRejectsWrongTypeAndSize(t *testing.T) {
	svc, _ := newFileService(t)
	owner := student()

	_, err := svc.Upload(context.Background(), owner, Upload{Filename: "fake.pdf"}, strings.NewReader("just some text"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	big := strings.Repeat("x", 2<<10)
	_, err = svc.Upload(context.Background(), owner, Upload{Filename: "big.pdf", Size: 1}, strings.NewReader("%PDF-1.4\n"+big))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Upload(context.Background(), owner, Upload{Filename: "empty.pdf"}, strings.NewReader(""))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestOpenAndDeleteRespectOwnership(t *testing.T) {
	svc, storage := newFileService(t)
	ctx := context.Background()
	owner, other := student(), student()

	f, err := svc.Upload(ctx, owner, Upload{Filename: "a.pdf"}, strings.NewReader(pdfBody))
	require.NoError(t, err)

	_, _, err = svc.Open(ctx, other, f.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, other, f.ID.Hex()), apperrors.ErrForbidden)

	_, path, err := svc.Open(ctx, owner, f.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, storage.Path(f.StoredName), path)

	require.NoError(t, svc.Delete(ctx, access.NewContext("admin", access.RoleAdmin), f.ID.Hex()))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	files, total, err := svc.ListMine(ctx, owner, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, files)
}

func TestLocalStoragePathStaysInsideDir(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, storage.Path("passwd"), storage.Path("../../etc/passwd"))
	assert.NoError(t, storage.Remove("missing.bin"))
}
