package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/safebox/gallery/internal/domain"
	"github.com/safebox/gallery/internal/repository"
)

// fakeDB satisfies DB. Begin snapshots the catalog state so Rollback can
// restore it, giving the fakes real transaction semantics.
type fakeDB struct {
	catalog *fakeVideoRepo
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if d.catalog != nil {
		d.catalog.snapshot()
	}
	return &fakeTx{catalog: d.catalog}, nil
}

func (d *fakeDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *fakeDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, nil
}

func (d *fakeDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return nil
}

// fakeTx is a stub pgx.Tx. The repositories ignore the DBTX they are
// handed, so only Commit/Rollback carry behavior.
type fakeTx struct {
	catalog *fakeVideoRepo
	done    bool
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(ctx context.Context) error {
	t.done = true
	if t.catalog != nil {
		t.catalog.dropSnapshot()
	}
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.done && t.catalog != nil {
		t.catalog.restore()
	}
	t.done = true
	return nil
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, nil
}
func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                                       { return nil }

// fakeVideoRepo is an in-memory VideoRepository with failure injection.
type fakeVideoRepo struct {
	videos map[uuid.UUID]*domain.Video
	saved  map[uuid.UUID]*domain.Video
	fail   map[string]error
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{
		videos: map[uuid.UUID]*domain.Video{},
		fail:   map[string]error{},
	}
}

func (f *fakeVideoRepo) snapshot() {
	f.saved = map[uuid.UUID]*domain.Video{}
	for id, v := range f.videos {
		clone := *v
		f.saved[id] = &clone
	}
}

func (f *fakeVideoRepo) restore() {
	if f.saved != nil {
		f.videos = f.saved
		f.saved = nil
	}
}

func (f *fakeVideoRepo) dropSnapshot() { f.saved = nil }

func (f *fakeVideoRepo) failure(op string) error { return f.fail[op] }

func (f *fakeVideoRepo) LockCatalog(ctx context.Context, db repository.DBTX) error {
	return f.failure("LockCatalog")
}

func (f *fakeVideoRepo) FindByID(ctx context.Context, db repository.DBTX, id uuid.UUID) (*domain.Video, error) {
	if err := f.failure("FindByID"); err != nil {
		return nil, err
	}
	v, ok := f.videos[id]
	if !ok {
		return nil, nil
	}
	clone := *v
	return &clone, nil
}

func (f *fakeVideoRepo) Insert(ctx context.Context, db repository.DBTX, video *domain.Video) error {
	if err := f.failure("Insert"); err != nil {
		return err
	}
	clone := *video
	f.videos[video.ID] = &clone
	return nil
}

func (f *fakeVideoRepo) Update(ctx context.Context, db repository.DBTX, video *domain.Video) error {
	if err := f.failure("Update"); err != nil {
		return err
	}
	existing, ok := f.videos[video.ID]
	if !ok {
		return domain.ErrNotFound("video", video.ID.String())
	}
	clone := *video
	clone.OrderIndex = existing.OrderIndex
	f.videos[video.ID] = &clone
	return nil
}

func (f *fakeVideoRepo) Delete(ctx context.Context, db repository.DBTX, id uuid.UUID) error {
	if err := f.failure("Delete"); err != nil {
		return err
	}
	if _, ok := f.videos[id]; !ok {
		return domain.ErrNotFound("video", id.String())
	}
	delete(f.videos, id)
	return nil
}

func (f *fakeVideoRepo) CompactRanks(ctx context.Context, db repository.DBTX, deletedRank int) error {
	if err := f.failure("CompactRanks"); err != nil {
		return err
	}
	for _, v := range f.videos {
		if v.OrderIndex > deletedRank {
			v.OrderIndex--
		}
	}
	return nil
}

func (f *fakeVideoRepo) ClearNextReferences(ctx context.Context, db repository.DBTX, id uuid.UUID) error {
	if err := f.failure("ClearNextReferences"); err != nil {
		return err
	}
	for _, v := range f.videos {
		if v.NextVideoID != nil && *v.NextVideoID == id {
			v.NextVideoID = nil
		}
	}
	return nil
}

func (f *fakeVideoRepo) MaxRank(ctx context.Context, db repository.DBTX) (int, error) {
	if err := f.failure("MaxRank"); err != nil {
		return 0, err
	}
	max := -1
	for _, v := range f.videos {
		if v.OrderIndex > max {
			max = v.OrderIndex
		}
	}
	return max, nil
}

func (f *fakeVideoRepo) Count(ctx context.Context, db repository.DBTX) (int, error) {
	if err := f.failure("Count"); err != nil {
		return 0, err
	}
	return len(f.videos), nil
}

func (f *fakeVideoRepo) List(ctx context.Context, db repository.DBTX, offset, limit int) ([]domain.Video, error) {
	all, err := f.ListAll(ctx, db)
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return []domain.Video{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeVideoRepo) ListAll(ctx context.Context, db repository.DBTX) ([]domain.Video, error) {
	if err := f.failure("List"); err != nil {
		return nil, err
	}
	all := []domain.Video{}
	for _, v := range f.videos {
		all = append(all, *v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OrderIndex < all[j].OrderIndex })
	return all, nil
}

// fakeAdminRepo is an in-memory AdminRepository.
type fakeAdminRepo struct {
	admins map[uuid.UUID]*domain.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: map[uuid.UUID]*domain.Admin{}}
}

func (f *fakeAdminRepo) FindByEmail(ctx context.Context, db repository.DBTX, email string) (*domain.Admin, error) {
	for _, a := range f.admins {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeAdminRepo) FindByID(ctx context.Context, db repository.DBTX, id uuid.UUID) (*domain.Admin, error) {
	a, ok := f.admins[id]
	if !ok {
		return nil, nil
	}
	clone := *a
	return &clone, nil
}

func (f *fakeAdminRepo) Create(ctx context.Context, db repository.DBTX, admin *domain.Admin) error {
	clone := *admin
	f.admins[admin.ID] = &clone
	return nil
}

func (f *fakeAdminRepo) UpdateProfile(ctx context.Context, db repository.DBTX, id uuid.UUID, displayName, profileImageURL *string) error {
	a, ok := f.admins[id]
	if !ok {
		return domain.ErrNotFound("admin", id.String())
	}
	if displayName != nil {
		a.DisplayName = *displayName
	}
	if profileImageURL != nil {
		a.ProfileImageURL = profileImageURL
	}
	return nil
}

func (f *fakeAdminRepo) UpdatePasswordHash(ctx context.Context, db repository.DBTX, id uuid.UUID, hash string) error {
	a, ok := f.admins[id]
	if !ok {
		return domain.ErrNotFound("admin", id.String())
	}
	a.PasswordHash = hash
	return nil
}

// fakePublisher records published mutation events.
type fakePublisher struct {
	events []string
	err    error
}

func (f *fakePublisher) PublishMutation(ctx context.Context, action string, videoID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, action)
	return nil
}
