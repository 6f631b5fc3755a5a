package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/safebox/gallery/internal/domain"
	"github.com/safebox/gallery/internal/repository"
)

// DB combines the query and transaction capabilities of *pgxpool.Pool.
type DB interface {
	repository.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// EventPublisher broadcasts catalog mutation events. May be a no-op.
type EventPublisher interface {
	PublishMutation(ctx context.Context, action string, videoID uuid.UUID) error
}

// CatalogService owns the ordered video catalog. Every mutation runs in a
// single transaction that first takes the catalog advisory lock, so writers
// serialize and ranks stay a contiguous 0..N-1 sequence at every commit.
// Readers use plain snapshot queries and never see partial compaction.
type CatalogService struct {
	db     DB
	videos repository.VideoRepository
	events EventPublisher
	logger *slog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(db DB, videos repository.VideoRepository, events EventPublisher, logger *slog.Logger) *CatalogService {
	return &CatalogService{db: db, videos: videos, events: events, logger: logger}
}

// CreateVideoInput holds the creation request fields. NextVideoID is the
// raw submission: empty means no pointer, anything else must be a valid id.
type CreateVideoInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoLink   string `json:"video_link"`
	NextVideoID string `json:"next_video_id"`
}

// Create appends a new video at the end of the catalog. The link must yield
// a YouTube id or the record is rejected before any write. Rank is computed
// and written inside one locked transaction so concurrent creates never
// share a rank.
func (s *CatalogService) Create(ctx context.Context, input CreateVideoInput) (*domain.Video, error) {
	if err := domain.ValidateTitle(input.Title); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	youtubeID, ok := domain.ExtractYouTubeID(input.VideoLink)
	if !ok {
		return nil, domain.ErrUnrecognizedLink(input.VideoLink)
	}

	nextID, err := normalizeNextID(input.NextVideoID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.videos.LockCatalog(ctx, tx); err != nil {
		return nil, domain.ErrInternal("lock catalog", err)
	}

	if nextID != nil {
		if err := s.requireVideo(ctx, tx, *nextID, "next video"); err != nil {
			return nil, err
		}
	}

	rank, err := s.nextRank(ctx, tx)
	if err != nil {
		return nil, err
	}

	video := &domain.Video{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		VideoLink:   input.VideoLink,
		YouTubeID:   &youtubeID,
		NextVideoID: nextID,
		OrderIndex:  rank,
	}
	if err := s.videos.Insert(ctx, tx, video); err != nil {
		return nil, domain.ErrInternal("insert video", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.publish(ctx, "video.created", video.ID)
	return video, nil
}

// UpdateVideoInput holds the update request fields.
type UpdateVideoInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoLink   string `json:"video_link"`
	NextVideoID string `json:"next_video_id"`
}

// Update mutates content fields of an existing video. Rank never changes.
// The YouTube id is re-derived from the submitted link. The transaction
// takes the catalog lock even though no ranks move: the next-pointer
// existence check must serialize with Delete, or a concurrent delete of
// the pointee could commit between the check and our write and leave the
// pointer dangling.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, input UpdateVideoInput) (*domain.Video, error) {
	if err := domain.ValidateTitle(input.Title); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	youtubeID, ok := domain.ExtractYouTubeID(input.VideoLink)
	if !ok {
		return nil, domain.ErrUnrecognizedLink(input.VideoLink)
	}

	nextID, err := normalizeNextID(input.NextVideoID)
	if err != nil {
		return nil, err
	}
	if nextID != nil && *nextID == id {
		return nil, domain.ErrValidation("video cannot point to itself")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.videos.LockCatalog(ctx, tx); err != nil {
		return nil, domain.ErrInternal("lock catalog", err)
	}

	video, err := s.videos.FindByID(ctx, tx, id)
	if err != nil {
		return nil, domain.ErrInternal("find video", err)
	}
	if video == nil {
		return nil, domain.ErrNotFound("video", id.String())
	}

	if nextID != nil {
		if err := s.requireVideo(ctx, tx, *nextID, "next video"); err != nil {
			return nil, err
		}
	}

	video.Title = input.Title
	video.Description = input.Description
	video.VideoLink = input.VideoLink
	video.YouTubeID = &youtubeID
	video.NextVideoID = nextID

	if err := s.videos.Update(ctx, tx, video); err != nil {
		if appErr, ok := err.(*domain.AppError); ok {
			return nil, appErr
		}
		return nil, domain.ErrInternal("update video", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.publish(ctx, "video.updated", video.ID)
	return video, nil
}

// Delete removes a video and compacts the ranks above it, then nullifies
// every next pointer that referenced it. All of it commits or none of it:
// a reader never observes a gap, a duplicate rank, or a dangling pointer.
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.videos.LockCatalog(ctx, tx); err != nil {
		return domain.ErrInternal("lock catalog", err)
	}

	video, err := s.videos.FindByID(ctx, tx, id)
	if err != nil {
		return domain.ErrInternal("find video", err)
	}
	if video == nil {
		return domain.ErrNotFound("video", id.String())
	}

	if err := s.videos.ClearNextReferences(ctx, tx, id); err != nil {
		return domain.ErrInternal("clear next references", err)
	}
	if err := s.videos.Delete(ctx, tx, id); err != nil {
		if appErr, ok := err.(*domain.AppError); ok {
			return appErr
		}
		return domain.ErrInternal("delete video", err)
	}
	if err := s.videos.CompactRanks(ctx, tx, video.OrderIndex); err != nil {
		return domain.ErrInternal("compact ranks", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.publish(ctx, "video.deleted", id)
	return nil
}

// VideoDetail is a video plus its resolved next-pointer summary, if any.
type VideoDetail struct {
	domain.Video
	Next *domain.VideoSummary `json:"next,omitempty"`
}

// Get returns a video by id with its next pointer resolved.
func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*VideoDetail, error) {
	video, err := s.videos.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrInternal("find video", err)
	}
	if video == nil {
		return nil, domain.ErrNotFound("video", id.String())
	}

	detail := &VideoDetail{Video: *video}
	if video.NextVideoID != nil {
		next, err := s.videos.FindByID(ctx, s.db, *video.NextVideoID)
		if err != nil {
			return nil, domain.ErrInternal("resolve next video", err)
		}
		if next != nil {
			summary := next.Summary()
			detail.Next = &summary
		}
	}
	return detail, nil
}

const (
	defaultPageSize = 6
	maxPageSize     = 50
)

// List returns videos ordered by ascending rank, paginated. Each call is
// independent and reflects committed state.
func (s *CatalogService) List(ctx context.Context, offset, limit int) ([]domain.Video, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	videos, err := s.videos.List(ctx, s.db, offset, limit)
	if err != nil {
		return nil, domain.ErrInternal("list videos", err)
	}
	return videos, nil
}

// ListAll returns the full catalog ordered by ascending rank (admin view).
func (s *CatalogService) ListAll(ctx context.Context) ([]domain.Video, error) {
	videos, err := s.videos.ListAll(ctx, s.db)
	if err != nil {
		return nil, domain.ErrInternal("list videos", err)
	}
	return videos, nil
}

// Count returns the number of videos in the catalog.
func (s *CatalogService) Count(ctx context.Context) (int, error) {
	n, err := s.videos.Count(ctx, s.db)
	if err != nil {
		return 0, domain.ErrInternal("count videos", err)
	}
	return n, nil
}

// nextRank computes the append rank and cross-checks it against the row
// count. max+1 != count means the sequence already has a gap or duplicate,
// which is a store bug and must not be built upon.
func (s *CatalogService) nextRank(ctx context.Context, tx pgx.Tx) (int, error) {
	maxRank, err := s.videos.MaxRank(ctx, tx)
	if err != nil {
		return 0, domain.ErrInternal("read max rank", err)
	}
	count, err := s.videos.Count(ctx, tx)
	if err != nil {
		return 0, domain.ErrInternal("count videos", err)
	}
	if maxRank+1 != count {
		return 0, domain.ErrRankInvariant(fmt.Sprintf("max rank %d does not match count %d", maxRank, count))
	}
	return count, nil
}

func (s *CatalogService) requireVideo(ctx context.Context, db repository.DBTX, id uuid.UUID, entity string) error {
	v, err := s.videos.FindByID(ctx, db, id)
	if err != nil {
		return domain.ErrInternal("find "+entity, err)
	}
	if v == nil {
		return domain.ErrNotFound(entity, id.String())
	}
	return nil
}

// normalizeNextID maps an empty submission to "no pointer" and rejects
// anything else that is not a well-formed id.
func normalizeNextID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.ErrValidation("next video id is not a valid id")
	}
	return &id, nil
}

func (s *CatalogService) publish(ctx context.Context, action string, videoID uuid.UUID) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishMutation(ctx, action, videoID); err != nil {
		s.logger.Warn("publish mutation event failed", "action", action, "video_id", videoID, "error", err)
	}
}
