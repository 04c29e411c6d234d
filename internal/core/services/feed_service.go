package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"murmurnet/internal/core/domain"
	"murmurnet/internal/core/ports"

	"go.uber.org/zap"
)

const recentFeedLimit = 50

// FeedMetrics receives post pipeline counts. May be nil.
type FeedMetrics interface {
	RecordPostCreated()
	RecordModerationRejected()
	RecordPipelineDuration(d time.Duration)
}

type feedService struct {
	posts      ports.PostRepository
	moderation ports.ModerationClient
	publisher  ports.Publisher
	cache      ports.FeedCache
	metrics    FeedMetrics
	logger     *zap.SugaredLogger
}

// NewFeedService wires the post pipeline. moderation, cache, and metrics
// may be nil; the pipeline stages they back are then skipped.
func NewFeedService(
	posts ports.PostRepository,
	moderation ports.ModerationClient,
	publisher ports.Publisher,
	cache ports.FeedCache,
	metrics FeedMetrics,
	logger *zap.SugaredLogger,
) ports.FeedService {
	return &feedService{
		posts:      posts,
		moderation: moderation,
		publisher:  publisher,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreatePost runs the pipeline in fixed order: validate, moderate, persist,
// publish. An event is published only after the insert committed, and every
// committed insert triggers exactly one publish attempt.
func (s *feedService) CreatePost(ctx context.Context, identity domain.Identity, content string) (*domain.Post, error) {
	start := time.Now()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrPostEmpty
	}
	if utf8.RuneCountInString(content) > domain.MaxPostLength {
		return nil, domain.ErrPostTooLong
	}

	if s.moderation != nil {
		report, err := s.moderation.Classify(ctx, content)
		if err != nil {
			return nil, fmt.Errorf("moderation check: %w", err)
		}
		if !report.Acceptable() {
			if s.metrics != nil {
				s.metrics.RecordModerationRejected()
			}
			s.logger.Infow("post rejected by moderation", "user_id", identity.UserID)
			return nil, domain.ErrModerationRejected
		}
	}

	post, err := s.posts.Insert(ctx, identity.UserID, content)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.NewPostEvent(identity.Username, post.Content))

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.metrics != nil {
		s.metrics.RecordPostCreated()
		s.metrics.RecordPipelineDuration(time.Since(start))
	}

	s.logger.Infow("post created",
		"post_id", post.ID,
		"user_id", identity.UserID,
		"length", utf8.RuneCountInString(post.Content),
	)
	return post, nil
}

func (s *feedService) ListRecent(ctx context.Context) ([]domain.FeedEvent, error) {
	if s.cache != nil {
		if events, ok := s.cache.GetRecent(ctx); ok {
			return events, nil
		}
	}

	events, err := s.posts.ListRecent(ctx, recentFeedLimit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetRecent(ctx, events)
	}
	return events, nil
}
