package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cinelink/internal/models"
	"cinelink/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sort modes for GetComments.
const (
	SortNew  = "new"  // recency, storage-ordered
	SortTop  = "top"  // net score, ranked in memory
	SortBest = "best" // Wilson lower bound, ranked in memory
)

const (
	// candidateCeiling bounds the fetch-all stage of top/best. When a level
	// holds more rows than this, ranking degrades to best-effort over the
	// ceiling-limited set instead of failing the request.
	candidateCeiling = 1000

	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultMaxDepth = 3
)

var (
	ErrDiscussionNotFound    = errors.New("discussion not found")
	ErrParentNotFound        = errors.New("parent comment not found")
	ErrCrossDiscussionParent = errors.New("parent comment belongs to a different discussion")
	ErrNestingTooDeep        = errors.New("this thread is too deeply nested to reply further")
	ErrCommentNotFound       = errors.New("comment not found")
	ErrNotCommentAuthor      = errors.New("only the comment author may delete it")
	ErrInvalidSortMode       = errors.New("invalid sort mode")
)

// CommentStats are the discussion-level aggregates.
type CommentStats struct {
	TotalComments    int64 `json:"total_comments"`
	TopLevelComments int64 `json:"top_level_comments"`
	MaxDepth         int   `json:"max_depth"`
}

type CommentService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCommentService(database *gorm.DB, log *zap.Logger) *CommentService {
	return &CommentService{
		db:  database,
		log: log.Named("comments"),
	}
}

func padID(id uint) string {
	return fmt.Sprintf("%0*d", models.PathSegmentWidth, id)
}

// CreateComment inserts a comment and materializes its path. Structural
// violations (missing parent, cross-discussion parent, depth cap) are rejected
// before anything is written.
func (s *CommentService) CreateComment(ctx context.Context, discussionID, authorID uint, content string, parentID *uint, spoiler bool) (*RankedComment, error) {
	var comment models.Comment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var discussion models.Discussion
		if err := tx.First(&discussion, discussionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDiscussionNotFound
			}
			return fmt.Errorf("failed to load discussion: %w", err)
		}

		depth := 0
		parentPath := ""
		if parentID != nil {
			var parent models.Comment
			if err := tx.First(&parent, *parentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrParentNotFound
				}
				return fmt.Errorf("failed to load parent comment: %w", err)
			}
			if parent.DiscussionID != discussionID {
				return ErrCrossDiscussionParent
			}
			if parent.Depth+1 > models.MaxCommentDepth {
				return ErrNestingTooDeep
			}
			depth = parent.Depth + 1
			parentPath = parent.Path
		}

		comment = models.Comment{
			DiscussionID: discussionID,
			UserID:       authorID,
			ParentID:     parentID,
			Depth:        depth,
			Content:      content,
			Spoiler:      spoiler,
		}

		// The path embeds the row's own id, so it can only be written after
		// the insert has assigned one. Both statements share this transaction;
		// readers never observe the empty placeholder.
		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		path := padID(comment.ID)
		if parentPath != "" {
			path = parentPath + "." + path
		}
		if err := tx.Model(&comment).UpdateColumn("path", path).Error; err != nil {
			return fmt.Errorf("failed to write comment path: %w", err)
		}
		comment.Path = path
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload comment: %w", err)
	}

	s.log.Info("Comment created",
		zap.Uint("comment_id", comment.ID),
		zap.Uint("discussion_id", discussionID),
		zap.Int("depth", comment.Depth))

	return rankOne(&comment, nil), nil
}

// GetComments returns one page of ranked comments at the requested hierarchy
// level (roots when parentID is nil), with replies nested down to maxDepth
// additional levels.
//
// "new" pushes ordering and paging to the store. "top" and "best" rank on
// values derived from mutable vote rows, so the page cannot be cut there: the
// whole candidate level is fetched (up to candidateCeiling), scored, sorted,
// and only then sliced. Paging a pre-sort fetch would break the ranking
// whenever votes land between pages.
func (s *CommentService) GetComments(ctx context.Context, discussionID uint, parentID *uint, sortMode string, limit, offset int, viewerID *uint, maxDepth int) ([]*RankedComment, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	if maxDepth < 0 {
		maxDepth = 0
	}
	if maxDepth > models.MaxCommentDepth {
		maxDepth = models.MaxCommentDepth
	}

	level := func() *gorm.DB {
		q := s.db.WithContext(ctx).Where("discussion_id = ?", discussionID)
		if parentID == nil {
			q = q.Where("parent_id IS NULL")
		} else {
			q = q.Where("parent_id = ?", *parentID)
		}
		return q.Preload("User").Preload("Votes").Preload("Reactions.ReactionType")
	}

	var page []models.Comment
	switch sortMode {
	case SortNew:
		if err := level().Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&page).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch comments: %w", err)
		}

	case SortTop, SortBest:
		var candidates []models.Comment
		if err := level().Order("created_at ASC, id ASC").Limit(candidateCeiling).Find(&candidates).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch comments: %w", err)
		}
		if len(candidates) == candidateCeiling {
			s.log.Warn("Candidate ceiling reached, ranking is best-effort",
				zap.Uint("discussion_id", discussionID),
				zap.Int("ceiling", candidateCeiling))
		}
		page = slicePage(rankLevel(candidates, sortMode), offset, limit)

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortMode, sortMode)
	}

	return s.buildPage(ctx, page, viewerID, maxDepth)
}

// rankLevel orders candidate rows by the mode's score, descending. Ties break
// on ascending id so repeated requests page deterministically.
func rankLevel(candidates []models.Comment, sortMode string) []models.Comment {
	type key struct {
		net    int
		wilson float64
	}
	keys := make([]key, len(candidates))
	for i := range candidates {
		up, down := tallyVotes(candidates[i].Votes)
		keys[i] = key{net: utils.NetScore(up, down), wilson: utils.WilsonScore(up, down)}
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if sortMode == SortBest {
			if keys[i].wilson != keys[j].wilson {
				return keys[i].wilson > keys[j].wilson
			}
		} else {
			if keys[i].net != keys[j].net {
				return keys[i].net > keys[j].net
			}
		}
		return candidates[i].ID < candidates[j].ID
	})

	sorted := make([]models.Comment, len(candidates))
	for pos, i := range order {
		sorted[pos] = candidates[i]
	}
	return sorted
}

func slicePage(rows []models.Comment, offset, limit int) []models.Comment {
	if offset >= len(rows) {
		return nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

// buildPage loads the bounded reply subtree for each page row and assembles
// the ranked trees.
func (s *CommentService) buildPage(ctx context.Context, page []models.Comment, viewerID *uint, maxDepth int) ([]*RankedComment, error) {
	if len(page) == 0 {
		return []*RankedComment{}, nil
	}

	var descendants []models.Comment
	if maxDepth > 0 {
		for i := range page {
			subtree, err := s.fetchDescendants(ctx, &page[i], maxDepth)
			if err != nil {
				return nil, err
			}
			descendants = append(descendants, subtree...)
		}
	}

	return assembleTrees(page, descendants, viewerID), nil
}

// fetchDescendants pulls everything under root down to maxDepth extra levels
// in one path-prefix query, each row carrying its own vote and reaction rows.
// Path order doubles as creation order thanks to the padded segments.
func (s *CommentService) fetchDescendants(ctx context.Context, root *models.Comment, maxDepth int) ([]models.Comment, error) {
	var rows []models.Comment
	err := s.db.WithContext(ctx).
		Where("discussion_id = ? AND path LIKE ? AND depth <= ?", root.DiscussionID, root.Path+".%", root.Depth+maxDepth).
		Preload("User").
		Preload("Votes").
		Preload("Reactions.ReactionType").
		Order("path ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch replies: %w", err)
	}
	return rows, nil
}

// GetCommentStats returns the discussion-level aggregates.
func (s *CommentService) GetCommentStats(ctx context.Context, discussionID uint) (*CommentStats, error) {
	var stats CommentStats

	q := s.db.WithContext(ctx).Model(&models.Comment{}).Where("discussion_id = ?", discussionID)
	if err := q.Count(&stats.TotalComments).Error; err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	q = s.db.WithContext(ctx).Model(&models.Comment{}).Where("discussion_id = ? AND parent_id IS NULL", discussionID)
	if err := q.Count(&stats.TopLevelComments).Error; err != nil {
		return nil, fmt.Errorf("failed to count top-level comments: %w", err)
	}

	err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("discussion_id = ?", discussionID).
		Select("COALESCE(MAX(depth), 0)").
		Scan(&stats.MaxDepth).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute max depth: %w", err)
	}

	return &stats, nil
}

// DeleteComment soft-deletes a comment. The row is never removed: descendants
// reference it as an ancestor through their paths.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, requesterID uint) error {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to load comment: %w", err)
	}

	if comment.UserID != requesterID {
		return ErrNotCommentAuthor
	}

	if err := s.db.WithContext(ctx).Model(&comment).Update("is_deleted", true).Error; err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	s.log.Info("Comment soft-deleted", zap.Uint("comment_id", commentID))
	return nil
}
