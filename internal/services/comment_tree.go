package services

import (
	"html/template"
	"time"

	"cinelink/internal/models"
	"cinelink/internal/utils"
)

// ReactionCount is one reaction type rolled up over a comment.
type ReactionCount struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// RankedComment is the read model returned to callers: a comment plus vote
// tallies, ranking scores, the viewer's own vote and nested replies. It is
// rebuilt from the live vote rows on every fetch and never persisted.
type RankedComment struct {
	ID           uint             `json:"id"`
	DiscussionID uint             `json:"discussion_id"`
	UserID       uint             `json:"user_id"`
	Username     string           `json:"username"`
	AvatarURL    *string          `json:"avatar_url"`
	ParentID     *uint            `json:"parent_id"`
	Depth        int              `json:"depth"`
	Path         string           `json:"path"`
	Content      string           `json:"content"`
	ContentHTML  template.HTML    `json:"content_html"`
	Spoiler      bool             `json:"spoiler"`
	IsDeleted    bool             `json:"is_deleted"`
	Upvotes      int              `json:"upvotes"`
	Downvotes    int              `json:"downvotes"`
	Score        int              `json:"score"`
	WilsonScore  float64          `json:"wilson_score"`
	UserVote     *int             `json:"user_vote"`
	Reactions    []ReactionCount  `json:"reactions"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Replies      []*RankedComment `json:"replies"`
}

// assembleTrees nests the flat descendant rows under their fetched roots and
// ranks every node. The output keeps the input shape: nothing is dropped,
// merged or reordered here; ordering the requested level is the coordinator's
// job and replies stay in path (creation) order from the fetch.
func assembleTrees(roots []models.Comment, descendants []models.Comment, viewerID *uint) []*RankedComment {
	children := make(map[uint][]*models.Comment)
	for i := range descendants {
		c := &descendants[i]
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	trees := make([]*RankedComment, 0, len(roots))
	for i := range roots {
		trees = append(trees, rankSubtree(&roots[i], children, viewerID))
	}
	return trees
}

// rankSubtree recurses over the children map. Termination is guaranteed by the
// store: descendant rows were fetched with a bounded depth.
func rankSubtree(c *models.Comment, children map[uint][]*models.Comment, viewerID *uint) *RankedComment {
	node := rankOne(c, viewerID)
	for _, child := range children[c.ID] {
		node.Replies = append(node.Replies, rankSubtree(child, children, viewerID))
	}
	return node
}

// rankOne computes the derived fields for a single row from its preloaded
// vote and reaction rows.
func rankOne(c *models.Comment, viewerID *uint) *RankedComment {
	up, down := tallyVotes(c.Votes)

	var userVote *int
	if viewerID != nil {
		for _, v := range c.Votes {
			if v.UserID == *viewerID {
				value := v.Value
				userVote = &value
				break
			}
		}
	}

	node := &RankedComment{
		ID:           c.ID,
		DiscussionID: c.DiscussionID,
		UserID:       c.UserID,
		Username:     c.User.Username,
		ParentID:     c.ParentID,
		Depth:        c.Depth,
		Path:         c.Path,
		Content:      c.Content,
		Spoiler:      c.Spoiler,
		IsDeleted:    c.IsDeleted,
		Upvotes:      up,
		Downvotes:    down,
		Score:        utils.NetScore(up, down),
		WilsonScore:  utils.WilsonScore(up, down),
		UserVote:     userVote,
		Reactions:    rollupReactions(c.Reactions),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Replies:      []*RankedComment{},
	}

	// Deleted rows stay in the tree (replies hang off them) but their body
	// is blanked.
	if c.IsDeleted {
		node.Content = ""
	} else {
		node.ContentHTML = utils.RenderMarkdown(c.Content)
	}

	return node
}

func tallyVotes(votes []models.Vote) (up, down int) {
	for _, v := range votes {
		switch v.Value {
		case models.VoteUp:
			up++
		case models.VoteDown:
			down++
		}
	}
	return up, down
}

func rollupReactions(reactions []models.Reaction) []ReactionCount {
	counts := []ReactionCount{}
	index := make(map[uint]int)
	for _, r := range reactions {
		if i, ok := index[r.ReactionTypeID]; ok {
			counts[i].Count++
			continue
		}
		index[r.ReactionTypeID] = len(counts)
		counts = append(counts, ReactionCount{
			Name:  r.ReactionType.Name,
			Emoji: r.ReactionType.Emoji,
			Count: 1,
		})
	}
	return counts
}
