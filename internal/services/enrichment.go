package services

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Profile is what the identity service knows about one user.
type Profile struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// IdentityProvider is the external identity boundary. Lookups may fail
// independently per id.
type IdentityProvider interface {
	Profile(ctx context.Context, userID uint) (*Profile, error)
}

const enrichConcurrency = 8

// AvatarEnricher attaches author avatars to ranked comment trees. It is the
// only component that performs I/O against the identity boundary; the store
// and the assembler never call it.
type AvatarEnricher struct {
	provider IdentityProvider
	log      *zap.Logger
}

func NewAvatarEnricher(provider IdentityProvider, log *zap.Logger) *AvatarEnricher {
	return &AvatarEnricher{
		provider: provider,
		log:      log.Named("enrichment"),
	}
}

// Enrich looks up every distinct author appearing anywhere in the trees,
// exactly once per author no matter how many comments they wrote, and merges
// the avatar back onto each occurrence. A failed lookup leaves that author's
// avatar nil and never fails the surrounding fetch.
func (e *AvatarEnricher) Enrich(ctx context.Context, comments []*RankedComment) {
	ids := collectAuthorIDs(comments)
	if len(ids) == 0 {
		return
	}

	var mu sync.Mutex
	avatars := make(map[uint]*string, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for _, id := range ids {
		id := id // per-iteration copy; the go directive predates 1.22 loopvar semantics
		g.Go(func() error {
			profile, err := e.provider.Profile(ctx, id)
			if err != nil {
				e.log.Warn("Avatar lookup failed", zap.Uint("user_id", id), zap.Error(err))
				return nil
			}
			avatar := profile.AvatarURL
			mu.Lock()
			avatars[id] = &avatar
			mu.Unlock()
			return nil
		})
	}
	// Workers recover their own failures; Wait only fences the fan-in.
	_ = g.Wait()

	applyAvatars(comments, avatars)
}

func collectAuthorIDs(comments []*RankedComment) []uint {
	seen := make(map[uint]bool)
	var ids []uint
	var walk func(nodes []*RankedComment)
	walk = func(nodes []*RankedComment) {
		for _, n := range nodes {
			if !seen[n.UserID] {
				seen[n.UserID] = true
				ids = append(ids, n.UserID)
			}
			walk(n.Replies)
		}
	}
	walk(comments)
	return ids
}

func applyAvatars(comments []*RankedComment, avatars map[uint]*string) {
	for _, n := range comments {
		n.AvatarURL = avatars[n.UserID] // nil when the lookup failed
		applyAvatars(n.Replies, avatars)
	}
}
