package usecase

import (
	"context"
	"fmt"

	"personarag/internal/adapter/cache"
	"personarag/internal/domain"
	"personarag/internal/index"
	"personarag/internal/retriever"
)

// RetrieveUseCase serves queries against the current index snapshot,
// memoizing results until the snapshot is swapped.
type RetrieveUseCase struct {
	holder    *index.Holder
	retriever *retriever.Semantic
	cache     *cache.QueryCache
}

func NewRetrieveUseCase(holder *index.Holder, r *retriever.Semantic, c *cache.QueryCache) *RetrieveUseCase {
	return &RetrieveUseCase{
		holder:    holder,
		retriever: r,
		cache:     c,
	}
}

// Retrieve runs a search against the current snapshot.
func (u *RetrieveUseCase) Retrieve(ctx context.Context, q domain.Query) (domain.RetrievalResult, error) {
	snap := u.holder.Current()
	if snap == nil {
		return nil, fmt.Errorf("no index loaded; build or load one first")
	}

	if u.cache != nil {
		if results, ok := u.cache.Get(q); ok {
			return results, nil
		}
	}

	results, err := u.retriever.Search(ctx, snap, q)
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		u.cache.Put(q, results)
	}
	return results, nil
}

// Install publishes a new snapshot and drops memoized results from the
// previous one. In-flight queries against the old snapshot are
// unaffected.
func (u *RetrieveUseCase) Install(snap *index.Snapshot) {
	u.holder.Swap(snap)
	if u.cache != nil {
		u.cache.Invalidate()
	}
}
