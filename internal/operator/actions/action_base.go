package actions

import (
	"context"
	"sort"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

type IAction interface {
	Name() string
	Perform(ctx context.Context, writer *storage.Writer) error
}

// lockAccounts row-locks the distinct non-nil ids in ascending order, so two
// writers touching the same pair cannot deadlock.
func lockAccounts(ctx context.Context, writer *storage.Writer, ids ...uuid.UUID) (map[uuid.UUID]*account.Account, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	ordered := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].String() < ordered[j].String() })

	locked := make(map[uuid.UUID]*account.Account, len(ordered))
	for _, id := range ordered {
		a, err := writer.Account.FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = a
	}
	return locked, nil
}
