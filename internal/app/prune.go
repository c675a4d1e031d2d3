package app

import (
	"context"
	"errors"
	"time"
)

// Prune 删除超过保留窗口的历史机会记录。
func (a *App) Prune(ctx context.Context, opts PruneOptions) error {
	if opts.OlderThan <= 0 {
		return errors.New("--older-than must be a positive duration")
	}

	cutoff := time.Now().UTC().Add(-opts.OlderThan)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database.dsn 未配置，无法清理")
	}
	if closeStore != nil {
		defer closeStore()
	}

	total, err := store.CountOpportunities(ctx)
	if err != nil {
		return err
	}

	if opts.DryRun {
		records, err := store.ListOpportunitiesBetween(ctx, time.Time{}, cutoff)
		if err != nil {
			return err
		}
		a.Logger.Info().
			Time("cutoff", cutoff).
			Int("would_delete", len(records)).
			Int64("total", total).
			Msg("prune dry-run：不会写入数据库")
		return nil
	}

	deleted, err := store.DeleteOpportunitiesBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	a.Logger.Info().
		Time("cutoff", cutoff).
		Int64("deleted", deleted).
		Int64("remaining", total-deleted).
		Msg("清理完成")
	return nil
}
