package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opsledger/internal/model"
)

// recentLimit is how many transfers and sales the dashboard shows.
const recentLimit = 5

// GetDashboardStats aggregates the landing page counters.
func GetDashboardStats(ctx context.Context, q sqlx.ExtContext) (*model.DashboardStats, error) {
	var (
		stats model.DashboardStats
		err   error
	)

	if stats.TotalMachinery, err = CountMachinery(ctx, q); err != nil {
		return nil, err
	}
	if stats.PendingPurchases, err = CountIncompletePurchases(ctx, q); err != nil {
		return nil, err
	}
	if stats.LowStockItems, err = CountLowStock(ctx, q); err != nil {
		return nil, err
	}
	if stats.PendingDeliveries, err = CountPendingDeliveries(ctx, q); err != nil {
		return nil, err
	}
	if stats.RecentTransfers, err = ListTransfers(ctx, q, recentLimit); err != nil {
		return nil, err
	}
	if stats.RecentSales, err = ListSales(ctx, q, recentLimit); err != nil {
		return nil, err
	}

	return &stats, nil
}
