package consumer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/litterbox/internal/observability"
)

// ErrUnknownDevice indicates a visit event referenced a device that has not
// been registered. Devices may come online before their registration lands,
// so the processor retries these rather than dropping them.
var ErrUnknownDevice = errors.New("unknown edge device")

// PersistenceHandler writes consumed visit events into Postgres. Raw enter
// and exit weights are stored as reported; duration and cat weight are
// derived when the usage API reads them back.
type PersistenceHandler struct {
	pool *pgxpool.Pool
}

// NewPersistenceHandler constructs a handler backed by the provided pool.
func NewPersistenceHandler(pool *pgxpool.Pool) *PersistenceHandler {
	return &PersistenceHandler{pool: pool}
}

// Handle stores the visit in the litterbox_usage_data table, resolving the
// litterbox through the vendor-assigned edge device ID.
func (h *PersistenceHandler) Handle(ctx context.Context, msg Message) error {
	visit := msg.Visit

	conn, err := h.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	var litterboxID string
	err = conn.QueryRow(ctx,
		`SELECT litterbox_id FROM edge_devices WHERE id = $1`,
		visit.DeviceID,
	).Scan(&litterboxID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, visit.DeviceID)
	}
	if err != nil {
		return err
	}

	_, err = conn.Exec(ctx,
		`INSERT INTO litterbox_usage_data (id, litterbox_id, device_id, enter_time, exit_time, weight_enter, weight_exit, received_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
         ON CONFLICT (id) DO NOTHING`,
		visit.EventID,
		litterboxID,
		visit.DeviceID,
		visit.EnterTime,
		visit.ExitTime,
		visit.WeightEnter,
		visit.WeightExit,
		msg.Timestamp,
	)
	if err != nil {
		return err
	}
	observability.RecordVisitPersisted(visit.ExitTime)
	return nil
}
