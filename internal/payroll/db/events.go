package db

import (
	"context"

	"github.com/OBuskas/ananaPayroll/internal/payroll/db/models"
	domain "github.com/OBuskas/ananaPayroll/internal/payroll/models"
)

// AppendEvents writes events to the log in order and fills in their sequence
// numbers.
func (r *Repository) AppendEvents(ctx context.Context, events []*domain.Event) error {
	for _, ev := range events {
		row := models.Event{
			UUID:      ev.ID.String(),
			Type:      string(ev.Type),
			CompanyID: ev.CompanyID,
			Payload:   string(ev.Payload),
			CreatedAt: ev.CreatedAt,
		}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
		ev.Seq = row.Seq
	}
	return nil
}

// ListEvents returns events after filter.AfterSeq in log order.
func (r *Repository) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	query := r.db.WithContext(ctx).Where("seq > ?", filter.AfterSeq)
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var rows []models.Event
	if err := query.Order("seq").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	events := make([]*domain.Event, 0, len(rows))
	for i := range rows {
		ev, err := toEvent(&rows[i])
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
