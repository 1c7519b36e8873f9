package services

import (
	"context"

	"github.com/fastygo/academy/domain"
	"github.com/fastygo/academy/internal/infrastructure/buffer"
	"github.com/fastygo/academy/usecase/push"
)

// PushOutbox persists failed registrations for PushProcessor.
type PushOutbox struct {
	store *buffer.Store
}

func NewPushOutbox(store *buffer.Store) *PushOutbox {
	return &PushOutbox{store: store}
}

func (o *PushOutbox) Enqueue(ctx context.Context, reg push.Registration) error {
	if o == nil || o.store == nil || reg.AccountID == "" {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	item, err := buffer.NewItem(reg.AccountID, buffer.EntityPushToken, buffer.OperationRegister, reg)
	if err != nil {
		return err
	}
	return o.store.Enqueue(item)
}

var _ push.Outbox = (*PushOutbox)(nil)
