package message

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oggyb/glidefade/internal/app"
	"github.com/oggyb/glidefade/internal/db"
	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/metrics"
	"github.com/oggyb/glidefade/internal/repository"
)

// BombBurstSize is how many rows a bomb message fans out to.
const BombBurstSize = 5

var knownTypes = map[string]struct{}{
	db.MessageNormal:    {},
	db.MessageOnce:      {},
	db.MessageScheduled: {},
	db.MessageBomb:      {},
	db.MessageAudio:     {},
	db.MessageImage:     {},
	db.MessageLocation:  {},
	db.MessageGift:      {},
}

// SendInput is the client payload for a new message.
type SendInput struct {
	ReceiverID  string     `json:"receiver_id" validate:"required"`
	Content     string     `json:"content" validate:"required"`
	Type        string     `json:"type"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// Service implements the message lifecycle: send, read, promote, delete.
type Service struct {
	appCtx *app.AppContext
	repo   *repository.MessageRepository
	now    func() time.Time
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		repo:   repository.NewMessageRepository(appCtx.DB),
		now:    time.Now,
	}
}

// Send stores a message from senderID.
//
// Behavior:
//   - Type defaults to normal; unknown types are rejected.
//   - scheduled needs scheduled_at and is stored unsent until promoted.
//   - bomb writes BombBurstSize independent rows. Failed inserts are logged
//     and the rows that made it are returned.
//   - Everything else is sent immediately with timestamp = now.
func (s *Service) Send(ctx context.Context, senderID string, in SendInput) ([]db.Message, error) {
	if senderID == "" || in.ReceiverID == "" {
		return nil, svcErr.InvalidArgument("sender and receiver_id are required")
	}
	if in.Content == "" {
		return nil, svcErr.InvalidArgument("content is required")
	}
	if in.Type == "" {
		in.Type = db.MessageNormal
	}
	if _, ok := knownTypes[in.Type]; !ok {
		return nil, svcErr.InvalidArgument("unknown message type")
	}

	now := s.now().UTC()
	base := db.Message{
		SenderID:   senderID,
		ReceiverID: in.ReceiverID,
		Content:    in.Content,
		Type:       in.Type,
		Timestamp:  now,
		Sent:       true,
	}

	switch in.Type {
	case db.MessageScheduled:
		if in.ScheduledAt == nil {
			return nil, svcErr.InvalidArgument("scheduled_at is required for scheduled messages")
		}
		at := in.ScheduledAt.UTC()
		base.Sent = false
		base.ScheduledAt = &at

	case db.MessageBomb:
		return s.sendBomb(ctx, base)
	}

	base.ID = uuid.NewString()
	if err := s.repo.Create(ctx, &base); err != nil {
		s.appCtx.Logger.Error("store message failed", "sender", senderID, "type", in.Type, "err", err)
		return nil, svcErr.Map(err)
	}
	metrics.MessagesStoredTotal.WithLabelValues(in.Type).Inc()
	return []db.Message{base}, nil
}

func (s *Service) sendBomb(ctx context.Context, base db.Message) ([]db.Message, error) {
	out := make([]db.Message, 0, BombBurstSize)
	var lastErr error
	for i := 0; i < BombBurstSize; i++ {
		m := base
		m.ID = uuid.NewString()
		if err := s.repo.Create(ctx, &m); err != nil {
			s.appCtx.Logger.Warn("bomb message insert failed", "sender", base.SenderID, "n", i, "err", err)
			lastErr = err
			continue
		}
		metrics.MessagesStoredTotal.WithLabelValues(db.MessageBomb).Inc()
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, svcErr.Map(lastErr)
	}
	return out, nil
}

// Conversation returns the messages between callerID and otherID, oldest first.
func (s *Service) Conversation(ctx context.Context, callerID, otherID string) ([]db.Message, error) {
	if callerID == "" || otherID == "" {
		return nil, svcErr.InvalidArgument("user_id is required")
	}
	msgs, err := s.repo.Conversation(ctx, callerID, otherID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if msgs == nil {
		msgs = []db.Message{}
	}
	return msgs, nil
}

// Get returns one message the caller sent or received. A scheduled message
// stays hidden from its receiver until it is promoted.
func (s *Service) Get(ctx context.Context, callerID, messageID string) (*db.Message, error) {
	if callerID == "" || messageID == "" {
		return nil, svcErr.InvalidArgument("message id is required")
	}
	m, err := s.repo.GetByID(ctx, messageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("message not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if m.SenderID != callerID && (m.ReceiverID != callerID || !m.Sent) {
		return nil, svcErr.NotFound("message not found")
	}
	return m, nil
}

// PromoteDue sends senderID's scheduled messages whose time has come.
func (s *Service) PromoteDue(ctx context.Context, senderID string) (int64, error) {
	if senderID == "" {
		return 0, svcErr.InvalidArgument("sender is required")
	}
	return s.promote(ctx, senderID)
}

// PromoteAllDue is PromoteDue for every sender. The scheduler calls it.
func (s *Service) PromoteAllDue(ctx context.Context) (int64, error) {
	return s.promote(ctx, "")
}

func (s *Service) promote(ctx context.Context, senderID string) (int64, error) {
	n, err := s.repo.PromoteDue(ctx, senderID, s.now())
	if err != nil {
		s.appCtx.Logger.Error("promote due messages failed", "sender", senderID, "err", err)
		return 0, svcErr.Map(err)
	}
	if n > 0 {
		metrics.MessagesPromotedTotal.Add(float64(n))
		s.appCtx.Logger.Debug("promoted scheduled messages", "sender", senderID, "count", n)
	}
	return n, nil
}

// Delete removes a message the caller sent or received. Used by clients
// after a once message has been viewed.
func (s *Service) Delete(ctx context.Context, callerID, messageID string) error {
	if callerID == "" || messageID == "" {
		return svcErr.InvalidArgument("message id is required")
	}
	err := s.repo.DeleteForParticipant(ctx, messageID, callerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound("message not found")
	}
	if err != nil {
		return svcErr.Map(err)
	}
	return nil
}
