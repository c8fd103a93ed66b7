package notify

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/murmurapp/murmur/internal/db"
	"github.com/murmurapp/murmur/internal/events"
	"github.com/murmurapp/murmur/internal/models"
	"github.com/murmurapp/murmur/pkg/logging"
)

// Notifier writes notification rows and hands the mutation event to the
// real-time sink. Self-actions produce neither.
type Notifier struct {
	notifs *db.NotificationRepository
	sink   events.Sink
	logger *zap.Logger
}

// New creates a new notifier
func New(repo *db.Repository, sink events.Sink) *Notifier {
	return &Notifier{
		notifs: db.NewNotificationRepository(repo),
		sink:   sink,
		logger: logging.WithComponent("notify"),
	}
}

// Notify records a notification of the given type from actor to owner about
// a post, then publishes the event. The publish is fire-and-forget: a sink
// failure is logged, never returned.
func (n *Notifier) Notify(ctx context.Context, typeID int16, contentType string, actorID, ownerID, postID int64) error {
	if actorID == ownerID {
		return nil
	}

	notif := &models.Notification{
		Type:      typeID,
		CreatedAt: time.Now().UTC(),
		SrcID:     sql.NullInt64{Int64: actorID, Valid: true},
		DstID:     ownerID,
		PostID:    sql.NullInt64{Int64: postID, Valid: true},
	}
	if err := n.notifs.Create(ctx, notif); err != nil {
		return err
	}

	n.logger.Info("[NOTIFY]",
		zap.String("type", models.NotifyTypeName(typeID)),
		zap.Int64("src_id", actorID),
		zap.Int64("dst_id", ownerID),
		zap.Int64("post_id", postID))

	event := events.Event{
		ContentType: contentType,
		ContentID:   postID,
		ActorID:     actorID,
		OwnerID:     ownerID,
	}
	if err := n.sink.Publish(ctx, event); err != nil {
		n.logger.Warn("event publish failed", zap.Error(err))
	}
	return nil
}
