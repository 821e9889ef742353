package usage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/speccom/fieldproof-backend/internal/completion"
	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/logger"
	"github.com/speccom/fieldproof-backend/pkg/metrics"
)

const (
	outcomeProcessed = "processed"
	outcomeMalformed = "malformed"
	outcomeOrphaned  = "orphaned"
	outcomeTransient = "transient"
	outcomeFailed    = "failed"
)

// nodeStateRepository is the read surface the consumer needs to
// re-derive a node's snapshot on every notification.
type nodeStateRepository interface {
	FindNode(ctx context.Context, nodeID uuid.UUID) (*models.Node, error)
	FindLocationsByNode(ctx context.Context, nodeID uuid.UUID) ([]models.SpliceLocation, error)
	FindSlotPhotosByNode(ctx context.Context, nodeID uuid.UUID) (map[uuid.UUID][]models.SlotPhoto, error)
	FindInventoryByNode(ctx context.Context, nodeID uuid.UUID) ([]models.InventoryCheckItem, error)
	FindUsageEventsByNode(ctx context.Context, nodeID uuid.UUID) ([]models.UsageEvent, error)
}

type snapshotCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ProofSnapshotKey(nodeID string) string
}

// Consumer re-derives node state on every usage-event notification so
// concurrent viewers of the same node converge.
type Consumer struct {
	repo         Repository
	state        nodeStateRepository
	tx           txRunner
	subscription *pubsub.Subscriber
	cache        snapshotCache
	metrics      *metrics.UsageWorkerMetrics
	logg         *logger.Logger
	snapshotTTL  time.Duration
	defaults     alertDefaults
	now          func() time.Time
}

// ConsumerParams bundles the consumer's dependencies.
type ConsumerParams struct {
	Repo         Repository
	State        nodeStateRepository
	Tx           txRunner
	Subscription *pubsub.Subscriber
	Cache        snapshotCache
	Metrics      *metrics.UsageWorkerMetrics
	Logger       *logger.Logger
	SnapshotTTL  time.Duration
	ThresholdPct float64
	ThresholdAbs string
}

// NewConsumer constructs a consumer that watches the usage subscription.
func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Repo == nil {
		return nil, errors.New("usage repository is required")
	}
	if params.State == nil {
		return nil, errors.New("node state repository is required")
	}
	if params.Tx == nil {
		return nil, errors.New("transaction runner is required")
	}
	if params.Subscription == nil {
		return nil, errors.New("usage subscription is required")
	}
	if params.Cache == nil {
		return nil, errors.New("snapshot cache is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	ttl := params.SnapshotTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	defaults, err := newAlertDefaults(params.ThresholdPct, params.ThresholdAbs)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		repo:         params.Repo,
		state:        params.State,
		tx:           params.Tx,
		subscription: params.Subscription,
		cache:        params.Cache,
		metrics:      params.Metrics,
		logg:         params.Logger,
		snapshotTTL:  ttl,
		defaults:     defaults,
		now:          time.Now,
	}, nil
}

// Run processes messages until the context is canceled or the
// subscription errors.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		start := c.now()
		outcome, nack := c.process(ctx, msg)
		c.metrics.ObserveProcess(outcome, c.now().Sub(start))
		if nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) (outcome string, nack bool) {
	var change ChangeMessage
	if err := json.Unmarshal(msg.Data, &change); err != nil {
		logCtx := c.logg.WithField(ctx, "message_id", msg.ID)
		c.logg.Error(logCtx, "failed to unmarshal usage change", err)
		return outcomeMalformed, false
	}

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_id":   change.EventID.String(),
		"node_id":    change.NodeID.String(),
		"unit_type":  change.UnitType,
	})

	node, err := c.state.FindNode(logCtx, change.NodeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.logg.Warn(logCtx, "node for usage change no longer exists")
			return outcomeOrphaned, false
		}
		return c.handleDBError(logCtx, err)
	}

	if err := c.refreshSnapshot(logCtx, node); err != nil {
		return c.handleDBError(logCtx, err)
	}

	opened := false
	err = c.tx.WithTx(logCtx, func(tx *gorm.DB) error {
		opened, err = reevaluateAlert(logCtx, c.repo.WithTx(tx), node.ID, change.UnitType, c.defaults)
		return err
	})
	if err != nil {
		return c.handleDBError(logCtx, err)
	}
	if opened {
		c.metrics.IncAlertOpened(change.UnitType)
		c.logg.Info(logCtx, "usage alert opened")
	}

	return outcomeProcessed, false
}

// refreshSnapshot re-runs the evaluator over current entity state and
// caches the result rather than trusting the message to be monotonic.
func (c *Consumer) refreshSnapshot(ctx context.Context, node *models.Node) error {
	locations, err := c.state.FindLocationsByNode(ctx, node.ID)
	if err != nil {
		return err
	}
	photosByLocation, err := c.state.FindSlotPhotosByNode(ctx, node.ID)
	if err != nil {
		return err
	}
	inventory, err := c.state.FindInventoryByNode(ctx, node.ID)
	if err != nil {
		return err
	}
	events, err := c.state.FindUsageEventsByNode(ctx, node.ID)
	if err != nil {
		return err
	}

	state := completion.NodeState{ReadyForBilling: node.ReadyForBilling}
	for _, loc := range locations {
		state.Locations = append(state.Locations, completion.LocationStateFrom(loc, photosByLocation[loc.ID]))
	}
	for _, item := range inventory {
		state.Inventory = append(state.Inventory, completion.InventoryState{Completed: item.Completed})
	}
	for _, event := range events {
		state.Usage = append(state.Usage, completion.UsageStateFrom(event))
	}

	payload, err := json.Marshal(completion.Evaluate(state))
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, c.cache.ProofSnapshotKey(node.ID.String()), string(payload), c.snapshotTTL)
}

func (c *Consumer) handleDBError(ctx context.Context, err error) (string, bool) {
	c.logg.Error(ctx, "usage change processing error", err)
	if isTransientError(err) {
		return outcomeTransient, true
	}
	return outcomeFailed, false
}

func isTransientError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
