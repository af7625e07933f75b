package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	factoring "github.com/xraph/factoring"
	"github.com/xraph/factoring/config"
	"github.com/xraph/factoring/invoice"
	"github.com/xraph/factoring/reputation"
	factoringstore "github.com/xraph/factoring/store"
	"github.com/xraph/factoring/types"
)

// Collection name constants.
const (
	colConfig     = "factoring_config"
	colInvoices   = "factoring_invoices"
	colReputation = "factoring_reputation"
	colCounters   = "factoring_counters"
)

// compile-time interface check
var _ factoringstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all factoring collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("factoring/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Config Store ====================

func (s *Store) SetConfig(ctx context.Context, cfg *config.Config) error {
	m := toConfigModel(cfg)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		SetUpdate(bson.M{"$set": bson.M{
			"admin":               m.Admin,
			"asset":               m.Asset,
			"treasury":            m.Treasury,
			"default_advance_bps": m.DefaultAdvanceBps,
			"protocol_fee_bps":    m.ProtocolFeeBps,
			"min_invoice_amount":  m.MinInvoiceAmount,
			"max_invoice_amount":  m.MaxInvoiceAmount,
			"created_at":          m.CreatedAt,
			"updated_at":          m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("factoring/mongo: set config: %w", err)
	}
	return nil
}

func (s *Store) GetConfig(ctx context.Context) (*config.Config, error) {
	var m configModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": configDocID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, factoring.ErrNotInitialized
		}
		return nil, fmt.Errorf("factoring/mongo: get config: %w", err)
	}
	return fromConfigModel(&m), nil
}

func (s *Store) HasConfig(ctx context.Context) (bool, error) {
	_, err := s.GetConfig(ctx)
	if err != nil {
		if errors.Is(err, factoring.ErrNotInitialized) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ==================== Invoice Store ====================

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return factoring.ErrInvoiceAlreadyExists
		}
		return fmt.Errorf("factoring/mongo: create invoice: %w", err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invID uint64) (*invoice.Invoice, error) {
	var m invoiceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": int64(invID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, factoring.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("factoring/mongo: get invoice: %w", err)
	}
	return fromInvoiceModel(&m), nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("factoring/mongo: update invoice: %w", err)
	}
	if res.MatchedCount() == 0 {
		return factoring.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	var models []invoiceModel

	filter := bson.M{}
	if !opts.Originator.IsZero() {
		filter["originator"] = string(opts.Originator)
	}
	if !opts.Funder.IsZero() {
		filter["funder"] = string(opts.Funder)
	}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	if !opts.Start.IsZero() {
		filter["created_at"] = bson.M{"$gte": opts.Start}
	}
	if !opts.End.IsZero() {
		if ts, ok := filter["created_at"].(bson.M); ok {
			ts["$lt"] = opts.End
		} else {
			filter["created_at"] = bson.M{"$lt": opts.End}
		}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("factoring/mongo: list invoices: %w", err)
	}

	result := make([]*invoice.Invoice, len(models))
	for i := range models {
		result[i] = fromInvoiceModel(&models[i])
	}
	return result, nil
}

// ==================== Commit methods ====================

func (s *Store) CommitFunding(ctx context.Context, inv *invoice.Invoice, fundedVolume types.Money) error {
	if err := s.UpdateInvoice(ctx, inv); err != nil {
		return err
	}
	return s.bumpCounters(ctx, bson.M{"volume_funded": fundedVolume.Int64()})
}

func (s *Store) CommitSettlement(ctx context.Context, inv *invoice.Invoice, rep *reputation.Reputation, settledVolume types.Money) error {
	if err := s.UpdateInvoice(ctx, inv); err != nil {
		return err
	}
	if rep != nil {
		if err := s.SetReputation(ctx, rep); err != nil {
			return err
		}
	}
	return s.bumpCounters(ctx, bson.M{"volume_settled": settledVolume.Int64()})
}

// ==================== Reputation Store ====================

func (s *Store) GetReputation(ctx context.Context, originator types.Principal) (*reputation.Reputation, error) {
	var m reputationModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": string(originator)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, factoring.ErrReputationNotFound
		}
		return nil, fmt.Errorf("factoring/mongo: get reputation: %w", err)
	}
	return fromReputationModel(&m), nil
}

func (s *Store) SetReputation(ctx context.Context, rep *reputation.Reputation) error {
	m := toReputationModel(rep)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Originator}).
		SetUpdate(bson.M{"$set": bson.M{
			"total_invoices":      m.TotalInvoices,
			"settled_invoices":    m.SettledInvoices,
			"total_volume":        m.TotalVolume,
			"avg_settlement_days": m.AvgSettlementDays,
			"on_time_rate_bps":    m.OnTimeRateBps,
			"risk_score":          m.RiskScore,
			"created_at":          m.CreatedAt,
			"updated_at":          m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("factoring/mongo: set reputation: %w", err)
	}
	return nil
}

// ==================== Counter Store ====================

func (s *Store) AllocateInvoiceID(ctx context.Context) (uint64, error) {
	var m countersModel
	err := s.mdb.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": countersDocID},
		bson.M{
			"$inc": bson.M{"next_invoice_id": int64(1)},
			"$set": bson.M{"updated_at": now()},
		},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		return 0, fmt.Errorf("factoring/mongo: allocate invoice id: %w", err)
	}
	// The counter starts at zero on first upsert, so the post-increment
	// value is the allocated ID.
	return uint64(m.NextInvoiceID), nil
}

func (s *Store) IncrementTotalInvoices(ctx context.Context) error {
	return s.bumpCounters(ctx, bson.M{"total_invoices": int64(1)})
}

func (s *Store) Stats(ctx context.Context) (factoringstore.Stats, error) {
	var m countersModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": countersDocID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return factoringstore.Stats{}, nil
		}
		return factoringstore.Stats{}, fmt.Errorf("factoring/mongo: stats: %w", err)
	}
	return factoringstore.Stats{
		TotalInvoices: uint64(m.TotalInvoices),
		VolumeFunded:  types.Money(m.VolumeFunded),
		VolumeSettled: types.Money(m.VolumeSettled),
	}, nil
}

// ExtendLifetime pushes out the TTL expiry of the addressed document. The
// expiry only moves forward, never back, and never beyond maxTTL from now.
func (s *Store) ExtendLifetime(ctx context.Context, key factoringstore.Key, minTTL, maxTTL time.Duration) error {
	if minTTL > maxTTL {
		minTTL = maxTTL
	}

	col, docID, err := resolveKey(key)
	if err != nil {
		return err
	}

	expiry := now().Add(minTTL)
	_, err = s.mdb.Collection(col).UpdateOne(ctx,
		bson.M{"_id": docID},
		bson.M{"$max": bson.M{"expires_at": expiry}},
	)
	if err != nil {
		return fmt.Errorf("factoring/mongo: extend lifetime: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

func (s *Store) bumpCounters(ctx context.Context, inc bson.M) error {
	_, err := s.mdb.NewUpdate((*countersModel)(nil)).
		Filter(bson.M{"_id": countersDocID}).
		SetUpdate(bson.M{
			"$inc": inc,
			"$set": bson.M{"updated_at": now()},
		}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("factoring/mongo: bump counters: %w", err)
	}
	return nil
}

func resolveKey(key factoringstore.Key) (string, interface{}, error) {
	switch key.Kind {
	case factoringstore.KindConfig:
		return colConfig, configDocID, nil
	case factoringstore.KindCounters:
		return colCounters, countersDocID, nil
	case factoringstore.KindInvoice:
		id, err := strconv.ParseInt(key.Ref, 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("factoring/mongo: invalid invoice key ref %q", key.Ref)
		}
		return colInvoices, id, nil
	case factoringstore.KindReputation:
		return colReputation, key.Ref, nil
	default:
		return "", nil, fmt.Errorf("factoring/mongo: unknown key kind %q", key.Kind)
	}
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all factoring collections.
// The expires_at TTL indexes only evict documents that carry the field, so
// records without a managed lifetime never expire.
func migrationIndexes() map[string][]mongo.IndexModel {
	ttl := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetSparse(true),
	}

	return map[string][]mongo.IndexModel{
		colConfig: {ttl},
		colInvoices: {
			{Keys: bson.D{{Key: "originator", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "funder", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
			ttl,
		},
		colReputation: {
			{Keys: bson.D{{Key: "risk_score", Value: 1}}},
			ttl,
		},
		colCounters: {},
	}
}
