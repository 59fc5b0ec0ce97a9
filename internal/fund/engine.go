package fund

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"BasketMint/internal/minimum"
	"BasketMint/internal/model"
	"BasketMint/internal/oracle"
)

// ComponentSpec declares one asset of a new fund.
type ComponentSpec struct {
	Asset    string `json:"asset"`
	TargetBP int64  `json:"target_bp"`
}

// CreateFundRequest carries the parameters of CreateFund.
type CreateFundRequest struct {
	Components []ComponentSpec `json:"components"`
	Name       string          `json:"name"`
	Symbol     string          `json:"symbol"`
	Creator    string          `json:"creator"`
}

// MinimumSource computes the dynamic issuance minimum.
type MinimumSource interface {
	Calculate() minimum.Result
}

// Notifier receives engine events. Publish is called outside fund locks.
type Notifier interface {
	Publish(evt model.Event)
}

// Config holds the engine's fixed parameters.
type Config struct {
	MaxComponents   int
	ShareScale      decimal.Decimal // share units per value unit on first issuance
	RecalcThreshold decimal.Decimal // relative change that refreshes the stored minimum
}

// DefaultConfig returns the standard engine parameters.
func DefaultConfig() Config {
	return Config{
		MaxComponents:   10,
		ShareScale:      decimal.New(1, 18),
		RecalcThreshold: decimal.RequireFromString("0.2"),
	}
}

// Engine owns the fund registry and runs every ledger mutation.
type Engine struct {
	cfg      Config
	registry *Registry
	oracle   oracle.Oracle
	minimum  MinimumSource
	notifier Notifier
	store    Persister
	log      *zap.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the event sink.
func WithNotifier(n Notifier) Option { return func(e *Engine) { e.notifier = n } }

// WithPersister sets the snapshot store.
func WithPersister(p Persister) Option { return func(e *Engine) { e.store = p } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// NewEngine wires an engine. Funds already held by the persister are restored.
func NewEngine(cfg Config, o oracle.Oracle, m MinimumSource, opts ...Option) (*Engine, error) {
	if o == nil || m == nil {
		return nil, fmt.Errorf("fund: oracle and minimum source are required")
	}
	if cfg.MaxComponents <= 0 || !cfg.ShareScale.IsPositive() || cfg.RecalcThreshold.IsNegative() {
		return nil, fmt.Errorf("fund: invalid engine config")
	}
	e := &Engine{
		cfg:      cfg,
		registry: NewRegistry(),
		oracle:   o,
		minimum:  m,
		notifier: nopNotifier{},
		store:    nopPersister{},
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	funds, err := e.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load fund state: %w", err)
	}
	for _, f := range funds {
		if err := e.registry.restore(f); err != nil {
			return nil, err
		}
	}
	if len(funds) > 0 {
		e.log.Info("restored funds", zap.Int("count", len(funds)))
	}
	return e, nil
}

// Registry exposes the fund index.
func (e *Engine) Registry() *Registry { return e.registry }

// CreateFund validates and registers a new fund, returning its id.
func (e *Engine) CreateFund(req CreateFundRequest) (string, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Symbol) == "" {
		return "", fmt.Errorf("%w: name and symbol are required", ErrInvalidFund)
	}
	if strings.TrimSpace(req.Creator) == "" {
		return "", fmt.Errorf("%w: creator is required", ErrInvalidFund)
	}
	if err := validateComponents(req.Components, e.cfg.MaxComponents); err != nil {
		return "", err
	}

	res := e.minimum.Calculate()
	comps := make([]model.Component, len(req.Components))
	for i, c := range req.Components {
		comps[i] = model.Component{Asset: c.Asset, TargetBP: c.TargetBP, Deposited: decimal.Zero}
	}
	f := &model.Fund{
		Name:           req.Name,
		Symbol:         req.Symbol,
		Creator:        req.Creator,
		Components:     comps,
		Active:         true,
		CreatedAt:      e.now(),
		StoredMinimum:  res.Minimum,
		AggregateValue: decimal.Zero,
		TotalShares:    decimal.Zero,
		Trackers:       make(map[string]*model.Tracker),
	}
	id := e.registry.insert(f)

	ent, _ := e.registry.lookup(id)
	ent.mu.Lock()
	e.save(ent.fund)
	ent.mu.Unlock()

	e.log.Info("fund created",
		zap.String("fund_id", id),
		zap.String("symbol", req.Symbol),
		zap.String("creator", req.Creator),
		zap.String("minimum", res.Minimum.String()),
		zap.String("tier", res.TierLabel))
	e.notifier.Publish(model.Event{
		Kind:      model.EventFundCreated,
		FundID:    id,
		Minimum:   res.Minimum,
		TierLabel: res.TierLabel,
		Note:      req.Symbol,
		At:        f.CreatedAt,
	})
	return id, nil
}

// Deposit records a contribution of amount units of asset. The custody layer
// has already moved the assets; this only updates the ledger. All effects are
// computed before any field is written, so a failure leaves the fund as it was.
func (e *Engine) Deposit(fundID, asset string, amount decimal.Decimal, contributor string) (model.Deposit, error) {
	if !amount.IsPositive() {
		return model.Deposit{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if strings.TrimSpace(contributor) == "" {
		return model.Deposit{}, fmt.Errorf("%w: contributor is required", ErrInvalidFund)
	}
	ent, err := e.registry.lookup(fundID)
	if err != nil {
		return model.Deposit{}, err
	}

	ent.mu.Lock()
	f := ent.fund
	if !f.Active {
		ent.mu.Unlock()
		return model.Deposit{}, fmt.Errorf("%w: %s", ErrFundInactive, fundID)
	}
	idx := f.Component(asset)
	if idx < 0 {
		ent.mu.Unlock()
		return model.Deposit{}, fmt.Errorf("%w: %s not in %s", ErrUnknownAsset, asset, fundID)
	}

	value, err := valueOf(e.oracle, asset, amount)
	if err != nil {
		ent.mu.Unlock()
		e.log.Warn("deposit valuation failed", zap.String("fund_id", fundID), zap.String("asset", asset), zap.Error(err))
		return model.Deposit{}, err
	}
	comps := append([]model.Component(nil), f.Components...)
	comps[idx].Deposited = comps[idx].Deposited.Add(amount)
	values, aggregate, err := valueComponents(e.oracle, comps)
	if err != nil {
		ent.mu.Unlock()
		e.log.Warn("deposit revaluation failed", zap.String("fund_id", fundID), zap.Error(err))
		return model.Deposit{}, err
	}
	recomputeRatios(comps, values, aggregate)

	dep := model.Deposit{
		ID:             uuid.NewString(),
		Contributor:    contributor,
		Asset:          asset,
		Amount:         amount,
		Value:          value,
		Timestamp:      e.now(),
		SharesReceived: decimal.Zero,
	}

	// commit
	f.Components = comps
	f.AggregateValue = aggregate
	t, ok := f.Trackers[contributor]
	if !ok {
		t = &model.Tracker{Contributor: contributor, CumulativeValue: decimal.Zero, IssuedValue: decimal.Zero, Shares: decimal.Zero}
		f.Trackers[contributor] = t
	}
	t.CumulativeValue = t.CumulativeValue.Add(value)
	f.Deposits = append(f.Deposits, dep)
	e.save(f)
	ent.mu.Unlock()

	e.log.Info("deposit recorded",
		zap.String("fund_id", fundID),
		zap.String("contributor", contributor),
		zap.String("asset", asset),
		zap.String("amount", amount.String()),
		zap.String("value", value.String()),
		zap.String("aggregate", aggregate.String()))
	e.notifier.Publish(model.Event{
		Kind:         model.EventDepositRecorded,
		FundID:       fundID,
		Contributor:  contributor,
		Asset:        asset,
		Amount:       amount,
		Contribution: value,
		Value:        aggregate,
		At:           dep.Timestamp,
	})
	return dep, nil
}

// Issue mints shares for the contributor's pending contribution once the
// fund's live aggregate value clears the freshly computed minimum. It is the
// only operation that mints shares.
func (e *Engine) Issue(fundID, contributor string) (Issuance, error) {
	ent, err := e.registry.lookup(fundID)
	if err != nil {
		return Issuance{}, err
	}

	var events []model.Event
	defer func() {
		for _, evt := range events {
			e.notifier.Publish(evt)
		}
	}()

	ent.mu.Lock()
	defer ent.mu.Unlock()

	f := ent.fund
	if !f.Active {
		return Issuance{}, fmt.Errorf("%w: %s", ErrFundInactive, fundID)
	}

	values, aggregate, err := valueComponents(e.oracle, f.Components)
	if err != nil {
		e.log.Warn("issuance valuation failed", zap.String("fund_id", fundID), zap.Error(err))
		return Issuance{}, err
	}

	res := e.minimum.Calculate()
	if exceedsThreshold(f.StoredMinimum, res.Minimum, e.cfg.RecalcThreshold) {
		e.log.Info("minimum recalculated",
			zap.String("fund_id", fundID),
			zap.String("previous", f.StoredMinimum.String()),
			zap.String("minimum", res.Minimum.String()),
			zap.String("tier", res.TierLabel))
		f.StoredMinimum = res.Minimum
		e.save(f)
		events = append(events, model.Event{
			Kind:      model.EventMinimumRecalculated,
			FundID:    fundID,
			Value:     aggregate,
			Minimum:   res.Minimum,
			TierLabel: res.TierLabel,
			At:        e.now(),
		})
	}

	if aggregate.LessThan(res.Minimum) {
		return Issuance{}, fmt.Errorf("%w: %s < %s (%s tier)", ErrBelowMinimum, aggregate, res.Minimum, res.TierLabel)
	}

	t, ok := f.Trackers[contributor]
	if !ok || !t.Pending().IsPositive() {
		return Issuance{}, fmt.Errorf("%w: %s has no pending value in %s", ErrNoContribution, contributor, fundID)
	}

	out := Issuance{
		FundID:         fundID,
		Contributor:    contributor,
		AggregateValue: aggregate,
		Minimum:        res.Minimum,
		TierLabel:      res.TierLabel,
	}
	if f.TotalShares.IsZero() {
		out.First = true
		out.Minted, out.Allocations = firstIssuance(f, contributor, aggregate, e.cfg.ShareScale)
	} else {
		shares := proportionalShares(f.TotalShares, t.Pending(), aggregate)
		if !shares.IsPositive() {
			return Issuance{}, fmt.Errorf("%w: %s pending value rounds to zero shares", ErrNoContribution, contributor)
		}
		out.Minted = shares
		out.Allocations = map[string]decimal.Decimal{contributor: shares}
	}
	out.Shares = out.Allocations[contributor]

	// commit
	comps := append([]model.Component(nil), f.Components...)
	recomputeRatios(comps, values, aggregate)
	f.Components = comps
	f.AggregateValue = aggregate
	f.TotalShares = f.TotalShares.Add(out.Minted)
	f.Issued = true
	for name, shares := range out.Allocations {
		tr := f.Trackers[name]
		tr.Shares = tr.Shares.Add(shares)
		tr.IssuedValue = tr.CumulativeValue
		backfill(f.Deposits, name, shares)
	}
	e.save(f)

	e.log.Info("shares issued",
		zap.String("fund_id", fundID),
		zap.String("contributor", contributor),
		zap.String("shares", out.Shares.String()),
		zap.String("minted", out.Minted.String()),
		zap.Bool("first", out.First))
	events = append(events, model.Event{
		Kind:        model.EventSharesIssued,
		FundID:      fundID,
		Contributor: contributor,
		Value:       aggregate,
		Shares:      out.Minted,
		Minimum:     res.Minimum,
		TierLabel:   res.TierLabel,
		At:          e.now(),
	})
	return out, nil
}

// Deactivate stops further deposits and issuance. Funds are never deleted.
func (e *Engine) Deactivate(fundID string) error {
	ent, err := e.registry.lookup(fundID)
	if err != nil {
		return err
	}
	ent.mu.Lock()
	if !ent.fund.Active {
		ent.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrFundInactive, fundID)
	}
	ent.fund.Active = false
	e.save(ent.fund)
	ent.mu.Unlock()

	e.log.Info("fund deactivated", zap.String("fund_id", fundID))
	e.notifier.Publish(model.Event{Kind: model.EventFundDeactivated, FundID: fundID, At: e.now()})
	return nil
}

// Fund returns a deep copy of the fund.
func (e *Engine) Fund(fundID string) (model.Fund, error) {
	ent, err := e.registry.lookup(fundID)
	if err != nil {
		return model.Fund{}, err
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return *ent.fund.Clone(), nil
}

// Funds returns deep copies of every registered fund, ordered by id.
func (e *Engine) Funds() []model.Fund {
	ids := e.registry.IDs()
	out := make([]model.Fund, 0, len(ids))
	for _, id := range ids {
		if f, err := e.Fund(id); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// Holding returns the contributor's tracker, zero-valued if absent.
func (e *Engine) Holding(fundID, contributor string) (model.Tracker, error) {
	ent, err := e.registry.lookup(fundID)
	if err != nil {
		return model.Tracker{}, err
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	if t, ok := ent.fund.Trackers[contributor]; ok {
		return *t, nil
	}
	return model.Tracker{Contributor: contributor}, nil
}

// NAV values the fund at live oracle prices without changing it.
func (e *Engine) NAV(fundID string) (decimal.Decimal, error) {
	ent, err := e.registry.lookup(fundID)
	if err != nil {
		return decimal.Zero, err
	}
	ent.mu.Lock()
	comps := append([]model.Component(nil), ent.fund.Components...)
	ent.mu.Unlock()

	_, aggregate, err := valueComponents(e.oracle, comps)
	return aggregate, err
}

// PricePerShare is NAV per whole share. Before first issuance it is 1.
func (e *Engine) PricePerShare(fundID string) (decimal.Decimal, error) {
	ent, err := e.registry.lookup(fundID)
	if err != nil {
		return decimal.Zero, err
	}
	ent.mu.Lock()
	comps := append([]model.Component(nil), ent.fund.Components...)
	total := ent.fund.TotalShares
	ent.mu.Unlock()

	if total.IsZero() {
		return decimal.NewFromInt(1), nil
	}
	_, aggregate, err := valueComponents(e.oracle, comps)
	if err != nil {
		return decimal.Zero, err
	}
	return aggregate.Mul(e.cfg.ShareScale).Div(total), nil
}

// Minimum returns the current dynamic minimum.
func (e *Engine) Minimum() minimum.Result {
	return e.minimum.Calculate()
}

// Snapshot writes every fund to the persister and returns how many were
// saved. Failures are joined; the remaining funds are still written.
func (e *Engine) Snapshot() (int, error) {
	var (
		saved int
		errs  []error
	)
	for _, id := range e.registry.IDs() {
		ent, err := e.registry.lookup(id)
		if err != nil {
			continue
		}
		ent.mu.Lock()
		err = e.store.Save(ent.fund)
		ent.mu.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", id, err))
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

// save persists f; the caller holds the fund lock. A failed write is logged
// and the in-memory state stays authoritative.
func (e *Engine) save(f *model.Fund) {
	if err := e.store.Save(f); err != nil {
		e.log.Error("failed to save fund state", zap.String("fund_id", f.ID), zap.Error(err))
	}
}

type nopNotifier struct{}

func (nopNotifier) Publish(model.Event) {}
