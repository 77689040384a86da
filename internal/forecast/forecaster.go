// Package forecast projects future monthly expense spend. A lightweight
// per-user linear regression is trained on (month, category) aggregation
// buckets; when the training preconditions cannot be met, predictions fall
// back to the historical-average strategy. Trained models are held in an
// explicit per-user registry and mirrored to durable storage through the
// ModelStore interface.
package forecast

import (
	"context"
	"errors"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/finsight/backend/internal/analytics"
	"github.com/finsight/backend/internal/model"
)

const (
	// minTrainingTransactions is the minimum expense count before a model
	// is trained.
	minTrainingTransactions = 10
	// minFeatureRows is the minimum number of (month, category) buckets the
	// feature preparation must yield.
	minFeatureRows = 3
	// fallbackWindow caps how many of the most recent expenses feed the
	// historical-average fallback.
	fallbackWindow = 200

	// modelConfidence is reported for trained-model predictions. It is a
	// fixed score, not a measured fit quality.
	modelConfidence = 0.75
	// fallbackConfidence is reported for historical-average predictions.
	fallbackConfidence = 0.5

	// DefaultMonthsAhead is the forecast horizon when the caller does not
	// specify one.
	DefaultMonthsAhead = 3

	// horizonStep is the spacing between forecast points. Horizons advance
	// in fixed 30-day steps rather than true calendar months.
	horizonStep = 30 * 24 * time.Hour
)

const fallbackNote = "Predictions based on historical averages"

// ErrModelNotFound is returned by ModelStore implementations when no
// snapshot has been persisted for the user.
var ErrModelNotFound = errors.New("forecast model not found")

// ModelStore persists trained model snapshots per user.
type ModelStore interface {
	SaveForecastModel(ctx context.Context, userID string, snapshot *Snapshot) error
	GetForecastModel(ctx context.Context, userID string) (*Snapshot, error)
}

// Snapshot is the serializable state of one user's trained forecaster: the
// regression model, its feature standardizer, and training metadata.
// A persisted snapshot reloaded later reproduces identical predictions.
type Snapshot struct {
	Model      LinearModel    `json:"model"`
	Scaler     StandardScaler `json:"scaler"`
	TrainedAt  time.Time      `json:"trained_at"`
	DataPoints int            `json:"data_points"`
}

// MonthPrediction is one forecast horizon point.
type MonthPrediction struct {
	Month           string  `json:"month"`
	PredictedAmount float64 `json:"predicted_amount"`
	Category        string  `json:"category"`
	Confidence      float64 `json:"confidence"`
}

// Result is a complete expense forecast.
type Result struct {
	Predictions       []MonthPrediction `json:"predictions"`
	HistoricalAverage float64           `json:"historical_average"`
	ModelAccuracy     float64           `json:"model_accuracy"`
	DataPointsUsed    int               `json:"data_points_used"`
	Note              string            `json:"note,omitempty"`
}

// Forecaster trains and serves per-user expense models. Concurrent requests
// that both miss the registry coalesce into a single training run per user.
type Forecaster struct {
	store ModelStore
	group singleflight.Group

	registry registry

	// now is stubbed in tests.
	now func() time.Time
}

// New builds a Forecaster. store may be nil, in which case models live only
// in the registry for the process lifetime.
func New(store ModelStore) *Forecaster {
	return &Forecaster{
		store: store,
		now:   time.Now,
	}
}

// Predict forecasts expense spend for the next monthsAhead months. The
// trained-model strategy is tried first; if no model can be obtained the
// historical-average strategy answers instead. category narrows the
// historical baseline ("" means all categories).
func (f *Forecaster) Predict(ctx context.Context, userID string, transactions []*model.Transaction, monthsAhead int, category model.Category) (*Result, error) {
	if monthsAhead <= 0 {
		monthsAhead = DefaultMonthsAhead
	}
	expenses := filterExpenses(transactions, "")

	snapshot, err := f.ensureModel(ctx, userID, expenses)
	if err != nil {
		// Training or loading failed; the fallback strategy owns the rest.
		return f.fallback(expenses, monthsAhead, category)
	}

	scoped := filterExpenses(transactions, category)
	historicalAvg := meanAmount(scoped)
	avgPerMonth := 0.0
	if months := distinctMonths(scoped); months > 0 {
		avgPerMonth = float64(len(scoped)) / float64(months)
	} else {
		avgPerMonth = float64(len(scoped))
	}

	now := f.now()
	predictions := make([]MonthPrediction, 0, monthsAhead)
	for i := 1; i <= monthsAhead; i++ {
		future := now.Add(time.Duration(i) * horizonStep)
		row := []float64{
			float64(int(future.Month())),
			float64(int(future.Weekday())),
			avgPerMonth,
		}
		scaled, err := snapshot.Scaler.Transform(row)
		if err != nil {
			return nil, analytics.WrapError(analytics.ErrComputationFailure, "scale forecast features", err)
		}
		predicted, err := snapshot.Model.Predict(scaled)
		if err != nil {
			return nil, analytics.WrapError(analytics.ErrComputationFailure, "evaluate forecast model", err)
		}
		if predicted < 0 {
			predicted = 0
		}
		predictions = append(predictions, MonthPrediction{
			Month:           future.Format("2006-01"),
			PredictedAmount: predicted,
			Category:        categoryLabel(category),
			Confidence:      modelConfidence,
		})
	}

	return &Result{
		Predictions:       predictions,
		HistoricalAverage: historicalAvg,
		ModelAccuracy:     modelConfidence,
		DataPointsUsed:    len(scoped),
	}, nil
}

// Train fits a fresh model for the user from their transactions, persists
// the snapshot, and installs it in the registry. Returns an
// INSUFFICIENT_TRAINING_DATA error when the preconditions fail; the caller
// is expected to continue on the fallback path rather than surface it.
func (f *Forecaster) Train(ctx context.Context, userID string, transactions []*model.Transaction) (*Snapshot, error) {
	expenses := filterExpenses(transactions, "")
	if len(expenses) < minTrainingTransactions {
		return nil, analytics.NewError(analytics.ErrInsufficientTrainingData, "not enough expense history to train")
	}

	rows, labels := prepareFeatures(expenses)
	if len(rows) < minFeatureRows {
		return nil, analytics.NewError(analytics.ErrInsufficientTrainingData, "not enough aggregation buckets to train")
	}

	var scaler StandardScaler
	if err := scaler.Fit(rows); err != nil {
		return nil, analytics.WrapError(analytics.ErrComputationFailure, "fit feature scaler", err)
	}
	scaled, err := scaler.TransformAll(rows)
	if err != nil {
		return nil, analytics.WrapError(analytics.ErrComputationFailure, "scale training features", err)
	}

	var linear LinearModel
	if err := linear.Fit(scaled, labels); err != nil {
		return nil, analytics.WrapError(analytics.ErrComputationFailure, "fit regression model", err)
	}

	snapshot := &Snapshot{
		Model:      linear,
		Scaler:     scaler,
		TrainedAt:  f.now().UTC(),
		DataPoints: len(rows),
	}
	if f.store != nil {
		if err := f.store.SaveForecastModel(ctx, userID, snapshot); err != nil {
			return nil, analytics.WrapError(analytics.ErrComputationFailure, "persist forecast model", err)
		}
	}
	f.registry.put(userID, snapshot)
	return snapshot, nil
}

// ensureModel returns the user's model, consulting the in-process registry,
// then durable storage, then training from scratch. Concurrent callers for
// the same user share one load-or-train flight.
func (f *Forecaster) ensureModel(ctx context.Context, userID string, expenses []*model.Transaction) (*Snapshot, error) {
	if snapshot, ok := f.registry.get(userID); ok {
		return snapshot, nil
	}

	value, err, _ := f.group.Do(userID, func() (any, error) {
		if snapshot, ok := f.registry.get(userID); ok {
			return snapshot, nil
		}
		if f.store != nil {
			snapshot, err := f.store.GetForecastModel(ctx, userID)
			if err == nil {
				f.registry.put(userID, snapshot)
				return snapshot, nil
			}
			if !errors.Is(err, ErrModelNotFound) {
				return nil, analytics.WrapError(analytics.ErrComputationFailure, "load forecast model", err)
			}
		}
		return f.Train(ctx, userID, expenses)
	})
	if err != nil {
		return nil, err
	}
	return value.(*Snapshot), nil
}

// fallback predicts a constant historical mean for every horizon month,
// computed over the most recent expenses in the requested category.
func (f *Forecaster) fallback(expenses []*model.Transaction, monthsAhead int, category model.Category) (*Result, error) {
	scoped := filterExpenses(expenses, category)
	scoped = mostRecent(scoped, fallbackWindow)
	if len(scoped) == 0 {
		return nil, analytics.NewError(analytics.ErrNoData, "no expense history to forecast")
	}

	avg := meanAmount(scoped)
	now := f.now()
	predictions := make([]MonthPrediction, 0, monthsAhead)
	for i := 1; i <= monthsAhead; i++ {
		future := now.Add(time.Duration(i) * horizonStep)
		predictions = append(predictions, MonthPrediction{
			Month:           future.Format("2006-01"),
			PredictedAmount: avg,
			Category:        categoryLabel(category),
			Confidence:      fallbackConfidence,
		})
	}

	return &Result{
		Predictions:       predictions,
		HistoricalAverage: avg,
		ModelAccuracy:     fallbackConfidence,
		DataPointsUsed:    len(scoped),
		Note:              fallbackNote,
	}, nil
}

func categoryLabel(category model.Category) string {
	if category == "" {
		return "all"
	}
	return string(category)
}

func filterExpenses(transactions []*model.Transaction, category model.Category) []*model.Transaction {
	out := make([]*model.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Type != model.TypeExpense {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, t)
	}
	return out
}

func meanAmount(transactions []*model.Transaction) float64 {
	if len(transactions) == 0 {
		return 0
	}
	var sum float64
	for _, t := range transactions {
		sum += t.Amount
	}
	return sum / float64(len(transactions))
}

// mostRecent returns up to n transactions, newest first.
func mostRecent(transactions []*model.Transaction, n int) []*model.Transaction {
	sorted := make([]*model.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
