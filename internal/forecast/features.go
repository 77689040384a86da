package forecast

import (
	"sort"

	"github.com/finsight/backend/internal/model"
)

// featureColumns is the width of a training row:
// [calendar_month, mean_weekday, transaction_count].
const featureColumns = 3

// prepareFeatures builds one training row per (calendar month, category)
// bucket of expense activity. The label is the bucket's summed amount.
// Rows come out in a deterministic bucket order so repeated training on the
// same data yields the same model.
func prepareFeatures(expenses []*model.Transaction) (rows [][]float64, labels []float64) {
	type bucketAccum struct {
		month      int
		weekdaySum int
		count      int
		total      float64
	}
	type bucketKey struct {
		period   string
		category model.Category
	}

	buckets := make(map[bucketKey]*bucketAccum)
	for _, t := range expenses {
		key := bucketKey{period: t.Date.Format("2006-01"), category: t.Category}
		acc, ok := buckets[key]
		if !ok {
			acc = &bucketAccum{month: int(t.Date.Month())}
			buckets[key] = acc
		}
		acc.weekdaySum += int(t.Date.Weekday())
		acc.count++
		acc.total += t.Amount
	}

	keys := make([]bucketKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].period != keys[j].period {
			return keys[i].period < keys[j].period
		}
		return keys[i].category < keys[j].category
	})

	rows = make([][]float64, 0, len(keys))
	labels = make([]float64, 0, len(keys))
	for _, k := range keys {
		acc := buckets[k]
		rows = append(rows, []float64{
			float64(acc.month),
			float64(acc.weekdaySum) / float64(acc.count),
			float64(acc.count),
		})
		labels = append(labels, acc.total)
	}
	return rows, labels
}

// distinctMonths counts the calendar months present in expenses.
func distinctMonths(expenses []*model.Transaction) int {
	months := make(map[string]struct{})
	for _, t := range expenses {
		months[t.Date.Format("2006-01")] = struct{}{}
	}
	return len(months)
}
