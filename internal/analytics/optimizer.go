package analytics

import (
	"sort"

	"github.com/finsight/backend/internal/model"
)

// Optimization types.
const (
	OptimizationReduce    = "reduce"
	OptimizationRebalance = "rebalance"
)

// DefaultTargetSavingsRate applies when the caller does not specify one.
const DefaultTargetSavingsRate = 0.2

// BudgetAllocation is the optimizer's verdict for one category.
type BudgetAllocation struct {
	RecommendedAmount float64 `json:"recommended_amount"`
	CurrentAverage    float64 `json:"current_average"`
	VariabilityScore  float64 `json:"variability_score"`
	Priority          bool    `json:"priority"`
}

// AllocationRecommendation explains the adjustment applied to one category.
// Reduction fields are set on the reduce path, buffer fields on rebalance.
type AllocationRecommendation struct {
	Category            model.Category `json:"category"`
	Type                string         `json:"type"`
	CurrentBudget       float64        `json:"current_budget"`
	RecommendedBudget   float64        `json:"recommended_budget"`
	ReductionAmount     float64        `json:"reduction_amount,omitempty"`
	ReductionPercentage float64        `json:"reduction_percentage,omitempty"`
	BufferAmount        float64        `json:"buffer_amount,omitempty"`
	BufferPercentage    float64        `json:"buffer_percentage,omitempty"`
}

// OptimizationSummary aggregates the optimizer's recommendations.
type OptimizationSummary struct {
	TotalCategories       int  `json:"total_categories"`
	CategoriesToReduce    int  `json:"categories_to_reduce"`
	CategoriesToRebalance int  `json:"categories_to_rebalance"`
	MeetsSavingsGoal      bool `json:"meets_savings_goal"`
}

// OptimizationResult is the full budget reallocation recommendation.
type OptimizationResult struct {
	OptimizationType  string                               `json:"optimization_type"`
	MonthlyIncome     float64                              `json:"monthly_income"`
	CurrentSpending   float64                              `json:"current_spending"`
	TargetSpending    float64                              `json:"target_spending"`
	OptimizedSpending float64                              `json:"optimized_spending"`
	PotentialSavings  float64                              `json:"potential_savings"`
	TargetSavingsRate float64                              `json:"target_savings_rate"`
	ActualSavingsRate float64                              `json:"actual_savings_rate"`
	OptimizedBudget   map[model.Category]*BudgetAllocation `json:"optimized_budget"`
	Recommendations   []AllocationRecommendation           `json:"recommendations"`
	Summary           OptimizationSummary                  `json:"summary"`
}

// OptimizeBudget computes a per-category budget reallocation from monthly
// category statistics, a monthly income and a target savings rate.
//
// When current spending exceeds the target, each category is cut: priority
// categories by a fixed 5%, the rest by min(30%, 10% + variability*20%) so
// volatile categories absorb more of the reduction. When spending is within
// target, each category instead gains a buffer of min(20%, variability*10%).
//
// Returns a NO_DATA error when stats is empty; callers must treat that as
// "cannot compute" rather than a zero-valued result.
func OptimizeBudget(stats map[model.Category]CategoryStats, monthlyIncome, targetSavingsRate float64, priorityCategories []model.Category) (*OptimizationResult, error) {
	if len(stats) == 0 {
		return nil, NewError(ErrNoData, "no expense history to optimize")
	}

	priority := make(map[model.Category]bool, len(priorityCategories))
	for _, c := range priorityCategories {
		priority[c] = true
	}

	var totalSpending float64
	for _, s := range stats {
		totalSpending += s.AvgMonthly
	}
	targetSpending := monthlyIncome * (1 - targetSavingsRate)

	optimizationType := OptimizationRebalance
	if totalSpending > targetSpending {
		optimizationType = OptimizationReduce
	}

	categories := make([]model.Category, 0, len(stats))
	for c := range stats {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	optimizedBudget := make(map[model.Category]*BudgetAllocation, len(stats))
	recommendations := make([]AllocationRecommendation, 0, len(stats))

	for _, category := range categories {
		s := stats[category]
		currentAvg := s.AvgMonthly
		variability := s.Variability

		var optimizedAmount float64
		if optimizationType == OptimizationReduce {
			reductionFactor := 0.05
			if !priority[category] {
				reductionFactor = 0.1 + variability*0.2
				if reductionFactor > 0.3 {
					reductionFactor = 0.3
				}
			}
			optimizedAmount = currentAvg * (1 - reductionFactor)
			recommendations = append(recommendations, AllocationRecommendation{
				Category:            category,
				Type:                OptimizationReduce,
				CurrentBudget:       currentAvg,
				RecommendedBudget:   optimizedAmount,
				ReductionAmount:     currentAvg - optimizedAmount,
				ReductionPercentage: reductionFactor * 100,
			})
		} else {
			bufferFactor := variability * 0.1
			if bufferFactor > 0.2 {
				bufferFactor = 0.2
			}
			optimizedAmount = currentAvg * (1 + bufferFactor)
			recommendations = append(recommendations, AllocationRecommendation{
				Category:          category,
				Type:              OptimizationRebalance,
				CurrentBudget:     currentAvg,
				RecommendedBudget: optimizedAmount,
				BufferAmount:      optimizedAmount - currentAvg,
				BufferPercentage:  bufferFactor * 100,
			})
		}

		optimizedBudget[category] = &BudgetAllocation{
			RecommendedAmount: optimizedAmount,
			CurrentAverage:    currentAvg,
			VariabilityScore:  variability,
			Priority:          priority[category],
		}
	}

	var optimizedSpending float64
	for _, alloc := range optimizedBudget {
		optimizedSpending += alloc.RecommendedAmount
	}
	potentialSavings := monthlyIncome - optimizedSpending
	actualSavingsRate := 0.0
	if monthlyIncome > 0 {
		actualSavingsRate = potentialSavings / monthlyIncome
	}

	summary := OptimizationSummary{
		TotalCategories:  len(optimizedBudget),
		MeetsSavingsGoal: actualSavingsRate >= targetSavingsRate,
	}
	for _, r := range recommendations {
		if r.Type == OptimizationReduce {
			summary.CategoriesToReduce++
		} else {
			summary.CategoriesToRebalance++
		}
	}

	return &OptimizationResult{
		OptimizationType:  optimizationType,
		MonthlyIncome:     monthlyIncome,
		CurrentSpending:   totalSpending,
		TargetSpending:    targetSpending,
		OptimizedSpending: optimizedSpending,
		PotentialSavings:  potentialSavings,
		TargetSavingsRate: targetSavingsRate,
		ActualSavingsRate: actualSavingsRate,
		OptimizedBudget:   optimizedBudget,
		Recommendations:   recommendations,
		Summary:           summary,
	}, nil
}
