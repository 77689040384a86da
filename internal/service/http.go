package service

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/finsight/backend/internal/analytics"
	"github.com/finsight/backend/internal/model"
)

// userIDHeader carries the authenticated user. Authentication itself happens
// upstream; locally the header is set directly.
const userIDHeader = "X-User-ID"

// apiResponse is the envelope every endpoint answers with.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Handler returns the HTTP mux for the analytics API.
func (s *AnalyticsService) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ml/analyze-spending", s.handleAnalyzeSpending)
	mux.HandleFunc("POST /api/ml/predict-expenses", s.handlePredictExpenses)
	mux.HandleFunc("POST /api/ml/optimize-budget", s.handleOptimizeBudget)
	mux.HandleFunc("POST /api/ml/categorize-transaction", s.handleCategorizeTransaction)
	mux.HandleFunc("GET /api/ml/financial-insights", s.handleFinancialInsights)
	mux.HandleFunc("GET /api/ml/budget-recommendations", s.handleBudgetRecommendations)
	mux.HandleFunc("GET /api/budgets/analysis", s.handleBudgetAnalysis)
	return mux
}

type analyzeSpendingRequest struct {
	Period        string `json:"period"`
	IncludeTrends *bool  `json:"include_trends"`
}

func (s *AnalyticsService) handleAnalyzeSpending(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req analyzeSpendingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	granularity := analytics.GranularityMonthly
	switch req.Period {
	case "weekly":
		granularity = analytics.GranularityWeekly
	case "yearly":
		granularity = analytics.GranularityYearly
	}
	includeTrends := true
	if req.IncludeTrends != nil {
		includeTrends = *req.IncludeTrends
	}

	analysis, err := s.AnalyzeSpending(r.Context(), userID, granularity, includeTrends)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Spending analysis completed", analysis)
}

type predictExpensesRequest struct {
	MonthsAhead int            `json:"months_ahead"`
	Category    model.Category `json:"category"`
}

func (s *AnalyticsService) handlePredictExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req predictExpensesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.PredictExpenses(r.Context(), userID, req.MonthsAhead, req.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Expense prediction completed", result)
}

type optimizeBudgetRequest struct {
	TargetSavingsRate  float64          `json:"target_savings_rate"`
	PriorityCategories []model.Category `json:"priority_categories"`
}

func (s *AnalyticsService) handleOptimizeBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req optimizeBudgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.OptimizeBudget(r.Context(), userID, req.TargetSavingsRate, req.PriorityCategories)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Budget optimization completed", result)
}

type categorizeTransactionRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Merchant    string  `json:"merchant"`
}

func (s *AnalyticsService) handleCategorizeTransaction(w http.ResponseWriter, r *http.Request) {
	var req categorizeTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Description == "" {
		writeResponse(w, http.StatusBadRequest, apiResponse{Message: "description is required"})
		return
	}

	prediction := s.CategorizeTransaction(req.Description, req.Amount, req.Merchant)
	writeSuccess(w, "Transaction categorized", prediction)
}

func (s *AnalyticsService) handleFinancialInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	insights, err := s.GetFinancialInsights(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Financial insights generated", insights)
}

func (s *AnalyticsService) handleBudgetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	report, err := s.GetBudgetRecommendations(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Budget recommendations generated", report)
}

func (s *AnalyticsService) handleBudgetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	period := model.BudgetPeriod(r.URL.Query().Get("period"))

	analysis, err := s.GetBudgetAnalysis(r.Context(), userID, period)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Budget analysis completed", analysis)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		writeResponse(w, http.StatusUnauthorized, apiResponse{Message: "user id is required"})
		return "", false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeResponse(w, http.StatusBadRequest, apiResponse{Message: "invalid request body"})
		return false
	}
	return true
}

// writeError maps analytics errors to HTTP statuses: missing data is a 404,
// everything else a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if analytics.IsNoData(err) {
		status = http.StatusNotFound
	} else {
		log.Printf("analytics request failed: %v", err)
	}
	writeResponse(w, status, apiResponse{Message: err.Error()})
}

func writeSuccess(w http.ResponseWriter, message string, data any) {
	writeResponse(w, http.StatusOK, apiResponse{Success: true, Message: message, Data: data})
}

func writeResponse(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
