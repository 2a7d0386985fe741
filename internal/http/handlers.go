package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"budgetup/internal/core"
	"budgetup/internal/currency"
	"budgetup/internal/log"
	"budgetup/internal/middleware/ratelimit"
	"budgetup/internal/middleware/security"
	"budgetup/internal/store"
)

type readyResponse struct {
	Status           string `json:"status"`
	Key              string `json:"key"`
	MigrationVersion int    `json:"migrationVersion"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(readyResponse{
		Status:           "ready",
		Key:              s.store.Key(),
		MigrationVersion: s.store.Summary().MigrationVersion,
	}).Write(w)
}

type convertResponse struct {
	Amount    float64   `json:"amount"`
	From      core.Code `json:"from"`
	To        core.Code `json:"to"`
	Rate      float64   `json:"rate"`
	Converted float64   `json:"converted"`
	Formatted string    `json:"formatted"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := ParseAmountParam(q, "amount")
	if err != nil {
		BadRequestError(err.Error()).For(r).Write(w)
		return
	}
	active := s.currency.ActiveCurrency()
	from, err := ParseCurrencyParam(q, "from", active)
	if err != nil {
		BadRequestError(err.Error()).For(r).Write(w)
		return
	}
	to, err := ParseCurrencyParam(q, "to", active)
	if err != nil {
		BadRequestError(err.Error()).For(r).Write(w)
		return
	}

	converted := s.currency.ConvertBetween(amount, from, to)
	NewJSONResponse().Data(convertResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		Rate:      s.currency.Rate(from, to),
		Converted: converted,
		Formatted: s.currency.FormatIn(converted, to, ""),
	}).Write(w)
}

type formatResponse struct {
	Amount    float64   `json:"amount"`
	Currency  core.Code `json:"currency"`
	Locale    string    `json:"locale"`
	Formatted string    `json:"formatted"`
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := ParseAmountParam(q, "amount")
	if err != nil {
		BadRequestError(err.Error()).For(r).Write(w)
		return
	}
	code, err := ParseCurrencyParam(q, "currency", s.currency.ActiveCurrency())
	if err != nil {
		BadRequestError(err.Error()).For(r).Write(w)
		return
	}
	locale := sanitizeInput(q.Get("locale"))
	if locale == "" {
		locale = s.currency.Locale()
	}

	NewJSONResponse().Data(formatResponse{
		Amount:    amount,
		Currency:  code,
		Locale:    locale,
		Formatted: s.currency.FormatIn(amount, code, locale),
	}).Write(w)
}

type currencyInfo struct {
	Code    core.Code `json:"code"`
	Name    string    `json:"name"`
	Symbol  string    `json:"symbol"`
	Country string    `json:"country"`
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	all := core.Currencies()
	out := make([]currencyInfo, 0, len(all))
	for _, c := range all {
		out = append(out, currencyInfo{Code: c.Code, Name: c.Name, Symbol: c.Symbol, Country: c.Country})
	}
	NewJSONResponse().Data(out).Write(w)
}

type currencyState struct {
	Currency  core.Code `json:"currency"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Locale    string    `json:"locale"`
	IsLoading bool      `json:"isLoading"`
	Error     string    `json:"error,omitempty"`
}

func (s *Server) currencyState() currencyState {
	active := s.currency.ActiveCurrency()
	return currencyState{
		Currency:  active,
		Symbol:    s.currency.Symbol(),
		Name:      active.Name(),
		Locale:    s.currency.Locale(),
		IsLoading: s.currency.IsLoading(),
		Error:     s.currency.Error(),
	}
}

func (s *Server) handleGetCurrency(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.currencyState()).Write(w)
}

type setCurrencyRequest struct {
	Currency string `json:"currency"`
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var req setCurrencyRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		BadRequestError(err.Error()).For(r).Write(w)
		return
	}

	if !s.currency.SetActiveCurrency(r.Context(), sanitizeInput(req.Currency)) {
		UnprocessableEntityError(s.currency.Error()).For(r).Write(w)
		return
	}
	NewJSONResponse().Data(s.currencyState()).Write(w)
}

func (s *Server) handleClearCurrencyError(w http.ResponseWriter, r *http.Request) {
	s.currency.ClearError()
	NoContent().Write(w)
}

type summaryResponse struct {
	Summary          core.DataSummary `json:"summary"`
	Totals           core.Totals      `json:"totals"`
	Formatted        formattedTotals  `json:"formatted"`
	TotalSavings     float64          `json:"totalSavings"`
	AvailableBalance float64          `json:"availableBalance"`
}

type formattedTotals struct {
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Balance  string `json:"balance"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	totals := s.currency.CalculateTotals(snap.Transactions)
	format := func(v float64) string { return s.currency.FormatIn(v, totals.Currency, "") }

	NewJSONResponse().Data(summaryResponse{
		Summary: s.store.Summary(),
		Totals:  totals,
		Formatted: formattedTotals{
			Income:   format(totals.Income),
			Expenses: format(totals.Expenses),
			Balance:  format(totals.Balance),
		},
		TotalSavings:     s.store.TotalSavings(),
		AvailableBalance: s.store.AvailableBalance(),
	}).Write(w)
}

type transactionView struct {
	core.Transaction
	DisplayAmount   float64   `json:"displayAmount"`
	DisplayCurrency core.Code `json:"displayCurrency"`
	Formatted       string    `json:"formatted"`
}

func (s *Server) transactionView(tx core.Transaction) transactionView {
	active := s.currency.ActiveCurrency()
	from := tx.Currency
	if from == "" {
		from = active
	}
	display := core.Round2(s.currency.ConvertBetween(tx.Amount, from, active))
	return transactionView{
		Transaction:     tx,
		DisplayAmount:   display,
		DisplayCurrency: active,
		Formatted:       s.currency.FormatIn(display, active, ""),
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.store.Snapshot().Transactions
	out := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, s.transactionView(tx))
	}
	NewJSONResponse().Data(out).Write(w)
}

type createTransactionRequest struct {
	Type        core.TransactionType `json:"type"`
	Amount      float64              `json:"amount"`
	Currency    string               `json:"currency,omitempty"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Date        string               `json:"date,omitempty"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		BadRequestError(err.Error()).For(r).Write(w)
		return
	}

	tx := core.Transaction{
		Type:        core.TransactionType(strings.ToLower(sanitizeInput(string(req.Type)))),
		Amount:      req.Amount,
		Description: sanitizeInput(req.Description),
		Category:    sanitizeInput(req.Category),
		Date:        time.Now().UTC().Truncate(24 * time.Hour),
	}
	if req.Currency != "" {
		code, err := core.ParseCode(req.Currency)
		if err != nil {
			UnprocessableEntityError(err.Error()).For(r).Write(w)
			return
		}
		tx.Currency = code
	}
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			BadRequestError("invalid date, expected YYYY-MM-DD").For(r).Write(w)
			return
		}
		tx.Date = d
	}

	created, err := s.store.AddTransaction(r.Context(), tx)
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			UnprocessableEntityError(err.Error()).For(r).Write(w)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction save failed",
			log.FieldOperation, log.OpCreate, log.FieldError, err)
		InternalServerError("failed to save transaction").For(r).Write(w)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+created.ID).
		Data(s.transactionView(created)).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := sanitizeInput(r.PathValue("id"))
	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFoundError("transaction not found").For(r).Write(w)
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction delete failed",
			log.FieldOperation, log.OpDelete, log.FieldError, err, "id", id)
		InternalServerError("failed to delete transaction").For(r).Write(w)
		return
	}
	NoContent().Write(w)
}

type cacheStatsResponse struct {
	Currency  currency.CacheStats       `json:"currency"`
	RateLimit ratelimit.Metrics         `json:"rateLimit"`
	Security  security.DetectionMetrics `json:"security"`
	Requests  int64                     `json:"requests"`
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(cacheStatsResponse{
		Currency:  s.currency.CacheStats(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
		Requests:  s.tracer.GetMetrics().TotalRequests,
	}).Write(w)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.currency.ClearCache()
	NoContent().Write(w)
}
