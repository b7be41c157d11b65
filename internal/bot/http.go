package bot

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"cryptomate/internal/exchange"
	"cryptomate/internal/models"
)

const (
	initDataMaxAge = 24 * time.Hour
	apiHistorySize = 20
)

type userIDKey struct{}

// HTTPServer handles HTTP requests for the Mini App
type HTTPServer struct {
	bot         *Bot
	token       string
	webhookMode bool // If false (polling mode), skip authentication for easier local dev
}

// NewHTTPServer creates a new HTTP server for the Mini App
func NewHTTPServer(bot *Bot, token string, webhookMode bool) *HTTPServer {
	return &HTTPServer{
		bot:         bot,
		token:       token,
		webhookMode: webhookMode,
	}
}

// RegisterRoutes registers Mini App routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/catalog", hs.authMiddleware(hs.handleCatalog))
	mux.HandleFunc("/api/compose", hs.authMiddleware(hs.handleCompose))
	mux.HandleFunc("/api/history", hs.authMiddleware(hs.handleHistory))
}

// validateTelegramInitData validates the Telegram Mini App initData
func (hs *HTTPServer) validateTelegramInitData(initData string) (int64, error) {
	if initData == "" {
		return 0, fmt.Errorf("missing initData")
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return 0, fmt.Errorf("invalid initData format: %w", err)
	}

	hash := values.Get("hash")
	if hash == "" {
		return 0, fmt.Errorf("missing hash in initData")
	}
	values.Del("hash")

	if !hmac.Equal([]byte(signInitData(hs.token, values)), []byte(hash)) {
		return 0, fmt.Errorf("invalid hash")
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid auth_date: %w", err)
	}
	if time.Since(time.Unix(authDate, 0)) > initDataMaxAge {
		return 0, fmt.Errorf("initData is too old")
	}

	userStr := values.Get("user")
	if userStr == "" {
		return 0, fmt.Errorf("missing user data")
	}

	var userData struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(userStr), &userData); err != nil {
		return 0, fmt.Errorf("invalid user data: %w", err)
	}

	if !hs.bot.isAllowed(userData.ID) {
		return 0, fmt.Errorf("user not allowed")
	}

	return userData.ID, nil
}

// signInitData computes the Mini App hash of the values (hash field excluded)
func signInitData(token string, values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var dataCheckString strings.Builder
	for i, k := range keys {
		if i > 0 {
			dataCheckString.WriteByte('\n')
		}
		dataCheckString.WriteString(k)
		dataCheckString.WriteByte('=')
		dataCheckString.WriteString(values.Get(k))
	}

	secretKey := hmac.New(sha256.New, []byte("WebAppData"))
	secretKey.Write([]byte(token))

	h := hmac.New(sha256.New, secretKey.Sum(nil))
	h.Write([]byte(dataCheckString.String()))
	return hex.EncodeToString(h.Sum(nil))
}

// authMiddleware validates Telegram Mini App authentication
// In polling mode (webhookMode=false), authentication is optional for easier local development
func (hs *HTTPServer) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !hs.webhookMode {
			// Valid initData still identifies the user; anything else continues anonymously
			if userID, err := hs.validateTelegramInitData(strings.TrimPrefix(r.Header.Get("Authorization"), "tma ")); err == nil {
				next(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID)))
				return
			}
			hs.bot.logger.Debug("Skipping authentication (polling mode)",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			next(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "tma ") {
			hs.bot.logger.Warn("Missing or invalid authorization header")
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := hs.validateTelegramInitData(strings.TrimPrefix(authHeader, "tma "))
		if err != nil {
			hs.bot.logger.Warn("Failed to validate initData",
				zap.Error(err),
				zap.String("remote_addr", r.RemoteAddr),
			)
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		hs.bot.logger.Debug("Authenticated request",
			zap.Int64("user_id", userID),
			zap.String("path", r.URL.Path),
		)

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID)))
	}
}

// requestUserID returns the authenticated user, 0 when authentication was skipped
func requestUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey{}).(int64)
	return id
}

// handleCatalog returns the known assets
func (hs *HTTPServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, hs.bot.machine.Composer().Catalog().Assets())
}

// ComposeRequest represents the request body for composing exchange links
type ComposeRequest struct {
	Give       string `json:"give"`
	Get        string `json:"get"`
	GiveMethod string `json:"give_method"`
	GetMethod  string `json:"get_method"`
	Location   string `json:"location"`
}

// handleCompose resolves a fully specified exchange request in one call
func (hs *HTTPServer) handleCompose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var body ComposeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		hs.bot.logger.Warn("Failed to decode request body", zap.Error(err))
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := body.toExchangeRequest()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := hs.bot.machine.Composer().Compose(req)
	if errors.Is(err, exchange.ErrUnresolved) {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		hs.bot.logger.Error("Failed to compose exchange links", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to compose links")
		return
	}

	// Anonymous polling-mode requests are composed but not logged
	if userID := requestUserID(r); userID != 0 {
		hs.saveRecord(r.Context(), userID, req, reply)
	}

	writeJSON(w, http.StatusOK, reply)
}

func (hs *HTTPServer) saveRecord(ctx context.Context, userID int64, req exchange.ExchangeRequest, reply *exchange.ComposedReply) {
	record := models.ExchangeRecord{
		UserID:     userID,
		GiveToken:  req.GiveToken,
		GetToken:   req.GetToken,
		GiveMethod: req.GiveMethod.String(),
		GetMethod:  req.GetMethod.String(),
		GiveCode:   reply.GiveCode,
		GetCode:    reply.GetCode,
		Location:   req.Location,
		Link:       reply.PrimaryURL,
	}
	if err := hs.bot.db.SaveExchange(ctx, record); err != nil {
		hs.bot.logger.Error("Failed to save exchange request", zap.Error(err), zap.Int64("user_id", userID))
		return
	}

	hs.bot.logger.Info("Exchange composed via Mini App",
		zap.Int64("user_id", userID),
		zap.String("give", reply.GiveCode),
		zap.String("get", reply.GetCode),
	)
}

func (c ComposeRequest) toExchangeRequest() (exchange.ExchangeRequest, error) {
	give := strings.TrimSpace(c.Give)
	get := strings.TrimSpace(c.Get)
	if give == "" || get == "" {
		return exchange.ExchangeRequest{}, fmt.Errorf("give and get are required")
	}

	giveMethod, err := exchange.ParseMethod(c.GiveMethod)
	if err != nil {
		return exchange.ExchangeRequest{}, fmt.Errorf("give_method: %w", err)
	}
	getMethod, err := exchange.ParseMethod(c.GetMethod)
	if err != nil {
		return exchange.ExchangeRequest{}, fmt.Errorf("get_method: %w", err)
	}

	req := exchange.ExchangeRequest{
		GiveToken:  give,
		GetToken:   get,
		GiveMethod: giveMethod,
		GetMethod:  getMethod,
		Location:   strings.TrimSpace(c.Location),
	}

	switch {
	case !req.HasCash():
		req.Location = exchange.LocationOnline
	case req.Location == "":
		return exchange.ExchangeRequest{}, fmt.Errorf("location is required for cash")
	}

	return req, nil
}

// handleHistory returns recent requests of the authenticated user.
// History is per user, so it is never served without initData, even in polling mode.
func (hs *HTTPServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID := requestUserID(r)
	if userID == 0 {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	records, err := hs.bot.db.LastExchanges(r.Context(), userID, apiHistorySize)
	if err != nil {
		hs.bot.logger.Error("Failed to list exchange history", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to fetch history")
		return
	}
	if records == nil {
		records = []models.ExchangeRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
