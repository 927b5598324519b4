package user

import (
	"context"
	"net/http"

	"github.com/BasantaParajuli22/auth-mail-service/internal/db"
	"github.com/BasantaParajuli22/auth-mail-service/internal/email"
	"github.com/BasantaParajuli22/auth-mail-service/internal/models"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/debug"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/httputil"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// UserStore defines the store operations needed by user handlers
type UserStore interface {
	UpdateEmailPreference(ctx context.Context, id uuid.UUID, wantsEmails bool) (*models.User, error)
	ListSubscribedUsers(ctx context.Context) ([]db.Subscriber, error)
}

// EmailService defines the interface for email operations needed by user handlers
type EmailService interface {
	SendBulkUpdate(ctx context.Context, header, message string, recipients []email.Recipient) error
}

// Handler handles user account requests
type Handler struct {
	store        UserStore
	emailService EmailService
}

// NewHandler creates a new user handler
func NewHandler(store UserStore, emailService EmailService) *Handler {
	return &Handler{
		store:        store,
		emailService: emailService,
	}
}

// EmailPreferenceRequest carries the desired wants_emails flag
type EmailPreferenceRequest struct {
	WantsEmails *bool `json:"wantsEmails"`
}

// SendUpdatesRequest carries the header and body of a bulk update mail
type SendUpdatesRequest struct {
	Header  string `json:"header"`
	Message string `json:"message"`
}

// UserResponse is the body returned after an email preference change
type UserResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// EmailPreferenceHandler updates whether a user receives update mail.
// The updated user is returned.
func (h *Handler) EmailPreferenceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req EmailPreferenceRequest
	if err := httputil.ParseJSONBody(r, &req); err != nil || req.WantsEmails == nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "wantsEmails is required")
		return
	}

	user, err := h.store.UpdateEmailPreference(r.Context(), userID, *req.WantsEmails)
	if err != nil {
		if err == models.ErrUserNotFound {
			httputil.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		debug.Error("Failed to update email preference for %s: %v", userID, err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, UserResponse{
		Success: true,
		Message: "email preference updated",
		User:    user,
	})
}

// SendUpdatesHandler mails a personalized update to every subscribed user.
// The route is admin-gated by middleware.
func (h *Handler) SendUpdatesHandler(w http.ResponseWriter, r *http.Request) {
	var req SendUpdatesRequest
	if err := httputil.ParseJSONBody(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Header == "" || req.Message == "" {
		httputil.RespondWithError(w, http.StatusBadRequest, "header and message are required")
		return
	}

	subscribers, err := h.store.ListSubscribedUsers(r.Context())
	if err != nil {
		debug.Error("Failed to list subscribed users: %v", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if len(subscribers) == 0 {
		httputil.RespondWithMessage(w, http.StatusOK, "no subscribed users to notify")
		return
	}

	recipients := make([]email.Recipient, 0, len(subscribers))
	for _, s := range subscribers {
		recipients = append(recipients, email.Recipient{Email: s.Email, Username: s.Username})
	}

	if err := h.emailService.SendBulkUpdate(r.Context(), req.Header, req.Message, recipients); err != nil {
		debug.Error("Bulk update mail finished with errors: %v", err)
		httputil.RespondWithMessage(w, http.StatusOK,
			"updates sent, but delivery failed for some recipients")
		return
	}

	httputil.RespondWithMessage(w, http.StatusOK, "updates sent to all subscribed users")
}
