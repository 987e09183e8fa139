package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rcsapi/internal/auth"
	"rcsapi/internal/domain"
	"rcsapi/internal/service"
	"rcsapi/internal/util"
)

type API struct {
	Dispatch *service.DispatchService
	Events   *service.EventService
	Users    *service.UserService
	Resolver *auth.Resolver
}

func (a *API) Register(r *mux.Router) {
	r.HandleFunc("/v1/auth/register", a.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/token", a.handleToken).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/login", a.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/users/me", a.handleMe).Methods(http.MethodGet)

	r.HandleFunc("/v1/rcs/send/", a.requireAccount(a.handleSend)).Methods(http.MethodPost)
	r.HandleFunc("/v1/rcs/events/", a.requireAccount(a.handleListEvents)).Methods(http.MethodGet)
	r.HandleFunc("/v1/rcs/events/{callback_message_id}", a.requireAccount(a.handleEventsByTrackingID)).Methods(http.MethodGet)
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, detailInvalidJSON)
		return
	}
	if err := req.Validate(); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.Users.Register(r.Context(), req, util.NowUTC())
	if err != nil {
		status := writeError(w, err)
		if status == http.StatusBadGateway {
			slog.Error("register failed", "err", err, "username", req.Username)
		}
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleToken is the form-encoded variant of the login flow.
func (a *API) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, detailBadForm)
		return
	}
	a.issueToken(w, r, r.PostForm.Get("username"), r.PostForm.Get("password"))
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, detailInvalidJSON)
		return
	}
	a.issueToken(w, r, req.Username, req.Password)
}

func (a *API) issueToken(w http.ResponseWriter, r *http.Request, username, password string) {
	token, err := a.Users.Authenticate(r.Context(), username, password)
	if err != nil {
		status := writeError(w, err)
		if status == http.StatusBadGateway {
			slog.Error("authenticate failed", "err", err, "username", username)
		}
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	cred, err := auth.ParseCredential(r.Header.Get("Authorization"))
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, detailCredentials)
		return
	}
	user, err := a.Resolver.ResolveUser(r.Context(), cred)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.UserView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		AccountID: user.AccountID,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	})
}

func (a *API) handleSend(w http.ResponseWriter, r *http.Request) {
	var req domain.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, detailInvalidJSON)
		return
	}
	if err := req.Validate(); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	account := accountFrom(r.Context())
	resp, err := a.Dispatch.Send(r.Context(), req, account, util.NowUTC())
	if err != nil {
		status := writeError(w, err)
		if status == http.StatusBadGateway {
			slog.Error("send failed", "err", err, "account_id", account.ID, "template_id", req.TemplateID)
		}
		return
	}
	// Per-recipient outcomes live in the body; the HTTP status stays 200.
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := intParam(query.Get("page"), 1)
	limit := intParam(query.Get("limit"), 100)
	trackingIDs := query["callbackUserId"]

	account := accountFrom(r.Context())
	resp, err := a.Events.List(r.Context(), account, trackingIDs, page, limit)
	if err != nil {
		status := writeError(w, err)
		if status == http.StatusBadGateway {
			slog.Error("list events failed", "err", err, "account_id", account.ID)
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleEventsByTrackingID(w http.ResponseWriter, r *http.Request) {
	trackingID := mux.Vars(r)["callback_message_id"]

	account := accountFrom(r.Context())
	resp, err := a.Events.GetByTrackingID(r.Context(), account, trackingID)
	if err != nil {
		status := writeError(w, err)
		if status == http.StatusBadGateway {
			slog.Error("get events failed", "err", err, "account_id", account.ID, "callback_message_id", trackingID)
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func intParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
