package accounts

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatekeep-io/gatekeep/internal/platform/httpx"
)

// Handler translates HTTP requests into account registry operations.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	validator   *validator.Validate
	frontendURL string
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, frontendURL string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:      logger,
		service:     service,
		validator:   validator.New(),
		frontendURL: frontendURL,
	}
}

// MountRoutes registers account routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Get("/verify-email/{token}", h.verifyEmail)
	r.Post("/login", h.login)
	r.Post("/resend-verification", h.resendVerification)
	r.Get("/user/{email}", h.getUser)
}

type messageResponse struct {
	Message string `json:"message"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

type loginResponse struct {
	Message string     `json:"message"`
	User    PublicUser `json:"user"`
}

type userResponse struct {
	User PublicUser `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "All fields are required and the password must be at least 8 characters long")
		return
	}

	result, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		case errors.Is(err, ErrEmailTaken):
			httpx.Problem(w, http.StatusConflict, "Conflict", "User Already Exists")
		default:
			h.logger.Error("register", slog.Any("error", err))
			httpx.Internal(w)
		}
		return
	}

	if result.Resent {
		msg := "Account already registered but not verified. Verification email resent."
		if !result.MailQueued {
			msg = "Account already registered but not verified. The verification email could not be sent; please try resending later."
		}
		httpx.JSON(w, http.StatusOK, messageResponse{Message: msg})
		return
	}

	msg := "Registered successfully. Please check your email to verify your account."
	if !result.MailQueued {
		msg = "Registered successfully, but the verification email could not be sent. Please request a new one."
	}
	httpx.JSON(w, http.StatusCreated, registerResponse{Message: msg, UserID: result.UserID})
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if _, err := h.service.VerifyEmail(r.Context(), token); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Token", "Verification link is invalid or has expired")
			return
		}
		h.logger.Error("verify email", slog.Any("error", err))
		httpx.Internal(w)
		return
	}

	http.Redirect(w, r, h.frontendURL+"/login?verified=1", http.StatusSeeOther)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, messageResponse{Message: "Email and password are required"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, messageResponse{Message: "Email and password are required"})
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.JSON(w, http.StatusNotFound, messageResponse{Message: "User Does Not Exist"})
		case errors.Is(err, ErrUnverified):
			httpx.JSON(w, http.StatusUnauthorized, messageResponse{Message: "Please verify your email before logging in"})
		case errors.Is(err, ErrInvalidCredentials):
			httpx.JSON(w, http.StatusUnauthorized, messageResponse{Message: "The Password Was Incorrect"})
		default:
			h.logger.Error("login", slog.Any("error", err))
			httpx.Internal(w)
		}
		return
	}

	httpx.JSON(w, http.StatusOK, loginResponse{Message: "Success", User: user.Public()})
}

func (h *Handler) resendVerification(w http.ResponseWriter, r *http.Request) {
	var req ResendVerificationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email is required")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email is required")
		return
	}

	queued, err := h.service.ResendVerification(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.JSON(w, http.StatusNotFound, messageResponse{Message: "User Does Not Exist"})
		case errors.Is(err, ErrAlreadyVerified):
			httpx.Problem(w, http.StatusBadRequest, "Already Verified", "Account is already verified")
		default:
			h.logger.Error("resend verification", slog.Any("error", err))
			httpx.Internal(w)
		}
		return
	}

	msg := "Verification email sent. Please check your inbox."
	if !queued {
		msg = "The verification email could not be sent; please try again later."
	}
	httpx.JSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	user, err := h.service.GetUser(r.Context(), email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSON(w, http.StatusNotFound, messageResponse{Message: "User not found"})
			return
		}
		h.logger.Error("get user", slog.Any("error", err))
		httpx.Internal(w)
		return
	}

	httpx.JSON(w, http.StatusOK, userResponse{User: user.Public()})
}
