package identity

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// DefaultContextKey is the Locals key the protected-route middleware stores
// the resolved account under.
const DefaultContextKey = "identity"

type AccountControllerRoutes struct {
	Register     string
	Login        string
	Logout       string
	Current      string
	Subscription string
	Avatars      string
	Verify       string
	ResendVerify string
}

// RegisterAccountRoutes mounts the account lifecycle endpoints
func RegisterAccountRoutes[T any](app router.Router[T], opts ...AccountControllerOption) {

	controller := NewAccountController(opts...)

	app.Post(controller.Routes.Register, controller.Signup).
		SetName("users.register")

	app.Post(controller.Routes.Login, controller.Login).
		SetName("users.login")

	app.Get(fmt.Sprintf("%s/:verificationToken", controller.Routes.Verify), controller.VerifyEmail).
		SetName("users.verify")

	app.Post(controller.Routes.ResendVerify, controller.ResendVerification).
		SetName("users.verify.resend")

	app.Post(controller.Routes.Logout, controller.Protect(controller.Logout)).
		SetName("users.logout")

	app.Get(controller.Routes.Current, controller.Protect(controller.Current)).
		SetName("users.current")

	app.Patch(controller.Routes.Subscription, controller.Protect(controller.UpdateSubscription)).
		SetName("users.subscription")

	app.Patch(controller.Routes.Avatars, controller.Protect(controller.UploadAvatar)).
		SetName("users.avatars")
}

type AccountController struct {
	Debug      bool
	Logger     Logger
	Repo       RepositoryManager
	Auther     *Auther
	Notifier   *VerificationMailer
	Avatars    *AvatarProcessor
	ContextKey string
	Routes     *AccountControllerRoutes
}

type AccountControllerOption func(*AccountController) *AccountController

func NewAccountController(opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger:     defLogger{},
		ContextKey: DefaultContextKey,
		Routes: &AccountControllerRoutes{
			Register:     "/api/users/register",
			Login:        "/api/users/login",
			Logout:       "/api/users/logout",
			Current:      "/api/users/current",
			Subscription: "/api/users",
			Avatars:      "/api/users/avatars",
			Verify:       "/api/users/verify",
			ResendVerify: "/api/users/verify",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in account controller...")
	}

	if c.Auther == nil {
		panic("Missing Auther in account controller...")
	}

	if c.Notifier == nil {
		panic("Missing VerificationMailer in account controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther *Auther) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Auther = auther
		return c
	}
}

func WithControllerNotifier(notifier *VerificationMailer) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Notifier = notifier
		return c
	}
}

func WithControllerAvatars(avatars *AvatarProcessor) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Avatars = avatars
		return c
	}
}

func WithControllerLogger(logger Logger) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Logger = logger
		return c
	}
}

func WithControllerDebug(debug bool) AccountControllerOption {
	return func(c *AccountController) *AccountController {
		c.Debug = debug
		return c
	}
}

// SignupRequest payload
type SignupRequest struct {
	Email        string `form:"email" json:"email"`
	Password     string `form:"password" json:"password"`
	Subscription string `form:"subscription" json:"subscription"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(6, 100),
		),
		validation.Field(
			&r.Subscription,
			validation.In(
				SubscriptionStarter,
				SubscriptionPro,
				SubscriptionBusiness,
			),
		),
	)
}

func (a *AccountController) Signup(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signup validate payload", "error", err)
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest))
	}

	if a.Debug {
		a.Logger.Debug("signup payload %s", print.MaybePrettyJSON(payload))
	}

	var res *SignupResponse
	req := SignupMessage{
		Email:        payload.Email,
		Password:     payload.Password,
		Subscription: payload.Subscription,
		OnResponse: func(resp *SignupResponse) {
			res = resp
		},
	}

	signup := NewSignupHandler(a.Repo.Accounts(), a.Notifier)
	if err := signup.Execute(ctx.Context(), req); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, map[string]any{
		"user": res.Account,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AccountController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload", "error", err)
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest))
	}

	result, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, result)
}

func (a *AccountController) Logout(ctx router.Context) error {
	account, err := a.AccountFromContext(ctx)
	if err != nil {
		return a.respondError(ctx, err)
	}

	if err := a.Auther.Logout(ctx.Context(), account.ID); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.NoContent(fiber.StatusNoContent)
}

func (a *AccountController) Current(ctx router.Context) error {
	account, err := a.AccountFromContext(ctx)
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, a.Auther.CurrentAccount(account))
}

// UpdateSubscriptionRequest payload
type UpdateSubscriptionRequest struct {
	Subscription string `form:"subscription" json:"subscription"`
}

// Validate will run validation rules
func (r UpdateSubscriptionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Subscription,
			validation.Required,
			validation.In(
				SubscriptionStarter,
				SubscriptionPro,
				SubscriptionBusiness,
			),
		),
	)
}

func (a *AccountController) UpdateSubscription(ctx router.Context) error {
	account, err := a.AccountFromContext(ctx)
	if err != nil {
		return a.respondError(ctx, err)
	}

	payload := new(UpdateSubscriptionRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("subscription parse payload", "error", err)
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("subscription validate payload", "error", err)
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest))
	}

	var res *UpdateSubscriptionResponse
	req := UpdateSubscriptionMessage{
		AccountID:    account.ID,
		Subscription: payload.Subscription,
		OnResponse: func(resp *UpdateSubscriptionResponse) {
			res = resp
		},
	}

	update := NewUpdateSubscriptionHandler(a.Repo.Accounts())
	if err := update.Execute(ctx.Context(), req); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, res.Account)
}

// AvatarUploadRequest carries the name the transport staged the upload under
type AvatarUploadRequest struct {
	Filename string `form:"filename" json:"filename"`
}

// Validate will run validation rules
func (r AvatarUploadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Filename,
			validation.Required,
		),
	)
}

func (a *AccountController) UploadAvatar(ctx router.Context) error {
	account, err := a.AccountFromContext(ctx)
	if err != nil {
		return a.respondError(ctx, err)
	}

	payload := new(AvatarUploadRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("avatar parse payload", "error", err)
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("avatar validate payload", "error", err)
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest))
	}

	if a.Avatars == nil {
		return a.respondError(ctx, errors.New("avatar storage is not configured", errors.CategoryInternal).
			WithCode(errors.CodeInternal))
	}

	avatarURL, err := a.Avatars.Store(ctx.Context(), account.ID, payload.Filename)
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"avatarURL": avatarURL,
	})
}

func (a *AccountController) VerifyEmail(ctx router.Context) error {
	token := ctx.Param("verificationToken", "")

	var res *VerifyEmailResponse
	req := VerifyEmailMessage{
		Token: token,
		OnResponse: func(resp *VerifyEmailResponse) {
			res = resp
		},
	}

	verify := NewVerifyEmailHandler(a.Repo.Accounts())
	if err := verify.Execute(ctx.Context(), req); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, res)
}

func (a *AccountController) ResendVerification(ctx router.Context) error {
	payload := new(ResendVerificationRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("resend parse payload", "error", err)
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	var res *ResendVerificationResponse
	req := ResendVerificationMessage{
		Email: payload.Email,
		OnResponse: func(resp *ResendVerificationResponse) {
			res = resp
		},
	}

	resend := NewResendVerificationHandler(a.Repo.Accounts(), a.Notifier)
	if err := resend.Execute(ctx.Context(), req); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, res)
}

// ResendVerificationRequest payload. The email presence check lives in the
// handler so the missing-field message matches the lifecycle policy.
type ResendVerificationRequest struct {
	Email string `form:"email" json:"email"`
}

// Protect resolves the acting account from the bearer token before handing
// off to the wrapped handler.
func (a *AccountController) Protect(next router.HandlerFunc) router.HandlerFunc {
	return func(ctx router.Context) error {
		raw := bearerToken(ctx.Header("Authorization"))
		if raw == "" {
			return a.respondError(ctx, ErrTokenMalformed)
		}

		claims, err := a.Auther.SessionFromToken(raw)
		if err != nil {
			return a.respondError(ctx, err)
		}

		account, err := a.Auther.AccountFromSession(ctx.Context(), claims, raw)
		if err != nil {
			return a.respondError(ctx, err)
		}

		ctx.Locals(a.ContextKey, account)
		ctx.SetContext(WithClaimsContext(WithContext(ctx.Context(), account), claims))

		return next(ctx)
	}
}

// AccountFromContext returns the account the Protect middleware resolved
func (a *AccountController) AccountFromContext(ctx router.Context) (*Account, error) {
	val := ctx.Locals(a.ContextKey)
	if val == nil {
		return nil, ErrSessionRevoked
	}

	account, ok := val.(*Account)
	if !ok || account == nil {
		return nil, ErrSessionRevoked
	}

	return account, nil
}

func (a *AccountController) respondError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Error(
		"account controller error",
		"error", richErr.Message,
		"category", richErr.Category,
		"text_code", richErr.TextCode,
	)

	return ctx.JSON(statusFromError(richErr), map[string]any{
		"status":  statusFromError(richErr),
		"message": richErr.Message,
	})
}

func statusFromError(err *errors.Error) int {
	if err.Code > 0 {
		return err.Code
	}

	switch err.Category {
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryAuth, errors.CategoryAuthz:
		return fiber.StatusUnauthorized
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}

	return ""
}
