package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var MarkAccountVerifiedSQL = `UPDATE "accounts" AS "acc"
SET
	"verified" = TRUE,
	"verification_token" = NULL
WHERE
	(
	"acc"."id" = ?
) RETURNING *;`

type Accounts interface {
	repository.Repository[*Account]
	AccountStore

	RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error)
	SetSessionTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error
	ClearSessionTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error)
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ AccountStore                    = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) Register(ctx context.Context, account *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, account)
}

func (a *accounts) RegisterTx(ctx context.Context, tx bun.IDB, account *Account) (*Account, error) {
	prepareAccountDefaults(account)
	return a.Repository.CreateTx(ctx, tx, account)
}

func (a *accounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return a.findOne(ctx, "email", email)
}

func (a *accounts) GetByAccountID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.findOne(ctx, "id", id.String())
}

func (a *accounts) GetByVerificationToken(ctx context.Context, token string) (*Account, error) {
	return a.findOne(ctx, "verification_token", token)
}

func (a *accounts) findOne(ctx context.Context, column, value string) (*Account, error) {
	record := &Account{}

	err := a.db.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) SetSessionToken(ctx context.Context, id uuid.UUID, token string) error {
	return a.SetSessionTokenTx(ctx, a.db, id, token)
}

func (a *accounts) SetSessionTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error {
	// NOTE: raw update so a later login overwrites the previous session
	// token without the ORM skipping the column on zero values.
	_, err := tx.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET
			"session_token" = ?,
			"updated_at" = ?
		WHERE
			("acc".id = ?);
	`, token, time.Now(), id).Exec(ctx)

	return err
}

func (a *accounts) ClearSessionToken(ctx context.Context, id uuid.UUID) error {
	return a.ClearSessionTokenTx(ctx, a.db, id)
}

func (a *accounts) ClearSessionTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET
			"session_token" = NULL,
			"updated_at" = ?
		WHERE
			("acc".id = ?);
	`, time.Now(), id).Exec(ctx)

	return err
}

func (a *accounts) MarkVerified(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.MarkVerifiedTx(ctx, a.db, id)
}

func (a *accounts) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error) {
	res, err := a.Repository.RawTx(ctx, tx, MarkAccountVerifiedSQL, id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func (a *accounts) UpdateSubscription(ctx context.Context, id uuid.UUID, tier SubscriptionTier) (*Account, error) {
	record := &Account{
		ID:           id,
		Subscription: tier,
	}

	return a.Repository.UpdateTx(ctx, a.db, record, repository.UpdateByID(id.String()))
}

func (a *accounts) UpdateAvatarURL(ctx context.Context, id uuid.UUID, avatarURL string) (*Account, error) {
	record := &Account{
		ID:        id,
		AvatarURL: avatarURL,
	}

	return a.Repository.UpdateTx(ctx, a.db, record, repository.UpdateByID(id.String()))
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	record.EnsureSubscription()

	if record.AvatarURL == "" {
		record.AvatarURL = DeriveAvatarURL(record.Email)
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
