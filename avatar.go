package identity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// AvatarSize is the canvas every stored avatar is normalized to
const AvatarSize = 250

// AvatarProcessor relocates a staged upload into public storage and
// normalizes it to a fixed square canvas.
type AvatarProcessor struct {
	store      AccountStore
	stagingDir string
	publicDir  string
	urlPrefix  string
	logger     Logger
}

// NewAvatarProcessor will create a new AvatarProcessor
func NewAvatarProcessor(store AccountStore, cfg Config) *AvatarProcessor {
	return &AvatarProcessor{
		store:      store,
		stagingDir: cfg.GetAvatarStagingDir(),
		publicDir:  cfg.GetAvatarPublicDir(),
		urlPrefix:  cfg.GetAvatarURLPrefix(),
		logger:     defLogger{},
	}
}

func (p *AvatarProcessor) WithLogger(logger Logger) *AvatarProcessor {
	p.logger = logger
	return p
}

// Store moves the staged file into public storage, resizes it in place, and
// persists the resulting URL on the account. On any failure during
// move/decode/resize the staged file is removed and no account mutation
// happens; the failure keeps the auth classification of the original service
// since downstream consumers key off the status code.
func (p *AvatarProcessor) Store(ctx context.Context, accountID uuid.UUID, filename string) (string, error) {
	name := filepath.Base(filename)
	staged := filepath.Join(p.stagingDir, name)
	public := filepath.Join(p.publicDir, name)

	if err := p.relocate(staged, public); err != nil {
		p.cleanup(staged, public)
		return "", errors.Wrap(err, errors.CategoryAuth, "failed to process avatar").
			WithTextCode(TextCodeAvatarProcessing).
			WithCode(errors.CodeUnauthorized)
	}

	avatarURL := fmt.Sprintf("%s/%s", p.urlPrefix, name)

	if _, err := p.store.UpdateAvatarURL(ctx, accountID, avatarURL); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to persist avatar URL")
	}

	p.logger.Info("avatar stored", "account_id", accountID.String(), "url", avatarURL)

	return avatarURL, nil
}

func (p *AvatarProcessor) relocate(staged, public string) error {
	if err := os.Rename(staged, public); err != nil {
		return err
	}

	img, err := imaging.Open(public)
	if err != nil {
		return err
	}

	resized := imaging.Resize(img, AvatarSize, AvatarSize, imaging.Lanczos)

	return imaging.Save(resized, public)
}

// cleanup removes whatever is left of the upload after a failure. The staged
// file must be gone on every failure path, the public copy only exists when
// the rename already happened.
func (p *AvatarProcessor) cleanup(staged, public string) {
	if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("failed to remove staged avatar", "path", staged, "error", err)
	}
	if err := os.Remove(public); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("failed to remove public avatar", "path", public, "error", err)
	}
}
