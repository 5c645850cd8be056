package services

import (
	"context"
	"errors"

	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/models"
	"github.com/onerilhan/thankatech-ledger/internal/repository"
)

// IdentityResolver bir kimliği (profil id veya auth uid) hesap tipine ve profile çözer
type IdentityResolver struct {
	profiles interfaces.ProfileRepositoryInterface
}

// NewIdentityResolver yeni resolver oluşturur
func NewIdentityResolver(profiles interfaces.ProfileRepositoryInterface) *IdentityResolver {
	return &IdentityResolver{profiles: profiles}
}

// Resolve technician -> customer -> admin sırasıyla ilk eşleşmeyi döner.
// Hiçbirinde yoksa repository.ErrNotFound.
func (r *IdentityResolver) Resolve(ctx context.Context, identity string) (*models.ResolvedAccount, error) {
	for _, kind := range models.ResolutionOrder {
		p, err := r.profiles.FindByIdentity(ctx, kind, identity)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &models.ResolvedAccount{Kind: kind, Profile: p}, nil
	}
	return nil, repository.ErrNotFound
}

// ResolveKind sadece verilen tabloda arar
func (r *IdentityResolver) ResolveKind(ctx context.Context, kind models.AccountKind, identity string) (*models.ResolvedAccount, error) {
	p, err := r.profiles.FindByIdentity(ctx, kind, identity)
	if err != nil {
		return nil, err
	}
	return &models.ResolvedAccount{Kind: kind, Profile: p}, nil
}

// sameAccount iki çözümleme aynı kişiyi mi gösteriyor (aynı profil veya aynı auth uid)
func sameAccount(a, b *models.ResolvedAccount) bool {
	if a.Kind == b.Kind && a.Profile.ID == b.Profile.ID {
		return true
	}
	return a.Profile.AuthUID != "" && a.Profile.AuthUID == b.Profile.AuthUID
}

// ledgerKeyOf kimliği hesabın ledger anahtarına çevirir. Profili olmayan kimlik
// (ör. profil oluşmadan gelen ödeme) olduğu gibi anahtar kabul edilir; account nil döner.
func ledgerKeyOf(ctx context.Context, profiles interfaces.ProfileRepositoryInterface, identity string) (string, *models.ResolvedAccount, error) {
	account, err := NewIdentityResolver(profiles).Resolve(ctx, identity)
	if errors.Is(err, repository.ErrNotFound) {
		return identity, nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	return account.Profile.LedgerKey(), account, nil
}
