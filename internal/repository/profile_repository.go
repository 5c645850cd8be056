package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/onerilhan/thankatech-ledger/internal/db"
	"github.com/onerilhan/thankatech-ledger/internal/models"
)

const profileColumns = `id, COALESCE(auth_uid, ''), name, email, points, thank_yous_sent, tokens_sent,
	total_thank_yous, total_tokens_received, total_toa_value, total_earnings, created_at, updated_at`

// profileTables hesap tipi -> tablo. Sorgular sadece bu sabit isimlerle kurulur.
var profileTables = map[models.AccountKind]string{
	models.KindTechnician: "technicians",
	models.KindCustomer:   "customers",
	models.KindAdmin:      "admins",
}

// ProfileRepository technicians/customers/admins tabloları (aynı şema)
type ProfileRepository struct {
	q db.Querier
}

// NewProfileRepository yeni repository oluşturur
func NewProfileRepository(q db.Querier) *ProfileRepository {
	return &ProfileRepository{q: q}
}

// FindByIdentity birincil id veya auth uid ile profil bulur; id eşleşmesi önceliklidir
func (r *ProfileRepository) FindByIdentity(ctx context.Context, kind models.AccountKind, identity string) (*models.Profile, error) {
	return r.find(ctx, kind, identity, "")
}

// FindByIdentityForUpdate aynı arama, satır kilitli
func (r *ProfileRepository) FindByIdentityForUpdate(ctx context.Context, kind models.AccountKind, identity string) (*models.Profile, error) {
	return r.find(ctx, kind, identity, " FOR UPDATE")
}

// ApplyDelta sayaç ve puan artışlarını tek UPDATE ile uygular
func (r *ProfileRepository) ApplyDelta(ctx context.Context, kind models.AccountKind, id string, delta models.ProfileDelta) (*models.Profile, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE ` + table + `
		SET points = points + $2,
			thank_yous_sent = thank_yous_sent + $3,
			tokens_sent = tokens_sent + $4,
			total_thank_yous = total_thank_yous + $5,
			total_tokens_received = total_tokens_received + $6,
			total_toa_value = total_toa_value + $7,
			total_earnings = total_earnings + $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	profile, err := scanProfile(r.q.QueryRowContext(ctx, query,
		id,
		delta.Points,
		delta.ThankYousSent,
		delta.TokensSent,
		delta.TotalThankYous,
		delta.TotalTokensReceived,
		delta.TotalToaValue,
		delta.TotalEarnings,
	), kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("profil güncellenemedi: %w", err)
	}
	return profile, nil
}

// DeductPoints puan düşer; points asla negatife inmez
func (r *ProfileRepository) DeductPoints(ctx context.Context, kind models.AccountKind, id string, points int64) (*models.Profile, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE ` + table + `
		SET points = points - $2, updated_at = NOW()
		WHERE id = $1 AND points >= $2
		RETURNING ` + profileColumns

	profile, err := scanProfile(r.q.QueryRowContext(ctx, query, id, points), kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInsufficientPoints
		}
		return nil, fmt.Errorf("puan düşülemedi: %w", err)
	}
	return profile, nil
}

// SetPoints puanı sadece observed değer hâlâ geçerliyse değiştirir
func (r *ProfileRepository) SetPoints(ctx context.Context, kind models.AccountKind, id string, observed, points int64) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	query := `UPDATE ` + table + ` SET points = $3, updated_at = NOW() WHERE id = $1 AND points = $2`
	res, err := r.q.ExecContext(ctx, query, id, observed, points)
	if err != nil {
		return false, fmt.Errorf("puan düzeltilemedi: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("etkilenen satır okunamadı: %w", err)
	}
	return n == 1, nil
}

// List profilleri id sırasıyla sayfalı listeler
func (r *ProfileRepository) List(ctx context.Context, kind models.AccountKind, limit, offset int) ([]*models.Profile, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + profileColumns + ` FROM ` + table + ` ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("profil listesi alınamadı: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("profil scan hatası: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *ProfileRepository) find(ctx context.Context, kind models.AccountKind, identity, suffix string) (*models.Profile, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	if identity == "" {
		return nil, ErrNotFound
	}

	query := `
		SELECT ` + profileColumns + `
		FROM ` + table + `
		WHERE id = $1 OR auth_uid = $1
		ORDER BY (id = $1) DESC
		LIMIT 1` + suffix

	profile, err := scanProfile(r.q.QueryRowContext(ctx, query, identity), kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("profil arama hatası: %w", err)
	}
	return profile, nil
}

func tableFor(kind models.AccountKind) (string, error) {
	table, ok := profileTables[kind]
	if !ok {
		return "", fmt.Errorf("bilinmeyen hesap tipi: %q", kind)
	}
	return table, nil
}

func scanProfile(row scanner, kind models.AccountKind) (*models.Profile, error) {
	p := models.Profile{Kind: kind}
	err := row.Scan(
		&p.ID,
		&p.AuthUID,
		&p.Name,
		&p.Email,
		&p.Points,
		&p.ThankYousSent,
		&p.TokensSent,
		&p.TotalThankYous,
		&p.TotalTokensReceived,
		&p.TotalToaValue,
		&p.TotalEarnings,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
