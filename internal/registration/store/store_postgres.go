package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"gatepass/internal/registration"
	"gatepass/pkg/domain"
	"gatepass/pkg/platform/sentinel"
)

// PostgresStore persists registrations in PostgreSQL. CreateRegistration and
// DeleteRegistration run inside a single transaction each; the schema's
// ON DELETE CASCADE keeps participant and proof rows from outliving their
// registration.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateRegistration(ctx context.Context, p CreateParams) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	reg := p.Registration
	var memberID sql.NullString
	if reg.MemberID != nil {
		memberID = sql.NullString{String: reg.MemberID.String(), Valid: true}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO registrations
			(id, event_id, identifier, payment_method, payment_status,
			 member_type, member_id, non_member_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
	`, reg.ID.String(), reg.EventID.String(), reg.Identifier.String(),
		reg.PaymentMethod.String(), reg.PaymentStatus.String(),
		string(reg.MemberType), memberID, reg.NonMemberName, reg.CreatedAt,
	); err != nil {
		return translateWriteErr(err, "insert registration")
	}

	for _, part := range p.Participants {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO participants
				(id, registration_id, first_name, last_name, email, contact_number, is_principal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, part.ID.String(), part.RegistrationID.String(),
			part.FirstName, part.LastName, part.Email, part.ContactNumber, part.IsPrincipal,
		); err != nil {
			return translateWriteErr(err, "insert participant")
		}
	}

	if p.Proof != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO proof_images (registration_id, path, content_type)
			VALUES ($1, $2, $3)
		`, p.Proof.RegistrationID.String(), p.Proof.Path, p.Proof.ContentType); err != nil {
			return translateWriteErr(err, "insert proof image")
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteRegistration(ctx context.Context, id domain.RegistrationID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM registrations WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindRegistration(ctx context.Context, id domain.RegistrationID) (registration.Registration, error) {
	return s.scanRegistration(s.db.QueryRowContext(ctx, `
		SELECT id, event_id, identifier, payment_method, payment_status,
		       member_type, member_id, COALESCE(non_member_name, ''), created_at
		FROM registrations WHERE id = $1
	`, id.String()))
}

func (s *PostgresStore) FindByIdentifier(ctx context.Context, ident domain.Identifier) (registration.Registration, error) {
	return s.scanRegistration(s.db.QueryRowContext(ctx, `
		SELECT id, event_id, identifier, payment_method, payment_status,
		       member_type, member_id, COALESCE(non_member_name, ''), created_at
		FROM registrations WHERE identifier = $1
	`, ident.String()))
}

func (s *PostgresStore) scanRegistration(row *sql.Row) (registration.Registration, error) {
	var (
		reg                   registration.Registration
		id, eventID, ident    string
		method, status, mtype string
		memberID              sql.NullString
	)
	err := row.Scan(&id, &eventID, &ident, &method, &status, &mtype, &memberID, &reg.NonMemberName, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return registration.Registration{}, sentinel.ErrNotFound
		}
		return registration.Registration{}, fmt.Errorf("find registration: %w", err)
	}
	regID, err := domain.ParseRegistrationID(id)
	if err != nil {
		return registration.Registration{}, fmt.Errorf("find registration: %w", err)
	}
	evID, err := domain.ParseEventID(eventID)
	if err != nil {
		return registration.Registration{}, fmt.Errorf("find registration: %w", err)
	}
	reg.ID = regID
	reg.EventID = evID
	reg.Identifier = domain.Identifier(ident)
	reg.PaymentMethod = domain.PaymentMethod(method)
	reg.PaymentStatus = domain.PaymentStatus(status)
	reg.MemberType = registration.MemberType(mtype)
	if memberID.Valid {
		mid, err := domain.ParseMemberID(memberID.String)
		if err != nil {
			return registration.Registration{}, fmt.Errorf("find registration: %w", err)
		}
		reg.MemberID = &mid
	}
	return reg, nil
}

func (s *PostgresStore) ListParticipants(ctx context.Context, id domain.RegistrationID) ([]registration.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, registration_id, first_name, last_name, email, contact_number, is_principal
		FROM participants
		WHERE registration_id = $1
		ORDER BY is_principal DESC, last_name ASC, first_name ASC
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []registration.Participant
	for rows.Next() {
		var (
			p        registration.Participant
			pid, rid string
		)
		if err := rows.Scan(&pid, &rid, &p.FirstName, &p.LastName, &p.Email, &p.ContactNumber, &p.IsPrincipal); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		partID, err := domain.ParseParticipantID(pid)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		regID, err := domain.ParseRegistrationID(rid)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.ID, p.RegistrationID = partID, regID
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindProof(ctx context.Context, id domain.RegistrationID) (registration.ProofImage, error) {
	var (
		proof registration.ProofImage
		rid   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT registration_id, path, content_type FROM proof_images WHERE registration_id = $1
	`, id.String()).Scan(&rid, &proof.Path, &proof.ContentType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return registration.ProofImage{}, sentinel.ErrNotFound
		}
		return registration.ProofImage{}, fmt.Errorf("find proof image: %w", err)
	}
	regID, err := domain.ParseRegistrationID(rid)
	if err != nil {
		return registration.ProofImage{}, fmt.Errorf("find proof image: %w", err)
	}
	proof.RegistrationID = regID
	return proof, nil
}

func (s *PostgresStore) SetPaymentStatus(ctx context.Context, id domain.RegistrationID, status domain.PaymentStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE registrations SET payment_status = $1 WHERE id = $2
	`, status.String(), id.String())
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func translateWriteErr(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return sentinel.ErrConflict
		case "23503":
			return sentinel.ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
