package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"procurement/internal/models"

	"github.com/lib/pq"
)

func (repo *Repository) prepTendersQuery(limit, offset int, tenderId string, statuses []models.TenderStatus) (query string, queryParams []interface{}) {
	query = `
	SELECT
		id,
		revision,
		document
	FROM tenders
	$conditions$
	ORDER BY created_at DESC, id
	LIMIT $1
	OFFSET $2
	`

	queryParams = make([]interface{}, 0, 4)
	conditions := make([]string, 0, 2)

	if limit <= 0 {
		queryParams = append(queryParams, nil)
	} else {
		queryParams = append(queryParams, limit)
	}
	queryParams = append(queryParams, offset)

	if len(tenderId) > 0 {
		conditions = append(conditions, "id = $$")
		queryParams = append(queryParams, tenderId)
	}

	if len(statuses) > 0 {
		list := make([]string, 0, len(statuses))
		for _, s := range statuses {
			list = append(list, string(s))
		}
		conditions = append(conditions, "status = ANY($$::text[])")
		queryParams = append(queryParams, pq.Array(list))
	}

	condStr := ""
	if len(conditions) > 0 {
		for i := 0; i < len(conditions); i++ {
			conditions[i] = strings.Replace(conditions[i], "$$", "$"+strconv.Itoa(i+3), -1)
		}
		condStr = "WHERE " + strings.Join(conditions, " AND ")
	}
	query = strings.Replace(query, "$conditions$", condStr, -1)

	return query, queryParams
}

func (repo *Repository) GetTenders(ctx context.Context, limit, offset int, statuses []models.TenderStatus) ([]models.Tender, error) {
	query, queryParams := repo.prepTendersQuery(limit, offset, "", statuses)

	rows, err := repo.db.QueryContext(ctx, query, queryParams...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetTenders: %w", err)
	}
	defer rows.Close()

	var result []models.Tender
	for rows.Next() {
		tender, err := scanTender(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetTenders: %w", err)
		}
		result = append(result, tender)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.Repository.GetTenders: %w", err)
	}

	return result, nil
}

func (repo *Repository) GetTenderByUUID(ctx context.Context, UUID string) (models.Tender, error) {
	query, queryParams := repo.prepTendersQuery(1, 0, UUID, nil)

	row := repo.db.QueryRowContext(ctx, query, queryParams...)
	tender, err := scanTender(row)
	if errors.Is(err, sql.ErrNoRows) {
		return tender, fmt.Errorf("repository.Repository.GetTenderByUUID: no tender found by UUID %s, %w", UUID, models.ErrNoTender)
	} else if err != nil {
		return tender, fmt.Errorf("repository.Repository.GetTenderByUUID: %w", err)
	}

	return tender, nil
}

func (repo *Repository) AddTender(ctx context.Context, t models.Tender) (models.Tender, error) {
	result := t
	result.Revision = 1

	document, err := json.Marshal(result)
	if err != nil {
		return t, fmt.Errorf("repository.Repository.AddTender: %w", err)
	}

	query := `
	INSERT INTO tenders
		(id, revision, status, document, created_at, updated_at)
	VALUES
		($1, $2, $3, $4, $5, $6)
	`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return t, fmt.Errorf("repository.Repository.AddTender: failed to start transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, query, result.Id, result.Revision, result.Status, document, result.CreatedAt, result.DateModified)
	if err != nil {
		return t, wrapRollbackErr(tx, fmt.Errorf("repository.Repository.AddTender: %w", err))
	}

	err = repo.addTenderRevision(ctx, tx, result.Id, result.Revision, result.Status, document)
	if err != nil {
		return t, wrapRollbackErr(tx, fmt.Errorf("repository.Repository.AddTender: %w", err))
	}

	err = tx.Commit()
	if err != nil {
		return t, fmt.Errorf("repository.Repository.AddTender: failed to commit transaction: %w", err)
	}

	return result, nil
}

// SaveTender replaces the stored document when t.Revision is still the
// stored revision, and returns t with the new revision. Otherwise it
// returns models.ErrConflict and the stored document is kept.
func (repo *Repository) SaveTender(ctx context.Context, t models.Tender) (models.Tender, error) {
	result := t
	result.Revision = t.Revision + 1

	document, err := json.Marshal(result)
	if err != nil {
		return t, fmt.Errorf("repository.Repository.SaveTender: %w", err)
	}

	query := `
	UPDATE tenders
	SET (revision, status, document, updated_at) =
	($1, $2, $3, $4)
	WHERE id = $5 AND revision = $6
	`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return t, fmt.Errorf("repository.Repository.SaveTender: failed to start transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, result.Revision, result.Status, document, result.DateModified, t.Id, t.Revision)
	if err != nil {
		return t, wrapRollbackErr(tx, fmt.Errorf("repository.Repository.SaveTender: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return t, wrapRollbackErr(tx, fmt.Errorf("repository.Repository.SaveTender: %w", err))
	}
	if affected == 0 {
		return t, wrapRollbackErr(tx, fmt.Errorf("repository.Repository.SaveTender: tender %s at revision %d: %w", t.Id, t.Revision, models.ErrConflict))
	}

	err = repo.addTenderRevision(ctx, tx, result.Id, result.Revision, result.Status, document)
	if err != nil {
		return t, wrapRollbackErr(tx, fmt.Errorf("repository.Repository.SaveTender: %w", err))
	}

	err = tx.Commit()
	if err != nil {
		return t, fmt.Errorf("repository.Repository.SaveTender: failed to commit transaction: %w", err)
	}

	return result, nil
}

func (repo *Repository) DeleteTender(ctx context.Context, tenderId string) error {
	_, err := repo.db.ExecContext(ctx, "DELETE FROM tenders WHERE id = $1", tenderId)
	if err != nil {
		return fmt.Errorf("repository.Repository.DeleteTender: %w", err)
	}
	return nil
}

//// Revisions

func (repo *Repository) addTenderRevision(ctx context.Context, tx *sql.Tx, id string, revision int, status models.TenderStatus, document []byte) error {
	query := `
	INSERT INTO tenders_revisions
		(id, revision, status, document)
	VALUES
		($1, $2, $3, $4)
	`

	_, err := tx.ExecContext(ctx, query, id, revision, status, document)
	if err != nil {
		return fmt.Errorf("repository.Repository.addTenderRevision: %w", err)
	}
	return nil
}

func (repo *Repository) GetTenderRevisions(ctx context.Context, UUID string) ([]models.TenderRevision, error) {
	query := `
	SELECT
		revision,
		status,
		document,
		created_at
	FROM tenders_revisions
	WHERE id = $1
	ORDER BY revision DESC
	`

	rows, err := repo.db.QueryContext(ctx, query, UUID)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetTenderRevisions: %w", err)
	}
	defer rows.Close()

	var result []models.TenderRevision
	for rows.Next() {
		var rev models.TenderRevision
		var document []byte
		err = rows.Scan(&rev.Revision, &rev.Status, &document, &rev.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetTenderRevisions: row scan failed: %w", err)
		}
		if err = json.Unmarshal(document, &rev.Tender); err != nil {
			return nil, fmt.Errorf("repository.Repository.GetTenderRevisions: %w", err)
		}
		rev.Tender.Revision = rev.Revision
		result = append(result, rev)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.Repository.GetTenderRevisions: %w", err)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("repository.Repository.GetTenderRevisions: %w", models.ErrNoTender)
	}

	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTender(row scanner) (models.Tender, error) {
	var tender models.Tender
	var id string
	var revision int
	var document []byte

	err := row.Scan(&id, &revision, &document)
	if err != nil {
		return tender, err
	}
	if err = json.Unmarshal(document, &tender); err != nil {
		return tender, fmt.Errorf("document of tender %s: %w", id, err)
	}
	tender.Id = id
	tender.Revision = revision
	return tender, nil
}
