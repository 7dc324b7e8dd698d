package postgres

import (
	"context"
	"fmt"

	"tokensale-platform/internal/core/domain"
)

// ContentRepo implements ports.ContentRepository.
type ContentRepo struct {
	pool Pool
}

// NewContentRepo creates a new ContentRepo.
func NewContentRepo(pool Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

// GetPage returns every section of a page in one language.
func (r *ContentRepo) GetPage(ctx context.Context, pageID, language string) ([]domain.ContentEntry, error) {
	query := `SELECT content_id, page_id, section_id, content_type, content_value, language_code, last_updated, updated_by
		FROM contents WHERE page_id = $1 AND language_code = $2
		ORDER BY section_id`

	rows, err := r.pool.Query(ctx, query, pageID, language)
	if err != nil {
		return nil, fmt.Errorf("get page content: %w", err)
	}
	defer rows.Close()

	var entries []domain.ContentEntry
	for rows.Next() {
		var e domain.ContentEntry
		if err := rows.Scan(
			&e.ID, &e.PageID, &e.SectionID, &e.ContentType, &e.ContentValue,
			&e.LanguageCode, &e.LastUpdated, &e.UpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan content entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content entries: %w", err)
	}
	return entries, nil
}

// Translations returns the page id -> language codes map.
func (r *ContentRepo) Translations(ctx context.Context) (map[string][]string, error) {
	query := `SELECT DISTINCT page_id, language_code FROM contents ORDER BY page_id, language_code`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	defer rows.Close()

	translations := make(map[string][]string)
	for rows.Next() {
		var pageID, lang string
		if err := rows.Scan(&pageID, &lang); err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		translations[pageID] = append(translations[pageID], lang)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translations: %w", err)
	}
	return translations, nil
}

// Upsert inserts or replaces one section, keyed by
// (page_id, section_id, language_code).
func (r *ContentRepo) Upsert(ctx context.Context, e *domain.ContentEntry) (*domain.ContentEntry, error) {
	query := `INSERT INTO contents (page_id, section_id, content_type, content_value, language_code, last_updated, updated_by)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6)
		ON CONFLICT (page_id, section_id, language_code)
		DO UPDATE SET content_type = EXCLUDED.content_type,
			content_value = EXCLUDED.content_value,
			last_updated = NOW(),
			updated_by = EXCLUDED.updated_by
		RETURNING content_id, last_updated`

	saved := *e
	err := r.pool.QueryRow(ctx, query,
		e.PageID, e.SectionID, e.ContentType, e.ContentValue, e.LanguageCode, e.UpdatedBy,
	).Scan(&saved.ID, &saved.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("upsert content: %w", err)
	}
	return &saved, nil
}

// CountByLanguage returns the section count per language code.
func (r *ContentRepo) CountByLanguage(ctx context.Context) (map[string]int64, error) {
	query := `SELECT language_code, COUNT(*) FROM contents GROUP BY language_code`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count content by language: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var lang string
		var count int64
		if err := rows.Scan(&lang, &count); err != nil {
			return nil, fmt.Errorf("scan content count: %w", err)
		}
		counts[lang] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content counts: %w", err)
	}
	return counts, nil
}
